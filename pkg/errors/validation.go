package errors

import (
	"strings"
	"unicode"
)

// maxStepNameLength bounds step names accepted from payloads.
const maxStepNameLength = 256

// ValidateStepName validates a step name taken from a graph payload.
//
// Step names become node ids, link ids and DOT identifiers, so the rules are
// conservative:
//   - No empty names
//   - No control characters (including null bytes and newlines)
//   - Maximum length of 256 bytes
func ValidateStepName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidGraph, "step name cannot be empty")
	}

	if len(name) > maxStepNameLength {
		return New(ErrCodeInvalidGraph, "step name too long (max %d characters)", maxStepNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidGraph, "step name %q contains invalid control characters", name)
		}
	}

	return nil
}

// ValidateOutputPath validates a file path the CLI is about to write to.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasSuffix(path, "/") {
		return New(ErrCodeInvalidPath, "path must name a file, not a directory")
	}

	return nil
}
