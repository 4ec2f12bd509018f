// Package flow defines the flat workflow graph consumed by stepgraph.
//
// A workflow graph maps step names to a [Step]: the step's type, its ordered
// successor list, and the box markers that delimit parallel and foreach
// sections. The shape mirrors the payload of the workflow introspection
// service and is frozen for compatibility:
//
//	{
//	  "start": {"type": "split-and", "next": ["a", "b"], "box_next": true, "box_ends": "join"},
//	  "a":     {"type": "linear", "next": ["join"], "box_next": false, "box_ends": null},
//	  "b":     {"type": "linear", "next": ["join"], "box_next": false, "box_ends": null},
//	  "join":  {"type": "join", "next": ["end"], "box_next": false, "box_ends": null},
//	  "end":   {"type": "end", "next": [], "box_next": false, "box_ends": null}
//	}
//
// # Validation
//
// [Parse] checks a payload in two passes. The embedded JSON Schema rejects
// payloads of the wrong shape; [Validate] then rejects graphs that are
// well-formed JSON but not a usable workflow:
//   - no "start" step ([ErrMissingStart])
//   - a type outside the six enumerated values ([ErrUnknownStepType])
//   - a next or box_ends entry naming an undefined step ([ErrUnknownStep])
//   - a box that is opened but can never be closed ([ErrInvalidBox])
//
// All referenced names are checked before reconstruction begins, so later
// stages never see a dangling reference. Every returned error carries a code
// from [github.com/matzehuels/stepgraph/pkg/errors].
package flow
