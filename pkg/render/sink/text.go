package sink

import (
	"bytes"
	"encoding/xml"
)

// TruncateLabel shortens label to fit a box of the given width at the label
// font size.
func TruncateLabel(label string, width float64) string {
	charWidth := labelFontSize * labelCharWidth
	maxChars := int(width * 0.9 / charWidth)
	if maxChars < 3 {
		maxChars = 3
	}

	runes := []rune(label)
	if len(runes) <= maxChars {
		return label
	}
	return string(runes[:maxChars-2]) + ".."
}

func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
