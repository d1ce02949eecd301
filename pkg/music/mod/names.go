package mod

import (
	"bytes"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// decodeName converts a fixed-size, NUL-padded name field to UTF-8.
// Trackers of the era wrote names in the DOS code page, which is what the
// box-drawing and accented characters found in real modules decode as.
func decodeName(raw []byte) string {
	if i := bytes.IndexByte(raw, 0); i >= 0 {
		raw = raw[:i]
	}
	s, _, err := transform.Bytes(charmap.CodePage437.NewDecoder(), raw)
	if err != nil {
		return strings.TrimRight(string(raw), " ")
	}
	return strings.TrimRight(string(s), " ")
}
