package capture

import (
	"strings"
	"unicode/utf8"
)

// utf8Decoder converts a byte stream to text incrementally. A chunk may end
// in the middle of a multi-byte rune; the partial bytes are held back until
// the rest of the rune arrives.
type utf8Decoder struct {
	pending []byte
}

// Write appends p and returns the longest decodable prefix as text.
func (d *utf8Decoder) Write(p []byte) string {
	d.pending = append(d.pending, p...)

	boundary := len(d.pending)
	for back := 1; back <= utf8.UTFMax && back <= len(d.pending); back++ {
		b := d.pending[len(d.pending)-back]
		if b < utf8.RuneSelf {
			break
		}
		if utf8.RuneStart(b) {
			if !utf8.FullRune(d.pending[len(d.pending)-back:]) {
				boundary = len(d.pending) - back
			}
			break
		}
	}

	out := toText(d.pending[:boundary])
	d.pending = append(d.pending[:0], d.pending[boundary:]...)
	return out
}

// Flush drains whatever is held back, partial rune included.
func (d *utf8Decoder) Flush() string {
	out := toText(d.pending)
	d.pending = nil
	return out
}

// toText replaces ill-formed sequences so callbacks always receive valid
// UTF-8.
func toText(b []byte) string {
	return strings.ToValidUTF8(string(b), string(utf8.RuneError))
}
