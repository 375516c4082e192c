// Package table renders tasks as fixed-width text columns that stay aligned
// when ASCII and CJK text are mixed.
package table

import (
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// Ellipsis marks truncated text.
const Ellipsis = "..."

// eastAsian measures ambiguous-width characters as narrow regardless of
// the process locale.
var eastAsian = func() *runewidth.Condition {
	c := runewidth.NewCondition()
	c.EastAsianWidth = false
	return c
}()

// Metric decides how many terminal columns each code point occupies.
type Metric int

const (
	// LeadByte classifies code points by their UTF-8 lead byte: 3- and 4-byte
	// sequences are two columns wide, everything else one.
	LeadByte Metric = iota
	// EastAsian uses the Unicode East Asian Width tables.
	EastAsian
)

// ParseMetric maps a config value to a Metric.
func ParseMetric(s string) (Metric, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lead-byte", "leadbyte":
		return LeadByte, true
	case "east-asian", "eastasian":
		return EastAsian, true
	}
	return LeadByte, false
}

func (m Metric) String() string {
	if m == EastAsian {
		return "east-asian"
	}
	return "lead-byte"
}

// next returns the byte length and column width of the code point at the
// start of s. s must be non-empty.
func (m Metric) next(s string) (size, width int) {
	if m == EastAsian {
		r, n := utf8.DecodeRuneInString(s)
		return n, eastAsian.RuneWidth(r)
	}

	c := s[0]
	switch {
	case c < 0x80:
		size, width = 1, 1
	case c&0xE0 == 0xC0:
		size, width = 2, 1
	case c&0xF0 == 0xE0:
		size, width = 3, 2
	case c&0xF8 == 0xF0:
		size, width = 4, 2
	default:
		return 1, 1
	}
	if size > len(s) {
		// truncated sequence: count the lead byte alone
		return 1, 1
	}
	return size, width
}

// Width returns the display width of s.
func (m Metric) Width(s string) int {
	w := 0
	for i := 0; i < len(s); {
		n, cw := m.next(s[i:])
		w += cw
		i += n
	}
	return w
}

// Clamp shortens s to at most maxWidth columns, ending it with Ellipsis when
// text was dropped. Code points are never split. When maxWidth is smaller than
// the ellipsis itself only the first maxWidth dots are returned.
func (m Metric) Clamp(s string, maxWidth int) string {
	if m.Width(s) <= maxWidth {
		return s
	}
	if maxWidth < len(Ellipsis) {
		if maxWidth <= 0 {
			return ""
		}
		return Ellipsis[:maxWidth]
	}

	budget := maxWidth - len(Ellipsis)
	w, end := 0, 0
	for end < len(s) {
		n, cw := m.next(s[end:])
		if w+cw > budget {
			break
		}
		w += cw
		end += n
	}
	return s[:end] + Ellipsis
}

// Pad right-pads s with spaces to exactly target columns, or clamps it when
// it is wider. A clamped result may be one column short if a wide code point
// did not fit; it is not padded further.
func (m Metric) Pad(s string, target int) string {
	w := m.Width(s)
	if w > target {
		return m.Clamp(s, target)
	}
	return s + strings.Repeat(" ", target-w)
}

// DisplayWidth returns the LeadByte width of s.
func DisplayWidth(s string) int { return LeadByte.Width(s) }

// Clamp is LeadByte.Clamp.
func Clamp(s string, maxWidth int) string { return LeadByte.Clamp(s, maxWidth) }

// Pad is LeadByte.Pad.
func Pad(s string, target int) string { return LeadByte.Pad(s, target) }
