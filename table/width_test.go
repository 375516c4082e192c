package table

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

func TestDisplayWidthASCII(t *testing.T) {
	for _, s := range []string{"", "a", "Hello World", "2025-01-01", "~!@#$%^&*()_+ \t"} {
		if got := DisplayWidth(s); got != len(s) {
			t.Errorf("DisplayWidth(%q) = %d, expected %d", s, got, len(s))
		}
	}
}

func TestDisplayWidthThreeByteClass(t *testing.T) {
	for _, s := range []string{"任务", "任务标题示例", "截止日期", "€", "あいう"} {
		want := 2 * utf8.RuneCountInString(s)
		if got := DisplayWidth(s); got != want {
			t.Errorf("DisplayWidth(%q) = %d, expected %d", s, got, want)
		}
	}
}

func TestDisplayWidthMixed(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"ID任务", 6},
		{"é", 1},          // 2-byte lead
		{"😀", 2},          // 4-byte lead
		{"a😀b", 4},        // mixed
		{"\x80", 1},       // stray continuation byte
		{"\xff\xfe", 2},   // invalid lead bytes
		{"\xe4\xbb", 2},   // 3-byte lead with only one continuation: two 1-wide bytes
		{"ab\xf0\x9f", 4}, // truncated 4-byte sequence at the end
		{"\xe4任", 3},      // continuation bytes are not checked: e4 e4 bb, then bb
	}
	for _, tc := range tests {
		if got := DisplayWidth(tc.in); got != tc.want {
			t.Errorf("DisplayWidth(%q) = %d, expected %d", tc.in, got, tc.want)
		}
	}
}

func TestClampScenarios(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"Hello World", 8, "Hello..."},
		{"Hello World", 11, "Hello World"},
		{"Hello World", 20, "Hello World"},
		{"Hello World", 3, "..."},
		{"Hello World", 4, "H..."},
		{"任务标题示例", 12, "任务标题示例"},
		{"任务标题示例", 11, "任务标题..."}, // 8 + 3
		{"任务标题示例", 10, "任务标..."},  // 6 + 3; the next ideograph would overflow
		{"a任务", 4, "a..."},
		// width below the ellipsis footprint
		{"Hello", 2, ".."},
		{"Hello", 1, "."},
		{"Hello", 0, ""},
		{"", 0, ""},
	}
	for _, tc := range tests {
		if got := Clamp(tc.in, tc.width); got != tc.want {
			t.Errorf("Clamp(%q, %d) = %q, expected %q", tc.in, tc.width, got, tc.want)
		}
	}
}

var clampInputs = []string{
	"",
	"Hello World",
	"任务标题示例",
	"mixed 任务 text with 😀 emoji",
	"é accents élan",
	"\xe4\xbb broken \xff bytes",
	strings.Repeat("长", 40),
}

func TestClampProperties(t *testing.T) {
	for _, s := range clampInputs {
		for w := 0; w <= 40; w++ {
			got := Clamp(s, w)
			if DisplayWidth(got) > w {
				t.Errorf("Clamp(%q, %d) = %q has width %d", s, w, got, DisplayWidth(got))
			}
			if again := Clamp(got, w); again != got {
				t.Errorf("Clamp not idempotent for (%q, %d): %q then %q", s, w, got, again)
			}
			if utf8.ValidString(s) && !utf8.ValidString(got) {
				t.Errorf("Clamp(%q, %d) split a code point: %q", s, w, got)
			}
		}
	}
}

func TestPad(t *testing.T) {
	if got := Pad("ID", 4); got != "ID  " {
		t.Errorf("Pad(ID, 4) = %q, expected %q", got, "ID  ")
	}
	if got := Pad("任务标题示例", 15); got != "任务标题示例   " {
		t.Errorf("Pad CJK = %q, expected three trailing spaces", got)
	}
	if got := Pad("Hello World", 8); got != "Hello..." {
		t.Errorf("Pad should clamp wider input, got %q", got)
	}
	// A clamped result is not padded back out
	if got := Pad("任务标题示例", 8); got != "任务..." || DisplayWidth(got) != 7 {
		t.Errorf("Pad(任务标题示例, 8) = %q (width %d), expected 任务... (width 7)", got, DisplayWidth(got))
	}
}

func TestPadExactWidth(t *testing.T) {
	for _, s := range clampInputs {
		w := DisplayWidth(s)
		for target := w; target <= w+10; target++ {
			if got := DisplayWidth(Pad(s, target)); got != target {
				t.Errorf("DisplayWidth(Pad(%q, %d)) = %d", s, target, got)
			}
		}
	}
}

func TestEastAsianMetric(t *testing.T) {
	// Agrees with runewidth for each rune class the lead-byte rule gets right
	for _, s := range []string{"abc", "任务标题示例", "ID任务"} {
		if got, want := EastAsian.Width(s), runewidth.StringWidth(s); got != want {
			t.Errorf("EastAsian.Width(%q) = %d, expected %d", s, got, want)
		}
	}

	// and differs where the lead-byte rule over-counts
	if got := EastAsian.Width("€"); got != 1 {
		t.Errorf("EastAsian.Width(€) = %d, expected 1", got)
	}
	if got := LeadByte.Width("€"); got != 2 {
		t.Errorf("LeadByte.Width(€) = %d, expected 2", got)
	}

	if got := EastAsian.Clamp("€€€€€€", 5); got != "€€..." {
		t.Errorf("EastAsian.Clamp = %q, expected %q", got, "€€...")
	}
	if got := EastAsian.Pad("€", 4); got != "€   " {
		t.Errorf("EastAsian.Pad = %q, expected %q", got, "€   ")
	}
}

func TestParseMetric(t *testing.T) {
	tests := []struct {
		in   string
		want Metric
		ok   bool
	}{
		{"", LeadByte, true},
		{"lead-byte", LeadByte, true},
		{"East-Asian", EastAsian, true},
		{"eastasian", EastAsian, true},
		{"wide", LeadByte, false},
	}
	for _, tc := range tests {
		got, ok := ParseMetric(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ParseMetric(%q) = %v, %v; expected %v, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
	if EastAsian.String() != "east-asian" || LeadByte.String() != "lead-byte" {
		t.Error("Metric.String mismatch")
	}
}
