package course

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCanon(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already canonical", "CS 300", "CS 300"},
		{"lowercase", "cs 300", "CS 300"},
		{"internal runs", "cs   300", "CS 300"},
		{"trim", "  COMP SCI 400  ", "COMP SCI 400"},
		{"tabs and newlines", "comp\tsci\n 400", "COMP SCI 400"},
		{"empty", "", ""},
		{"only whitespace", " \t\n ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Canon(tt.input)
			if got != tt.want {
				t.Errorf("Canon(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := Canon(got); again != got {
				t.Errorf("Canon not idempotent: Canon(%q) = %q", got, again)
			}
		})
	}
}

func TestCanon_EquivalentSpellings(t *testing.T) {
	if Canon("cs   300") != Canon("CS 300") {
		t.Errorf("Canon(%q) != Canon(%q)", "cs   300", "CS 300")
	}
}

func TestSplitOption(t *testing.T) {
	tests := []struct {
		name   string
		option string
		want   []string
	}{
		{"single course", "math 221", []string{"MATH 221"}},
		{"combination", "MATH 221 & MATH 222", []string{"MATH 221", "MATH 222"}},
		{"tight separator", "math 221&math 222", []string{"MATH 221", "MATH 222"}},
		{"three parts", "a 1 & b 2 &  c 3", []string{"A 1", "B 2", "C 3"}},
		{"empty parts dropped", " & MATH 221 &  ", []string{"MATH 221"}},
		{"only separators", "&&", nil},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitOption(tt.option)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("SplitOption(%q) mismatch (-want +got):\n%s", tt.option, diff)
			}
		})
	}
}
