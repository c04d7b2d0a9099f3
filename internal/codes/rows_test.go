package codes

import (
	"reflect"
	"testing"
)

func TestSplitRows(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", []string{}},
		{"single", "A", []string{"A"}},
		{"trims and drops blanks", "  A  \n\n  B  ", []string{"A", "B"}},
		{"keeps order", "C\nA\nB\n", []string{"C", "A", "B"}},
		{"carriage returns trimmed", "A\r\nB\r\n", []string{"A", "B"}},
		{"byte order mark", "\uFEFFA\nB\n", []string{"A", "B"}},
		{"inner spaces kept", "AB CD\n", []string{"AB CD"}},
		{"tabs", "\tA\t\n", []string{"A"}},
		{"no-break and ideographic spaces", "\u00A0A\u3000\n", []string{"A"}},
		{"next line kept", "\u0085A\nB\n", []string{"\u0085A", "B"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitRows(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitRows(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDuplicates(t *testing.T) {
	tests := []struct {
		in   []string
		want []string
	}{
		{[]string{"A", "B"}, nil},
		{[]string{"A", "B", "A"}, []string{"A"}},
		{[]string{"A", "A", "A"}, []string{"A"}},
		{[]string{"B", "A", "A", "B"}, []string{"A", "B"}},
	}

	for _, tt := range tests {
		got := Duplicates(tt.in)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Duplicates(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
