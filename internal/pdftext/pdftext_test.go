package pdftext

import (
	"strings"
	"testing"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "collapses whitespace", in: "Planted   12000\n\ttrees", want: "Planted 12000 trees"},
		{name: "trims edges", in: "  impact report  ", want: "impact report"},
		{name: "empty", in: "   \n\t ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanText(tt.in); got != tt.want {
				t.Errorf("CleanText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestExtractPagesRejectsGarbage(t *testing.T) {
	_, _, err := ExtractPages(strings.NewReader("this is not a pdf"), 10, 0)
	if err == nil {
		t.Fatal("expected an error for non-PDF input")
	}
}
