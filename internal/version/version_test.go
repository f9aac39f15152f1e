package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestColoredKeepsText(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	orig := Version
	defer func() { Version = orig }()

	cases := []struct{ in, want string }{
		{"0.1.0-dev", "0.1.0-dev"},
		{"1.2.3", "1.2.3"},
		{"1.2.3+build.7", "1.2.3+build.7"},
		{"nightly", "nightly"},
		{"  ", "dev"},
	}
	for _, c := range cases {
		Version = c.in
		if got := Colored(); got != c.want {
			t.Fatalf("Colored(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestColoredHighlightsComponents(t *testing.T) {
	prev := color.NoColor
	color.NoColor = false
	defer func() { color.NoColor = prev }()

	orig := Version
	defer func() { Version = orig }()
	Version = "1.2.3"
	if got := Colored(); got == "1.2.3" {
		t.Fatalf("expected escape sequences in %q", got)
	}
}
