// Package theme names the visual variants a capture can be taken in and
// holds the best-effort techniques used to push a page into one of them.
package theme

import (
	"fmt"
	"strings"
)

// Theme is a named visual variant of a target page.
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// All returns the supported themes in capture order.
func All() []Theme {
	return []Theme{Light, Dark}
}

// Parse converts s into a Theme, ignoring case and surrounding space.
func Parse(s string) (Theme, error) {
	t := Theme(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown theme %q (want light|dark)", s)
	}
	return t, nil
}

// Valid reports whether t is a supported theme.
func (t Theme) Valid() bool {
	return t == Light || t == Dark
}

// Opposite returns the other supported theme.
func (t Theme) Opposite() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

func (t Theme) String() string { return string(t) }
