// Package hotkey parses human-readable accelerator strings such as
// "Ctrl+Shift+I" into a structured modifier set plus key.
package hotkey

import "strings"

// Modifier is a canonical modifier name.
type Modifier string

const (
	Mod   Modifier = "Mod"
	Alt   Modifier = "Alt"
	Shift Modifier = "Shift"
	Meta  Modifier = "Meta"
)

// aliases maps case-folded modifier spellings to their canonical name.
var aliases = map[string]Modifier{
	"ctrl":    Mod,
	"cmd":     Mod,
	"command": Mod,
	"alt":     Alt,
	"option":  Alt,
	"shift":   Shift,
	"meta":    Meta,
}

// Chord is a parsed accelerator.
type Chord struct {
	Modifiers []Modifier
	Key       string
}

// Has reports whether the chord includes the modifier.
func (c *Chord) Has(m Modifier) bool {
	for _, have := range c.Modifiers {
		if have == m {
			return true
		}
	}
	return false
}

func (c *Chord) String() string {
	parts := make([]string, 0, len(c.Modifiers)+1)
	for _, m := range c.Modifiers {
		parts = append(parts, string(m))
	}
	parts = append(parts, c.Key)
	return strings.Join(parts, "+")
}

// Parse parses spec into a chord. The last "+"-separated token is the key
// (trimmed, case-folded); the preceding tokens are modifiers, with
// unrecognized modifier names silently dropped. Any non-empty key name is
// accepted. Parse returns nil, never an error, when the key is empty or no
// modifiers survive: a hotkey with no modifiers would hijack plain
// keystrokes.
func Parse(spec string) *Chord {
	parts := strings.Split(spec, "+")
	key := strings.ToLower(strings.TrimSpace(parts[len(parts)-1]))
	if key == "" {
		return nil
	}

	seen := make(map[Modifier]bool)
	var mods []Modifier
	for _, tok := range parts[:len(parts)-1] {
		m, ok := aliases[strings.ToLower(strings.TrimSpace(tok))]
		if !ok || seen[m] {
			continue
		}
		seen[m] = true
		mods = append(mods, m)
	}
	if len(mods) == 0 {
		return nil
	}
	return &Chord{Modifiers: mods, Key: key}
}
