// Package identity resolves team display identity: logo URLs, fallback glyphs and badge colors.
package identity

import (
	"fmt"
	"hash/fnv"
	"os"
	"sort"
	"strings"
	"unicode"

	"github.com/BurntSushi/toml"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/lixenwraith/barrace/render"
)

// Team is one directory entry
type Team struct {
	Name  string `toml:"name"`
	Short string `toml:"short"`
	Logo  string `toml:"logo"`
	Color string `toml:"color"`
}

// Directory maps team names to identity, lookups are case-insensitive
// A nil Directory answers with derived defaults for every team
type Directory struct {
	teams map[string]Team
}

// New builds a directory from entries, later duplicates win
func New(teams ...Team) *Directory {
	d := &Directory{teams: make(map[string]Team, len(teams))}
	for _, t := range teams {
		if key := normalize(t.Name); key != "" {
			d.teams[key] = t
		}
	}
	return d
}

// Parse decodes a directory from TOML:
//
//	[[team]]
//	name = "Alliance"
//	short = "ALL"
//	logo = "https://example.org/alliance.png"
func Parse(data string) (*Directory, error) {
	var f struct {
		Team []Team `toml:"team"`
	}
	if _, err := toml.Decode(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse team directory: %w", err)
	}
	for i, t := range f.Team {
		if strings.TrimSpace(t.Name) == "" {
			return nil, fmt.Errorf("team %d: missing name", i+1)
		}
		if t.Color != "" {
			if _, err := colorful.Hex(t.Color); err != nil {
				return nil, fmt.Errorf("team %s: invalid color %q: %w", t.Name, t.Color, err)
			}
		}
	}
	return New(f.Team...), nil
}

// LoadFile reads a directory from a TOML file
func LoadFile(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read team directory: %w", err)
	}
	return Parse(string(data))
}

func (d *Directory) lookup(team string) (Team, bool) {
	if d == nil {
		return Team{}, false
	}
	t, ok := d.teams[normalize(team)]
	return t, ok
}

// LogoURL returns the configured logo location, empty when none
func (d *Directory) LogoURL(team string) string {
	t, _ := d.lookup(team)
	return strings.TrimSpace(t.Logo)
}

// FallbackGlyph returns the configured short tag or the team's initials
func (d *Directory) FallbackGlyph(team string) string {
	if t, ok := d.lookup(team); ok && strings.TrimSpace(t.Short) != "" {
		return strings.TrimSpace(t.Short)
	}
	return Initials(team)
}

// BadgeColor returns the configured color or a hue derived from the name
func (d *Directory) BadgeColor(team string) render.RGB {
	if t, ok := d.lookup(team); ok && t.Color != "" {
		if c, err := render.ParseHex(t.Color); err == nil {
			return c
		}
	}
	h := fnv.New32a()
	h.Write([]byte(normalize(team)))
	hue := float64(h.Sum32() % 360)
	return render.FromColorful(colorful.Hcl(hue, 0.45, 0.45).Clamped())
}

// Teams returns all entries sorted by name
func (d *Directory) Teams() []Team {
	if d == nil {
		return nil
	}
	out := make([]Team, 0, len(d.teams))
	for _, t := range d.teams {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return normalize(out[i].Name) < normalize(out[j].Name) })
	return out
}

// Initials returns up to two uppercase letters: first letters of the first two
// words, or the first two letters of a single word
func Initials(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return unicode.IsSpace(r) || r == '-' || r == '_' || r == '.'
	})
	var out []rune
	switch len(words) {
	case 0:
		return "?"
	case 1:
		for _, r := range words[0] {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				out = append(out, unicode.ToUpper(r))
			}
			if len(out) == 2 {
				break
			}
		}
	default:
		for _, w := range words[:2] {
			for _, r := range w {
				out = append(out, unicode.ToUpper(r))
				break
			}
		}
	}
	if len(out) == 0 {
		return "?"
	}
	return string(out)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
