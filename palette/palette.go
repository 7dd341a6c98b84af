// Package palette resolves map colors by occurrence within a matchup.
//
// Every map owns an ordered list of variations. The first time a map is played
// it gets variation 1 (its base color); replays step through lighter shades up
// to the last defined variation. Resolution is a pure function of the map name
// and its occurrence count.
package palette

import (
	"hash/fnv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/lixenwraith/barrace/render"
)

// Sentinel map names
const (
	MapUnknown = "Unknown"
	MapPreGame = "Pre-Game"
)

// Sentinel colors
var (
	RgbUnknown = render.RGB{R: 128, G: 128, B: 128}
	RgbPreGame = render.RGB{R: 84, G: 98, B: 122}
)

// MaxVariations is the variation depth of the reference palette
const MaxVariations = 3

// Sequence maps 1-based game numbers to the map played
type Sequence interface {
	MapAt(game int) string
}

// SequenceFunc adapts a function to Sequence
type SequenceFunc func(game int) string

// MapAt implements Sequence
func (f SequenceFunc) MapAt(game int) string { return f(game) }

// Palette holds per-map color variations keyed by normalized map name
// Palette values are immutable; With returns a modified copy
type Palette struct {
	maps  map[string][]render.RGB
	names map[string]string // normalized key -> display name
}

type entry struct {
	name string
	hex  [MaxVariations]string
}

// reference palette, variations ordered 1st, 2nd, 3rd occurrence
var reference = []entry{
	{"World's Edge", [MaxVariations]string{"#e4572e", "#ee8a6a", "#f6bca7"}},
	{"Storm Point", [MaxVariations]string{"#17bebb", "#5ad4d1", "#9de8e6"}},
	{"Broken Moon", [MaxVariations]string{"#8e6ccf", "#ad95dd", "#cdbeeb"}},
	{"Olympus", [MaxVariations]string{"#3a86ff", "#74a9ff", "#adcbff"}},
	{"Kings Canyon", [MaxVariations]string{"#ffbe0b", "#ffd35c", "#ffe8ad"}},
	{"E-District", [MaxVariations]string{"#ff006e", "#ff4d9a", "#ff99c5"}},
}

// Default returns the reference palette
func Default() *Palette {
	p := &Palette{
		maps:  make(map[string][]render.RGB, len(reference)),
		names: make(map[string]string, len(reference)),
	}
	for _, e := range reference {
		vars := make([]render.RGB, 0, MaxVariations)
		for _, h := range e.hex {
			vars = append(vars, render.MustHex(h))
		}
		p.maps[normalize(e.name)] = vars
		p.names[normalize(e.name)] = e.name
	}
	return p
}

// With returns a copy of the palette with the map's variations replaced
// Hex strings failing to parse are reported and the palette is not modified
func (p *Palette) With(mapName string, hexes ...string) (*Palette, error) {
	vars := make([]render.RGB, 0, len(hexes))
	for _, h := range hexes {
		c, err := render.ParseHex(h)
		if err != nil {
			return nil, err
		}
		vars = append(vars, c)
	}

	out := &Palette{
		maps:  make(map[string][]render.RGB, len(p.maps)+1),
		names: make(map[string]string, len(p.names)+1),
	}
	for k, v := range p.maps {
		out.maps[k] = v
	}
	for k, v := range p.names {
		out.names[k] = v
	}
	key := normalize(mapName)
	if len(vars) == 0 {
		delete(out.maps, key)
		delete(out.names, key)
		return out, nil
	}
	out.maps[key] = vars
	out.names[key] = strings.TrimSpace(mapName)
	return out, nil
}

// Maps returns the display names of all defined maps
func (p *Palette) Maps() []string {
	out := make([]string, 0, len(p.names))
	for _, e := range reference {
		if name, ok := p.names[normalize(e.name)]; ok {
			out = append(out, name)
		}
	}
	for k, name := range p.names {
		if !isReference(k) {
			out = append(out, name)
		}
	}
	return out
}

// Variations returns how many variations a map defines, 0 for undefined maps
func (p *Palette) Variations(mapName string) int {
	return len(p.maps[normalize(mapName)])
}

// BaseColor returns the 1st-occurrence color of a map
func (p *Palette) BaseColor(mapName string) render.RGB {
	return p.ColorByOccurrence(mapName, 1)
}

// ColorByOccurrence returns the variation for the n-th play of a map
// n is clamped to [1, variations]; sentinels and blank names never fail
func (p *Palette) ColorByOccurrence(mapName string, n int) render.RGB {
	key := normalize(mapName)
	switch key {
	case "", normalize(MapUnknown):
		return RgbUnknown
	case normalize(MapPreGame):
		return RgbPreGame
	}

	vars, ok := p.maps[key]
	if !ok {
		vars = derived(key)
	}
	if n < 1 {
		n = 1
	}
	if n > len(vars) {
		n = len(vars)
	}
	return vars[n-1]
}

// OccurrenceOf counts plays of mapName in seq[1..game], minimum 1
func OccurrenceOf(mapName string, game int, seq Sequence) int {
	if seq == nil {
		return 1
	}
	key := normalize(mapName)
	count := 0
	for g := 1; g <= game; g++ {
		if normalize(seq.MapAt(g)) == key {
			count++
		}
	}
	if count < 1 {
		return 1
	}
	return count
}

// ColorForGame resolves the color of game n given the sequence
func (p *Palette) ColorForGame(mapName string, game int, seq Sequence) render.RGB {
	return p.ColorByOccurrence(mapName, OccurrenceOf(mapName, game, seq))
}

// derived builds variations for a map outside the palette from a hash of its name
func derived(key string) []render.RGB {
	h := fnv.New32a()
	h.Write([]byte(key))
	hue := float64(h.Sum32()%360)
	vars := make([]render.RGB, MaxVariations)
	for i := range vars {
		// Rising lightness, falling chroma per replay
		l := 0.55 + 0.12*float64(i)
		c := 0.55 - 0.12*float64(i)
		vars[i] = render.FromColorful(colorful.Hcl(hue, c, l))
	}
	return vars
}

func isReference(key string) bool {
	for _, e := range reference {
		if normalize(e.name) == key {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
