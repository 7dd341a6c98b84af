// Package mapseq holds the per-matchup map rotation injected into the score store.
package mapseq

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/lixenwraith/barrace/palette"
)

// Sequence is the map rotation of one matchup, keyed by 1-based game number
type Sequence struct {
	MatchupID string
	Maps      map[int]string
}

// MapAt implements palette.Sequence, unknown games resolve to palette.MapUnknown
func (s *Sequence) MapAt(game int) string {
	if s == nil {
		return palette.MapUnknown
	}
	if m, ok := s.Maps[game]; ok && strings.TrimSpace(m) != "" {
		return m
	}
	return palette.MapUnknown
}

// Games returns the defined game numbers in ascending order
func (s *Sequence) Games() []int {
	out := make([]int, 0, len(s.Maps))
	for g := range s.Maps {
		out = append(out, g)
	}
	sort.Ints(out)
	return out
}

// Registry is a read-only lookup of sequences by matchup ID
type Registry struct {
	seqs map[string]*Sequence
}

// NewRegistry builds a registry from sequences, later duplicates win
func NewRegistry(seqs ...*Sequence) *Registry {
	r := &Registry{seqs: make(map[string]*Sequence, len(seqs))}
	for _, s := range seqs {
		if s == nil {
			continue
		}
		r.seqs[s.MatchupID] = s
	}
	return r
}

// Lookup returns the sequence of a matchup
func (r *Registry) Lookup(matchupID string) (*Sequence, bool) {
	if r == nil {
		return nil, false
	}
	s, ok := r.seqs[matchupID]
	return s, ok
}

// MapForGame returns the map of game n in a matchup
func (r *Registry) MapForGame(matchupID string, n int) (string, bool) {
	s, ok := r.Lookup(matchupID)
	if !ok {
		return palette.MapUnknown, false
	}
	return s.MapAt(n), true
}

// Matchups returns registered matchup IDs sorted
func (r *Registry) Matchups() []string {
	out := make([]string, 0, len(r.seqs))
	for id := range r.seqs {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// fileFormat is the on-disk TOML layout
//
//	[[matchup]]
//	id = "finals-day-1"
//	maps = ["World's Edge", "World's Edge", "Storm Point"]
//
//	[matchup.games]
//	"4" = "Broken Moon"
type fileFormat struct {
	Matchup []struct {
		ID    string            `toml:"id"`
		Maps  []string          `toml:"maps"`
		Games map[string]string `toml:"games"`
	} `toml:"matchup"`
}

// Parse decodes a registry from TOML data
func Parse(data string) (*Registry, error) {
	var f fileFormat
	if _, err := toml.Decode(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse map sequences: %w", err)
	}

	seqs := make([]*Sequence, 0, len(f.Matchup))
	for i, m := range f.Matchup {
		id := strings.TrimSpace(m.ID)
		if id == "" {
			return nil, fmt.Errorf("matchup %d: missing id", i+1)
		}
		s := &Sequence{MatchupID: id, Maps: make(map[int]string, len(m.Maps)+len(m.Games))}
		for g, name := range m.Maps {
			s.Maps[g+1] = name
		}
		for k, name := range m.Games {
			g, err := strconv.Atoi(strings.TrimSpace(k))
			if err != nil || g < 1 {
				return nil, fmt.Errorf("matchup %s: invalid game number %q", id, k)
			}
			s.Maps[g] = name
		}
		seqs = append(seqs, s)
	}
	return NewRegistry(seqs...), nil
}

// LoadFile reads a registry from a TOML file
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read map sequences: %w", err)
	}
	return Parse(string(data))
}
