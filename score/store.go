package score

import (
	"log"

	"github.com/lixenwraith/barrace/palette"
	"github.com/lixenwraith/barrace/render"
)

// Store owns the active dataset and filter of one chart instance
// Not safe for concurrent use; the playback controller is its single owner
type Store struct {
	pal    *palette.Palette
	cache  *Cache
	ds     *Dataset
	filter FilterSet
	warned map[string]bool
}

// NewStore creates an empty store; cache may be nil
func NewStore(pal *palette.Palette, cache *Cache) *Store {
	if pal == nil {
		pal = palette.Default()
	}
	return &Store{
		pal:    pal,
		cache:  cache,
		warned: make(map[string]bool),
	}
}

// Load builds (or fetches from cache) the dataset for a matchup and activates it
// The cache key covers matchup and table content only; a cached dataset whose
// maps or palette no longer match lookup and the store palette is rebuilt
// On failure the previous dataset and filter are kept
func (s *Store) Load(table Table, lookup MapLookup, matchupID string) error {
	var (
		ds  *Dataset
		key string
		hit bool
	)
	if s.cache != nil {
		key = CacheKey(matchupID, table)
		ds, hit = s.cache.Get(key)
		if hit && !ds.resolvedWith(lookup, s.pal) {
			log.Printf("score: cached dataset for %q was built with other maps or palette, rebuilding", matchupID)
			ds, hit = nil, false
		}
	}
	if !hit {
		built, err := Build(table, lookup, matchupID, s.pal)
		if err != nil {
			return err
		}
		ds = built
		if s.cache != nil {
			s.cache.Add(key, ds)
		}
	}

	if ds.MissingSequence() && !s.warned[matchupID] {
		s.warned[matchupID] = true
		log.Printf("score: warning: %v", &MissingMapSequenceError{MatchupID: matchupID})
	}

	s.ds = ds
	s.filter = nil
	log.Printf("score: loaded matchup %q: %d teams, %d games (%s, cached=%t)",
		matchupID, len(ds.timelines), ds.maxGames, ds.Convention, hit)
	return nil
}

// Loaded reports whether a dataset is active
func (s *Store) Loaded() bool {
	return s.ds != nil
}

// Dataset returns the active dataset, nil before Load
func (s *Store) Dataset() *Dataset {
	return s.ds
}

// Palette returns the palette used for map colors
func (s *Store) Palette() *palette.Palette {
	return s.pal
}

// MatchupID returns the active matchup
func (s *Store) MatchupID() string {
	if s.ds == nil {
		return ""
	}
	return s.ds.MatchupID
}

// MaxGames returns the game count of the active dataset
func (s *Store) MaxGames() int {
	if s.ds == nil {
		return 0
	}
	return s.ds.maxGames
}

// Teams returns team names in input order
func (s *Store) Teams() []string {
	if s.ds == nil {
		return nil
	}
	out := make([]string, len(s.ds.timelines))
	for i, tl := range s.ds.timelines {
		out[i] = tl.Team
	}
	return out
}

// Timeline returns a team's precomputed timeline
func (s *Store) Timeline(team string) (*TeamTimeline, bool) {
	if s.ds == nil {
		return nil, false
	}
	tl, ok := s.ds.byTeam[team]
	return tl, ok
}

// Frame returns the frame at index under the active filter
func (s *Store) Frame(index int) Frame {
	return s.FrameWith(index, s.filter)
}

// FrameWith returns the frame at index under an explicit filter
// Unfiltered frames are precomputed; filtered ones are recomputed per call
func (s *Store) FrameWith(index int, filter FilterSet) Frame {
	if s.ds == nil {
		return Frame{}
	}
	index = s.ds.clampIndex(index)
	if !filter.Active() {
		return s.ds.frames[index]
	}
	return s.ds.frameFiltered(index, filter)
}

// SetFilter replaces the filter; invalid and duplicate games are dropped
// An empty result clears the filter
func (s *Store) SetFilter(games []int) {
	s.filter = normalizeFilter(games, s.MaxGames())
}

// ClearFilter removes the filter
func (s *Store) ClearFilter() {
	s.filter = nil
}

// Filter returns a copy of the active filter
func (s *Store) Filter() FilterSet {
	if s.filter == nil {
		return nil
	}
	return append(FilterSet(nil), s.filter...)
}

// MapForGame returns the map played in game n
func (s *Store) MapForGame(n int) string {
	if s.ds == nil || n < 0 || n > s.ds.maxGames {
		return palette.MapUnknown
	}
	return s.ds.maps[n]
}

// ColorForGame returns the color of a map as played in game n
func (s *Store) ColorForGame(mapName string, n int) render.RGB {
	var seq palette.Sequence
	if s.ds != nil {
		seq = sequence(s.ds.maps)
	}
	return s.pal.ColorForGame(mapName, n, seq)
}

// MaxScoreAt returns the precomputed axis ceiling at index
func (s *Store) MaxScoreAt(index int) int {
	if s.ds == nil {
		return PlacementRange
	}
	return s.ds.maxScoreAt[s.ds.clampIndex(index)]
}

// CeilingFor returns the axis ceiling fitted to a frame
// Equals MaxScoreAt for unfiltered frames past index 0
func (s *Store) CeilingFor(f Frame) int {
	if f.Index == 0 {
		return PlacementRange
	}
	return Ceiling(f.MaxCumulative())
}

// Legend returns (game, map, color) for every game of the dataset
func (s *Store) Legend() []LegendItem {
	if s.ds == nil {
		return nil
	}
	out := make([]LegendItem, 0, s.ds.maxGames)
	for g := 1; g <= s.ds.maxGames; g++ {
		out = append(out, LegendItem{Game: g, Map: s.ds.maps[g], Color: s.ds.colors[g]})
	}
	return out
}

// LegendItem maps a game number to its map and color
type LegendItem struct {
	Game  int
	Map   string
	Color render.RGB
}
