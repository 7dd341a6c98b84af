package score

import (
	"log"
	"sort"
	"strings"

	"github.com/lixenwraith/barrace/palette"
	"github.com/lixenwraith/barrace/render"
)

// MapLookup resolves the map of a game within a matchup
// ok is false when the matchup has no registered sequence
type MapLookup interface {
	MapForGame(matchupID string, n int) (name string, ok bool)
}

// Dataset is the fully precomputed, immutable result of one load
type Dataset struct {
	MatchupID  string
	Convention Convention

	maxGames   int
	timelines  []*TeamTimeline // input order
	byTeam     map[string]*TeamTimeline
	maps       []string     // index = game number, [0] unused
	colors     []render.RGB // index = game number, [0] unused
	maxScoreAt []int        // len == maxGames+1
	frames     []Frame      // unfiltered, len == maxGames+1
	missingSeq bool
	pal        *palette.Palette
}

// sequence adapts the dataset's resolved maps to palette.Sequence
type sequence []string

func (s sequence) MapAt(game int) string {
	if game < 1 || game >= len(s) {
		return palette.MapUnknown
	}
	return s[game]
}

// Build precomputes every timeline, frame and axis ceiling
// O(teams × games) once; frame and ceiling lookups are O(1) afterwards
func Build(table Table, lookup MapLookup, matchupID string, pal *palette.Palette) (*Dataset, error) {
	if len(table.Rows) == 0 {
		return nil, &DataLoadError{Reason: "source has no rows"}
	}
	recs, maxGames, err := table.Records()
	if err != nil {
		return nil, &DataLoadError{Reason: "unparseable header", Err: err}
	}
	if len(recs) == 0 {
		return nil, &DataLoadError{Reason: "no valid team rows"}
	}
	if pal == nil {
		pal = palette.Default()
	}

	ds := &Dataset{
		MatchupID:  matchupID,
		Convention: Detect(table.Header),
		maxGames:   maxGames,
		timelines:  make([]*TeamTimeline, 0, len(recs)),
		byTeam:     make(map[string]*TeamTimeline, len(recs)),
		maps:       make([]string, maxGames+1),
		colors:     make([]render.RGB, maxGames+1),
		maxScoreAt: make([]int, maxGames+1),
		frames:     make([]Frame, maxGames+1),
		pal:        pal,
	}

	ds.resolveMaps(lookup, pal)

	for _, rec := range recs {
		tl := ds.buildTimeline(rec)
		ds.timelines = append(ds.timelines, tl)
		ds.byTeam[tl.Team] = tl
	}

	// frame i hides all[i:], so every frame shares one backing array
	all := make([]int, maxGames)
	for g := range all {
		all[g] = g + 1
	}

	ds.maxScoreAt[0] = PlacementRange
	for i := 0; i <= maxGames; i++ {
		ds.frames[i] = ds.buildFrame(i, all[i:])
		if i > 0 {
			ds.maxScoreAt[i] = Ceiling(ds.frames[i].MaxCumulative())
		}
	}
	return ds, nil
}

func (ds *Dataset) resolveMaps(lookup MapLookup, pal *palette.Palette) {
	ds.maps[0] = palette.MapPreGame
	ds.colors[0] = pal.BaseColor(palette.MapPreGame)
	ds.missingSeq = !hasSequence(lookup, ds.MatchupID)

	for g := 1; g <= ds.maxGames; g++ {
		ds.maps[g] = ds.mapName(lookup, g)
	}

	seq := sequence(ds.maps)
	for g := 1; g <= ds.maxGames; g++ {
		ds.colors[g] = pal.ColorForGame(ds.maps[g], g, seq)
	}
}

func hasSequence(lookup MapLookup, matchupID string) bool {
	if lookup == nil {
		return false
	}
	_, ok := lookup.MapForGame(matchupID, 1)
	return ok
}

func (ds *Dataset) mapName(lookup MapLookup, g int) string {
	if ds.missingSeq {
		return palette.MapUnknown
	}
	if m, ok := lookup.MapForGame(ds.MatchupID, g); ok && strings.TrimSpace(m) != "" {
		return m
	}
	return palette.MapUnknown
}

// resolvedWith reports whether the dataset's maps and colors still match
// what Build would produce from lookup and pal, O(games)
func (ds *Dataset) resolvedWith(lookup MapLookup, pal *palette.Palette) bool {
	if ds.pal != pal || ds.missingSeq == hasSequence(lookup, ds.MatchupID) {
		return false
	}
	for g := 1; g <= ds.maxGames; g++ {
		if ds.maps[g] != ds.mapName(lookup, g) {
			return false
		}
	}
	return true
}

func (ds *Dataset) buildTimeline(rec Record) *TeamTimeline {
	tl := &TeamTimeline{
		Team:       rec.Team,
		Games:      make([]GameContribution, ds.maxGames),
		GameByGame: make([]Snapshot, ds.maxGames+1),
	}

	cum := 0
	for g := 1; g <= ds.maxGames; g++ {
		p, k := rec.Placement[g-1], rec.Kills[g-1]
		tl.Games[g-1] = GameContribution{
			GameNumber:      g,
			PlacementPoints: p,
			KillPoints:      k,
			Points:          p + k,
			StartOffset:     cum,
			MapName:         ds.maps[g],
			Color:           ds.colors[g],
		}
		cum += p + k
	}
	tl.TotalScore = cum

	if rec.HasTotal && rec.Total != cum {
		log.Printf("score: %s: total column %d disagrees with game sum %d, using game sum", rec.Team, rec.Total, cum)
	}

	tl.GameByGame[0] = Snapshot{VisibleGames: tl.Games[:0:0]}
	for i := 1; i <= ds.maxGames; i++ {
		visible := tl.Games[:i:i]
		tl.GameByGame[i] = Snapshot{
			CumulativeScore: visible[i-1].StartOffset + visible[i-1].Points,
			VisibleGames:    visible,
		}
	}
	return tl
}

func (ds *Dataset) buildFrame(index int, hidden []int) Frame {
	entries := make([]FrameEntry, len(ds.timelines))
	for i, tl := range ds.timelines {
		snap := tl.GameByGame[index]
		entries[i] = FrameEntry{
			Team:            tl.Team,
			VisibleGames:    snap.VisibleGames,
			CumulativeScore: snap.CumulativeScore,
			HiddenGames:     hidden,
		}
	}
	sortEntries(entries, index > 0)
	return Frame{Index: index, Entries: entries}
}

// frameFiltered recomputes offsets over filter ∩ [1..index], O(teams × games)
func (ds *Dataset) frameFiltered(index int, filter FilterSet) Frame {
	entries := make([]FrameEntry, len(ds.timelines))
	included := 0
	for g := 1; g <= index; g++ {
		if filter.Contains(g) {
			included++
		}
	}

	for i, tl := range ds.timelines {
		visible := make([]GameContribution, 0, included)
		hidden := make([]int, 0, ds.maxGames-included)
		offset := 0
		for g := 1; g <= ds.maxGames; g++ {
			if g > index || !filter.Contains(g) {
				hidden = append(hidden, g)
				continue
			}
			c := tl.Games[g-1]
			c.StartOffset = offset
			offset += c.Points
			visible = append(visible, c)
		}
		entries[i] = FrameEntry{
			Team:            tl.Team,
			VisibleGames:    visible,
			CumulativeScore: offset,
			HiddenGames:     hidden,
		}
	}
	sortEntries(entries, included > 0)
	return Frame{Index: index, Filtered: true, Entries: entries}
}

// sortEntries orders by cumulative score descending once games are visible,
// alphabetically before; ties keep input order
func sortEntries(entries []FrameEntry, byScore bool) {
	if byScore {
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].CumulativeScore > entries[j].CumulativeScore
		})
		return
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return strings.ToLower(entries[i].Team) < strings.ToLower(entries[j].Team)
	})
}

// MaxGames returns the number of games in the dataset
func (ds *Dataset) MaxGames() int { return ds.maxGames }

// MissingSequence reports whether maps degraded to Unknown
func (ds *Dataset) MissingSequence() bool { return ds.missingSeq }

func (ds *Dataset) clampIndex(index int) int {
	return min(max(index, 0), ds.maxGames)
}
