package score

import (
	"slices"

	"github.com/lixenwraith/barrace/render"
)

// PlacementRange is the axis floor: one full placement-points range
const PlacementRange = 12

// Record is one raw team row in the wide representation
// Placement and Kills are indexed by game number - 1
type Record struct {
	Team      string
	Placement []int
	Kills     []int
	Total     int
	HasTotal  bool
}

// GameContribution is one game's share of a team's bar
type GameContribution struct {
	GameNumber      int
	PlacementPoints int
	KillPoints      int
	Points          int
	StartOffset     int // cumulative score before this game
	MapName         string
	Color           render.RGB
}

// Snapshot is a team's state at a playback index
type Snapshot struct {
	CumulativeScore int
	VisibleGames    []GameContribution
}

// TeamTimeline is a team's complete precomputed history, immutable once built
type TeamTimeline struct {
	Team       string
	Games      []GameContribution // len == maxGames
	TotalScore int
	GameByGame []Snapshot // len == maxGames+1, index 0 is all-zero
}

// FrameEntry is one team's row in a Frame
type FrameEntry struct {
	Team            string
	VisibleGames    []GameContribution
	CumulativeScore int
	HiddenGames     []int // game numbers not revealed at this index
}

// Frame is the ordered render input at an index
// Frames returned by the store share storage with the dataset and are read-only
type Frame struct {
	Index    int
	Filtered bool
	Entries  []FrameEntry
}

// Teams returns team names in frame order
func (f Frame) Teams() []string {
	out := make([]string, len(f.Entries))
	for i, e := range f.Entries {
		out[i] = e.Team
	}
	return out
}

// Top returns up to n leading team names
func (f Frame) Top(n int) []string {
	teams := f.Teams()
	if n < len(teams) {
		teams = teams[:n]
	}
	return teams
}

// MaxCumulative returns the highest cumulative score in the frame
func (f Frame) MaxCumulative() int {
	m := 0
	for _, e := range f.Entries {
		m = max(m, e.CumulativeScore)
	}
	return m
}

// FilterSet is an ordered subset of game numbers, empty means no filter
type FilterSet []int

// Active reports whether the filter restricts anything
func (f FilterSet) Active() bool {
	return len(f) > 0
}

// Contains reports whether game g passes the filter
func (f FilterSet) Contains(g int) bool {
	return !f.Active() || slices.Contains(f, g)
}

// normalizeFilter drops out-of-range and duplicate games, sorts ascending
func normalizeFilter(games []int, maxGames int) FilterSet {
	out := make(FilterSet, 0, len(games))
	for _, g := range games {
		if g < 1 || g > maxGames || slices.Contains(out, g) {
			continue
		}
		out = append(out, g)
	}
	slices.Sort(out)
	if len(out) == 0 {
		return nil
	}
	return out
}

// Ceiling computes the axis ceiling for a cumulative maximum:
// ceil(1.1 × max) floored at PlacementRange, integer math avoids float drift
func Ceiling(maxCumulative int) int {
	c := (maxCumulative*11 + 9) / 10
	return max(c, PlacementRange)
}
