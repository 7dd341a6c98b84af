package score

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/lixenwraith/barrace/mapseq"
	"github.com/lixenwraith/barrace/palette"
)

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name  string
		table Table
	}{
		{"no rows", Table{Header: []string{"Team", "Game 1 P", "Game 1 K"}}},
		{"unknown header", Table{Header: []string{"x", "y"}, Rows: [][]string{{"1", "2"}}}},
		{"no valid team rows", Table{
			Header: []string{"Team", "Game 1 P", "Game 1 K"},
			Rows:   [][]string{{"", "1", "1"}, {"A", "bad", "1"}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			captureLog(t)
			s := NewStore(nil, nil)
			err := s.Load(tt.table, nil, "m")
			if err == nil {
				t.Fatal("Expected load error")
			}
			if !errors.Is(err, ErrDataLoad) {
				t.Errorf("Expected ErrDataLoad, got %v", err)
			}
			var dle *DataLoadError
			if !errors.As(err, &dle) {
				t.Errorf("Expected *DataLoadError, got %T", err)
			}
			if s.Loaded() {
				t.Error("Expected no dataset after failed load")
			}
		})
	}
}

func TestFailedReloadKeepsPreviousDataset(t *testing.T) {
	captureLog(t)
	s := mustLoad(t, scenarioTable(), nil, "m")
	if err := s.Load(Table{}, nil, "other"); err == nil {
		t.Fatal("Expected error")
	}
	if s.MatchupID() != "m" || s.MaxGames() != 2 {
		t.Errorf("Expected previous dataset to stay active, got %q/%d", s.MatchupID(), s.MaxGames())
	}
}

func TestCumulativeRecurrence(t *testing.T) {
	captureLog(t)
	s := mustLoad(t, sixGameTable(), nil, "m")
	for _, team := range s.Teams() {
		tl, ok := s.Timeline(team)
		if !ok {
			t.Fatalf("Missing timeline for %s", team)
		}
		if tl.GameByGame[0].CumulativeScore != 0 || len(tl.GameByGame[0].VisibleGames) != 0 {
			t.Errorf("%s: expected all-zero snapshot at index 0", team)
		}
		for g := 1; g <= s.MaxGames(); g++ {
			prev := tl.GameByGame[g-1].CumulativeScore
			got := tl.GameByGame[g].CumulativeScore
			pts := tl.Games[g-1].Points
			if got != prev+pts {
				t.Errorf("%s game %d: expected %d+%d, got %d", team, g, prev, pts, got)
			}
			if tl.Games[g-1].StartOffset != prev {
				t.Errorf("%s game %d: expected start offset %d, got %d", team, g, prev, tl.Games[g-1].StartOffset)
			}
			if len(tl.GameByGame[g].VisibleGames) != g {
				t.Errorf("%s game %d: expected %d visible games", team, g, g)
			}
		}
		if tl.TotalScore != tl.GameByGame[s.MaxGames()].CumulativeScore {
			t.Errorf("%s: total %d disagrees with final snapshot", team, tl.TotalScore)
		}
	}
}

func TestFrameOrdering(t *testing.T) {
	captureLog(t)
	s := mustLoad(t, sixGameTable(), nil, "m")

	f0 := s.Frame(0)
	want := []string{"alpha", "Bravo", "echo", "Kilo", "Mango", "Zeta"}
	if !reflect.DeepEqual(f0.Teams(), want) {
		t.Errorf("Expected alphabetical frame 0 %v, got %v", want, f0.Teams())
	}
	for _, e := range f0.Entries {
		if e.CumulativeScore != 0 {
			t.Errorf("Expected zero score at index 0 for %s", e.Team)
		}
		if len(e.HiddenGames) != 6 {
			t.Errorf("Expected all 6 games hidden at index 0, got %v", e.HiddenGames)
		}
	}

	for g := 1; g <= s.MaxGames(); g++ {
		f := s.Frame(g)
		for i := 1; i < len(f.Entries); i++ {
			if f.Entries[i-1].CumulativeScore < f.Entries[i].CumulativeScore {
				t.Errorf("Frame %d not descending at %d: %d < %d", g, i,
					f.Entries[i-1].CumulativeScore, f.Entries[i].CumulativeScore)
			}
		}
		if len(f.Entries[0].HiddenGames) != s.MaxGames()-g {
			t.Errorf("Frame %d: expected %d hidden games, got %v", g, s.MaxGames()-g, f.Entries[0].HiddenGames)
		}
	}
}

func TestFramesShareHiddenBacking(t *testing.T) {
	captureLog(t)
	s := mustLoad(t, sixGameTable(), nil, "m")

	first := s.Frame(0).Entries[0].HiddenGames
	if !reflect.DeepEqual(first, []int{1, 2, 3, 4, 5, 6}) {
		t.Fatalf("Expected games 1..6 hidden at index 0, got %v", first)
	}
	for g := 1; g < s.MaxGames(); g++ {
		f := s.Frame(g)
		for _, e := range f.Entries {
			if &e.HiddenGames[0] != &first[g] {
				t.Errorf("Frame %d (%s): expected hidden games to alias the shared slice", g, e.Team)
			}
			if e.HiddenGames[0] != g+1 {
				t.Errorf("Frame %d: expected first hidden game %d, got %d", g, g+1, e.HiddenGames[0])
			}
		}
	}
	if last := s.Frame(s.MaxGames()).Entries[0].HiddenGames; len(last) != 0 {
		t.Errorf("Expected nothing hidden at the last frame, got %v", last)
	}
}

func TestTieKeepsInputOrder(t *testing.T) {
	s := mustLoad(t, scenarioTable(), nil, "m")

	f1 := s.Frame(1)
	if got := f1.Teams(); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Errorf("Expected [A B] at game 1, got %v", got)
	}
	if f1.Entries[0].CumulativeScore != 12 || f1.Entries[1].CumulativeScore != 5 {
		t.Errorf("Expected scores 12/5, got %d/%d", f1.Entries[0].CumulativeScore, f1.Entries[1].CumulativeScore)
	}

	f2 := s.Frame(2)
	if got := f2.Teams(); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Errorf("Expected tie to keep [A B], got %v", got)
	}
	if f2.Entries[0].CumulativeScore != 21 || f2.Entries[1].CumulativeScore != 21 {
		t.Errorf("Expected 21/21, got %d/%d", f2.Entries[0].CumulativeScore, f2.Entries[1].CumulativeScore)
	}
}

func TestMaxScoreAt(t *testing.T) {
	s := mustLoad(t, scenarioTable(), nil, "m")
	tests := []struct {
		index int
		want  int
	}{
		{-1, 12},
		{0, 12},
		{1, 14}, // ceil(1.1 × 12) = 14
		{2, 24}, // ceil(1.1 × 21) = 24
		{9, 24},
	}
	for _, tt := range tests {
		if got := s.MaxScoreAt(tt.index); got != tt.want {
			t.Errorf("MaxScoreAt(%d): expected %d, got %d", tt.index, tt.want, got)
		}
	}
}

func TestCeiling(t *testing.T) {
	tests := []struct{ in, want int }{
		{0, 12}, {10, 12}, {11, 13}, {20, 22}, {21, 24}, {100, 110}, {101, 112},
	}
	for _, tt := range tests {
		if got := Ceiling(tt.in); got != tt.want {
			t.Errorf("Ceiling(%d): expected %d, got %d", tt.in, tt.want, got)
		}
	}
}

func TestFilterThenClearRestoresFrames(t *testing.T) {
	captureLog(t)
	s := mustLoad(t, sixGameTable(), nil, "m")

	unfiltered := make([]Frame, s.MaxGames()+1)
	for g := range unfiltered {
		unfiltered[g] = s.Frame(g)
	}

	s.SetFilter([]int{3, 5})
	for g := 0; g <= s.MaxGames(); g++ {
		f := s.Frame(g)
		if !f.Filtered {
			t.Fatalf("Expected filtered frame at %d", g)
		}
		for _, e := range f.Entries {
			for _, c := range e.VisibleGames {
				if c.GameNumber != 3 && c.GameNumber != 5 {
					t.Errorf("Frame %d: unexpected game %d visible", g, c.GameNumber)
				}
				if c.GameNumber > g {
					t.Errorf("Frame %d: game %d revealed early", g, c.GameNumber)
				}
			}
		}
	}

	s.ClearFilter()
	for g := 0; g <= s.MaxGames(); g++ {
		if !reflect.DeepEqual(s.Frame(g), unfiltered[g]) {
			t.Errorf("Frame %d differs after clearing filter", g)
		}
	}
}

func TestFilteredOffsetsRecomputed(t *testing.T) {
	s := mustLoad(t, scenarioTable(), nil, "m")
	s.SetFilter([]int{2})

	f := s.Frame(2)
	if got := f.Teams(); !reflect.DeepEqual(got, []string{"B", "A"}) {
		t.Fatalf("Expected [B A] on game 2 alone, got %v", got)
	}
	b := f.Entries[0]
	if b.CumulativeScore != 16 || len(b.VisibleGames) != 1 {
		t.Fatalf("Expected B with 16 from one game, got %+v", b)
	}
	if b.VisibleGames[0].StartOffset != 0 || b.VisibleGames[0].Points != 16 {
		t.Errorf("Expected game 2 to start at 0 with its own 16 points, got %+v", b.VisibleGames[0])
	}
	if !reflect.DeepEqual(b.HiddenGames, []int{1}) {
		t.Errorf("Expected game 1 hidden, got %v", b.HiddenGames)
	}

	// Base timelines untouched
	tl, _ := s.Timeline("B")
	if tl.Games[1].StartOffset != 5 {
		t.Errorf("Expected base start offset 5, got %d", tl.Games[1].StartOffset)
	}

	// Filter beyond index shows nothing and falls back to alphabetical
	f1 := s.Frame(1)
	if got := f1.Teams(); !reflect.DeepEqual(got, []string{"A", "B"}) || f1.MaxCumulative() != 0 {
		t.Errorf("Expected empty alphabetical frame, got %v (max %d)", got, f1.MaxCumulative())
	}
}

func TestSetFilterNormalizes(t *testing.T) {
	s := mustLoad(t, scenarioTable(), nil, "m")

	s.SetFilter([]int{2, 0, 2, 7, 1})
	if got := s.Filter(); !reflect.DeepEqual(got, FilterSet{1, 2}) {
		t.Errorf("Expected [1 2], got %v", got)
	}

	s.SetFilter([]int{9})
	if s.Filter().Active() {
		t.Errorf("Expected empty filter to clear, got %v", s.Filter())
	}
}

func TestMissingSequenceWarnsOnce(t *testing.T) {
	logs := captureLog(t)
	reg := mapseq.NewRegistry(&mapseq.Sequence{MatchupID: "known", Maps: map[int]string{1: "Olympus"}})
	s := NewStore(nil, nil)

	for i := 0; i < 3; i++ {
		if err := s.Load(scenarioTable(), reg, "unknown"); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}
	if n := strings.Count(logs.String(), "no map sequence"); n != 1 {
		t.Errorf("Expected exactly one warning, got %d:\n%s", n, logs.String())
	}
	for g := 1; g <= 2; g++ {
		if m := s.MapForGame(g); m != palette.MapUnknown {
			t.Errorf("Game %d: expected Unknown map, got %q", g, m)
		}
	}
	tl, _ := s.Timeline("A")
	if tl.Games[0].Color != palette.RgbUnknown {
		t.Errorf("Expected neutral color, got %s", tl.Games[0].Color.Hex())
	}
}

func TestMapColorsFollowOccurrence(t *testing.T) {
	captureLog(t)
	reg := mapseq.NewRegistry(&mapseq.Sequence{
		MatchupID: "finals",
		Maps:      map[int]string{1: "Olympus", 2: "Storm Point", 3: "Olympus", 4: "Olympus", 5: "Olympus"},
	})
	s := mustLoad(t, sixGameTable(), reg, "finals")
	pal := s.Palette()

	tl, _ := s.Timeline("Zeta")
	wants := []struct {
		game int
		m    string
		occ  int
	}{
		{1, "Olympus", 1},
		{2, "Storm Point", 1},
		{3, "Olympus", 2},
		{4, "Olympus", 3},
		{5, "Olympus", 3},
		{6, palette.MapUnknown, 1},
	}
	for _, w := range wants {
		c := tl.Games[w.game-1]
		if c.MapName != w.m {
			t.Errorf("Game %d: expected map %q, got %q", w.game, w.m, c.MapName)
		}
		if want := pal.ColorByOccurrence(w.m, w.occ); c.Color != want {
			t.Errorf("Game %d: expected %s, got %s", w.game, want.Hex(), c.Color.Hex())
		}
		if s.ColorForGame(w.m, w.game) != c.Color {
			t.Errorf("Game %d: ColorForGame disagrees with timeline", w.game)
		}
	}
	if s.MapForGame(0) != palette.MapPreGame {
		t.Errorf("Expected Pre-Game at index 0, got %q", s.MapForGame(0))
	}
	if len(s.Legend()) != 6 {
		t.Errorf("Expected 6 legend items, got %d", len(s.Legend()))
	}
}

func TestTotalMismatchLogged(t *testing.T) {
	logs := captureLog(t)
	table := Table{
		Header: []string{"Team", "Game 1 P", "Game 1 K", "Total"},
		Rows:   [][]string{{"A", "10", "2", "99"}},
	}
	s := mustLoad(t, table, nil, "m")
	tl, _ := s.Timeline("A")
	if tl.TotalScore != 12 {
		t.Errorf("Expected game sum 12 to win, got %d", tl.TotalScore)
	}
	if !strings.Contains(logs.String(), "disagrees") {
		t.Error("Expected total mismatch warning")
	}
}
