package chart

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/barrace/render"
	"github.com/lixenwraith/barrace/score"
)

var (
	red  = render.RGB{R: 200}
	blue = render.RGB{B: 200}
	t0   = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
)

func game(n, offset, points int, color render.RGB) score.GameContribution {
	return score.GameContribution{GameNumber: n, Points: points, PlacementPoints: points, StartOffset: offset, Color: color}
}

// twoTeamFrame: A has game 1 (10 pts) revealed, B has game 1 (5 pts); game 2 hidden for both
func twoTeamFrame() score.Frame {
	return score.Frame{Index: 1, Entries: []score.FrameEntry{
		{Team: "A", CumulativeScore: 10, VisibleGames: []score.GameContribution{game(1, 0, 10, red)}, HiddenGames: []int{2}},
		{Team: "B", CumulativeScore: 5, VisibleGames: []score.GameContribution{game(1, 0, 5, blue)}, HiddenGames: []int{2}},
	}}
}

func initialFrame() score.Frame {
	return score.Frame{Index: 0, Entries: []score.FrameEntry{
		{Team: "A", HiddenGames: []int{1, 2}},
		{Team: "B", HiddenGames: []int{1, 2}},
	}}
}

func rowText(buf *render.Buffer, y int) string {
	w, _ := buf.Size()
	var sb strings.Builder
	for x := 0; x < w; x++ {
		r := buf.Get(x, y).Rune
		if r == 0 {
			r = ' '
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func newTestSurface() *Surface {
	return New(60, 20, Options{Title: "Finals", Duration: 100 * time.Millisecond})
}

func TestLinearScale(t *testing.T) {
	s := LinearScale{D0: 0, D1: 10, R0: 0, R1: 40}
	if got := s.Map(5); got != 20 {
		t.Errorf("Expected 20, got %v", got)
	}
	degenerate := LinearScale{D0: 3, D1: 3, R0: 0, R1: 40}
	if !math.IsNaN(degenerate.Map(3)) {
		t.Error("Expected NaN for degenerate domain")
	}
}

func TestBandScale(t *testing.T) {
	b := NewBandScale([]string{"A", "B", "C"}, 2, 10)
	if b.Step() != 2 {
		t.Errorf("Expected step 2 when padded bands fit, got %v", b.Step())
	}
	if y, ok := b.Position("C"); !ok || y != 6 {
		t.Errorf("Expected C at row 6, got %v (%v)", y, ok)
	}
	if _, ok := b.Position("Z"); ok {
		t.Error("Expected unknown key to be absent")
	}

	tight := NewBandScale([]string{"A", "B", "C"}, 0, 3)
	if tight.Step() != 1 || tight.Bandwidth() != 1 {
		t.Errorf("Expected step 1 bandwidth 1, got %v %v", tight.Step(), tight.Bandwidth())
	}

	crowded := NewBandScale([]string{"A", "B", "C"}, 0, 2)
	if crowded.Bandwidth() >= 1 {
		t.Errorf("Expected sub-row bandwidth, got %v", crowded.Bandwidth())
	}

	empty := NewBandScale(nil, 0, 10)
	if !math.IsNaN(empty.Bandwidth()) {
		t.Error("Expected NaN bandwidth for no keys")
	}
}

func TestTicks(t *testing.T) {
	tests := []struct {
		max  float64
		want []int
	}{
		{12, []int{0, 5, 10}},
		{100, []int{0, 50, 100}},
		{0, []int{0}},
		{math.NaN(), []int{0}},
	}
	for _, tt := range tests {
		got := Ticks(tt.max, 4)
		if len(got) != len(tt.want) {
			t.Errorf("Ticks(%v): expected %v, got %v", tt.max, tt.want, got)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Ticks(%v): expected %v, got %v", tt.max, tt.want, got)
				break
			}
		}
	}
}

func TestAnimRetargetFromCurrentValue(t *testing.T) {
	a := newAnim(0)
	a.retarget(100, t0, 100*time.Millisecond)
	mid := a.value(t0.Add(50 * time.Millisecond))
	if mid <= 0 || mid >= 100 {
		t.Fatalf("Expected midpoint strictly between, got %v", mid)
	}
	a.retarget(0, t0.Add(50*time.Millisecond), 100*time.Millisecond)
	if got := a.value(t0.Add(50 * time.Millisecond)); got != mid {
		t.Errorf("Expected retarget to start at %v, got %v", mid, got)
	}
	if got := a.value(t0.Add(200 * time.Millisecond)); got != 0 {
		t.Errorf("Expected final 0, got %v", got)
	}
	if a.running(t0.Add(200 * time.Millisecond)) {
		t.Error("Expected transition finished")
	}
}

func TestRenderPreconditionSkipsPass(t *testing.T) {
	s := New(60, 5, Options{})
	err := s.Render(twoTeamFrame(), 11, t0)
	if !errors.Is(err, ErrRenderPrecondition) {
		t.Fatalf("Expected ErrRenderPrecondition, got %v", err)
	}
	if s.Layer() != LayerNone || len(s.bars) != 0 {
		t.Error("Expected no nodes after skipped pass")
	}

	if err := s.Render(score.Frame{}, 12, t0); !errors.Is(err, ErrRenderPrecondition) {
		t.Errorf("Expected ErrRenderPrecondition for empty frame, got %v", err)
	}
}

func TestLayersAreExclusive(t *testing.T) {
	s := newTestSurface()
	if err := s.RenderInitial(initialFrame(), 12, t0); err != nil {
		t.Fatalf("RenderInitial failed: %v", err)
	}
	for team, g := range s.glyphs {
		if g.layer != LayerInitial {
			t.Errorf("Glyph %s: expected initial layer, got %v", team, g.layer)
		}
	}

	if err := s.Render(twoTeamFrame(), 11, t0); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if s.Layer() != LayerPlaying {
		t.Fatalf("Expected playing layer, got %v", s.Layer())
	}
	for team, g := range s.glyphs {
		if g.layer != LayerPlaying {
			t.Errorf("Glyph %s: expected playing layer, got %v", team, g.layer)
		}
	}
	for team, b := range s.bars {
		if b.layer != LayerPlaying {
			t.Errorf("Bar %s: expected playing layer, got %v", team, b.layer)
		}
	}

	// Back to initial drops playing nodes
	if err := s.RenderInitial(initialFrame(), 12, t0); err != nil {
		t.Fatalf("RenderInitial failed: %v", err)
	}
	for team, b := range s.bars {
		if b.layer != LayerInitial {
			t.Errorf("Bar %s: expected initial layer, got %v", team, b.layer)
		}
	}
}

func TestDrawSettledBars(t *testing.T) {
	s := newTestSurface()
	if err := s.Render(twoTeamFrame(), 11, t0); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	now := t0.Add(time.Second)
	s.Draw(now)
	d := s.Dimensions()
	buf := s.Buffer()

	// A: 10 of 11 across the plot width
	end := d.PlotX + round(10.0/11.0*float64(d.PlotWidth))
	if got := buf.Get(d.PlotX, d.PlotY).Bg; got != red {
		t.Errorf("Expected bar start red, got %v", got)
	}
	if got := buf.Get(end-1, d.PlotY).Bg; got != red {
		t.Errorf("Expected bar end red, got %v", got)
	}
	if got := buf.Get(end, d.PlotY).Bg; got == red {
		t.Error("Expected bar to stop at its scaled width")
	}

	row := rowText(buf, d.PlotY)
	if !strings.Contains(row, " A ") {
		t.Errorf("Expected team name in row, got %q", row)
	}
	if !strings.Contains(row[end:], "10") {
		t.Errorf("Expected cumulative label after bar, got %q", row[end:])
	}
	if !strings.Contains(rowText(buf, d.PlotY+2), " 2") {
		t.Error("Expected rank 2 on the second row")
	}

	// Axis baseline and labels
	axis := rowText(buf, d.PlotY+d.PlotHeight)
	if !strings.ContainsRune(axis, '┬') {
		t.Errorf("Expected tick marks, got %q", axis)
	}
	if !strings.Contains(rowText(buf, d.PlotY+d.PlotHeight+1), "0") {
		t.Error("Expected tick labels")
	}

	if !strings.Contains(rowText(buf, 0), "Finals") {
		t.Error("Expected title in status bar")
	}
	if s.Animating(now) {
		t.Error("Expected no running transitions after the duration")
	}
}

func TestHiddenSegmentsArePinned(t *testing.T) {
	s := newTestSurface()
	if err := s.Render(twoTeamFrame(), 11, t0); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	hidden := s.bars["A"].segs[2]
	if hidden == nil {
		t.Fatal("Expected a node for the hidden game")
	}
	if hidden.visible {
		t.Error("Expected hidden segment invisible")
	}
	if got := hidden.start.value(t0.Add(time.Second)); got != 10 {
		t.Errorf("Expected hidden segment pinned at cumulative 10, got %v", got)
	}
	if got := hidden.width.value(t0.Add(time.Second)); got != 0 {
		t.Errorf("Expected hidden width 0, got %v", got)
	}

	// Reveal game 2: grows out of the pinned offset
	next := score.Frame{Index: 2, Entries: []score.FrameEntry{
		{Team: "A", CumulativeScore: 14, VisibleGames: []score.GameContribution{game(1, 0, 10, red), game(2, 10, 4, blue)}},
		{Team: "B", CumulativeScore: 12, VisibleGames: []score.GameContribution{game(1, 0, 5, blue), game(2, 5, 7, red)}},
	}}
	at := t0.Add(time.Second)
	if err := s.Render(next, 16, at); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	mid := s.bars["A"].segs[2].width.value(at.Add(50 * time.Millisecond))
	if mid <= 0 || mid >= 4 {
		t.Errorf("Expected revealed segment mid-growth, got %v", mid)
	}
	if !s.bars["A"].segs[2].visible {
		t.Error("Expected revealed segment visible")
	}
}

func TestInterruptedTransitionIsContinuous(t *testing.T) {
	s := newTestSurface()
	if err := s.Render(twoTeamFrame(), 11, t0); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	at := t0.Add(40 * time.Millisecond)
	before := s.bars["B"].segs[1].width.value(at)
	axisBefore := s.axisMax.value(at)

	// Resize-style re-render mid-flight with a new ceiling
	if err := s.Render(twoTeamFrame(), 20, at); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if got := s.bars["B"].segs[1].width.value(at); got != before {
		t.Errorf("Expected segment to continue from %v, got %v", before, got)
	}
	if got := s.axisMax.value(at); got != axisBefore {
		t.Errorf("Expected axis to continue from %v, got %v", axisBefore, got)
	}
	if got := s.axisMax.value(at.Add(time.Second)); got != 20 {
		t.Errorf("Expected axis to settle at 20, got %v", got)
	}
}

func TestRankReorderAnimatesRows(t *testing.T) {
	s := newTestSurface()
	_ = s.Render(twoTeamFrame(), 11, t0)
	d := s.Dimensions()

	swapped := score.Frame{Index: 2, Entries: []score.FrameEntry{
		{Team: "B", CumulativeScore: 20, VisibleGames: []score.GameContribution{game(1, 0, 5, blue), game(2, 5, 15, red)}},
		{Team: "A", CumulativeScore: 12, VisibleGames: []score.GameContribution{game(1, 0, 10, red), game(2, 10, 2, blue)}},
	}}
	at := t0.Add(time.Second)
	_ = s.Render(swapped, 22, at)

	if got := s.bars["B"].row.value(at); got != float64(d.PlotY+2) {
		t.Errorf("Expected B to start from its old row, got %v", got)
	}
	if got := s.bars["B"].row.value(at.Add(time.Second)); got != float64(d.PlotY) {
		t.Errorf("Expected B to end on the top row, got %v", got)
	}
	if s.glyphs["B"].rank != 1 {
		t.Errorf("Expected B rank 1, got %d", s.glyphs["B"].rank)
	}
}

func TestShowErrorReplacesPlot(t *testing.T) {
	s := newTestSurface()
	_ = s.Render(twoTeamFrame(), 11, t0)
	s.ShowError("no valid team rows")
	if s.Layer() != LayerNone {
		t.Error("Expected nodes removed by error panel")
	}
	s.Draw(t0)

	found := false
	hint := false
	_, h := s.Buffer().Size()
	for y := 0; y < h; y++ {
		row := rowText(s.Buffer(), y)
		found = found || strings.Contains(row, "no valid team rows")
		hint = hint || strings.Contains(row, "retry")
	}
	if !found || !hint {
		t.Errorf("Expected error message and retry hint, found=%v hint=%v", found, hint)
	}

	if err := s.Render(twoTeamFrame(), 11, t0); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if s.Error() != "" {
		t.Error("Expected successful render to clear the error panel")
	}
}

func TestCelebrationLifecycle(t *testing.T) {
	s := newTestSurface()
	_ = s.Render(twoTeamFrame(), 11, t0)
	at := t0.Add(time.Second)
	s.Celebrate([]string{"A", "B", "C", "D"}, at)

	if !s.Celebrating(at) {
		t.Fatal("Expected celebration active")
	}
	if len(s.celebration.top) != 3 {
		t.Errorf("Expected top list trimmed to 3, got %d", len(s.celebration.top))
	}
	if len(s.celebration.particles) == 0 {
		t.Error("Expected particles for teams with bars")
	}

	glowA, medal, ok := s.glowFor("A", at.Add(celebrationLifetime/4))
	if !ok || medal != render.RgbGold {
		t.Fatalf("Expected gold glow for A")
	}
	glowB, _, _ := s.glowFor("B", at.Add(celebrationLifetime/4))
	if glowA > 1 || glowB >= glowA {
		t.Errorf("Expected A glow (%v) above B glow (%v) and at most 1", glowA, glowB)
	}

	s.Draw(at.Add(100 * time.Millisecond))
	if !strings.Contains(rowText(s.Buffer(), 1), "1st A") {
		t.Errorf("Expected banner, got %q", rowText(s.Buffer(), 1))
	}

	end := at.Add(celebrationLifetime)
	s.Draw(end)
	if s.celebration != nil || s.Celebrating(end) {
		t.Error("Expected celebration to remove itself after its lifetime")
	}
}

func TestCelebrateIgnoredOutsidePlaying(t *testing.T) {
	s := newTestSurface()
	_ = s.RenderInitial(initialFrame(), 12, t0)
	s.Celebrate([]string{"A"}, t0)
	if s.Celebrating(t0) {
		t.Error("Expected no celebration on the initial layer")
	}
}

func TestLegendDimsFilteredGames(t *testing.T) {
	s := New(80, 20, Options{Legend: true})
	s.SetLegend([]score.LegendItem{{Game: 1, Map: "Olympus", Color: red}, {Game: 2, Map: "Storm Point", Color: blue}})
	s.SetStatus(Status{Index: 1, MaxGames: 2, Phase: "paused", Filter: []int{1}})
	_ = s.Render(twoTeamFrame(), 11, t0)
	s.Draw(t0.Add(time.Second))

	row := rowText(s.Buffer(), 19)
	if !strings.Contains(row, "1 Olympus") || !strings.Contains(row, "2 Storm Point") {
		t.Errorf("Expected legend entries, got %q", row)
	}
	x := strings.IndexRune(row, '■')
	if got := s.Buffer().Get(x, 19).Fg; got != red {
		t.Errorf("Expected filtered-in swatch at full color, got %v", got)
	}
	status := rowText(s.Buffer(), 0)
	if !strings.Contains(status, "game 1/2") || !strings.Contains(status, "filter 1") {
		t.Errorf("Expected status details, got %q", status)
	}
}

func TestFallbackBadge(t *testing.T) {
	s := New(60, 20, Options{Identity: stubIdentity{}})
	_ = s.Render(twoTeamFrame(), 11, t0)
	s.Draw(t0.Add(time.Second))
	d := s.Dimensions()
	if got := s.Buffer().Get(rankWidth, d.PlotY); got.Rune != 'X' || got.Bg != blue {
		t.Errorf("Expected fallback glyph X on badge color, got %q %v", got.Rune, got.Bg)
	}
}

type stubIdentity struct{}

func (stubIdentity) LogoURL(string) string        { return "" }
func (stubIdentity) FallbackGlyph(string) string  { return "XY" }
func (stubIdentity) BadgeColor(string) render.RGB { return blue }

func TestFlushToScreen(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("screen init: %v", err)
	}
	defer screen.Fini()
	screen.SetSize(60, 20)

	s := newTestSurface()
	_ = s.Render(twoTeamFrame(), 11, t0)
	s.Draw(t0.Add(time.Second))
	s.Flush(screen)

	d := s.Dimensions()
	_, _, style, _ := screen.GetContent(d.PlotX, d.PlotY)
	_, bg, _ := style.Decompose()
	if render.FromTcell(bg) != red {
		t.Errorf("Expected flushed bar color, got %v", bg)
	}
}
