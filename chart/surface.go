// Package chart draws the animated stacked-bar standings into a cell buffer.
//
// Render and RenderInitial only retarget transitions; Draw interpolates them at a
// given instant and composes the frame. Bars, rows and the axis share one
// duration and are stored in score units, so an axis tween and the bars it
// scales always stay in step.
package chart

import (
	"fmt"
	"image"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/lixenwraith/barrace/identity"
	"github.com/lixenwraith/barrace/render"
	"github.com/lixenwraith/barrace/score"
)

const (
	DefaultDuration       = 750 * time.Millisecond
	DefaultLabelThreshold = 3

	rankWidth   = 3
	badgeGap    = 1
	minNameCols = 4
	maxNameCols = 18
	totalCols   = 6 // trailing cumulative label
	headerRows  = 2 // status bar and banner row
	axisRows    = 2 // baseline and tick labels
)

// TeamIdentity supplies display identity for team glyphs
type TeamIdentity interface {
	LogoURL(team string) string
	FallbackGlyph(team string) string
}

// badgeColorer is optionally implemented by a TeamIdentity
type badgeColorer interface {
	BadgeColor(team string) render.RGB
}

// Options configures a Surface
type Options struct {
	Title          string
	Duration       time.Duration // shared by every transition
	LabelThreshold int           // minimum segment columns for an in-segment label
	Legend         bool
	Identity       TeamIdentity
	Seed           uint64 // particle randomness
}

// Status is the host-provided state shown in the status bar
type Status struct {
	Index    int
	MaxGames int
	Phase    string
	Filter   []int
}

// Dimensions describes the current terminal and plot geometry in cells
type Dimensions struct {
	Width      int `json:"width"`
	Height     int `json:"height"`
	PlotX      int `json:"plotX"`
	PlotY      int `json:"plotY"`
	PlotWidth  int `json:"plotWidth"`
	PlotHeight int `json:"plotHeight"`
}

// Surface is the render target; it is owned by a single goroutine
type Surface struct {
	opts   Options
	buf    *render.Buffer
	width  int
	height int

	nameWidth int
	layer     Layer
	bars      map[string]*barNode
	glyphs    map[string]*glyphNode
	axisMax   anim

	legend []score.LegendItem
	status Status
	errMsg string
	badges map[string][identity.BadgeWidth]render.Cell

	celebration *celebration
	rng         *rand.Rand
}

// New creates a surface of the given terminal size
func New(width, height int, opts Options) *Surface {
	if opts.Duration <= 0 {
		opts.Duration = DefaultDuration
	}
	if opts.LabelThreshold <= 0 {
		opts.LabelThreshold = DefaultLabelThreshold
	}
	s := &Surface{
		opts:      opts,
		buf:       render.NewBuffer(width, height, render.RgbBackground),
		width:     width,
		height:    height,
		nameWidth: minNameCols,
		bars:      make(map[string]*barNode),
		glyphs:    make(map[string]*glyphNode),
		axisMax:   newAnim(score.PlacementRange),
		badges:    make(map[string][identity.BadgeWidth]render.Cell),
		rng:       rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)),
	}
	return s
}

// Resize changes the terminal size; positions are refit on the next Render
func (s *Surface) Resize(width, height int) {
	s.width = max(width, 0)
	s.height = max(height, 0)
	s.buf.Resize(s.width, s.height)
}

// Dimensions returns the terminal and plot geometry
func (s *Surface) Dimensions() Dimensions {
	d := Dimensions{Width: s.width, Height: s.height}
	d.PlotX = rankWidth + identity.BadgeWidth + badgeGap + s.nameWidth + 1
	d.PlotY = headerRows
	d.PlotWidth = max(s.width-d.PlotX-totalCols, 0)
	bottom := axisRows
	if s.opts.Legend {
		bottom++
	}
	d.PlotHeight = max(s.height-headerRows-bottom, 0)
	return d
}

// Layer returns the active layer
func (s *Surface) Layer() Layer {
	return s.layer
}

// Buffer exposes the composed cells
func (s *Surface) Buffer() *render.Buffer {
	return s.buf
}

// SetStatus updates the status bar content
func (s *Surface) SetStatus(st Status) {
	s.status = st
}

// SetLegend replaces the game/map legend
func (s *Surface) SetLegend(items []score.LegendItem) {
	s.legend = items
}

// SetLogo converts a decoded logo into the team's badge
func (s *Surface) SetLogo(team string, img image.Image) {
	if img == nil {
		delete(s.badges, team)
		return
	}
	s.badges[team] = identity.Badge(img, render.RgbBackground)
}

// ShowError replaces the plot with an error panel until the next successful render
func (s *Surface) ShowError(msg string) {
	s.errMsg = msg
	s.enterLayer(LayerNone)
	s.celebration = nil
}

// Error returns the message of the visible error panel, if any
func (s *Surface) Error() string {
	return s.errMsg
}

// Render retargets the Playing layer toward frame f with axis ceiling maxScore
func (s *Surface) Render(f score.Frame, maxScore int, now time.Time) error {
	return s.render(LayerPlaying, f, maxScore, now)
}

// RenderInitial shows the pre-game layer: alphabetical rows, empty bars
func (s *Surface) RenderInitial(f score.Frame, maxScore int, now time.Time) error {
	return s.render(LayerInitial, f, maxScore, now)
}

func (s *Surface) render(layer Layer, f score.Frame, maxScore int, now time.Time) error {
	s.fitNames(f)
	d := s.Dimensions()

	xs := LinearScale{D0: 0, D1: float64(maxScore), R0: 0, R1: float64(d.PlotWidth)}
	band := NewBandScale(f.Teams(), float64(d.PlotY), float64(d.PlotHeight))
	bw := band.Bandwidth()
	if !finite(bw, xs.Map(float64(maxScore))) || bw < 1 || d.PlotWidth < 1 {
		return fmt.Errorf("%w: plot %dx%d for %d teams, axis %d",
			ErrRenderPrecondition, d.PlotWidth, d.PlotHeight, len(f.Entries), maxScore)
	}

	s.errMsg = ""
	s.enterLayer(layer)
	s.axisMax.retarget(float64(maxScore), now, s.opts.Duration)

	seen := make(map[string]struct{}, len(f.Entries))
	for i, e := range f.Entries {
		y, _ := band.Position(e.Team)
		seen[e.Team] = struct{}{}
		s.updateGlyph(e.Team, i+1, y, now)
		s.updateBar(e, y, now)
	}
	for team := range s.bars {
		if _, ok := seen[team]; !ok {
			delete(s.bars, team)
		}
	}
	for team := range s.glyphs {
		if _, ok := seen[team]; !ok {
			delete(s.glyphs, team)
		}
	}
	return nil
}

// fitNames sizes the name column to the widest team name
func (s *Surface) fitNames(f score.Frame) {
	w := minNameCols
	for _, e := range f.Entries {
		w = max(w, runewidth.StringWidth(e.Team))
	}
	s.nameWidth = min(w, maxNameCols)
}

// Animating reports whether any transition or effect is in flight at now
func (s *Surface) Animating(now time.Time) bool {
	if s.celebration != nil && now.Before(s.celebration.start.Add(celebrationLifetime)) {
		return true
	}
	if s.axisMax.running(now) {
		return true
	}
	for _, n := range s.bars {
		if n.running(now) {
			return true
		}
	}
	for _, g := range s.glyphs {
		if g.row.running(now) {
			return true
		}
	}
	return false
}

// Draw composes the surface at now
func (s *Surface) Draw(now time.Time) {
	s.buf.Clear()
	d := s.Dimensions()
	if d.Width == 0 || d.Height == 0 {
		return
	}
	s.drawStatus(d)
	if s.errMsg != "" {
		s.drawError(d)
		return
	}
	if s.layer == LayerNone {
		return
	}

	am := s.axisMax.value(now)
	xs := LinearScale{D0: 0, D1: am, R0: 0, R1: float64(d.PlotWidth)}
	if !finite(xs.Map(am)) || d.PlotWidth < 1 {
		return
	}
	s.drawAxis(d, xs, am)
	s.drawBars(d, xs, now)
	s.drawGlyphs(d, now)
	if s.opts.Legend {
		s.drawLegend(d)
	}
	s.drawCelebration(d, now)
}

// Flush writes the composed buffer to the screen
func (s *Surface) Flush(screen tcell.Screen) {
	s.buf.Flush(screen)
}

// sortedKeys iterates node maps in a stable order so overlapping rows draw deterministically
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
