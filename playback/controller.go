// Package playback drives the standings chart through its game-by-game timeline.
package playback

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/lixenwraith/barrace/chart"
	"github.com/lixenwraith/barrace/clock"
	"github.com/lixenwraith/barrace/score"
)

const (
	DefaultInterval    = 1500 * time.Millisecond
	DefaultSettleDelay = 500 * time.Millisecond
	celebrateTop       = 3
)

var (
	ErrAlreadyPlaying = errors.New("playback already running")
	ErrNotInitialized = errors.New("playback not initialized")
)

// Source produces the raw score table of a matchup
type Source interface {
	Table(ctx context.Context) (score.Table, error)
}

// SourceFunc adapts a function to Source
type SourceFunc func(ctx context.Context) (score.Table, error)

func (f SourceFunc) Table(ctx context.Context) (score.Table, error) { return f(ctx) }

// Surface is the render target driven by the controller
type Surface interface {
	Render(f score.Frame, maxScore int, now time.Time) error
	RenderInitial(f score.Frame, maxScore int, now time.Time) error
	Celebrate(top []string, now time.Time)
	ShowError(msg string)
	Resize(width, height int)
	Dimensions() chart.Dimensions
	SetStatus(st chart.Status)
	SetLegend(items []score.LegendItem)
}

// Options configures a Controller
type Options struct {
	Interval    time.Duration // default tick interval for Play
	SettleDelay time.Duration // wait between natural completion and celebration
	OnCelebrate func(top []string)
}

// PlayOptions selects the game range and pace of one Play call
// Zero StartGame continues from the current index, zero EndGame means the last game
type PlayOptions struct {
	StartGame int
	EndGame   int
	Interval  time.Duration
}

// Controller owns the current game index and the playback timer
// All methods must be called from the scheduler's owner goroutine
type Controller struct {
	store   *score.Store
	surface Surface
	sched   clock.Scheduler
	opts    Options

	initialized bool
	phase       Phase
	index       int
	endGame     int

	ticker    clock.Cancel
	celebrate clock.Cancel
	listeners []func(int)
}

// New creates a controller with injected collaborators
func New(store *score.Store, surface Surface, sched clock.Scheduler, opts Options) *Controller {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = DefaultSettleDelay
	}
	return &Controller{
		store:   store,
		surface: surface,
		sched:   sched,
		opts:    opts,
	}
}

// Initialize loads a matchup and shows the pre-game layout
// On failure the error panel is shown and the previous dataset, if any, stays active
func (c *Controller) Initialize(ctx context.Context, src Source, seq score.MapLookup, matchupID string) error {
	c.Stop()

	table, err := src.Table(ctx)
	if err != nil {
		err = fmt.Errorf("failed to read matchup %q: %w", matchupID, err)
		c.surface.ShowError(err.Error())
		return err
	}
	if err := c.store.Load(table, seq, matchupID); err != nil {
		c.surface.ShowError(err.Error())
		return err
	}

	c.initialized = true
	c.index = 0
	c.phase = PhaseInitial
	c.surface.SetLegend(c.store.Legend())
	c.renderCurrent()
	return nil
}

// Play starts the ticker; the first tick fires immediately
func (c *Controller) Play(po PlayOptions) error {
	if !c.initialized {
		return ErrNotInitialized
	}
	if c.phase == PhasePlaying {
		return ErrAlreadyPlaying
	}

	maxGames := c.store.MaxGames()
	end := po.EndGame
	if end <= 0 || end > maxGames {
		end = maxGames
	}
	switch {
	case po.StartGame > 0:
		c.index = min(po.StartGame, end) - 1
	case c.phase == PhaseInitial || c.phase == PhaseAtEnd || c.index >= end:
		c.index = 0
	}
	interval := po.Interval
	if interval <= 0 {
		interval = c.opts.Interval
	}

	c.cancelCelebration()
	c.endGame = end
	c.phase = PhasePlaying
	log.Printf("playback: play games %d..%d every %v", c.index+1, end, interval)
	c.ticker = c.sched.Every(interval, c.tick)
	c.tick()
	return nil
}

// tick advances one game, or stops once the index passes the end game
func (c *Controller) tick() {
	if c.phase != PhasePlaying {
		return
	}
	prev := c.index
	c.index++
	if c.index > c.endGame {
		// A jump past the range leaves another frame on screen; show the clamped one
		c.index = c.endGame
		if prev != c.endGame {
			c.renderCurrent()
		}
		c.complete()
		return
	}
	c.renderCurrent()
}

// complete stops the ticker after the last game of the range
func (c *Controller) complete() {
	c.cancelTicker()
	if c.endGame < c.store.MaxGames() {
		c.phase = PhasePaused
		c.updateStatus()
		return
	}
	c.phase = PhaseAtEnd
	c.updateStatus()
	c.celebrate = c.sched.After(c.opts.SettleDelay, func() {
		c.celebrate = nil
		if c.phase != PhaseAtEnd {
			return
		}
		top := c.store.Frame(c.index).Top(celebrateTop)
		log.Printf("playback: celebrating %v", top)
		c.surface.Celebrate(top, c.sched.Now())
		if c.opts.OnCelebrate != nil {
			c.opts.OnCelebrate(top)
		}
	})
}

// Pause cancels the ticker; no-op unless playing
func (c *Controller) Pause() {
	if c.phase != PhasePlaying {
		return
	}
	c.cancelTicker()
	c.phase = PhasePaused
	c.updateStatus()
}

// Stop cancels the ticker and any pending celebration
func (c *Controller) Stop() {
	c.Pause()
	c.cancelCelebration()
}

// JumpToGame renders game n (clamped) without touching the timer
// Game 0 returns to the pre-game layout
func (c *Controller) JumpToGame(n int) error {
	if !c.initialized {
		return ErrNotInitialized
	}
	c.index = max(0, min(n, c.store.MaxGames()))
	if c.phase != PhasePlaying {
		switch c.index {
		case 0:
			c.phase = PhaseInitial
		case c.store.MaxGames():
			c.phase = PhaseAtEnd
		default:
			c.phase = PhasePaused
		}
	}
	c.renderCurrent()
	return nil
}

// FilterByGames restricts visible games and re-renders the current index
func (c *Controller) FilterByGames(games []int) {
	c.store.SetFilter(games)
	if c.initialized {
		c.renderCurrent()
	}
}

// ClearFilter removes the filter and re-renders the current index
func (c *Controller) ClearFilter() {
	c.store.ClearFilter()
	if c.initialized {
		c.renderCurrent()
	}
}

// Resize resizes the surface and re-renders the current frame; the index is kept
func (c *Controller) Resize(width, height int) {
	c.surface.Resize(width, height)
	if c.initialized {
		c.renderCurrent()
	}
}

// VisibilityChanged pauses playback when the view is hidden
func (c *Controller) VisibilityChanged(hidden bool) {
	if hidden && c.phase == PhasePlaying {
		log.Printf("playback: view hidden, pausing at game %d", c.index)
		c.Pause()
	}
}

// Export returns the visible standings at the current index as CSV
func (c *Controller) Export() string {
	return c.store.Export(c.index)
}

// Snapshot returns the frame at the current index
func (c *Controller) Snapshot() score.Frame {
	return c.store.Frame(c.index)
}

// OnIndexChange registers a listener called after every render
func (c *Controller) OnIndexChange(fn func(index int)) {
	c.listeners = append(c.listeners, fn)
}

// State returns a read-only snapshot of the playback state
func (c *Controller) State() State {
	return State{
		Initialized:      c.initialized,
		IsPlaying:        c.phase == PhasePlaying,
		Phase:            c.phase,
		CurrentGameIndex: c.index,
		MaxGames:         c.store.MaxGames(),
		Filter:           c.store.Filter(),
		Dimensions:       c.surface.Dimensions(),
	}
}

func (c *Controller) renderCurrent() {
	now := c.sched.Now()
	f := c.store.Frame(c.index)
	var err error
	if c.index == 0 {
		err = c.surface.RenderInitial(f, c.store.MaxScoreAt(0), now)
	} else {
		err = c.surface.Render(f, c.ceiling(f), now)
	}
	if err != nil {
		log.Printf("playback: render skipped at game %d: %v", c.index, err)
	}
	c.updateStatus()
	for _, fn := range c.listeners {
		fn(c.index)
	}
}

// ceiling fits the axis to filtered frames, unfiltered ones use the precomputed value
func (c *Controller) ceiling(f score.Frame) int {
	if f.Filtered {
		return c.store.CeilingFor(f)
	}
	return c.store.MaxScoreAt(c.index)
}

func (c *Controller) updateStatus() {
	c.surface.SetStatus(chart.Status{
		Index:    c.index,
		MaxGames: c.store.MaxGames(),
		Phase:    c.phase.String(),
		Filter:   c.store.Filter(),
	})
}

func (c *Controller) cancelTicker() {
	if c.ticker != nil {
		c.ticker()
		c.ticker = nil
	}
}

func (c *Controller) cancelCelebration() {
	if c.celebrate != nil {
		c.celebrate()
		c.celebrate = nil
	}
}
