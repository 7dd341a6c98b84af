package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/bep/debounce"
	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/barrace/audio"
	"github.com/lixenwraith/barrace/chart"
	"github.com/lixenwraith/barrace/clock"
	"github.com/lixenwraith/barrace/config"
	"github.com/lixenwraith/barrace/httpapi"
	"github.com/lixenwraith/barrace/identity"
	"github.com/lixenwraith/barrace/mapseq"
	"github.com/lixenwraith/barrace/playback"
	"github.com/lixenwraith/barrace/render"
	"github.com/lixenwraith/barrace/score"
	"github.com/lixenwraith/barrace/source"
)

const (
	frameInterval  = 33 * time.Millisecond
	resizeDebounce = 250 * time.Millisecond
	messageTTL     = 3 * time.Second
	maxPromptLen   = 32
	loopBuffer     = 64
)

var errNoSource = errors.New("no score source configured (set scores in the config or pass -scores)")

// app is the single owner of the controller, surface and screen
// Everything that touches them runs on the goroutine executing run
type app struct {
	cfg     config.Config
	screen  tcell.Screen
	loop    *clock.Loop
	store   *score.Store
	surface *chart.Surface
	ctl     *playback.Controller
	maps    *mapseq.Registry
	teams   *identity.Directory
	fanfare *audio.Fanfare
	logos   *logoFetcher
	resize  func(func())
	events  chan tcell.Event

	prompt       string
	message      string
	messageUntil time.Time
	dirty        bool
}

func newApp(screen tcell.Screen, cfg config.Config) (*app, error) {
	pal, err := cfg.BuildPalette()
	if err != nil {
		return nil, err
	}

	maps := mapseq.NewRegistry()
	if cfg.Maps != "" {
		if maps, err = mapseq.LoadFile(cfg.Maps); err != nil {
			return nil, err
		}
	}

	var teams *identity.Directory
	if cfg.Teams != "" {
		if teams, err = identity.LoadFile(cfg.Teams); err != nil {
			return nil, err
		}
	}

	var cache *score.Cache
	if cfg.Cache.Size > 0 {
		if cache, err = score.NewCache(cfg.Cache.Size); err != nil {
			return nil, err
		}
	}

	a := &app{
		cfg:    cfg,
		screen: screen,
		loop:   clock.NewLoop(loopBuffer),
		store:  score.NewStore(pal, cache),
		maps:   maps,
		teams:  teams,
		resize: debounce.New(resizeDebounce),
		events: make(chan tcell.Event, 256),
		dirty:  true,
	}
	if cfg.Audio.Enabled {
		a.fanfare = audio.NewFanfare(cfg.Audio.Volume)
	}

	w, h := screen.Size()
	a.surface = chart.New(w, h, chart.Options{
		Title:          cfg.Title,
		Duration:       cfg.Playback.Animation.Duration,
		LabelThreshold: cfg.Render.LabelThreshold,
		Legend:         cfg.Render.Legend,
		Identity:       teams,
		Seed:           uint64(time.Now().UnixNano()),
	})
	a.ctl = playback.New(a.store, a.surface, a.loop, playback.Options{
		Interval:    cfg.Playback.Interval.Duration,
		SettleDelay: cfg.Playback.Settle.Duration,
		OnCelebrate: a.celebrate,
	})
	a.ctl.OnIndexChange(a.updateTitle)
	a.logos = newLogoFetcher(cfg.Logos, a.loop.Post, func(team string, img image.Image) {
		a.surface.SetLogo(team, img)
	})
	return a, nil
}

// matchupID falls back to the only registered matchup when none is configured
func (a *app) matchupID() string {
	if a.cfg.Matchup != "" {
		return a.cfg.Matchup
	}
	if ids := a.maps.Matchups(); len(ids) == 1 {
		return ids[0]
	}
	return ""
}

// initialize (re)loads the score source; errors are shown on the surface by the controller
func (a *app) initialize(ctx context.Context) error {
	var src playback.Source
	if a.cfg.Scores == "" {
		src = failingSource(errNoSource)
	} else if r, err := source.Open(a.cfg.Scores); err != nil {
		src = failingSource(err)
	} else {
		src = r
	}

	if err := a.ctl.Initialize(ctx, src, a.maps, a.matchupID()); err != nil {
		log.Printf("barrace: initialize: %v", err)
		return err
	}

	logos := make(map[string]string)
	for _, team := range a.store.Teams() {
		if ref := a.teams.LogoURL(team); ref != "" {
			logos[team] = ref
		}
	}
	a.logos.fetchAll(ctx, logos)

	if a.cfg.Playback.Autoplay {
		a.togglePlay()
	}
	return nil
}

func failingSource(err error) playback.Source {
	return playback.SourceFunc(func(context.Context) (score.Table, error) {
		return score.Table{}, err
	})
}

// celebrate runs on the owner loop; speaker init may block so it stays off-loop
func (a *app) celebrate(top []string) {
	if a.fanfare == nil {
		return
	}
	go func() {
		if err := a.fanfare.Initialize(); err != nil {
			return
		}
		a.fanfare.Play()
	}()
}

// serve starts the HTTP API when a listen address is configured
func (a *app) serve(ctx context.Context) {
	if a.cfg.Server.Listen == "" {
		return
	}
	srv := httpapi.New(a.ctl, a.loop, httpapi.Options{
		Title:          a.cfg.Title,
		AllowedOrigins: a.cfg.Server.AllowedOrigins,
		RequestTimeout: a.cfg.Server.Timeout.Duration,
	})
	go func() {
		if err := srv.ListenAndServe(ctx, a.cfg.Server.Listen); err != nil {
			log.Printf("httpapi: %v", err)
			a.loop.Post(func() { a.notify("HTTP API stopped: " + err.Error()) })
		}
	}()
}

// run is the owner loop: terminal events, scheduled tasks and frames
func (a *app) run(ctx context.Context) {
	frame := time.NewTicker(frameInterval)
	defer frame.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-a.events:
			if !a.handleEvent(ctx, ev) {
				return
			}
			a.dirty = true
		case fn := <-a.loop.Tasks():
			fn()
			a.dirty = true
		case <-frame.C:
			a.draw(time.Now())
		}
	}
}

// pollEvents feeds terminal events to the owner loop until the screen is finalized
func (a *app) pollEvents() {
	for {
		ev := a.screen.PollEvent()
		if ev == nil {
			return
		}
		a.events <- ev
	}
}

func (a *app) handleEvent(ctx context.Context, ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return a.handleKey(ctx, ev)
	case *tcell.EventResize:
		a.resize(func() {
			if err := a.loop.Post(a.applySize); err != nil {
				log.Printf("barrace: resize dropped: %v", err)
			}
		})
	case *tcell.EventFocus:
		a.ctl.VisibilityChanged(!ev.Focused)
	}
	return true
}

func (a *app) applySize() {
	w, h := a.screen.Size()
	a.ctl.Resize(w, h)
	a.screen.Sync()
}

func (a *app) handleKey(ctx context.Context, ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyCtrlC:
		return false
	case tcell.KeyEscape:
		if a.prompt == "" {
			return false
		}
		a.prompt = ""
	case tcell.KeyEnter:
		a.commitJump()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if n := len(a.prompt); n > 0 {
			a.prompt = a.prompt[:n-1]
		}
	case tcell.KeyLeft:
		a.jump(a.ctl.State().CurrentGameIndex - 1)
	case tcell.KeyRight:
		a.jump(a.ctl.State().CurrentGameIndex + 1)
	case tcell.KeyHome:
		a.jump(0)
	case tcell.KeyEnd:
		a.jump(a.ctl.State().MaxGames)
	case tcell.KeyRune:
		r := ev.Rune()
		switch {
		case r >= '0' && r <= '9', r == ',':
			if len(a.prompt) < maxPromptLen {
				a.prompt += string(r)
			}
		case r == ' ':
			a.togglePlay()
		case r == 's':
			a.ctl.Stop()
		case r == 'f':
			a.applyFilter()
		case r == 'c':
			a.ctl.ClearFilter()
			a.notify("filter cleared")
		case r == 'e':
			a.export()
		case r == 'r':
			if err := a.initialize(ctx); err == nil {
				a.notify("reloaded")
			}
		case r == 'q':
			return false
		}
	}
	return true
}

func (a *app) togglePlay() {
	st := a.ctl.State()
	if st.IsPlaying {
		a.ctl.Pause()
		return
	}
	po := playback.PlayOptions{EndGame: a.cfg.Playback.EndGame}
	if st.Phase == playback.PhaseInitial && a.cfg.Playback.StartGame > 0 {
		po.StartGame = a.cfg.Playback.StartGame
	}
	if err := a.ctl.Play(po); err != nil {
		a.notify(err.Error())
	}
}

func (a *app) jump(n int) {
	if err := a.ctl.JumpToGame(n); err != nil {
		a.notify(err.Error())
	}
}

// commitJump jumps to the game number typed at the prompt
func (a *app) commitJump() {
	games := parseGames(a.prompt)
	a.prompt = ""
	if len(games) != 1 {
		a.notify("type a game number, then enter")
		return
	}
	a.jump(games[0])
}

// applyFilter restricts the chart to the comma-separated games typed at the prompt
func (a *app) applyFilter() {
	games := parseGames(a.prompt)
	a.prompt = ""
	if len(games) == 0 {
		a.notify("type games like 3,5 then f")
		return
	}
	a.ctl.FilterByGames(games)
	if filter := a.ctl.State().Filter; len(filter) > 0 {
		a.notify(fmt.Sprintf("filter %v", []int(filter)))
	} else {
		a.notify("no valid games in filter")
	}
}

func (a *app) export() {
	st := a.ctl.State()
	if !st.Initialized {
		a.notify(playback.ErrNotInitialized.Error())
		return
	}
	csvPath, svgPath, err := exportFiles(a.cfg.ExportTo, st.CurrentGameIndex, a.ctl.Export(), a.ctl.Snapshot(), a.cfg.Title)
	switch {
	case csvPath == "":
		a.notify("export failed: " + err.Error())
	case err != nil:
		log.Printf("barrace: snapshot: %v", err)
		a.notify("exported " + csvPath)
	default:
		a.notify("exported " + csvPath + " and " + svgPath)
	}
}

// updateTitle mirrors the current game in the terminal window title
func (a *app) updateTitle(index int) {
	title := a.cfg.Title
	if n := a.store.MaxGames(); index > 0 && n > 0 {
		title = fmt.Sprintf("%s · game %d/%d", a.cfg.Title, index, n)
	}
	a.screen.SetTitle(title)
}

func (a *app) notify(msg string) {
	log.Printf("barrace: %s", msg)
	a.message = msg
	a.messageUntil = time.Now().Add(messageTTL)
	a.dirty = true
}

// draw composes a frame when state changed or an animation is running
func (a *app) draw(now time.Time) {
	if a.message != "" && now.After(a.messageUntil) {
		a.message = ""
		a.dirty = true
	}
	if !a.dirty && !a.surface.Animating(now) {
		return
	}
	a.surface.Draw(now)
	a.drawOverlay()
	a.surface.Flush(a.screen)
	a.dirty = false
}

// drawOverlay writes the prompt or the latest message under the status bar
func (a *app) drawOverlay() {
	buf := a.surface.Buffer()
	switch {
	case a.prompt != "":
		buf.Text(1, 1, "› "+a.prompt+"_", render.RgbGold, render.AttrBold, 0)
	case a.message != "":
		buf.Text(1, 1, a.message, render.RgbTextDim, render.AttrNone, 0)
	}
}

// parseGames reads "3,5" into game numbers, ignoring blanks and junk
func parseGames(s string) []int {
	var out []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}

// close stops playback and releases the terminal and audio device
func (a *app) close() {
	a.ctl.Stop()
	a.loop.Close()
	if a.fanfare != nil {
		a.fanfare.Close()
	}
	a.screen.Fini()
}
