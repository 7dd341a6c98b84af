package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/barrace/config"
)

var (
	configFlag  = flag.String("config", "", "Config file (default "+config.DefaultPath+" when present)")
	scoresFlag  = flag.String("scores", "", "Score source: CSV path or sqlite:<path>?table=<name>")
	mapsFlag    = flag.String("maps", "", "Map sequence registry (TOML)")
	teamsFlag   = flag.String("teams", "", "Team identity directory (TOML)")
	matchupFlag = flag.String("matchup", "", "Matchup ID selecting the map sequence")
	listenFlag  = flag.String("listen", "", "Serve the HTTP API on this address")
	debugFlag   = flag.Bool("debug", false, "Write logs to "+logDir+"/"+logFileName)
	muteFlag    = flag.Bool("mute", false, "Disable the celebration fanfare")
	playFlag    = flag.Bool("play", false, "Start playback after loading")
)

// applyFlags overrides config values with flags given on the command line
func applyFlags(cfg *config.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "scores":
			cfg.Scores = *scoresFlag
		case "maps":
			cfg.Maps = *mapsFlag
		case "teams":
			cfg.Teams = *teamsFlag
		case "matchup":
			cfg.Matchup = *matchupFlag
		case "listen":
			cfg.Server.Listen = *listenFlag
		case "debug":
			cfg.Debug = *debugFlag
		case "mute":
			cfg.Audio.Enabled = !*muteFlag
		case "play":
			cfg.Playback.Autoplay = *playFlag
		}
	})
}

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	applyFlags(&cfg)

	if logFile := setupLogging(cfg.Debug); logFile != nil {
		defer logFile.Close()
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize terminal: %v\n", err)
		os.Exit(1)
	}
	screen.EnableFocus()

	// Restore the terminal before reporting a crash so the trace stays readable
	defer func() {
		if r := recover(); r != nil {
			screen.Fini()
			fmt.Fprintf(os.Stderr, "\n\x1b[31mBARRACE CRASHED: %v\x1b[0m\n", r)
			fmt.Fprintf(os.Stderr, "Stack Trace:\n%s\n", debug.Stack())
			os.Exit(1)
		}
	}()

	a, err := newApp(screen, cfg)
	if err != nil {
		screen.Fini()
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer a.close()

	go a.pollEvents()
	a.serve(ctx)
	a.initialize(ctx)
	a.run(ctx)
}
