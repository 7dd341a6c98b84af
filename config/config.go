// Package config loads the application's TOML configuration
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/lixenwraith/barrace/palette"
)

// DefaultPath is consulted when no explicit config path is given
const DefaultPath = "barrace.toml"

// Duration is a time.Duration written as a string in TOML ("1500ms", "2s")
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

type Playback struct {
	Interval  Duration `toml:"interval"`
	Animation Duration `toml:"animation"`
	Settle    Duration `toml:"settle"`
	StartGame int      `toml:"start_game"`
	EndGame   int      `toml:"end_game"`
	Autoplay  bool     `toml:"autoplay"`
}

type Render struct {
	Legend         bool `toml:"legend"`
	LabelThreshold int  `toml:"label_threshold"`
}

type Cache struct {
	Size int `toml:"size"`
}

type Server struct {
	Listen         string   `toml:"listen"` // empty disables the HTTP API
	AllowedOrigins []string `toml:"allowed_origins"`
	Timeout        Duration `toml:"timeout"`
}

type Audio struct {
	Enabled bool    `toml:"enabled"`
	Volume  float64 `toml:"volume"` // linear gain in [0,1]
}

type Logos struct {
	Timeout  Duration `toml:"timeout"`
	RetryMax int      `toml:"retry_max"`
}

// Config is the full application configuration
type Config struct {
	Title    string              `toml:"title"`
	Matchup  string              `toml:"matchup"`
	Scores   string              `toml:"scores"` // CSV path or sqlite:<path>?table=<name>
	Maps     string              `toml:"maps"`
	Teams    string              `toml:"teams"`
	ExportTo string              `toml:"export_dir"`
	Debug    bool                `toml:"debug"`
	Palette  map[string][]string `toml:"palette"` // map name to hex variations

	Playback Playback `toml:"playback"`
	Render   Render   `toml:"render"`
	Cache    Cache    `toml:"cache"`
	Server   Server   `toml:"server"`
	Audio    Audio    `toml:"audio"`
	Logos    Logos    `toml:"logos"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Title:    "Standings",
		ExportTo: ".",
		Playback: Playback{
			Interval:  Duration{1500 * time.Millisecond},
			Animation: Duration{750 * time.Millisecond},
			Settle:    Duration{500 * time.Millisecond},
		},
		Render: Render{
			Legend:         true,
			LabelThreshold: 3,
		},
		Cache: Cache{Size: 8},
		Server: Server{
			Timeout: Duration{10 * time.Second},
		},
		Audio: Audio{Enabled: true, Volume: 0.6},
		Logos: Logos{
			Timeout:  Duration{5 * time.Second},
			RetryMax: 2,
		},
	}
}

// Parse decodes TOML over the defaults and validates the result
func Parse(data string) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(data, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("config parse: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("config: unknown key %q", undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile reads and parses a config file
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg, err := Parse(string(data))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Load resolves config with priority: customPath > DefaultPath > built-in defaults
func Load(customPath string) (Config, error) {
	if customPath != "" {
		return LoadFile(customPath)
	}
	if _, err := os.Stat(DefaultPath); err == nil {
		return LoadFile(DefaultPath)
	}
	return Default(), nil
}

// Validate rejects values the components cannot run with
func (c Config) Validate() error {
	var errs []error
	if c.Playback.Interval.Duration <= 0 {
		errs = append(errs, errors.New("playback.interval must be positive"))
	}
	if c.Playback.Animation.Duration < 0 {
		errs = append(errs, errors.New("playback.animation must not be negative"))
	}
	if c.Playback.Settle.Duration < 0 {
		errs = append(errs, errors.New("playback.settle must not be negative"))
	}
	if c.Playback.StartGame < 0 || c.Playback.EndGame < 0 {
		errs = append(errs, errors.New("playback game range must not be negative"))
	}
	if c.Playback.EndGame > 0 && c.Playback.StartGame > c.Playback.EndGame {
		errs = append(errs, fmt.Errorf("playback.start_game %d is after end_game %d", c.Playback.StartGame, c.Playback.EndGame))
	}
	if c.Render.LabelThreshold < 0 {
		errs = append(errs, errors.New("render.label_threshold must not be negative"))
	}
	if c.Cache.Size < 0 {
		errs = append(errs, errors.New("cache.size must not be negative"))
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		errs = append(errs, fmt.Errorf("audio.volume %v outside [0,1]", c.Audio.Volume))
	}
	if c.Logos.RetryMax < 0 {
		errs = append(errs, errors.New("logos.retry_max must not be negative"))
	}
	return errors.Join(errs...)
}

// BuildPalette applies [palette] overrides to the reference palette
func (c Config) BuildPalette() (*palette.Palette, error) {
	p := palette.Default()
	for name, hexes := range c.Palette {
		next, err := p.With(name, hexes...)
		if err != nil {
			return nil, fmt.Errorf("palette %q: %w", name, err)
		}
		p = next
	}
	return p, nil
}
