package playback

import (
	"github.com/lixenwraith/barrace/chart"
	"github.com/lixenwraith/barrace/score"
)

// Phase is the controller's lifecycle state
type Phase uint8

const (
	PhaseUninitialized Phase = iota
	PhaseInitial
	PhasePlaying
	PhasePaused
	PhaseAtEnd
)

func (p Phase) String() string {
	switch p {
	case PhaseInitial:
		return "pre-game"
	case PhasePlaying:
		return "playing"
	case PhasePaused:
		return "paused"
	case PhaseAtEnd:
		return "final"
	default:
		return "uninitialized"
	}
}

// MarshalText renders the phase name in JSON
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// State is a read-only snapshot for hosts
type State struct {
	Initialized      bool             `json:"initialized"`
	IsPlaying        bool             `json:"isPlaying"`
	Phase            Phase            `json:"phase"`
	CurrentGameIndex int              `json:"currentGameIndex"`
	MaxGames         int              `json:"maxGames"`
	Filter           score.FilterSet  `json:"filter,omitempty"`
	Dimensions       chart.Dimensions `json:"dimensions"`
}
