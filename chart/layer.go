package chart

// Layer tags the mutually exclusive identity/bar node sets
// Entering a layer removes every node of the other layer first
type Layer uint8

const (
	LayerNone Layer = iota
	LayerInitial
	LayerPlaying
)

func (l Layer) String() string {
	switch l {
	case LayerInitial:
		return "initial"
	case LayerPlaying:
		return "playing"
	default:
		return "none"
	}
}

// enterLayer switches layers, dropping all nodes tagged with the previous one
func (s *Surface) enterLayer(l Layer) {
	if s.layer == l {
		return
	}
	clear(s.bars)
	clear(s.glyphs)
	s.layer = l
}
