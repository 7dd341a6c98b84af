package chart

import (
	"slices"
	"time"

	"github.com/lixenwraith/barrace/render"
	"github.com/lixenwraith/barrace/score"
)

// barNode is one team's stacked bar, segments keyed by game number
type barNode struct {
	team  string
	layer Layer
	row   anim
	cum   anim // cumulative score, drives the trailing label
	segs  map[int]*segNode
}

// segNode spans [start, start+width) in score units
// Hidden segments collapse to width 0 at the team's cumulative offset
type segNode struct {
	game    int
	start   anim
	width   anim
	color   render.RGB
	points  int
	visible bool
}

// glyphNode is one team's identity label
type glyphNode struct {
	team  string
	layer Layer
	rank  int
	row   anim
}

func (n *barNode) running(now time.Time) bool {
	if n.row.running(now) || n.cum.running(now) {
		return true
	}
	for _, sg := range n.segs {
		if sg.start.running(now) || sg.width.running(now) {
			return true
		}
	}
	return false
}

// seg returns the node of a game, creating it collapsed at offset
func (n *barNode) seg(game int, offset float64) *segNode {
	sg, ok := n.segs[game]
	if !ok {
		sg = &segNode{game: game, start: newAnim(offset), width: newAnim(0)}
		n.segs[game] = sg
	}
	return sg
}

func (n *barNode) games() []int {
	out := make([]int, 0, len(n.segs))
	for g := range n.segs {
		out = append(out, g)
	}
	slices.Sort(out)
	return out
}

func (s *Surface) updateGlyph(team string, rank int, y float64, now time.Time) {
	g, ok := s.glyphs[team]
	if !ok {
		s.glyphs[team] = &glyphNode{team: team, layer: s.layer, rank: rank, row: newAnim(y)}
		return
	}
	g.rank = rank
	g.row.retarget(y, now, s.opts.Duration)
}

func (s *Surface) updateBar(e score.FrameEntry, y float64, now time.Time) {
	dur := s.opts.Duration
	n, ok := s.bars[e.Team]
	if !ok {
		n = &barNode{team: e.Team, layer: s.layer, row: newAnim(y), cum: newAnim(0), segs: make(map[int]*segNode)}
		s.bars[e.Team] = n
	} else {
		n.row.retarget(y, now, dur)
	}
	cum := float64(e.CumulativeScore)
	n.cum.retarget(cum, now, dur)

	for _, g := range e.VisibleGames {
		sg := n.seg(g.GameNumber, float64(g.StartOffset))
		sg.start.retarget(float64(g.StartOffset), now, dur)
		sg.width.retarget(float64(g.Points), now, dur)
		sg.color = g.Color
		sg.points = g.Points
		sg.visible = true
	}
	for _, game := range e.HiddenGames {
		sg := n.seg(game, cum)
		sg.start.retarget(cum, now, dur)
		sg.width.retarget(0, now, dur)
		sg.visible = false
	}
}
