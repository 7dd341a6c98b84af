package chart

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/lixenwraith/barrace/identity"
	"github.com/lixenwraith/barrace/render"
)

var medalColors = [3]render.RGB{render.RgbGold, render.RgbSilver, render.RgbBronze}

func round(v float64) int {
	return int(math.Round(v))
}

func (s *Surface) inPlot(d Dimensions, y int) bool {
	return y >= d.PlotY && y < d.PlotY+d.PlotHeight
}

// ===== STATUS =====

func (s *Surface) drawStatus(d Dimensions) {
	s.buf.FillBg(0, 0, d.Width, render.RgbStatusBg)
	s.buf.Text(1, 0, s.opts.Title, render.RgbStatusText, render.AttrBold, d.Width)

	var parts []string
	if s.status.Phase != "" {
		parts = append(parts, s.status.Phase)
	}
	if s.status.MaxGames > 0 {
		parts = append(parts, fmt.Sprintf("game %d/%d", s.status.Index, s.status.MaxGames))
	}
	if len(s.status.Filter) > 0 {
		games := make([]string, len(s.status.Filter))
		for i, g := range s.status.Filter {
			games[i] = strconv.Itoa(g)
		}
		parts = append(parts, "filter "+strings.Join(games, ","))
	}
	right := strings.Join(parts, "  ")
	x := d.Width - runewidth.StringWidth(right) - 1
	if x > runewidth.StringWidth(s.opts.Title)+2 {
		s.buf.Text(x, 0, right, render.RgbStatusText, render.AttrNone, d.Width)
	}
}

// ===== ERROR PANEL =====

func (s *Surface) drawError(d Dimensions) {
	lines := []string{s.errMsg, "", "r retry   q quit"}
	w := 0
	for _, l := range lines {
		w = max(w, runewidth.StringWidth(l))
	}
	w = min(w+4, d.Width)
	h := len(lines) + 2
	x0 := max((d.Width-w)/2, 0)
	y0 := max((d.Height-h)/2, 1)

	for y := y0; y < y0+h; y++ {
		s.buf.FillBg(x0, y, w, render.RgbPanel)
	}
	for i, l := range lines {
		fg := render.RgbError
		attrs := render.AttrBold
		if i > 0 {
			fg, attrs = render.RgbTextDim, render.AttrNone
		}
		l = runewidth.Truncate(l, w-4, "…")
		lx := x0 + (w-runewidth.StringWidth(l))/2
		s.buf.Text(lx, y0+1+i, l, fg, attrs, x0+w)
	}
}

// ===== AXIS =====

func (s *Surface) drawAxis(d Dimensions, xs LinearScale, am float64) {
	ay := d.PlotY + d.PlotHeight
	right := d.PlotX + d.PlotWidth
	for x := d.PlotX; x < right; x++ {
		s.buf.SetFgOnly(x, ay, '─', render.RgbAxis, render.AttrNone)
	}

	lastEnd := -1
	for _, v := range Ticks(am, max(2, d.PlotWidth/10)) {
		x := min(d.PlotX+round(xs.Map(float64(v))), right-1)
		s.buf.SetFgOnly(x, ay, '┬', render.RgbAxis, render.AttrNone)
		label := strconv.Itoa(v)
		lw := runewidth.StringWidth(label)
		lx := x - lw/2
		if lx <= lastEnd || lx+lw > d.Width {
			continue
		}
		s.buf.Text(lx, ay+1, label, render.RgbTextDim, render.AttrNone, d.Width)
		lastEnd = lx + lw
	}
}

// ===== BARS =====

func (s *Surface) drawBars(d Dimensions, xs LinearScale, now time.Time) {
	right := d.PlotX + d.PlotWidth
	for _, team := range sortedKeys(s.bars) {
		n := s.bars[team]
		if n.layer != s.layer {
			continue
		}
		y := round(n.row.value(now))
		if !s.inPlot(d, y) {
			continue
		}

		end := d.PlotX
		for _, game := range n.games() {
			sg := n.segs[game]
			st := sg.start.value(now)
			w := sg.width.value(now)
			x0 := d.PlotX + round(xs.Map(st))
			x1 := min(d.PlotX+round(xs.Map(st+w)), right)
			if x1 <= x0 {
				continue
			}
			s.buf.FillBg(x0, y, x1-x0, sg.color)
			end = max(end, x1)

			if !sg.visible {
				continue
			}
			label := strconv.Itoa(sg.points)
			lw := runewidth.StringWidth(label)
			if x1-x0 >= s.opts.LabelThreshold && lw <= x1-x0 {
				s.buf.Text(x0+(x1-x0-lw)/2, y, label, render.Contrast(sg.color), render.AttrNone, x1)
			}
		}

		if s.layer == LayerPlaying {
			total := strconv.Itoa(round(n.cum.value(now)))
			s.buf.Text(end+1, y, total, render.RgbText, render.AttrBold, d.Width)
		}
	}
}

// ===== GLYPHS =====

func (s *Surface) drawGlyphs(d Dimensions, now time.Time) {
	nameX := rankWidth + identity.BadgeWidth + badgeGap
	for _, team := range sortedKeys(s.glyphs) {
		g := s.glyphs[team]
		if g.layer != s.layer {
			continue
		}
		y := round(g.row.value(now))
		if !s.inPlot(d, y) {
			continue
		}

		// Rank
		if s.layer == LayerPlaying {
			fg := render.RgbTextDim
			if g.rank <= len(medalColors) {
				fg = medalColors[g.rank-1]
			}
			s.buf.Text(0, y, fmt.Sprintf("%2d", g.rank), fg, render.AttrBold, rankWidth)
		} else {
			s.buf.Text(1, y, "·", render.RgbTextDim, render.AttrNone, rankWidth)
		}

		s.drawBadge(rankWidth, y, team)

		fg := render.RgbText
		attrs := render.AttrNone
		if glow, medal, ok := s.glowFor(team, now); ok {
			fg = render.BlendLab(fg, medal, glow)
			for x := nameX; x < nameX+s.nameWidth; x++ {
				s.buf.Set(x, y, 0, render.RGB{}, medal, render.BlendScreenBg, 0.3*glow, render.AttrNone)
			}
			attrs = render.AttrBold
		}
		name := runewidth.Truncate(team, s.nameWidth, "…")
		s.buf.Text(nameX, y, name, fg, attrs, nameX+s.nameWidth)
	}
}

// drawBadge writes the logo badge, or the fallback glyph on the team color
func (s *Surface) drawBadge(x, y int, team string) {
	if cells, ok := s.badges[team]; ok {
		for i, c := range cells {
			s.buf.SetWithBg(x+i, y, c.Rune, c.Fg, c.Bg)
		}
		return
	}

	bg := render.RgbPanel
	glyph := identity.Initials(team)
	if s.opts.Identity != nil {
		glyph = s.opts.Identity.FallbackGlyph(team)
		if bc, ok := s.opts.Identity.(badgeColorer); ok {
			bg = bc.BadgeColor(team)
		}
	}
	fg := render.Contrast(bg)
	s.buf.FillBg(x, y, identity.BadgeWidth, bg)
	glyph = runewidth.Truncate(glyph, identity.BadgeWidth, "")
	s.buf.Text(x, y, glyph, fg, render.AttrBold, x+identity.BadgeWidth)
}

// ===== LEGEND =====

func (s *Surface) drawLegend(d Dimensions) {
	y := d.Height - 1
	x := 1
	filter := s.status.Filter
	for _, item := range s.legend {
		text := fmt.Sprintf("%d %s", item.Game, item.Map)
		w := runewidth.StringWidth(text) + 2
		if x+w > d.Width {
			s.buf.Text(x, y, "…", render.RgbTextDim, render.AttrNone, d.Width)
			return
		}
		color, fg := item.Color, render.RgbText
		if len(filter) > 0 && !slices.Contains(filter, item.Game) {
			color = render.Blend(render.RgbBackground, item.Color, 0.3)
			fg = render.RgbTextDim
		}
		s.buf.SetFgOnly(x, y, '■', color, render.AttrNone)
		s.buf.Text(x+2, y, text, fg, render.AttrNone, d.Width)
		x += w + 2
	}
}

// ===== BANNER =====

func (s *Surface) drawBanner(d Dimensions, top []string, alpha float64) {
	parts := make([]string, len(top))
	for i, team := range top {
		parts[i] = humanize.Ordinal(i+1) + " " + team
	}
	text := strings.Join(parts, "   ")
	x := max((d.Width-runewidth.StringWidth(text))/2, 0)
	s.buf.Text(x, 1, text, render.Lerp(render.RgbBackground, render.RgbGold, alpha), render.AttrBold, d.Width)
}
