package chart

import (
	"math"
	"time"

	"github.com/lixenwraith/barrace/render"
)

const (
	celebrationLifetime = 2500 * time.Millisecond
	particleGravity     = 6.0 // rows per second squared
)

// glowIntensity is the peak name glow for ranks 1..3
var glowIntensity = [3]float64{1.0, 0.7, 0.45}

var particleRunes = [...]rune{'✦', '*', '+', '·'}

type particle struct {
	x, y   float64 // origin in cells
	vx, vy float64 // cells per second
	color  render.RGB
}

type celebration struct {
	start     time.Time
	top       []string
	particles []particle
}

// Celebrate starts a particle burst from the trailing edge of each top team's
// bar and a glow pulse on their names; it removes itself after its lifetime
func (s *Surface) Celebrate(top []string, now time.Time) {
	if len(top) > len(glowIntensity) {
		top = top[:len(glowIntensity)]
	}
	if len(top) == 0 || s.layer != LayerPlaying {
		return
	}

	d := s.Dimensions()
	am := s.axisMax.value(now)
	xs := LinearScale{D0: 0, D1: am, R0: 0, R1: float64(d.PlotWidth)}

	c := &celebration{start: now, top: append([]string(nil), top...)}
	for i, team := range c.top {
		n, ok := s.bars[team]
		if !ok {
			continue
		}
		ox := float64(d.PlotX) + xs.Map(n.cum.to)
		oy := n.row.to
		if !finite(ox, oy) {
			continue
		}
		count := 36 - 10*i
		for k := 0; k < count; k++ {
			angle := 2*math.Pi*float64(k)/float64(count) + (s.rng.Float64()-0.5)*0.4
			speed := 8 + s.rng.Float64()*14
			c.particles = append(c.particles, particle{
				x:     ox,
				y:     oy,
				vx:    math.Cos(angle) * speed,
				vy:    math.Sin(angle) * speed * 0.5, // cells are twice as tall as wide
				color: render.Lerp(medalColors[i], render.RGBWhite, s.rng.Float64()*0.5),
			})
		}
	}
	s.celebration = c
}

// Celebrating reports whether a celebration is visible at now
func (s *Surface) Celebrating(now time.Time) bool {
	return s.celebration != nil && now.Before(s.celebration.start.Add(celebrationLifetime))
}

// glowFor returns the glow strength and medal color for a celebrated team
func (s *Surface) glowFor(team string, now time.Time) (float64, render.RGB, bool) {
	c := s.celebration
	if c == nil {
		return 0, render.RGB{}, false
	}
	t := float64(now.Sub(c.start)) / float64(celebrationLifetime)
	if t < 0 || t >= 1 {
		return 0, render.RGB{}, false
	}
	for i, name := range c.top {
		if name == team {
			// Two pulses over the lifetime, fading out
			pulse := 0.5 - 0.5*math.Cos(4*math.Pi*t)
			return glowIntensity[i] * pulse * (1 - t*0.5), medalColors[i], true
		}
	}
	return 0, render.RGB{}, false
}

func (s *Surface) drawCelebration(d Dimensions, now time.Time) {
	c := s.celebration
	if c == nil {
		return
	}
	elapsed := now.Sub(c.start)
	if elapsed >= celebrationLifetime {
		s.celebration = nil
		return
	}
	if elapsed < 0 {
		return
	}
	frac := float64(elapsed) / float64(celebrationLifetime)
	sec := elapsed.Seconds()
	alpha := 1 - frac

	s.drawBanner(d, c.top, math.Min(1, 4*alpha))

	r := particleRunes[min(int(frac*float64(len(particleRunes))), len(particleRunes)-1)]
	for _, p := range c.particles {
		x := round(p.x + p.vx*sec)
		y := round(p.y + p.vy*sec + 0.5*particleGravity*sec*sec)
		if x < 0 || x >= d.Width || !s.inPlot(d, y) {
			continue
		}
		if cell := s.buf.Get(x, y); cell.Rune != 0 && cell.Rune != ' ' {
			continue
		}
		s.buf.SetFgOnly(x, y, r, render.Lerp(render.RgbBackground, p.color, alpha), render.AttrBold)
	}
}
