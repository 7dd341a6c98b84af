package identity

import (
	"image"
	"image/color"

	"github.com/lixenwraith/barrace/render"
)

// BadgeWidth is the number of terminal columns a badge occupies
const BadgeWidth = 2

// quadrantChars maps 4-bit patterns to Unicode quadrant characters
// Bit order: 0=UL, 1=UR, 2=LL, 3=LR (1 = foreground)
var quadrantChars = [16]rune{
	' ', '▘', '▝', '▀', '▖', '▌', '▞', '▛',
	'▗', '▚', '▐', '▜', '▄', '▙', '▟', '█',
}

// Badge converts a logo into two quadrant cells (a 4x2 effective pixel grid)
// Transparent pixels are composited over bg
func Badge(img image.Image, bg render.RGB) [BadgeWidth]render.Cell {
	var out [BadgeWidth]render.Cell
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		for i := range out {
			out[i] = render.Cell{Rune: ' ', Bg: bg}
		}
		return out
	}

	const gridW, gridH = BadgeWidth * 2, 2
	var grid [gridH][gridW]render.RGB
	for gy := 0; gy < gridH; gy++ {
		for gx := 0; gx < gridW; gx++ {
			grid[gy][gx] = averageRegion(img,
				b.Min.X+gx*b.Dx()/gridW, b.Min.Y+gy*b.Dy()/gridH,
				b.Min.X+(gx+1)*b.Dx()/gridW, b.Min.Y+(gy+1)*b.Dy()/gridH,
				bg)
		}
	}

	for x := range out {
		pixels := [4]render.RGB{grid[0][2*x], grid[0][2*x+1], grid[1][2*x], grid[1][2*x+1]}
		r, fg, cbg := bestQuadrant(pixels)
		out[x] = render.Cell{Rune: r, Fg: fg, Bg: cbg}
	}
	return out
}

// averageRegion averages [x0,x1)×[y0,y1), always sampling at least one pixel
func averageRegion(img image.Image, x0, y0, x1, y1 int, bg render.RGB) render.RGB {
	x1 = max(x1, x0+1)
	y1 = max(y1, y0+1)
	var sr, sg, sb, n int
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			c := over(img.At(x, y), bg)
			sr += int(c.R)
			sg += int(c.G)
			sb += int(c.B)
			n++
		}
	}
	return render.RGB{R: uint8(sr / n), G: uint8(sg / n), B: uint8(sb / n)}
}

// over composites a possibly translucent color over bg
func over(c color.Color, bg render.RGB) render.RGB {
	r, g, b, a := c.RGBA()
	if a == 0 {
		return bg
	}
	src := render.RGB{R: uint8((r * 0xff) / a), G: uint8((g * 0xff) / a), B: uint8((b * 0xff) / a)}
	return render.Blend(bg, src, float64(a)/0xffff)
}

// bestQuadrant searches all 16 patterns for the lowest squared color error
func bestQuadrant(pixels [4]render.RGB) (rune, render.RGB, render.RGB) {
	bestErr := int(^uint(0) >> 1)
	best := 0
	var bestFg, bestBg render.RGB
	for pattern := 0; pattern < 16; pattern++ {
		fg, bg, err := patternColors(pixels, pattern)
		if err < bestErr {
			bestErr, best, bestFg, bestBg = err, pattern, fg, bg
		}
	}
	if best == 0 {
		// Uniform cell: the background carries the color, keep fg visible for any overlay
		bestFg = bestBg
	}
	return quadrantChars[best], bestFg, bestBg
}

func patternColors(pixels [4]render.RGB, pattern int) (fg, bg render.RGB, total int) {
	var f, k [3]int
	var fn, kn int
	for i, p := range pixels {
		acc, cnt := &k, &kn
		if pattern&(1<<i) != 0 {
			acc, cnt = &f, &fn
		}
		acc[0] += int(p.R)
		acc[1] += int(p.G)
		acc[2] += int(p.B)
		*cnt++
	}
	if fn > 0 {
		fg = render.RGB{R: uint8(f[0] / fn), G: uint8(f[1] / fn), B: uint8(f[2] / fn)}
	}
	if kn > 0 {
		bg = render.RGB{R: uint8(k[0] / kn), G: uint8(k[1] / kn), B: uint8(k[2] / kn)}
	}
	for i, p := range pixels {
		target := bg
		if pattern&(1<<i) != 0 {
			target = fg
		}
		total += distanceSq(p, target)
	}
	return fg, bg, total
}

func distanceSq(a, b render.RGB) int {
	dr := int(a.R) - int(b.R)
	dg := int(a.G) - int(b.G)
	db := int(a.B) - int(b.B)
	return dr*dr + dg*dg + db*db
}
