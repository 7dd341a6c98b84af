// Package snapshot renders a standings frame as a static SVG or PNG image.
package snapshot

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/lixenwraith/barrace/render"
	"github.com/lixenwraith/barrace/score"
)

const (
	DefaultWidth     = 1024
	DefaultBarHeight = 28
	barSpacing       = 10
	topPadding       = 60
	bottomPadding    = 30
	minLabelFraction = 0.04 // of the axis ceiling
)

var ErrEmptyFrame = errors.New("frame has no teams")

// Options controls image geometry
type Options struct {
	Title     string
	Width     int
	BarHeight int
	Ceiling   int // axis ceiling, raised to fit the frame when too small
}

// Build converts a frame into a horizontal stacked bar chart
// Bars are normalized by go-chart, so each carries a transparent remainder up
// to the ceiling to keep lengths comparable across teams
func Build(f score.Frame, opts Options) (chart.StackedBarChart, error) {
	if len(f.Entries) == 0 {
		return chart.StackedBarChart{}, ErrEmptyFrame
	}
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.BarHeight <= 0 {
		opts.BarHeight = DefaultBarHeight
	}
	ceiling := max(opts.Ceiling, score.Ceiling(f.MaxCumulative()))

	bars := make([]chart.StackedBar, 0, len(f.Entries))
	for i, e := range f.Entries {
		bars = append(bars, chart.StackedBar{
			Name:   fmt.Sprintf("%d. %s (%d)", i+1, e.Team, e.CumulativeScore),
			Width:  opts.BarHeight,
			Values: barValues(e, ceiling),
		})
	}

	return chart.StackedBarChart{
		Title:        opts.Title,
		TitleStyle:   chart.Shown(),
		Width:        opts.Width,
		Height:       topPadding + bottomPadding + len(bars)*(opts.BarHeight+barSpacing),
		Background:   chart.Style{Padding: chart.Box{Top: topPadding, Left: 10, Right: 20, Bottom: bottomPadding}},
		XAxis:        chart.Hidden(),
		YAxis:        chart.Shown(),
		BarSpacing:   barSpacing,
		IsHorizontal: true,
		Bars:         bars,
	}, nil
}

// barValues lists segments right to left: remainder first, then games in reverse
func barValues(e score.FrameEntry, ceiling int) []chart.Value {
	values := make([]chart.Value, 0, len(e.VisibleGames)+1)
	values = append(values, chart.Value{
		Value: float64(max(ceiling-e.CumulativeScore, 0)),
		Style: chart.Style{FillColor: drawing.ColorTransparent, StrokeColor: drawing.ColorTransparent},
	})
	for i := len(e.VisibleGames) - 1; i >= 0; i-- {
		g := e.VisibleGames[i]
		if g.Points <= 0 {
			continue
		}
		v := chart.Value{
			Value: float64(g.Points),
			Style: chart.Style{
				FillColor:   toDrawing(g.Color),
				StrokeColor: toDrawing(render.Scale(g.Color, 0.8)),
				StrokeWidth: 1,
				FontColor:   toDrawing(render.Contrast(g.Color)),
			},
		}
		if float64(g.Points) >= minLabelFraction*float64(ceiling) {
			v.Label = strconv.Itoa(g.Points)
		}
		values = append(values, v)
	}
	return values
}

func toDrawing(c render.RGB) drawing.Color {
	return drawing.Color{R: c.R, G: c.G, B: c.B, A: 255}
}

// WriteSVG renders the frame as SVG
func WriteSVG(w io.Writer, f score.Frame, opts Options) error {
	c, err := Build(f, opts)
	if err != nil {
		return err
	}
	if err := c.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("failed to render svg: %w", err)
	}
	return nil
}

// WritePNG renders the frame as PNG
func WritePNG(w io.Writer, f score.Frame, opts Options) error {
	c, err := Build(f, opts)
	if err != nil {
		return err
	}
	if err := c.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render png: %w", err)
	}
	return nil
}
