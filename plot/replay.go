package plot

import (
	"fmt"
	"image/color"

	"github.com/caffeineduck/plotpad/logbuf"
)

// Defaults applied at the start of every replay.
const (
	DefaultLeft   = -1.0
	DefaultRight  = 1.0
	DefaultBottom = -1.0
	DefaultTop    = 1.0

	ChartMargin   = 5
	LabelAreaSize = 30
	CaptionSize   = 25
)

// SeriesColor is the stroke color of every replayed line series.
var SeriesColor = color.RGBA{R: 255, A: 255}

// Layout describes a single chart: its caption, axis extents and the spacing
// reserved around the plotting area.
type Layout struct {
	Title       string
	XMin, XMax  float64
	YMin, YMax  float64
	Margin      int
	XLabelArea  int
	YLabelArea  int
	CaptionSize int
}

// Series is one line to draw. X and Y always have equal length.
type Series struct {
	X, Y  []float64
	Label string
	Color color.RGBA
}

// Surface is a drawing target. A replay calls Clear once, Chart once per
// PlotSeries command and Present once at the end.
type Surface interface {
	Clear() error
	Chart(l Layout) (Canvas, error)
	Present() error
}

// Canvas is a single chart produced by a Surface.
type Canvas interface {
	Line(s Series) error
	Legend() error
}

// Replay draws cmds onto s in order. Failures are appended to sink as
// "Error: ..." lines and do not stop the replay.
func Replay(cmds []Command, s Surface, sink logbuf.Sink) {
	report := func(err error) {
		if err != nil && sink != nil {
			sink.AppendLine("Error: " + err.Error())
		}
	}

	report(s.Clear())

	layout := Layout{
		XMin:        DefaultLeft,
		XMax:        DefaultRight,
		YMin:        DefaultBottom,
		YMax:        DefaultTop,
		Margin:      ChartMargin,
		XLabelArea:  LabelAreaSize,
		YLabelArea:  LabelAreaSize,
		CaptionSize: CaptionSize,
	}

	for _, c := range cmds {
		switch c.Kind {
		case SetTitle:
			layout.Title = c.Title
		case SetXRange:
			layout.XMin, layout.XMax = c.Min, c.Max
		case SetYRange:
			layout.YMin, layout.YMax = c.Min, c.Max
		case PlotSeries:
			report(drawSeries(s, layout, c))
		default:
			report(fmt.Errorf("unknown plot command %s", c.Kind))
		}
	}

	report(s.Present())
}

func drawSeries(s Surface, l Layout, c Command) error {
	n := min(len(c.X), len(c.Y))
	canvas, err := s.Chart(l)
	if err != nil {
		return fmt.Errorf("chart %q: %w", l.Title, err)
	}
	series := Series{
		X:     c.X[:n],
		Y:     c.Y[:n],
		Label: c.Label,
		Color: SeriesColor,
	}
	if err := canvas.Line(series); err != nil {
		return fmt.Errorf("series %q: %w", c.Label, err)
	}
	if err := canvas.Legend(); err != nil {
		return fmt.Errorf("legend: %w", err)
	}
	return nil
}
