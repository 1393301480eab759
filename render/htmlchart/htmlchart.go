// Package htmlchart renders replayed plots as an interactive HTML page using
// go-echarts. Each chart of a frame becomes one line chart on the page.
package htmlchart

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"sync"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/caffeineduck/plotpad/plot"
)

// Surface is a plot.Surface producing an HTML document.
type Surface struct {
	title  string
	width  string
	height string

	charts []*canvas

	mu  sync.RWMutex
	out []byte
}

// Option configures a Surface.
type Option func(*Surface)

// WithPageTitle sets the HTML page title.
func WithPageTitle(title string) Option {
	return func(s *Surface) {
		s.title = title
	}
}

// WithSize sets the CSS size of each chart, e.g. "900px".
func WithSize(width, height string) Option {
	return func(s *Surface) {
		s.width, s.height = width, height
	}
}

func New(opts ...Option) *Surface {
	s := &Surface{
		title:  "plotpad",
		width:  "900px",
		height: "500px",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Surface) Clear() error {
	s.charts = nil
	return nil
}

func (s *Surface) Chart(l plot.Layout) (plot.Canvas, error) {
	if !(l.XMax > l.XMin) || !(l.YMax > l.YMin) {
		return nil, fmt.Errorf("invalid range x [%g, %g] y [%g, %g]", l.XMin, l.XMax, l.YMin, l.YMax)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: s.width, Height: s.height}),
		charts.WithTitleOpts(opts.Title{
			Title:      l.Title,
			TitleStyle: &opts.TextStyle{FontSize: l.CaptionSize},
		}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Min: l.XMin, Max: l.XMax}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Min: l.YMin, Max: l.YMax}),
	)

	c := &canvas{line: line}
	s.charts = append(s.charts, c)
	return c, nil
}

// Present renders the page.
func (s *Surface) Present() error {
	page := components.NewPage()
	page.PageTitle = s.title
	for _, c := range s.charts {
		if c.series > 0 {
			page.AddCharts(c.line)
		}
	}
	s.charts = nil

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return fmt.Errorf("render page: %w", err)
	}

	s.mu.Lock()
	s.out = buf.Bytes()
	s.mu.Unlock()
	return nil
}

// Bytes returns the page produced by the last Present.
func (s *Surface) Bytes() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return bytes.Clone(s.out)
}

// WriteTo writes the page produced by the last Present.
func (s *Surface) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(s.Bytes())
	return int64(n), err
}

func (s *Surface) ContentType() string {
	return "text/html; charset=utf-8"
}

type canvas struct {
	line   *charts.Line
	series int
}

func (c *canvas) Line(ser plot.Series) error {
	if len(ser.X) == 0 {
		return errors.New("no points")
	}
	data := make([]opts.LineData, len(ser.X))
	for i := range ser.X {
		data[i] = opts.LineData{Value: []interface{}{ser.X[i], ser.Y[i]}}
	}
	hex := hexColor(ser.Color)
	c.line.AddSeries(ser.Label, data,
		charts.WithLineStyleOpts(opts.LineStyle{Color: hex}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: hex}),
	)
	c.series++
	return nil
}

func (c *canvas) Legend() error {
	c.line.SetGlobalOptions(charts.WithLegendOpts(opts.Legend{Show: true}))
	return nil
}

func hexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
