// Package svgchart draws replayed plots with go-chart and stacks every chart
// of a frame into one SVG or PNG image.
package svgchart

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"strings"
	"sync"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/caffeineduck/plotpad/plot"
)

// Format is the encoding produced by Present.
type Format int

const (
	SVG Format = iota
	PNG
)

const (
	DefaultWidth  = 800
	DefaultHeight = 450
)

// Surface is a file-backed plot.Surface. Charts are collected between Clear
// and Present; Present renders them and keeps the encoded image until the
// next Present.
type Surface struct {
	width  int
	height int
	format Format

	charts []*canvas

	mu  sync.RWMutex
	out []byte
}

// Option configures a Surface.
type Option func(*Surface)

// WithSize sets the size of each chart in pixels.
func WithSize(width, height int) Option {
	return func(s *Surface) {
		if width > 0 {
			s.width = width
		}
		if height > 0 {
			s.height = height
		}
	}
}

// WithPNG switches the output to PNG.
func WithPNG() Option {
	return func(s *Surface) {
		s.format = PNG
	}
}

func New(opts ...Option) *Surface {
	s := &Surface{
		width:  DefaultWidth,
		height: DefaultHeight,
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
	if !(l.XMax > l.XMin) {
		return nil, fmt.Errorf("invalid x range [%g, %g]", l.XMin, l.XMax)
	}
	if !(l.YMax > l.YMin) {
		return nil, fmt.Errorf("invalid y range [%g, %g]", l.YMin, l.YMax)
	}

	c := &canvas{chart: chart.Chart{
		Title:      l.Title,
		TitleStyle: chart.Style{FontSize: float64(l.CaptionSize)},
		Width:      s.width,
		Height:     s.height,
		Background: chart.Style{Padding: chart.Box{
			Top:    l.Margin,
			Left:   l.Margin + l.YLabelArea,
			Right:  l.Margin,
			Bottom: l.Margin + l.XLabelArea,
		}},
		XAxis: chart.XAxis{Range: &chart.ContinuousRange{Min: l.XMin, Max: l.XMax}},
		YAxis: chart.YAxis{Range: &chart.ContinuousRange{Min: l.YMin, Max: l.YMax}},
	}}
	s.charts = append(s.charts, c)
	return c, nil
}

// Present renders every chart of the frame. A chart that fails to render is
// left out and its error returned; the others are still drawn. Charts without
// a series are skipped.
func (s *Surface) Present() error {
	var (
		parts [][]byte
		errs  []error
	)
	for i, c := range s.charts {
		if len(c.chart.Series) == 0 {
			continue
		}
		var buf bytes.Buffer
		if err := c.render(s.format, &buf); err != nil {
			errs = append(errs, fmt.Errorf("chart %d: %w", i+1, err))
			continue
		}
		parts = append(parts, buf.Bytes())
	}

	var (
		out []byte
		err error
	)
	switch s.format {
	case PNG:
		out, err = stackPNG(parts, s.width, s.height)
	default:
		out = stackSVG(parts, s.width, s.height)
	}
	if err != nil {
		errs = append(errs, err)
	}

	s.mu.Lock()
	s.out = out
	s.mu.Unlock()
	s.charts = nil

	return errors.Join(errs...)
}

// Bytes returns the image produced by the last Present.
func (s *Surface) Bytes() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return bytes.Clone(s.out)
}

// WriteTo writes the image produced by the last Present.
func (s *Surface) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(s.Bytes())
	return int64(n), err
}

// ContentType is the MIME type of the output.
func (s *Surface) ContentType() string {
	if s.format == PNG {
		return "image/png"
	}
	return "image/svg+xml"
}

type canvas struct {
	chart chart.Chart
}

func (c *canvas) Line(ser plot.Series) error {
	if len(ser.X) == 0 {
		return errors.New("no points")
	}
	c.chart.Series = append(c.chart.Series, chart.ContinuousSeries{
		Name:    ser.Label,
		XValues: ser.X,
		YValues: ser.Y,
		Style: chart.Style{
			StrokeColor: toDrawing(ser.Color),
			StrokeWidth: 2,
		},
	})
	return nil
}

func (c *canvas) Legend() error {
	c.chart.Elements = []chart.Renderable{chart.Legend(&c.chart, chart.Style{
		FillColor:   drawing.Color{R: 255, G: 255, B: 255, A: 204},
		StrokeColor: drawing.ColorBlack,
	})}
	return nil
}

func (c *canvas) render(f Format, w io.Writer) error {
	if f == PNG {
		return c.chart.Render(chart.PNG, w)
	}
	return c.chart.Render(chart.SVG, w)
}

func toDrawing(c color.RGBA) drawing.Color {
	return drawing.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}

// stackSVG places each chart document below the previous one inside a single
// outer document.
func stackSVG(parts [][]byte, width, height int) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" width="%d" height="%d">`,
		width, height*len(parts))
	b.WriteByte('\n')
	for i, p := range parts {
		fmt.Fprintf(&b, `<g transform="translate(0,%d)">`, i*height)
		b.WriteByte('\n')
		b.WriteString(stripProlog(string(p)))
		b.WriteString("\n</g>\n")
	}
	b.WriteString("</svg>\n")
	return b.Bytes()
}

func stripProlog(doc string) string {
	doc = strings.TrimSpace(doc)
	if strings.HasPrefix(doc, "<?xml") {
		if end := strings.Index(doc, "?>"); end >= 0 {
			doc = strings.TrimSpace(doc[end+2:])
		}
	}
	return doc
}

func stackPNG(parts [][]byte, width, height int) ([]byte, error) {
	total := height * len(parts)
	if total == 0 {
		total = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, total))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)

	for i, p := range parts {
		img, err := png.Decode(bytes.NewReader(p))
		if err != nil {
			return nil, fmt.Errorf("decode chart %d: %w", i+1, err)
		}
		r := image.Rect(0, i*height, width, (i+1)*height)
		draw.Draw(dst, r, img, img.Bounds().Min, draw.Over)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
