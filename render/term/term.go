// Package term draws replayed plots as character cells for the terminal
// studio.
package term

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/caffeineduck/plotpad/plot"
)

const (
	glyph = '•'

	DefaultWidth  = 60
	DefaultHeight = 12
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.NormalBorder())
	axisStyle   = lipgloss.NewStyle().Faint(true)
	seriesStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#e53935"))
)

// Surface renders each chart of a frame as a bordered grid of cells and
// keeps the text of the last presented frame.
type Surface struct {
	mu     sync.RWMutex
	width  int
	height int
	frame  string

	charts []*canvas
}

// New creates a surface whose charts have a plotting area of width by height
// cells.
func New(width, height int) *Surface {
	s := &Surface{}
	s.SetSize(width, height)
	return s
}

// SetSize changes the plotting area used by charts created from now on.
func (s *Surface) SetSize(width, height int) {
	if width < 2 {
		width = DefaultWidth
	}
	if height < 2 {
		height = DefaultHeight
	}
	s.mu.Lock()
	s.width, s.height = width, height
	s.mu.Unlock()
}

func (s *Surface) Clear() error {
	s.charts = nil
	return nil
}

func (s *Surface) Chart(l plot.Layout) (plot.Canvas, error) {
	if !(l.XMax > l.XMin) || !(l.YMax > l.YMin) {
		return nil, fmt.Errorf("invalid range x [%g, %g] y [%g, %g]", l.XMin, l.XMax, l.YMin, l.YMax)
	}

	s.mu.RLock()
	w, h := s.width, s.height
	s.mu.RUnlock()

	grid := make([][]rune, h)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", w))
	}
	c := &canvas{layout: l, grid: grid}
	s.charts = append(s.charts, c)
	return c, nil
}

func (s *Surface) Present() error {
	var blocks []string
	for _, c := range s.charts {
		if len(c.labels) > 0 {
			blocks = append(blocks, c.render())
		}
	}
	s.charts = nil

	s.mu.Lock()
	s.frame = strings.Join(blocks, "\n")
	s.mu.Unlock()
	return nil
}

// String returns the last presented frame.
func (s *Surface) String() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frame
}

type canvas struct {
	layout plot.Layout
	grid   [][]rune
	labels []string
	legend bool
}

func (c *canvas) Line(ser plot.Series) error {
	if len(ser.X) == 0 {
		return errors.New("no points")
	}

	prevOK := false
	var pr, pc int
	for i := range ser.X {
		r, col, ok := c.cell(ser.X[i], ser.Y[i])
		if ok {
			if prevOK {
				c.segment(pr, pc, r, col)
			} else {
				c.grid[r][col] = glyph
			}
		}
		pr, pc, prevOK = r, col, ok
	}
	c.labels = append(c.labels, ser.Label)
	return nil
}

func (c *canvas) Legend() error {
	c.legend = true
	return nil
}

// cell maps a data point to a grid row and column. Points outside the
// chart's ranges are reported as not ok.
func (c *canvas) cell(x, y float64) (row, col int, ok bool) {
	l := c.layout
	if math.IsNaN(x) || math.IsNaN(y) || x < l.XMin || x > l.XMax || y < l.YMin || y > l.YMax {
		return 0, 0, false
	}
	h, w := len(c.grid), len(c.grid[0])
	col = int(math.Round((x - l.XMin) / (l.XMax - l.XMin) * float64(w-1)))
	row = int(math.Round((l.YMax - y) / (l.YMax - l.YMin) * float64(h-1)))
	return row, col, true
}

// segment draws a straight run of glyphs between two cells.
func (c *canvas) segment(r0, c0, r1, c1 int) {
	dr, dc := abs(r1-r0), -abs(c1-c0)
	sr, sc := sign(r1-r0), sign(c1-c0)
	e := dr + dc
	for {
		c.grid[r0][c0] = glyph
		if r0 == r1 && c0 == c1 {
			return
		}
		e2 := 2 * e
		if e2 >= dc {
			e += dc
			r0 += sr
		}
		if e2 <= dr {
			e += dr
			c0 += sc
		}
	}
}

func (c *canvas) render() string {
	width := len(c.grid[0])

	rows := make([]string, len(c.grid))
	for i, row := range c.grid {
		var b strings.Builder
		for _, r := range row {
			if r == glyph {
				b.WriteString(seriesStyle.Render(string(r)))
			} else {
				b.WriteRune(r)
			}
		}
		rows[i] = b.String()
	}

	var parts []string
	if c.layout.Title != "" {
		parts = append(parts, titleStyle.Width(width+2).Align(lipgloss.Center).Render(c.layout.Title))
	}
	parts = append(parts, boxStyle.Render(strings.Join(rows, "\n")))
	parts = append(parts, axisStyle.Render(fmt.Sprintf("x [%g, %g]  y [%g, %g]",
		c.layout.XMin, c.layout.XMax, c.layout.YMin, c.layout.YMax)))
	if c.legend {
		for _, label := range c.labels {
			parts = append(parts, seriesStyle.Render("──")+" "+label)
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
