package term

import (
	"strings"
	"testing"

	"github.com/caffeineduck/plotpad/logbuf"
	"github.com/caffeineduck/plotpad/plot"
)

func TestPresentDrawsCharts(t *testing.T) {
	s := New(20, 5)
	log := logbuf.New()
	plot.Replay([]plot.Command{
		plot.TitleCommand("Alpha"),
		plot.XRangeCommand(0, 10),
		plot.SeriesCommand([]float64{0, 10}, []float64{-1, 1}, "rise"),
		plot.TitleCommand("Beta"),
		plot.SeriesCommand([]float64{0, 10}, []float64{0, 0}, "flat"),
	}, s, log)

	if log.Len() != 0 {
		t.Fatalf("unexpected errors: %v", log.Lines())
	}
	out := s.String()
	for _, want := range []string{"Alpha", "Beta", "rise", "flat", "x [0, 10]", string(glyph)} {
		if !strings.Contains(out, want) {
			t.Errorf("frame missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "Alpha") > strings.Index(out, "Beta") {
		t.Errorf("charts out of order")
	}
}

func TestCellMapping(t *testing.T) {
	s := New(11, 5)
	cv, err := s.Chart(plot.Layout{XMin: 0, XMax: 10, YMin: -1, YMax: 1})
	if err != nil {
		t.Fatal(err)
	}
	c := cv.(*canvas)

	tests := []struct {
		x, y    float64
		row     int
		col     int
		visible bool
	}{
		{0, 1, 0, 0, true},
		{10, -1, 4, 10, true},
		{5, 0, 2, 5, true},
		{11, 0, 0, 0, false},
		{5, 2, 0, 0, false},
	}
	for _, tt := range tests {
		r, col, ok := c.cell(tt.x, tt.y)
		if ok != tt.visible || (ok && (r != tt.row || col != tt.col)) {
			t.Errorf("cell(%g, %g) = %d, %d, %v; want %d, %d, %v", tt.x, tt.y, r, col, ok, tt.row, tt.col, tt.visible)
		}
	}
}

func TestSegmentIsContinuous(t *testing.T) {
	s := New(11, 11)
	cv, _ := s.Chart(plot.Layout{XMin: 0, XMax: 10, YMin: 0, YMax: 10})
	c := cv.(*canvas)

	if err := c.Line(plot.Series{X: []float64{0, 10}, Y: []float64{0, 10}}); err != nil {
		t.Fatal(err)
	}
	for i := 0; i <= 10; i++ {
		if c.grid[10-i][i] != glyph {
			t.Errorf("diagonal cell %d not drawn", i)
		}
	}
}

func TestEmptyAndInvalid(t *testing.T) {
	s := New(10, 4)
	log := logbuf.New()
	plot.Replay([]plot.Command{
		plot.SeriesCommand(nil, nil, "none"),
		plot.XRangeCommand(3, 1),
		plot.SeriesCommand([]float64{1}, []float64{1}, "bad range"),
	}, s, log)

	if log.Len() != 2 {
		t.Fatalf("expected 2 errors, got %q", log.Lines())
	}
	if s.String() != "" {
		t.Errorf("expected empty frame, got %q", s.String())
	}
}

func TestSetSizeDefaults(t *testing.T) {
	s := New(0, 0)
	if s.width != DefaultWidth || s.height != DefaultHeight {
		t.Errorf("unexpected size %dx%d", s.width, s.height)
	}
}
