package notebook

import (
	"fmt"
	"io"

	"github.com/caffeineduck/plotpad/plot"
	"github.com/caffeineduck/plotpad/render/htmlchart"
	"github.com/caffeineduck/plotpad/render/svgchart"
)

// ExportSVG replays the retained plots onto a file-backed surface and writes
// the image to w. Pass svgchart.WithPNG for a raster image.
func (n *Notebook) ExportSVG(w io.Writer, opts ...svgchart.Option) error {
	s := svgchart.New(opts...)
	plot.Replay(n.retained, s, n.log)
	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

// ExportHTML writes the retained plots as an interactive HTML page.
func (n *Notebook) ExportHTML(w io.Writer, opts ...htmlchart.Option) error {
	s := htmlchart.New(opts...)
	plot.Replay(n.retained, s, n.log)
	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}
