package plot

import "github.com/caffeineduck/plotpad/hostfunc"

// Binding is the script-facing side of a Buffer. Its methods are exported to
// the interpreter as package "plot".
type Binding struct {
	buf *Buffer
}

func NewBinding(buf *Buffer) *Binding {
	return &Binding{buf: buf}
}

// Register exports the binding's methods to script code as package "plot".
func (b *Binding) Register(r *hostfunc.Registry) {
	r.Register("plot", "Title", b.Title)
	r.Register("plot", "XLim", b.XLim)
	r.Register("plot", "YLim", b.YLim)
	r.Register("plot", "Plot", b.Plot)
}

func (b *Binding) Title(text string) {
	b.buf.Record(TitleCommand(text))
}

func (b *Binding) XLim(left, right float64) {
	b.buf.Record(XRangeCommand(left, right))
}

func (b *Binding) YLim(bottom, top float64) {
	b.buf.Record(YRangeCommand(bottom, top))
}

// Plot records a line series. Invalid series panic with a *ValidationError so
// the failure surfaces inside the script, where it can be recovered or
// otherwise ends the run as a runtime fault. Nothing is recorded in that case.
func (b *Binding) Plot(x, y any, label string) {
	xs, err := ParseSeries("X", x)
	if err != nil {
		panic(err)
	}
	ys, err := ParseSeries("Y", y)
	if err != nil {
		panic(err)
	}
	b.buf.Record(SeriesCommand(xs, ys, label))
}
