package plot

import "fmt"

// Kind identifies the variant of a Command.
type Kind int

const (
	SetTitle Kind = iota
	SetXRange
	SetYRange
	PlotSeries
)

func (k Kind) String() string {
	switch k {
	case SetTitle:
		return "SetTitle"
	case SetXRange:
		return "SetXRange"
	case SetYRange:
		return "SetYRange"
	case PlotSeries:
		return "PlotSeries"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Command is one recorded drawing intent. Which fields are meaningful
// depends on Kind:
//
//	SetTitle    Title
//	SetXRange   Min (left), Max (right)
//	SetYRange   Min (bottom), Max (top)
//	PlotSeries  X, Y, Label
type Command struct {
	Kind  Kind
	Title string
	Min   float64
	Max   float64
	X     []float64
	Y     []float64
	Label string
}

func TitleCommand(text string) Command {
	return Command{Kind: SetTitle, Title: text}
}

func XRangeCommand(left, right float64) Command {
	return Command{Kind: SetXRange, Min: left, Max: right}
}

func YRangeCommand(bottom, top float64) Command {
	return Command{Kind: SetYRange, Min: bottom, Max: top}
}

func SeriesCommand(x, y []float64, label string) Command {
	return Command{Kind: PlotSeries, X: x, Y: y, Label: label}
}

func (c Command) String() string {
	switch c.Kind {
	case SetTitle:
		return fmt.Sprintf("SetTitle(%q)", c.Title)
	case SetXRange, SetYRange:
		return fmt.Sprintf("%s(%g, %g)", c.Kind, c.Min, c.Max)
	case PlotSeries:
		return fmt.Sprintf("PlotSeries(%d points, %q)", min(len(c.X), len(c.Y)), c.Label)
	default:
		return c.Kind.String()
	}
}
