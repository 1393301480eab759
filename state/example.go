package state

// DefaultFileName is the name of the bundled example project.
const DefaultFileName = "example_project.go"

// ExampleSource is the bundled example project: a standing wave animated by
// the run counter. It is meant for the each-frame cadence.
const ExampleSource = `// Packages are imported automatically.
// nb.Runs() counts how often this script has run since the last reset.
func() {
	const n = 200
	t := float64(nb.Runs()) / 60

	x := make([]float64, n)
	y := make([]float64, n)
	for i := range x {
		x[i] = -1 + 2*float64(i)/float64(n-1)
		y[i] = math.Sin(3*math.Pi*x[i]) * math.Cos(2*math.Pi*t) * math.Exp(-x[i]*x[i])
	}

	plot.Title("Standing wave")
	plot.XLim(x[0], x[n-1])
	plot.YLim(-1.0, 1.0)
	plot.Plot(x, y, "Wave")
}()
`
