// Package plotpad is a live-coding notebook for Go scripts that draw plots.
//
// # Overview
//
// A script is compiled once per edit and run as often as the run cadence
// asks. Calls to the plot package made while it runs are recorded and drawn
// after the run, so a failing script or a broken build never leaves a half
// drawn frame; the last good plots stay on screen.
//
// # Basic Usage
//
//	nb := notebook.New(state.Default())
//	surface := svgchart.New()
//
//	// One refresh cycle: load, decide, run, draw.
//	f := nb.Frame(notebook.Input{RunRequested: true}, surface)
//	fmt.Println(f.Ran, nb.Log().Lines())
//
//	// Scope persists between loads until a reset.
//	nb.SetText(`x := 1`)
//	nb.Frame(notebook.Input{NewlineCommitted: true}, surface)
//
// # Scripts
//
//	plot.Title("Squares")
//	plot.XLim(0, 3)
//	plot.YLim(0, 9)
//	plot.Plot([]float64{0, 1, 2, 3}, []float64{0, 1, 4, 9}, "x²")
//	fmt.Println("run", nb.Runs())
//
// See the [kernel], [plot], [cadence], [fileio] and [notebook] packages for
// the building blocks, and cmd/plotpad for the studio, run, repl and serve
// front ends.
package plotpad
