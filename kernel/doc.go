// Package kernel hosts a long-lived script interpreter with a persistent scope.
//
// # Overview
//
// A [Kernel] owns one interpreter, the variables that script code defines at
// the top level, and at most one compiled artifact. Compiling and executing
// are separate steps so a failed edit never discards the last good build:
//
//	log := logbuf.New()
//	k := kernel.New(log, plot.NewBuffer())
//
//	k.Load(`x := 1`)
//	k.Run()
//	k.Load(`x += 1; fmt.Println(x)`)
//	k.Run() // log now holds "2"
//
// Scripts are written in the Go dialect understood by the yaegi interpreter.
// Standard library packages and the host packages "plot" and "nb" are imported
// automatically, so scripts need no import declarations.
//
// # Errors
//
// Nothing a script does terminates the host. Compile failures are appended to
// the log as a single "Compile error: ..." entry; runtime faults, including
// panics, become "Error: ..." entries and leave the scope intact for the next
// run.
//
// # Engines
//
// The interpreter sits behind the [Engine] interface. [WithEngine] replaces it,
// which is how the notebook tests drive a kernel without a real interpreter.
package kernel
