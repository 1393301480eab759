// Package hostfunc collects Go functions that script code can call.
//
// Functions are grouped into packages. Script code sees each package as an
// importable package of the same name, already imported:
//
//	registry := hostfunc.NewRegistry()
//	registry.Register("nb", "Runs", func() int { return runs })
//
//	// script:
//	fmt.Println(nb.Runs())
//
// A Registry belongs to one interpreter instance. Functions registered on it
// usually close over state owned by that instance (its plot buffer, its run
// counter), which is how per-instance state reaches script code without any
// package-level globals.
package hostfunc
