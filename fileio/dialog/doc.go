// Package dialog provides native open and save dialogs for script files.
//
// The native toolkit needs cgo and, on Linux, GTK, so the implementation is
// only compiled with the "dialogs" build tag:
//
//	go build -tags dialogs ./cmd/plotpad
//
// Without the tag the package is empty and front ends fall back to their own
// file browsers.
package dialog
