// Package fileio moves script files between disk and the refresh loop.
//
// Picks and saves run on their own goroutines. They never touch notebook
// state directly: a completed pick is put into a [Slot], and the refresh loop
// takes at most one result per cycle. A second result landing before the loop
// polls overwrites the first.
package fileio
