// Package logbuf holds the text lines shown to the user: script output,
// compile errors and runtime faults, in the order they happened.
package logbuf

import "sync"

// Sink receives complete log lines.
type Sink interface {
	AppendLine(line string)
}

// Buffer is an append-only, clearable list of lines.
// Line order is insertion order and nothing is deduplicated.
type Buffer struct {
	mu    sync.RWMutex
	lines []string
}

// New returns an empty Buffer.
func New() *Buffer {
	return &Buffer{}
}

// AppendLine adds a line to the end of the buffer.
func (b *Buffer) AppendLine(line string) {
	b.mu.Lock()
	b.lines = append(b.lines, line)
	b.mu.Unlock()
}

// Lines returns a copy of all lines.
func (b *Buffer) Lines() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}

// Since returns a copy of the lines appended after the first n.
// Callers use it to print output incrementally.
func (b *Buffer) Since(n int) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if n < 0 {
		n = 0
	}
	if n >= len(b.lines) {
		return nil
	}
	out := make([]string, len(b.lines)-n)
	copy(out, b.lines[n:])
	return out
}

// Len returns the number of lines.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.lines)
}

// Clear removes every line.
func (b *Buffer) Clear() {
	b.mu.Lock()
	b.lines = nil
	b.mu.Unlock()
}
