package plot

import "sync"

// Buffer accumulates commands recorded during a run. There is one Buffer per
// kernel; it is written by script code and drained by the rendering step.
type Buffer struct {
	mu   sync.Mutex
	cmds []Command
}

func NewBuffer() *Buffer {
	return &Buffer{}
}

// Record appends a command.
func (b *Buffer) Record(c Command) {
	b.mu.Lock()
	b.cmds = append(b.cmds, c)
	b.mu.Unlock()
}

// Drain takes ownership of every recorded command and leaves the buffer
// empty. Commands recorded after Drain returns belong to the next drain.
func (b *Buffer) Drain() []Command {
	b.mu.Lock()
	cmds := b.cmds
	b.cmds = nil
	b.mu.Unlock()
	return cmds
}

// Len returns the number of commands waiting to be drained.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.cmds)
}
