package logbuf

import (
	"bytes"
	"sync"
)

// Writer is an io.Writer that splits what is written into lines and appends
// each completed line to a Sink. A trailing partial line is held back until a
// newline arrives or Flush is called.
type Writer struct {
	sink Sink
	buf  bytes.Buffer
	mu   sync.Mutex
}

// NewWriter returns a Writer appending to sink.
func NewWriter(sink Sink) *Writer {
	return &Writer{sink: sink}
}

func (w *Writer) Write(data []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n := len(data)
	w.buf.Write(data)

	for {
		content := w.buf.Bytes()
		idx := bytes.IndexByte(content, '\n')
		if idx == -1 {
			break
		}
		line := string(bytes.TrimSuffix(content[:idx], []byte{'\r'}))
		w.buf.Next(idx + 1)
		w.sink.AppendLine(line)
	}

	return n, nil
}

// Flush appends any pending partial line.
func (w *Writer) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.buf.Len() == 0 {
		return
	}
	w.sink.AppendLine(w.buf.String())
	w.buf.Reset()
}
