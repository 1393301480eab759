package plot_test

import (
	"sync"
	"testing"

	"github.com/caffeineduck/plotpad/plot"
)

func TestBufferDrainTakesEverything(t *testing.T) {
	b := plot.NewBuffer()
	b.Record(plot.TitleCommand("a"))
	b.Record(plot.XRangeCommand(0, 1))

	cmds := b.Drain()
	if len(cmds) != 2 {
		t.Fatalf("expected 2 commands, got %d", len(cmds))
	}
	if cmds[0].Kind != plot.SetTitle || cmds[1].Kind != plot.SetXRange {
		t.Errorf("unexpected order: %v", cmds)
	}
	if b.Len() != 0 {
		t.Errorf("expected empty buffer after drain, got %d", b.Len())
	}
}

func TestBufferDrainTwice(t *testing.T) {
	b := plot.NewBuffer()
	b.Record(plot.TitleCommand("a"))
	b.Drain()

	if cmds := b.Drain(); len(cmds) != 0 {
		t.Errorf("expected empty second drain, got %v", cmds)
	}
}

func TestBufferRecordAfterDrain(t *testing.T) {
	b := plot.NewBuffer()
	b.Record(plot.TitleCommand("first"))
	first := b.Drain()
	b.Record(plot.TitleCommand("second"))

	if len(first) != 1 || first[0].Title != "first" {
		t.Errorf("drained slice changed: %v", first)
	}
	next := b.Drain()
	if len(next) != 1 || next[0].Title != "second" {
		t.Errorf("expected second command in next drain, got %v", next)
	}
}

func TestBufferConcurrentRecordAndDrain(t *testing.T) {
	b := plot.NewBuffer()
	const n = 500

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			b.Record(plot.TitleCommand("x"))
		}
	}()

	total := 0
	for total < n {
		total += len(b.Drain())
	}
	wg.Wait()
	total += len(b.Drain())

	if total != n {
		t.Errorf("expected %d commands across drains, got %d", n, total)
	}
}
