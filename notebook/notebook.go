// Package notebook drives one script document through the refresh cycle:
// apply finished file picks, load edited source, decide whether to run, run,
// and replay the plots of that run onto a drawing surface.
//
// A Notebook is owned by a single refresh loop and is not safe for concurrent
// use. Background file operations reach it only through its Slot.
package notebook

import (
	"go.uber.org/zap"

	"github.com/caffeineduck/plotpad/cadence"
	"github.com/caffeineduck/plotpad/fileio"
	"github.com/caffeineduck/plotpad/kernel"
	"github.com/caffeineduck/plotpad/logbuf"
	"github.com/caffeineduck/plotpad/plot"
	"github.com/caffeineduck/plotpad/state"
)

// Document is the script being edited.
type Document struct {
	FileName string
	Text     string
}

// Input carries the front end's events for one cycle.
type Input struct {
	// NewlineCommitted is set when the editor inserted a newline.
	NewlineCommitted bool
	// Interacted is set when the user touched the notebook at all.
	Interacted bool
	// RunRequested is an explicit run action.
	RunRequested bool
}

// Frame reports what one cycle did.
type Frame struct {
	// FileApplied is set when a picked or reloaded file replaced the document.
	FileApplied bool
	// Loaded is set when source was compiled this cycle.
	Loaded bool
	// Compiled is set when this cycle's load succeeded.
	Compiled bool
	// Ran is set when the script ran this cycle.
	Ran bool
	// Continuous asks the front end to schedule the next cycle right away.
	Continuous bool
}

// Notebook is one document with its kernel, log and plots.
type Notebook struct {
	doc  Document
	mode cadence.Mode

	log    *logbuf.Buffer
	plots  *plot.Buffer
	kernel *kernel.Kernel
	files  *fileio.Slot[fileio.Result]
	logger *zap.Logger

	lastLoaded   string
	loadedOnce   bool
	forceLoad    bool
	resetPending bool
	retained     []plot.Command
}

// Option configures a Notebook.
type Option func(*options)

type options struct {
	logger     *zap.Logger
	kernelOpts []kernel.Option
	slot       *fileio.Slot[fileio.Result]
}

// WithLogger sets the diagnostics logger, which is also handed to the kernel.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithKernelOptions passes options through to the kernel.
func WithKernelOptions(opts ...kernel.Option) Option {
	return func(o *options) {
		o.kernelOpts = append(o.kernelOpts, opts...)
	}
}

// WithSlot shares an existing file slot, for example one a Watcher already
// writes into.
func WithSlot(s *fileio.Slot[fileio.Result]) Option {
	return func(o *options) {
		if s != nil {
			o.slot = s
		}
	}
}

// New creates a notebook from saved state. Nothing is compiled until the
// first Frame.
func New(data state.SaveData, opts ...Option) *Notebook {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.slot == nil {
		o.slot = &fileio.Slot[fileio.Result]{}
	}

	n := &Notebook{
		doc:    Document{FileName: data.FileName, Text: data.SourceCode},
		mode:   data.RunCadence,
		log:    logbuf.New(),
		plots:  plot.NewBuffer(),
		files:  o.slot,
		logger: o.logger,
	}
	kopts := append([]kernel.Option{kernel.WithLogger(o.logger)}, o.kernelOpts...)
	n.kernel = kernel.New(n.log, n.plots, kopts...)
	return n
}

func (n *Notebook) Document() Document { return n.doc }

// SetText replaces the document text with the editor's current content.
func (n *Notebook) SetText(text string) { n.doc.Text = text }

// SetFileName renames the document.
func (n *Notebook) SetFileName(name string) { n.doc.FileName = name }

func (n *Notebook) Mode() cadence.Mode { return n.mode }

func (n *Notebook) SetMode(m cadence.Mode) {
	n.logger.Debug("run cadence changed", zap.Stringer("from", n.mode), zap.Stringer("to", m))
	n.mode = m
}

// Log returns the user-visible output and error lines.
func (n *Notebook) Log() *logbuf.Buffer { return n.log }

// Slot returns the slot background file operations deliver into.
func (n *Notebook) Slot() *fileio.Slot[fileio.Result] { return n.files }

// Kernel exposes the execution host.
func (n *Notebook) Kernel() *kernel.Kernel { return n.kernel }

// Retained returns the plot commands of the most recent run. They are drawn
// again on cycles that do not run.
func (n *Notebook) Retained() []plot.Command { return n.retained }

// RequestLoad compiles the document on the next cycle even when its text has
// not changed since the last load.
func (n *Notebook) RequestLoad() { n.forceLoad = true }

// RequestReset discards the execution environment on the next cycle and
// reloads the document into a fresh one.
func (n *Notebook) RequestReset() { n.resetPending = true }

// LoadDefault replaces the document with the bundled example project.
func (n *Notebook) LoadDefault() {
	def := state.Default()
	n.doc = Document{FileName: def.FileName, Text: def.SourceCode}
	n.resetPending = true
}

// SaveData returns the state to persist.
func (n *Notebook) SaveData() state.SaveData {
	return state.SaveData{
		FileName:   n.doc.FileName,
		SourceCode: n.doc.Text,
		RunCadence: n.mode,
	}
}

// Frame runs one refresh cycle. Within the cycle, a load happens before the
// cadence decision, the decision before the run, and the run before the
// replay of that run's plots. s may be nil when nothing is drawn.
func (n *Notebook) Frame(in Input, s plot.Surface) Frame {
	var f Frame

	f.FileApplied = n.applyFile()

	switch {
	case n.resetPending:
		n.resetPending = false
		n.forceLoad = false
		f.Compiled = n.kernel.Reset(n.doc.Text)
		f.Loaded = true
		n.markLoaded()
	case n.shouldLoad(in):
		n.forceLoad = false
		f.Compiled = n.kernel.Load(n.doc.Text)
		f.Loaded = true
		n.markLoaded()
	}

	d := n.mode.Evaluate(cadence.Events{
		Interacted:   in.Interacted,
		Compiled:     f.Loaded && f.Compiled,
		RunRequested: in.RunRequested,
	})
	f.Continuous = d.Continuous

	if d.Run {
		n.kernel.Run()
		f.Ran = true
	}

	cmds := n.plots.Drain()
	if f.Ran {
		n.retained = cmds
	}

	if s != nil {
		var sink logbuf.Sink
		if f.Ran {
			sink = n.log
		}
		plot.Replay(n.retained, s, sink)
	}
	return f
}

func (n *Notebook) shouldLoad(in Input) bool {
	if !n.loadedOnce || n.forceLoad {
		return true
	}
	if !in.NewlineCommitted && !in.RunRequested {
		return false
	}
	return n.doc.Text != n.lastLoaded
}

func (n *Notebook) markLoaded() {
	n.loadedOnce = true
	n.lastLoaded = n.doc.Text
}

// applyFile takes at most one finished pick from the slot. A file with a new
// name starts a fresh environment; new content under the current name, as
// delivered by a watcher, is only reloaded.
func (n *Notebook) applyFile() bool {
	res, ok := n.files.Take()
	if !ok {
		return false
	}
	if res.Err != nil {
		n.log.AppendLine("Error: " + res.Err.Error())
		return false
	}
	if res.Name == n.doc.FileName && res.Content == n.doc.Text {
		return false
	}

	if res.Name != n.doc.FileName {
		n.resetPending = true
	} else {
		n.forceLoad = true
	}
	n.doc = Document{FileName: res.Name, Text: res.Content}
	n.logger.Debug("file applied", zap.String("name", res.Name), zap.Bool("reset", n.resetPending))
	return true
}
