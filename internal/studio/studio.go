// Package studio is the interactive terminal front end: a script editor, the
// latest plots and the output log, driven by one notebook refresh loop.
package studio

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/caffeineduck/plotpad/fileio"
	"github.com/caffeineduck/plotpad/notebook"
	"github.com/caffeineduck/plotpad/render/term"
)

const (
	fastTick = time.Second / 30
	slowTick = 150 * time.Millisecond
)

// Config wires a studio to its notebook and file access.
type Config struct {
	Notebook  *notebook.Notebook
	Workspace *fileio.Workspace

	// Files, when set, handles open and save instead of the built-in file
	// browser, for example with native dialogs.
	Files *fileio.Service

	// ExportPath is where ctrl+x writes the current plots as SVG.
	ExportPath string

	Logger *zap.Logger
}

type tickMsg struct{}

// Model is the bubbletea model of the studio.
type Model struct {
	ctx    context.Context
	nb     *notebook.Notebook
	ws     *fileio.Workspace
	files  *fileio.Service
	export string
	logger *zap.Logger

	editor  textarea.Model
	logView viewport.Model
	picker  filepicker.Model
	picking bool
	surface *term.Surface

	width, height int
	status        string
	continuous    bool
	last          notebook.Frame
}

// New creates the studio model.
func New(ctx context.Context, cfg Config) Model {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	ta := textarea.New()
	ta.ShowLineNumbers = true
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.SetWidth(80)
	ta.SetHeight(20)
	ta.SetValue(cfg.Notebook.Document().Text)
	ta.Focus()

	files := cfg.Files
	if files == nil && cfg.Workspace != nil {
		files = fileio.NewService(nil, cfg.Workspace.Saver(), cfg.Notebook.Slot(), fileio.WithLogger(logger))
	}

	return Model{
		ctx:     ctx,
		nb:      cfg.Notebook,
		ws:      cfg.Workspace,
		files:   files,
		export:  cfg.ExportPath,
		logger:  logger,
		editor:  ta,
		logView: viewport.New(80, 6),
		picker:  newPicker(cfg.Workspace),
		surface: term.New(term.DefaultWidth, term.DefaultHeight),
	}
}

func newPicker(ws *fileio.Workspace) filepicker.Model {
	fp := filepicker.New()
	fp.AllowedTypes = []string{fileio.SourceExt}
	if ws != nil {
		fp.CurrentDirectory = ws.Root()
	}
	return fp
}

// Notebook returns the notebook driven by the model.
func (m Model) Notebook() *notebook.Notebook {
	return m.nb
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, func() tea.Msg { return tickMsg{} })
}

func (m Model) tick() tea.Cmd {
	d := slowTick
	if m.continuous {
		d = fastTick
	}
	return tea.Tick(d, func(time.Time) tea.Msg { return tickMsg{} })
}

// Run starts the studio and blocks until the user quits. It returns the
// notebook so the caller can persist its state.
func Run(ctx context.Context, cfg Config) (*notebook.Notebook, error) {
	p := tea.NewProgram(New(ctx, cfg), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return cfg.Notebook, fmt.Errorf("studio: %w", err)
	}
	return cfg.Notebook, nil
}
