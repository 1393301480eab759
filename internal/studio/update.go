package studio

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/caffeineduck/plotpad/editor"
	"github.com/caffeineduck/plotpad/fileio"
	"github.com/caffeineduck/plotpad/notebook"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tickMsg:
		m.frame(notebook.Input{})
		return m, m.tick()

	case tea.KeyMsg:
		if m.picking {
			return m.updatePicker(msg)
		}
		return m.handleKey(msg)
	}

	if m.picking {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "ctrl+q":
		return m, tea.Quit

	case "ctrl+r":
		m.frame(notebook.Input{RunRequested: true, Interacted: true})
		return m, nil

	case "ctrl+k":
		m.nb.SetMode(m.nb.Mode().Next())
		m.status = "run cadence: " + m.nb.Mode().String()
		return m, nil

	case "ctrl+g":
		m.nb.RequestReset()
		m.status = "environment reset"
		m.frame(notebook.Input{Interacted: true})
		return m, nil

	case "ctrl+n":
		m.nb.LoadDefault()
		m.editor.SetValue(m.nb.Document().Text)
		m.status = "loaded default project"
		m.frame(notebook.Input{Interacted: true})
		return m, nil

	case "ctrl+l":
		m.nb.Log().Clear()
		m.refreshLog()
		return m, nil

	case "ctrl+s":
		m.save()
		return m, nil

	case "ctrl+o":
		return m.open()

	case "ctrl+x":
		m.exportSVG()
		return m, nil

	case "enter":
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		m.autoIndent()
		m.nb.SetText(m.editor.Value())
		m.frame(notebook.Input{NewlineCommitted: true, Interacted: true})
		return m, cmd
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	m.nb.SetText(m.editor.Value())
	m.frame(notebook.Input{Interacted: true})
	return m, cmd
}

// autoIndent repeats the indentation of the line that was just split.
func (m *Model) autoIndent() {
	lines := strings.Split(m.editor.Value(), "\n")
	row := m.editor.Line()
	if row <= 0 || row >= len(lines) {
		return
	}
	prefix := strings.Join(lines[:row], "\n") + "\n"
	indented, _ := editor.IndentAfterNewline(prefix, len(prefix))
	if extra := indented[len(prefix):]; extra != "" {
		m.editor.InsertString(extra)
	}
}

func (m *Model) frame(in notebook.Input) {
	f := m.nb.Frame(in, m.surface)
	m.last = f
	m.continuous = f.Continuous
	if f.FileApplied {
		m.editor.SetValue(m.nb.Document().Text)
		m.status = "opened " + m.nb.Document().FileName
	}
	m.refreshLog()
}

func (m *Model) refreshLog() {
	m.logView.SetContent(strings.Join(m.nb.Log().Lines(), "\n"))
	m.logView.GotoBottom()
}

func (m *Model) save() {
	if m.files == nil {
		m.status = "saving needs a workspace"
		return
	}
	doc := m.nb.Document()
	m.files.Save(m.ctx, doc.Text, doc.FileName)
	m.status = "saving " + doc.FileName
}

func (m Model) open() (tea.Model, tea.Cmd) {
	if m.files != nil && m.ws == nil {
		m.files.Pick(m.ctx)
		m.status = "choosing a file"
		return m, nil
	}
	if m.ws == nil {
		m.status = "opening needs a workspace"
		return m, nil
	}
	m.picking = true
	m.picker = newPicker(m.ws)
	m.picker.Height = max(m.height-6, 5)
	return m, m.picker.Init()
}

func (m Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.picking = false
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.picking = false
		svc := fileio.NewService(m.ws.Picker(path), nil, m.nb.Slot(), fileio.WithLogger(m.logger))
		svc.Pick(m.ctx)
		m.status = "opening " + path
		return m, cmd
	}
	if ok, path := m.picker.DidSelectDisabledFile(msg); ok {
		m.status = fmt.Sprintf("%s is not a %s file", path, fileio.SourceExt)
	}
	return m, cmd
}

func (m *Model) exportSVG() {
	if m.export == "" {
		m.status = "no export path configured"
		return
	}
	f, err := os.Create(m.export)
	if err != nil {
		m.status = "export failed: " + err.Error()
		m.logger.Warn("export failed", zap.Error(err))
		return
	}
	defer f.Close()

	if err := m.nb.ExportSVG(f); err != nil {
		m.status = "export failed: " + err.Error()
		return
	}
	m.status = "exported " + m.export
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height

	editorWidth := width / 2
	plotWidth := width - editorWidth - 4
	logHeight := max(height/4, 3)
	bodyHeight := max(height-logHeight-4, 5)

	m.editor.SetWidth(editorWidth)
	m.editor.SetHeight(bodyHeight)
	m.surface.SetSize(plotWidth, bodyHeight/2-4)
	m.logView.Width = width
	m.logView.Height = logHeight
	m.picker.Height = max(height-6, 5)
}
