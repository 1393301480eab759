package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/caffeineduck/plotpad/cadence"
	"github.com/caffeineduck/plotpad/notebook"
	"github.com/caffeineduck/plotpad/render/term"
	"github.com/caffeineduck/plotpad/state"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive REPL with persistent state",
	Long: `Start an interactive REPL where each entry runs in the same environment.

Features:
  - Command history (up/down arrows)
  - Line editing (left/right, backspace, delete)
  - History search (Ctrl+R)
  - Multi-line input (end line with \)

Commands:
  :plot         show the latest plots
  :reset        start a fresh environment
  :svg <file>   export the latest plots as SVG
  :mode <name>  change the run cadence

Type 'exit' or 'quit' to end the session, or press Ctrl+D.`,
	RunE: runRepl,
}

func init() {
	replCmd.Flags().String("history", "", "History file path (default: ~/.plotpad_history)")
	rootCmd.AddCommand(replCmd)
}

// replSession evaluates REPL entries against one notebook.
type replSession struct {
	nb      *notebook.Notebook
	surface *term.Surface
	out     io.Writer
	errOut  io.Writer
	printed int
}

func newReplSession(mode cadence.Mode, out, errOut io.Writer) *replSession {
	nb := notebook.New(
		state.SaveData{FileName: "repl.go", RunCadence: mode},
		notebook.WithLogger(logger),
	)
	return &replSession{
		nb:      nb,
		surface: term.New(term.DefaultWidth, term.DefaultHeight),
		out:     out,
		errOut:  errOut,
	}
}

func (s *replSession) flush() {
	log := s.nb.Log()
	for _, line := range log.Since(s.printed) {
		if isErrorLine(line) {
			fmt.Fprintln(s.errOut, line)
			continue
		}
		fmt.Fprintln(s.out, line)
	}
	s.printed = log.Len()
}

// eval compiles one entry and runs it when it built. Every entry is
// compiled, even when it repeats the previous one. It reports false when the
// session should end.
func (s *replSession) eval(entry string) bool {
	entry = strings.TrimSpace(entry)
	switch {
	case entry == "":
		return true
	case entry == "exit" || entry == "quit":
		return false
	case strings.HasPrefix(entry, ":"):
		s.command(entry)
		return true
	}

	s.nb.SetText(entry)
	s.nb.RequestLoad()
	f := s.nb.Frame(notebook.Input{NewlineCommitted: true}, s.surface)
	if f.Compiled && !f.Ran {
		s.nb.Frame(notebook.Input{RunRequested: true, Interacted: true}, s.surface)
	}
	s.flush()
	return true
}

func (s *replSession) command(entry string) {
	name, arg, _ := strings.Cut(strings.TrimPrefix(entry, ":"), " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "plot":
		if len(s.nb.Retained()) == 0 {
			fmt.Fprintln(s.out, "no plots yet")
			return
		}
		fmt.Fprintln(s.out, s.surface.String())
	case "reset":
		s.nb.SetText("")
		s.nb.RequestReset()
		s.nb.Frame(notebook.Input{}, nil)
		s.flush()
		fmt.Fprintln(s.out, "environment reset")
	case "svg":
		if arg == "" {
			fmt.Fprintln(s.errOut, "Error: :svg needs a file name")
			return
		}
		if err := writeFile(arg, func(w io.Writer) error { return s.nb.ExportSVG(w) }); err != nil {
			fmt.Fprintf(s.errOut, "Error: %v\n", err)
			return
		}
		s.flush()
		fmt.Fprintf(s.out, "wrote %s\n", arg)
	case "mode":
		m, err := cadence.ParseMode(arg)
		if err != nil {
			fmt.Fprintf(s.errOut, "Error: %v\n", err)
			return
		}
		s.nb.SetMode(m)
		fmt.Fprintf(s.out, "run cadence: %s\n", m)
	default:
		fmt.Fprintf(s.errOut, "Error: unknown command :%s\n", name)
	}
}

func runRepl(cmd *cobra.Command, args []string) error {
	historyFile, _ := cmd.Flags().GetString("history")
	if historyFile == "" {
		home, _ := os.UserHomeDir()
		historyFile = filepath.Join(home, ".plotpad_history")
	}

	mode, err := modeFlag(cmd, cadence.Manual)
	if err != nil {
		return err
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            ">>> ",
		HistoryFile:       historyFile,
		HistoryLimit:      1000,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("initializing readline: %w", err)
	}
	defer rl.Close()

	session := newReplSession(mode, rl.Stdout(), rl.Stderr())
	fmt.Fprintln(rl.Stderr(), "plotpad REPL (type 'exit' to quit, Ctrl+D to exit)")

	var multiLine strings.Builder
	inMultiLine := false

	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if inMultiLine {
					multiLine.Reset()
					inMultiLine = false
					rl.SetPrompt(">>> ")
				}
				continue
			}
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(rl.Stdout())
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}

		if strings.HasSuffix(line, "\\") {
			multiLine.WriteString(strings.TrimSuffix(line, "\\"))
			multiLine.WriteString("\n")
			inMultiLine = true
			rl.SetPrompt("... ")
			continue
		}

		if inMultiLine {
			multiLine.WriteString(line)
			line = multiLine.String()
			multiLine.Reset()
			inMultiLine = false
			rl.SetPrompt(">>> ")
		}

		if !session.eval(line) {
			return nil
		}
	}
}
