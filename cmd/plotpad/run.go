package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/caffeineduck/plotpad/cadence"
	"github.com/caffeineduck/plotpad/fileio"
	"github.com/caffeineduck/plotpad/notebook"
	"github.com/caffeineduck/plotpad/render/htmlchart"
	"github.com/caffeineduck/plotpad/render/svgchart"
	"github.com/caffeineduck/plotpad/state"
)

var errScriptFailed = errors.New("script reported errors")

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a script and export its plots",
	Long: `Run a script without the studio, print its output and export its plots.

Code can be provided via:
  - File argument: plotpad run wave.go
  - Inline flag: plotpad run -c 'fmt.Println(1+1)'
  - Stdin: echo 'fmt.Println(1+1)' | plotpad run

With --watch the file is reloaded whenever it changes on disk, and the
exports are rewritten after every run.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringP("code", "c", "", "Code to run")
	runCmd.Flags().Int("frames", 1, "Number of refresh cycles to run")
	runCmd.Flags().String("svg", "", "Write the plots as SVG")
	runCmd.Flags().String("png", "", "Write the plots as PNG")
	runCmd.Flags().String("html", "", "Write the plots as an HTML page")
	runCmd.Flags().Bool("watch", false, "Reload the file when it changes")
	runCmd.Flags().Duration("interval", 100*time.Millisecond, "Refresh interval with --watch")
	rootCmd.AddCommand(runCmd)
}

type exports struct {
	svg, png, html string
}

func (e exports) write(nb *notebook.Notebook) error {
	var errs []error
	if e.svg != "" {
		errs = append(errs, writeFile(e.svg, func(w io.Writer) error { return nb.ExportSVG(w) }))
	}
	if e.png != "" {
		errs = append(errs, writeFile(e.png, func(w io.Writer) error { return nb.ExportSVG(w, svgchart.WithPNG()) }))
	}
	if e.html != "" {
		errs = append(errs, writeFile(e.html, func(w io.Writer) error {
			return nb.ExportHTML(w, htmlchart.WithPageTitle(nb.Document().FileName))
		}))
	}
	return errors.Join(errs...)
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// logPrinter copies new Log Buffer lines to the command output and remembers
// whether any of them reported a failure.
type logPrinter struct {
	nb      *notebook.Notebook
	out     io.Writer
	printed int
	failed  bool
}

func (p *logPrinter) flush() {
	log := p.nb.Log()
	for _, line := range log.Since(p.printed) {
		fmt.Fprintln(p.out, line)
		if isErrorLine(line) {
			p.failed = true
		}
	}
	p.printed = log.Len()
}

func isErrorLine(line string) bool {
	return strings.HasPrefix(line, "Compile error: ") || strings.HasPrefix(line, "Error: ")
}

func readSource(cmd *cobra.Command, args []string) (source, name string, err error) {
	code, _ := cmd.Flags().GetString("code")

	switch {
	case code != "":
		return code, "inline.go", nil
	case len(args) > 0:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", err
		}
		return string(data), filepath.Base(args[0]), nil
	}

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok {
		if stat, err := f.Stat(); err == nil && stat.Mode()&os.ModeCharDevice != 0 {
			return "", "", nil
		}
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", "", err
	}
	return string(data), "stdin.go", nil
}

func runRun(cmd *cobra.Command, args []string) error {
	frames, _ := cmd.Flags().GetInt("frames")
	watch, _ := cmd.Flags().GetBool("watch")
	interval, _ := cmd.Flags().GetDuration("interval")
	svgPath, _ := cmd.Flags().GetString("svg")
	pngPath, _ := cmd.Flags().GetString("png")
	htmlPath, _ := cmd.Flags().GetString("html")
	out := exports{svg: svgPath, png: pngPath, html: htmlPath}

	if watch && len(args) == 0 {
		return errors.New("--watch needs a file argument")
	}

	source, name, err := readSource(cmd, args)
	if err != nil {
		return err
	}
	if strings.TrimSpace(source) == "" {
		return cmd.Help()
	}

	fallback := cadence.Manual
	if watch {
		fallback = cadence.OnCompileSuccess
	}
	mode, err := modeFlag(cmd, fallback)
	if err != nil {
		return err
	}

	nb := notebook.New(
		state.SaveData{FileName: name, SourceCode: source, RunCadence: mode},
		notebook.WithLogger(logger),
	)
	printer := &logPrinter{nb: nb, out: cmd.OutOrStdout()}
	surface := svgchart.New()

	for i := 0; i < frames; i++ {
		nb.Frame(notebook.Input{RunRequested: true, Interacted: true}, surface)
		printer.flush()
	}
	if err := out.write(nb); err != nil {
		return err
	}

	if watch {
		return watchFile(cmd.Context(), args[0], nb, printer, surface, out, interval)
	}
	if printer.failed {
		return errScriptFailed
	}
	return nil
}

func watchFile(ctx context.Context, path string, nb *notebook.Notebook, printer *logPrinter,
	surface *svgchart.Surface, out exports, interval time.Duration) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := fileio.NewWatcher(path, nb.Slot(), fileio.WithWatcherLogger(logger))
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	logger.Info("watching", zap.String("path", path), zap.Stringer("mode", nb.Mode()))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			f := nb.Frame(notebook.Input{}, surface)
			printer.flush()
			if f.Ran {
				if err := out.write(nb); err != nil {
					logger.Warn("export failed", zap.Error(err))
				}
			}
		}
	}
}
