package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/caffeineduck/plotpad/cadence"
)

const plotScript = `plot.Title("Line")
plot.Plot([]float64{0, 1, 2}, []float64{0, 1, 4}, "squares")`

func executeCommand(root *cobra.Command, args ...string) (string, error) {
	resetFlags(root)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

// resetFlags undoes flag values left behind by earlier executions of the
// shared command tree.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func TestCLIHelp(t *testing.T) {
	output, err := executeCommand(rootCmd, "--help")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expectedPhrases := []string{
		"plotpad",
		"plot.Plot",
		"each-frame",
		"on-compile",
		"manual",
		"run",
		"repl",
		"serve",
		"--native-dialogs",
	}

	for _, phrase := range expectedPhrases {
		if !strings.Contains(output, phrase) {
			t.Errorf("help output should contain %q", phrase)
		}
	}
}

func TestCLIRunHelp(t *testing.T) {
	output, err := executeCommand(rootCmd, "run", "--help")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, phrase := range []string{"--code", "--frames", "--svg", "--png", "--html", "--watch", "--mode"} {
		if !strings.Contains(output, phrase) {
			t.Errorf("run help output should contain %q", phrase)
		}
	}
}

func TestCLIReplHelp(t *testing.T) {
	output, err := executeCommand(rootCmd, "repl", "--help")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, phrase := range []string{"--history", "Command history", "Multi-line", ":reset", ":svg"} {
		if !strings.Contains(output, phrase) {
			t.Errorf("repl help output should contain %q", phrase)
		}
	}
}

func TestCLIServeHelp(t *testing.T) {
	output, err := executeCommand(rootCmd, "serve", "--help")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, phrase := range []string{"--port", "--root", "--ttl", "/sessions", "frame.svg", "/health"} {
		if !strings.Contains(output, phrase) {
			t.Errorf("serve help output should contain %q", phrase)
		}
	}
}

func TestStudioNativeDialogsNeedBuildTag(t *testing.T) {
	if nativeDialogs != nil {
		t.Skip("built with native dialogs")
	}

	statePath := filepath.Join(t.TempDir(), "state.yaml")
	_, err := executeCommand(rootCmd, "--native-dialogs", "--state", statePath)
	if !errors.Is(err, errNoNativeDialogs) {
		t.Fatalf("err = %v, want errNoNativeDialogs", err)
	}
	if _, err := os.Stat(statePath); err == nil {
		t.Error("state was written although the studio never started")
	}
}

func TestRunInlineCode(t *testing.T) {
	output, err := executeCommand(rootCmd, "run", "-c", `fmt.Println("hello")`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output != "hello\n" {
		t.Errorf("output = %q", output)
	}
}

func TestRunFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.go")
	if err := os.WriteFile(path, []byte(`fmt.Println(6 * 7)`), 0o644); err != nil {
		t.Fatal(err)
	}

	output, err := executeCommand(rootCmd, "run", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output != "42\n" {
		t.Errorf("output = %q", output)
	}
}

func TestRunFramesCountsRuns(t *testing.T) {
	output, err := executeCommand(rootCmd, "run", "--frames", "3", "-c", `fmt.Println(nb.Runs())`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output != "0\n1\n2\n" {
		t.Errorf("output = %q", output)
	}
}

func TestRunCompileErrorFails(t *testing.T) {
	output, err := executeCommand(rootCmd, "run", "-c", `fmt.Println(`)
	if !errors.Is(err, errScriptFailed) {
		t.Fatalf("err = %v, want errScriptFailed", err)
	}
	if !strings.Contains(output, "Compile error: ") {
		t.Errorf("output should report the compile error, got %q", output)
	}
}

func TestRunInvalidMode(t *testing.T) {
	_, err := executeCommand(rootCmd, "run", "--mode", "sometimes", "-c", `fmt.Println(1)`)
	if err == nil {
		t.Fatal("expected an error for an unknown mode")
	}
}

func TestRunWatchNeedsFile(t *testing.T) {
	_, err := executeCommand(rootCmd, "run", "--watch", "-c", `fmt.Println(1)`)
	if err == nil || !strings.Contains(err.Error(), "--watch") {
		t.Fatalf("err = %v", err)
	}
}

func TestRunExports(t *testing.T) {
	dir := t.TempDir()
	svgPath := filepath.Join(dir, "out.svg")
	pngPath := filepath.Join(dir, "out.png")
	htmlPath := filepath.Join(dir, "out.html")

	_, err := executeCommand(rootCmd, "run", "-c", plotScript,
		"--svg", svgPath, "--png", pngPath, "--html", htmlPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		path string
		want []byte
	}{
		{svgPath, []byte("<svg")},
		{pngPath, []byte("\x89PNG")},
		{htmlPath, []byte("echarts")},
	}
	for _, tt := range tests {
		data, err := os.ReadFile(tt.path)
		if err != nil {
			t.Errorf("%s: %v", tt.path, err)
			continue
		}
		if !bytes.Contains(data, tt.want) {
			t.Errorf("%s does not contain %q", filepath.Base(tt.path), tt.want)
		}
	}
}

func TestReplSession(t *testing.T) {
	var out, errOut bytes.Buffer
	s := newReplSession(cadence.Manual, &out, &errOut)

	for _, line := range []string{"x := 21", "fmt.Println(x * 2)"} {
		if !s.eval(line) {
			t.Fatalf("eval(%q) ended the session", line)
		}
	}
	if out.String() != "42\n" {
		t.Errorf("out = %q, errors %q", out.String(), errOut.String())
	}
}

func TestReplCompileErrorDoesNotRerunPreviousEntry(t *testing.T) {
	modes := []cadence.Mode{cadence.Manual, cadence.OnInteract, cadence.OnCompileSuccess}
	for _, mode := range modes {
		t.Run(mode.String(), func(t *testing.T) {
			var out, errOut bytes.Buffer
			s := newReplSession(mode, &out, &errOut)

			for _, line := range []string{"n := 0", `n++; fmt.Println("n =", n)`, "fmt.Println(undefinedName)"} {
				s.eval(line)
			}

			if out.String() != "n = 1\n" {
				t.Errorf("out = %q", out.String())
			}
			if !strings.Contains(errOut.String(), "undefinedName") {
				t.Errorf("errOut = %q", errOut.String())
			}
		})
	}
}

func TestReplRepeatedEntryRunsAgain(t *testing.T) {
	for _, mode := range []cadence.Mode{cadence.Manual, cadence.OnCompileSuccess} {
		t.Run(mode.String(), func(t *testing.T) {
			var out, errOut bytes.Buffer
			s := newReplSession(mode, &out, &errOut)

			s.eval(`fmt.Println("again")`)
			s.eval(`fmt.Println("again")`)

			if out.String() != "again\nagain\n" {
				t.Errorf("out = %q, errors %q", out.String(), errOut.String())
			}
		})
	}
}

func TestReplErrorsGoToStderr(t *testing.T) {
	var out, errOut bytes.Buffer
	s := newReplSession(cadence.Manual, &out, &errOut)

	s.eval("fmt.Println(undefinedName)")

	if out.Len() != 0 {
		t.Errorf("out = %q", out.String())
	}
	if !strings.Contains(errOut.String(), "undefinedName") {
		t.Errorf("errOut = %q", errOut.String())
	}
}

func TestReplCommands(t *testing.T) {
	var out, errOut bytes.Buffer
	s := newReplSession(cadence.Manual, &out, &errOut)

	s.eval(":plot")
	if !strings.Contains(out.String(), "no plots yet") {
		t.Errorf(":plot before plotting: %q", out.String())
	}

	out.Reset()
	s.eval(plotScript)
	s.eval(":plot")
	if !strings.Contains(out.String(), "Line") {
		t.Errorf(":plot should show the chart title, got %q", out.String())
	}

	s.eval(":mode each-frame")
	if s.nb.Mode() != cadence.EachFrame {
		t.Errorf("mode = %v", s.nb.Mode())
	}

	svgPath := filepath.Join(t.TempDir(), "repl.svg")
	s.eval(":svg " + svgPath)
	if data, err := os.ReadFile(svgPath); err != nil || !bytes.Contains(data, []byte("<svg")) {
		t.Errorf(":svg did not write an image: %v", err)
	}

	s.eval(":bogus")
	if !strings.Contains(errOut.String(), "unknown command :bogus") {
		t.Errorf("errOut = %q", errOut.String())
	}
}

func TestReplReset(t *testing.T) {
	var out, errOut bytes.Buffer
	s := newReplSession(cadence.Manual, &out, &errOut)

	s.eval("y := 1")
	s.eval(":reset")
	if !strings.Contains(out.String(), "environment reset") {
		t.Errorf("out = %q", out.String())
	}

	errOut.Reset()
	s.eval("fmt.Println(y)")
	if !strings.Contains(errOut.String(), "undefined") {
		t.Errorf("y should be gone after reset, errOut = %q", errOut.String())
	}
}

func TestReplExit(t *testing.T) {
	var out, errOut bytes.Buffer
	s := newReplSession(cadence.Manual, &out, &errOut)

	for _, line := range []string{"exit", "quit", "  exit  "} {
		if s.eval(line) {
			t.Errorf("eval(%q) should end the session", line)
		}
	}
	if !s.eval("") {
		t.Error("an empty line should not end the session")
	}
}
