//go:build dialogs

package dialog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sqweek/dialog"

	"github.com/caffeineduck/plotpad/fileio"
)

const filterName = "Go scripts"

// Native opens OS file dialogs filtered to script files.
type Native struct {
	// Dir is where dialogs start. Empty means the working directory.
	Dir string
}

func (n Native) startDir() string {
	if n.Dir != "" {
		return n.Dir
	}
	cwd, _ := os.Getwd()
	return cwd
}

// Pick shows an open dialog and reads the chosen file.
func (n Native) Pick(ctx context.Context) (fileio.Result, error) {
	path, err := dialog.File().
		Filter(filterName, strings.TrimPrefix(fileio.SourceExt, ".")).
		SetStartDir(n.startDir()).
		Title("Open script").
		Load()
	if err != nil {
		return fileio.Result{}, translate(err)
	}
	if err := ctx.Err(); err != nil {
		return fileio.Result{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fileio.Result{}, fmt.Errorf("read %s: %w", path, err)
	}
	return fileio.Result{Content: string(data), Name: filepath.Base(path)}, nil
}

// Save shows a save dialog and writes content to the chosen file. The name is
// only a suggestion; the dialog starts next to it when it is a path.
func (n Native) Save(ctx context.Context, content, name string) error {
	dir := n.startDir()
	if d := filepath.Dir(name); d != "." {
		dir = d
	}
	path, err := dialog.File().
		Filter(filterName, strings.TrimPrefix(fileio.SourceExt, ".")).
		SetStartDir(dir).
		Title("Save " + filepath.Base(name)).
		Save()
	if err != nil {
		return translate(err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if filepath.Ext(path) == "" {
		path += fileio.SourceExt
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func translate(err error) error {
	if errors.Is(err, dialog.ErrCancelled) {
		return fileio.ErrCancelled
	}
	return err
}

var (
	_ fileio.Picker = Native{}
	_ fileio.Saver  = Native{}
)
