package fileio

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SourceExt is the extension of script files.
const SourceExt = ".go"

var (
	ErrOutsideWorkspace = errors.New("path escapes workspace")
	ErrNotSource        = errors.New("not a " + SourceExt + " file")
)

// Workspace confines file access to one directory tree and to script files.
type Workspace struct {
	root string
}

// NewWorkspace opens the directory at root.
func NewWorkspace(root string) (*Workspace, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("workspace %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("workspace %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workspace %s: not a directory", root)
	}
	return &Workspace{root: abs}, nil
}

// Root returns the absolute workspace directory.
func (w *Workspace) Root() string {
	return w.root
}

// Resolve maps a workspace-relative name to a host path. Absolute names are
// accepted when they lie inside the workspace.
func (w *Workspace) Resolve(name string) (string, error) {
	p, _, err := w.resolve(name)
	return p, err
}

// resolve returns the host path and the slash-separated path relative to
// the root.
func (w *Workspace) resolve(name string) (string, string, error) {
	if !strings.EqualFold(filepath.Ext(name), SourceExt) {
		return "", "", fmt.Errorf("%s: %w", name, ErrNotSource)
	}

	p := name
	if !filepath.IsAbs(p) {
		p = filepath.Join(w.root, p)
	}
	p = filepath.Clean(p)

	rel, err := filepath.Rel(w.root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", "", fmt.Errorf("%s: %w", name, ErrOutsideWorkspace)
	}
	return p, filepath.ToSlash(rel), nil
}

// Read loads a script file. The result is named by its workspace-relative
// path, so saving it under that name writes the same file.
func (w *Workspace) Read(name string) (Result, error) {
	p, rel, err := w.resolve(name)
	if err != nil {
		return Result{}, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Result{}, fmt.Errorf("file not found: %s", name)
		}
		return Result{}, fmt.Errorf("read %s: %w", name, err)
	}
	return Result{Content: string(data), Name: rel}, nil
}

// Write stores a script file, creating parent directories as needed.
func (w *Workspace) Write(name, content string) error {
	p, err := w.Resolve(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// List returns the workspace-relative names of every script file, sorted.
func (w *Workspace) List() ([]string, error) {
	var names []string
	err := filepath.WalkDir(w.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != w.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(p), SourceExt) {
			rel, err := filepath.Rel(w.root, p)
			if err != nil {
				return err
			}
			names = append(names, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", w.root, err)
	}
	sort.Strings(names)
	return names, nil
}

// Picker returns a Picker that reads name.
func (w *Workspace) Picker(name string) Picker {
	return PickerFunc(func(ctx context.Context) (Result, error) {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		return w.Read(name)
	})
}

// Saver returns a Saver that writes into the workspace.
func (w *Workspace) Saver() Saver {
	return SaverFunc(func(ctx context.Context, content, name string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return w.Write(name, content)
	})
}
