package main

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/caffeineduck/plotpad/fileio"
	"github.com/caffeineduck/plotpad/internal/studio"
	"github.com/caffeineduck/plotpad/notebook"
)

// nativeDialogs builds the system file dialogs. It is nil unless the binary
// was built with the "dialogs" tag.
var nativeDialogs func(dir string) (fileio.Picker, fileio.Saver)

var errNoNativeDialogs = errors.New("native dialogs need a build with -tags dialogs")

func addStudioFlags(cmd *cobra.Command) {
	cmd.Flags().String("root", ".", "Workspace directory for the file browser")
	cmd.Flags().Bool("native-dialogs", false, "Use the system open and save dialogs")
	cmd.Flags().Bool("watch", false, "Reload the opened file when it changes on disk")
	cmd.Flags().String("export", "plotpad.svg", "File written by the export key")
}

func runStudio(cmd *cobra.Command, args []string) error {
	root, _ := cmd.Flags().GetString("root")
	native, _ := cmd.Flags().GetBool("native-dialogs")
	watch, _ := cmd.Flags().GetBool("watch")
	exportPath, _ := cmd.Flags().GetString("export")

	if native && nativeDialogs == nil {
		return errNoNativeDialogs
	}

	store, err := stateStore(cmd)
	if err != nil {
		return err
	}
	data, err := store.Load()
	if err != nil {
		logger.Warn("ignoring saved state", zap.Error(err))
	}

	if len(args) > 0 {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		data.FileName = filepath.Base(args[0])
		data.SourceCode = string(raw)
	}

	mode, err := modeFlag(cmd, data.RunCadence)
	if err != nil {
		return err
	}
	data.RunCadence = mode

	ws, err := fileio.NewWorkspace(root)
	if err != nil {
		return err
	}

	nb := notebook.New(data, notebook.WithLogger(logger))
	cfg := studio.Config{
		Notebook:   nb,
		Workspace:  ws,
		ExportPath: exportPath,
		Logger:     logger,
	}
	if native {
		picker, saver := nativeDialogs(ws.Root())
		cfg.Files = fileio.NewService(picker, saver, nb.Slot(), fileio.WithLogger(logger))
		cfg.Workspace = nil
	}

	ctx := cmd.Context()
	if watch && len(args) > 0 {
		w, err := fileio.NewWatcher(args[0], nb.Slot(), fileio.WithWatcherLogger(logger))
		if err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			return err
		}
		defer w.Stop()
	}

	nb, err = studio.Run(ctx, cfg)
	if saveErr := store.Save(nb.SaveData()); saveErr != nil {
		logger.Warn("failed to save state", zap.Error(saveErr))
	}
	return err
}
