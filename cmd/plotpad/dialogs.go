//go:build dialogs

package main

import (
	"github.com/caffeineduck/plotpad/fileio"
	"github.com/caffeineduck/plotpad/fileio/dialog"
)

func init() {
	nativeDialogs = func(dir string) (fileio.Picker, fileio.Saver) {
		d := dialog.Native{Dir: dir}
		return d, d
	}
}
