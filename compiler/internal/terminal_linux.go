//go:build linux

package internal

import (
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// isTerminal reports whether diagnostics written to w end up on a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	_, err := unix.IoctlGetTermios(int(f.Fd()), unix.TCGETS)
	return err == nil
}
