//go:build !linux && !darwin

package internal

import "io"

func isTerminal(w io.Writer) bool {
	return false
}
