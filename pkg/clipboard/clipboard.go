// Package clipboard copies quoted identifiers and cell values to the system
// clipboard.
package clipboard

import (
	"errors"

	"github.com/atotto/clipboard"
)

// ErrUnsupported is returned when no clipboard utility is available.
var ErrUnsupported = errors.New("clipboard is not available on this system")

// Copier puts text on a clipboard.
type Copier interface {
	Copy(text string) error
}

// CopierFunc adapts a function to Copier.
type CopierFunc func(text string) error

func (f CopierFunc) Copy(text string) error { return f(text) }

// System is the desktop clipboard.
type System struct{}

func (System) Copy(text string) error {
	return Copy(text)
}

func Copy(text string) error {
	if clipboard.Unsupported {
		return ErrUnsupported
	}
	return clipboard.WriteAll(text)
}
