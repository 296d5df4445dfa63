package activate

import (
	"fmt"

	"github.com/spf13/afero"
)

// AssertionError is the panic value raised when the toolchain install is
// missing a directory it must have. It is never returned as an error.
type AssertionError struct {
	Path string
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("expected directory does not exist: %s", e.Path)
}

func (a *Activator) mustBeDir(path string) {
	if !isDir(a.FS, path) {
		panic(&AssertionError{Path: path})
	}
}

func isDir(fs afero.Fs, path string) bool {
	ok, err := afero.IsDir(fs, path)
	return err == nil && ok
}
