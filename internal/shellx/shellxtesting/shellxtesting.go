// Package shellxtesting contains mocks for shellx.
package shellxtesting

import (
	"io"
	"os/exec"

	"github.com/pia-wg/pia-wg/internal/runtimex"
	"github.com/pia-wg/pia-wg/internal/shellx"
)

// Library implements shellx.Dependencies.
type Library struct {
	MockCmdOutput func(c *exec.Cmd) ([]byte, error)

	MockLookPath func(file string) (string, error)
}

var _ shellx.Dependencies = &Library{}

// CmdOutput implements shellx.Dependencies
func (lib *Library) CmdOutput(c *exec.Cmd) ([]byte, error) {
	return lib.MockCmdOutput(c)
}

// LookPath implements shellx.Dependencies
func (lib *Library) LookPath(file string) (string, error) {
	return lib.MockLookPath(file)
}

// MustArgv returns the [exec.Cmd]'s Argv or panics.
func MustArgv(c *exec.Cmd) []string {
	runtimex.PanicIfFalse(len(c.Args) >= 1, "too few arguments")
	out := []string{c.Path}
	out = append(out, c.Args[1:]...)
	return out
}

// MustReadStdin returns what the [exec.Cmd] would read from stdin or panics.
func MustReadStdin(c *exec.Cmd) []byte {
	if c.Stdin == nil {
		return nil
	}
	return runtimex.Try1(io.ReadAll(c.Stdin))
}

// WithCustomLibrary executes the given function with a custom shellx.Library.
func WithCustomLibrary(library shellx.Dependencies, fn func()) {
	prev := shellx.Library
	defer func() {
		shellx.Library = prev
	}()
	shellx.Library = library
	fn()
}
