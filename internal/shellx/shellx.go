// Package shellx helps to write shell-like Go code.
package shellx

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"

	"github.com/google/shlex"
	"github.com/pia-wg/pia-wg/internal/model"
	"golang.org/x/sys/execabs"
)

// Dependencies is the library on which this package depends.
type Dependencies interface {
	// CmdOutput is equivalent to calling c.Output.
	CmdOutput(c *execabs.Cmd) ([]byte, error)

	// LookPath is equivalent to calling execabs.LookPath.
	LookPath(file string) (string, error)
}

// Library contains the default dependencies.
var Library Dependencies = &StdlibDependencies{}

// StdlibDependencies contains the stdlib implementation of the [Dependencies].
type StdlibDependencies struct{}

// CmdOutput implements [Dependencies].
func (*StdlibDependencies) CmdOutput(c *execabs.Cmd) ([]byte, error) {
	return c.Output()
}

// LookPath implements [Dependencies].
func (*StdlibDependencies) LookPath(file string) (string, error) {
	return execabs.LookPath(file)
}

// Argv contains the complete argv.
type Argv struct {
	// P is the MANDATORY program to execute.
	P string

	// V contains the OPTIONAL arguments.
	V []string
}

// NewArgv creates a new [Argv] from the given command and arguments.
func NewArgv(command string, args ...string) (*Argv, error) {
	fullpath, err := Library.LookPath(command) // allows mocking
	if err != nil {
		return nil, err
	}
	argv := &Argv{
		P: fullpath,
		V: args,
	}
	return argv, nil
}

// ParseCommandLine creates an instance of [Argv] from the given command line.
func ParseCommandLine(cmdline string) (*Argv, error) {
	args, err := shlex.Split(cmdline)
	if err != nil {
		return nil, err
	}
	if len(args) < 1 {
		return nil, ErrNoCommandToExecute
	}
	return NewArgv(args[0], args[1:]...)
}

// Append appends arguments to the command line.
func (a *Argv) Append(args ...string) {
	a.V = append(a.V, args...)
}

// Clone returns a deep copy of the [Argv].
func (a *Argv) Clone() *Argv {
	return &Argv{
		P: a.P,
		V: append([]string{}, a.V...),
	}
}

// Config contains config for executing programs.
type Config struct {
	// Logger is the OPTIONAL logger to use.
	Logger model.Logger

	// Stdin is the OPTIONAL standard input for the child.
	Stdin io.Reader
}

// cmd creates a new [execabs.Cmd] instance.
func cmd(ctx context.Context, config *Config, argv *Argv) *execabs.Cmd {
	cmd := execabs.CommandContext(ctx, argv.P, argv.V...)
	cmd.Stdin = config.Stdin
	if config.Logger != nil {
		cmdline := quotedCommandLine(argv.P, argv.V...)
		config.Logger.Debugf("+ %s", cmdline)
	}
	return cmd
}

// OutputEx runs the given command and returns its standard output. When the
// child exits with a nonzero status, the returned error is an [*ErrExit] that
// contains the child's standard error.
func OutputEx(ctx context.Context, config *Config, argv *Argv) ([]byte, error) {
	cmd := cmd(ctx, config, argv)
	output, err := Library.CmdOutput(cmd) // allows mocking
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &ErrExit{
				ExitCode: exitErr.ExitCode(),
				Stderr:   strings.TrimSpace(string(exitErr.Stderr)),
				err:      err,
			}
		}
		return nil, err
	}
	return output, nil
}

// OutputWithInput is a convenience wrapper around [OutputEx] feeding
// the given bytes to the child's standard input.
func OutputWithInput(ctx context.Context, logger model.Logger, argv *Argv, input []byte) ([]byte, error) {
	config := &Config{
		Logger: logger,
		Stdin:  bytes.NewReader(input),
	}
	return OutputEx(ctx, config, argv)
}

// ErrNoCommandToExecute means that the command line is empty.
var ErrNoCommandToExecute = errors.New("shellx: no command to execute")

// ErrExit means that a child process exited with a nonzero exit code.
type ErrExit struct {
	// ExitCode is the child's exit code.
	ExitCode int

	// Stderr is the child's trimmed standard error.
	Stderr string

	err error
}

// Error implements error.
func (e *ErrExit) Error() string {
	if e.Stderr != "" {
		return e.err.Error() + ": " + e.Stderr
	}
	return e.err.Error()
}

// Unwrap allows using errors.Is and errors.As.
func (e *ErrExit) Unwrap() error {
	return e.err
}

// quotedCommandLine returns a quoted command line.
func quotedCommandLine(command string, args ...string) string {
	v := []string{}
	v = append(v, maybeQuoteArg(command))
	for _, a := range args {
		v = append(v, maybeQuoteArg(a))
	}
	return strings.Join(v, " ")
}

// maybeQuoteArg quotes a command line argument if needed.
func maybeQuoteArg(a string) string {
	if strings.Contains(a, "\"") {
		a = strings.ReplaceAll(a, "\"", "\\\"")
	}
	if strings.Contains(a, " ") {
		a = "\"" + a + "\""
	}
	return a
}
