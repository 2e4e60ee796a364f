// Package keygen generates WireGuard key pairs, either by running
// the wg(8) tool or natively.
package keygen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pia-wg/pia-wg/internal/model"
	"github.com/pia-wg/pia-wg/internal/shellx"
	"golang.zx2c4.com/wireguard/wgctrl/wgtypes"
)

// Generator generates key pairs.
type Generator interface {
	// GenerateKeyPair returns a fresh key pair or an error
	// matching [model.ErrKeyGen].
	GenerateKeyPair(ctx context.Context) (*model.KeyPair, error)
}

// DefaultCommand is the default command line for running wg(8).
const DefaultCommand = "wg"

// DefaultTimeout is the default timeout for generating a key pair.
const DefaultTimeout = 10 * time.Second

// Exec is a [Generator] running `wg genkey` and then `wg pubkey`, feeding
// the private key to the latter's standard input.
//
// The zero value is ready to use.
type Exec struct {
	// Command is the OPTIONAL command line for running wg(8). We split it
	// like a shell would do, which allows using, e.g., "sudo wg".
	Command string

	// Logger is the OPTIONAL logger to use.
	Logger model.Logger

	// Timeout is the OPTIONAL timeout for the whole operation.
	Timeout time.Duration
}

var _ Generator = &Exec{}

// GenerateKeyPair implements [Generator].
func (g *Exec) GenerateKeyPair(ctx context.Context) (*model.KeyPair, error) {
	timeout := g.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	logger := model.ValidLoggerOrDefault(g.Logger)
	command := g.Command
	if command == "" {
		command = DefaultCommand
	}
	argv, err := shellx.ParseCommandLine(command)
	if err != nil {
		return nil, newErrKeyGen("cannot find %q: %w", command, err)
	}

	genkey := argv.Clone()
	genkey.Append("genkey")
	output, err := shellx.OutputEx(ctx, &shellx.Config{Logger: logger}, genkey)
	if err != nil {
		return nil, newErrKeyGen("genkey: %w", maybeTimeout(ctx, err))
	}
	privateKey, err := parseKeyLine(output)
	if err != nil {
		return nil, newErrKeyGen("genkey: %w", err)
	}

	pubkey := argv.Clone()
	pubkey.Append("pubkey")
	output, err = shellx.OutputWithInput(ctx, logger, pubkey, []byte(privateKey.String()+"\n"))
	if err != nil {
		return nil, newErrKeyGen("pubkey: %w", maybeTimeout(ctx, err))
	}
	publicKey, err := parseKeyLine(output)
	if err != nil {
		return nil, newErrKeyGen("pubkey: %w", err)
	}
	if publicKey != privateKey.PublicKey() {
		return nil, newErrKeyGen("pubkey: %w", errPublicKeyMismatch)
	}

	logger.Debugf("keygen: generated key pair with public key %s", publicKey.String())
	return &model.KeyPair{
		PrivateKey: privateKey.String(),
		PublicKey:  publicKey.String(),
	}, nil
}

// Native is a [Generator] using [wgtypes.GeneratePrivateKey].
//
// The zero value is ready to use.
type Native struct{}

var _ Generator = Native{}

// GenerateKeyPair implements [Generator].
func (Native) GenerateKeyPair(ctx context.Context) (*model.KeyPair, error) {
	privateKey, err := wgtypes.GeneratePrivateKey()
	if err != nil {
		return nil, newErrKeyGen("%w", err)
	}
	return &model.KeyPair{
		PrivateKey: privateKey.String(),
		PublicKey:  privateKey.PublicKey().String(),
	}, nil
}

var (
	// errEmptyOutput indicates that wg(8) did not print anything.
	errEmptyOutput = errors.New("keygen: empty output")

	// errMultiLineOutput indicates that wg(8) printed more than one line.
	errMultiLineOutput = errors.New("keygen: expected a single line of output")

	// errPublicKeyMismatch indicates that wg(8) derived an unexpected public key.
	errPublicKeyMismatch = errors.New("keygen: public key does not match private key")
)

// parseKeyLine parses the single line of output printed by wg(8).
func parseKeyLine(output []byte) (wgtypes.Key, error) {
	text := strings.TrimSpace(string(output))
	if text == "" {
		return wgtypes.Key{}, errEmptyOutput
	}
	if strings.ContainsAny(text, "\r\n") {
		return wgtypes.Key{}, errMultiLineOutput
	}
	return wgtypes.ParseKey(text)
}

// maybeTimeout adds the context error to err, if any, since the
// error returned when killing a child is just "signal: killed".
func maybeTimeout(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w (%w)", err, ctxErr)
	}
	return err
}

// newErrKeyGen returns a new error matching [model.ErrKeyGen].
func newErrKeyGen(format string, v ...any) error {
	return fmt.Errorf("%w: %w", model.ErrKeyGen, fmt.Errorf(format, v...))
}
