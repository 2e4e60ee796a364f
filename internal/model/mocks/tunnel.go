package mocks

import (
	"context"
	"io"
	"io/fs"

	"github.com/pia-wg/pia-wg/internal/model"
)

// Authenticator allows mocking the token endpoint client.
type Authenticator struct {
	MockAuthenticate func(ctx context.Context, region *model.Region,
		creds model.Credentials) (model.AuthToken, error)
}

// Authenticate calls MockAuthenticate.
func (a *Authenticator) Authenticate(
	ctx context.Context, region *model.Region, creds model.Credentials) (model.AuthToken, error) {
	return a.MockAuthenticate(ctx, region, creds)
}

// KeyRegistrar allows mocking the key registration client.
type KeyRegistrar struct {
	MockRegisterKey func(ctx context.Context, region *model.Region,
		token model.AuthToken, publicKey string) (*model.ConnectionParams, error)
}

// RegisterKey calls MockRegisterKey.
func (r *KeyRegistrar) RegisterKey(ctx context.Context, region *model.Region,
	token model.AuthToken, publicKey string) (*model.ConnectionParams, error) {
	return r.MockRegisterKey(ctx, region, token, publicKey)
}

// KeyGenerator allows mocking a key pair generator.
type KeyGenerator struct {
	MockGenerateKeyPair func(ctx context.Context) (*model.KeyPair, error)
}

// GenerateKeyPair calls MockGenerateKeyPair.
func (g *KeyGenerator) GenerateKeyPair(ctx context.Context) (*model.KeyPair, error) {
	return g.MockGenerateKeyPair(ctx)
}

// FileSystem allows mocking the file system operations of the workflow.
type FileSystem struct {
	MockExists func(path string) (bool, error)

	MockCreateExclusive func(path string, perms fs.FileMode) (io.WriteCloser, error)

	MockRemove func(path string) error
}

// Exists calls MockExists.
func (fsys *FileSystem) Exists(path string) (bool, error) {
	return fsys.MockExists(path)
}

// CreateExclusive calls MockCreateExclusive.
func (fsys *FileSystem) CreateExclusive(path string, perms fs.FileMode) (io.WriteCloser, error) {
	return fsys.MockCreateExclusive(path, perms)
}

// Remove calls MockRemove.
func (fsys *FileSystem) Remove(path string) error {
	return fsys.MockRemove(path)
}

// WriteCloser allows mocking an io.WriteCloser.
type WriteCloser struct {
	MockWrite func(b []byte) (int, error)

	MockClose func() error
}

// Write calls MockWrite.
func (wc *WriteCloser) Write(b []byte) (int, error) {
	return wc.MockWrite(b)
}

// Close calls MockClose.
func (wc *WriteCloser) Close() error {
	return wc.MockClose()
}
