// Package provision implements the provisioning workflow, which turns a
// region name and a set of credentials into a wg-quick configuration file.
package provision

import (
	"context"
	"io"
	"io/fs"
	"os"

	"github.com/pia-wg/pia-wg/internal/fsx"
	"github.com/pia-wg/pia-wg/internal/keygen"
	"github.com/pia-wg/pia-wg/internal/model"
	"github.com/pia-wg/pia-wg/internal/serverlist"
	"github.com/pia-wg/pia-wg/internal/wgconf"
	"github.com/pkg/errors"
)

// DirectoryFetcher fetches the server directory.
type DirectoryFetcher interface {
	FetchDirectory(ctx context.Context) (model.ServerDirectory, error)
}

// Authenticator exchanges credentials for a token.
type Authenticator interface {
	Authenticate(ctx context.Context, region *model.Region, creds model.Credentials) (model.AuthToken, error)
}

// KeyRegistrar registers a public key with a region's gateway.
type KeyRegistrar interface {
	RegisterKey(ctx context.Context, region *model.Region,
		token model.AuthToken, publicKey string) (*model.ConnectionParams, error)
}

// FileSystem contains the file system operations we need.
type FileSystem interface {
	// Exists returns whether the given path exists.
	Exists(path string) (bool, error)

	// CreateExclusive creates a file failing if it already exists.
	CreateExclusive(path string, perms fs.FileMode) (io.WriteCloser, error)

	// Remove removes the given path.
	Remove(path string) error
}

// ServerListFetcher is a [DirectoryFetcher] using [serverlist.Fetch].
type ServerListFetcher struct {
	Config *serverlist.Config
}

var _ DirectoryFetcher = &ServerListFetcher{}

// FetchDirectory implements [DirectoryFetcher].
func (f *ServerListFetcher) FetchDirectory(ctx context.Context) (model.ServerDirectory, error) {
	dir, err := serverlist.Fetch(ctx, f.Config)
	if err != nil {
		return nil, err
	}
	return dir, nil
}

// OSFileSystem is the [FileSystem] backed by the operating system.
type OSFileSystem struct{}

var _ FileSystem = OSFileSystem{}

// Exists implements [FileSystem].
func (OSFileSystem) Exists(path string) (bool, error) {
	return fsx.Exists(path)
}

// CreateExclusive implements [FileSystem].
func (OSFileSystem) CreateExclusive(path string, perms fs.FileMode) (io.WriteCloser, error) {
	return fsx.CreateExclusive(path, perms)
}

// Remove implements [FileSystem].
func (OSFileSystem) Remove(path string) error {
	return os.Remove(path)
}

// OutputFileMode is the mode of the configuration file, which contains a private key.
const OutputFileMode fs.FileMode = 0600

// Request is a request to provision a tunnel.
type Request struct {
	// Region is the MANDATORY name of the region.
	Region string

	// Credentials contains the credentials.
	Credentials model.Credentials

	// AskCredentials is the OPTIONAL function we call once we know the
	// region is valid to complete the credentials, e.g., by prompting.
	AskCredentials func(creds model.Credentials) (model.Credentials, error)

	// OutputPath is the MANDATORY path of the file to create.
	OutputPath string
}

// Result is the result of provisioning a tunnel.
type Result struct {
	// Region is the region we provisioned.
	Region *model.Region

	// Tunnel is the tunnel configuration.
	Tunnel *model.TunnelConfig

	// OutputPath is the path of the file we created.
	OutputPath string
}

// Workflow provisions tunnels. The zero value is invalid; please,
// initialize all the fields marked as MANDATORY.
type Workflow struct {
	// Authenticator is the MANDATORY [Authenticator].
	Authenticator Authenticator

	// Fetcher is the MANDATORY [DirectoryFetcher].
	Fetcher DirectoryFetcher

	// FileSystem is the MANDATORY [FileSystem].
	FileSystem FileSystem

	// KeyGenerator is the MANDATORY [keygen.Generator].
	KeyGenerator keygen.Generator

	// Logger is the OPTIONAL logger.
	Logger model.Logger

	// Registrar is the MANDATORY [KeyRegistrar].
	Registrar KeyRegistrar
}

// errEmptyRegion indicates that the request does not name a region.
var errEmptyRegion = errors.New("provision: empty region name")

// Run provisions a tunnel. We check whether the output file exists before
// doing anything else and we only create the output file once every other
// step has succeeded, so a failed run has no side effects.
func (w *Workflow) Run(ctx context.Context, req *Request) (*Result, error) {
	logger := model.ValidLoggerOrDefault(w.Logger)

	if req.Region == "" {
		return nil, errors.Wrap(model.ErrRegionNotFound, errEmptyRegion.Error())
	}

	exists, err := w.FileSystem.Exists(req.OutputPath)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot check whether %s exists", req.OutputPath)
	}
	if exists {
		return nil, errors.Wrap(model.ErrOutputExists, req.OutputPath)
	}

	dir, err := w.Fetcher.FetchDirectory(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "cannot fetch the server list")
	}

	region, err := dir.Lookup(req.Region)
	if err != nil {
		return nil, err
	}
	logger.Infof("using region %q (%s)", region.Name, region.ID)

	creds := req.Credentials
	if req.AskCredentials != nil {
		if creds, err = req.AskCredentials(creds); err != nil {
			return nil, err
		}
	}

	token, err := w.Authenticator.Authenticate(ctx, region, creds)
	if err != nil {
		return nil, errors.Wrap(err, "cannot obtain a token")
	}

	keys, err := w.KeyGenerator.GenerateKeyPair(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "cannot generate the key pair")
	}

	params, err := w.Registrar.RegisterKey(ctx, region, token, keys.PublicKey)
	if err != nil {
		return nil, errors.Wrap(err, "cannot register the public key")
	}

	tunnel := wgconf.NewTunnelConfig(params, keys)
	err = w.writeConfig(req.OutputPath, wgconf.Render(tunnel))
	logger.Debugf("provision: write %s... %s", req.OutputPath, model.ErrorToStringOrOK(err))
	if err != nil {
		return nil, errors.Wrapf(err, "cannot write %s", req.OutputPath)
	}
	logger.Infof("saved the configuration to %s", req.OutputPath)

	result := &Result{
		Region:     region,
		Tunnel:     tunnel,
		OutputPath: req.OutputPath,
	}
	return result, nil
}

// writeConfig writes the config to a new file, removing it on failure.
func (w *Workflow) writeConfig(path, text string) error {
	fp, err := w.FileSystem.CreateExclusive(path, OutputFileMode)
	if errors.Is(err, fs.ErrExist) {
		return errors.Wrap(model.ErrOutputExists, err.Error())
	}
	if err != nil {
		return err
	}
	if _, err := io.WriteString(fp, text); err != nil {
		fp.Close()
		w.FileSystem.Remove(path)
		return err
	}
	if err := fp.Close(); err != nil {
		w.FileSystem.Remove(path)
		return err
	}
	return nil
}

// ListRegions returns the sorted names of the usable regions.
func (w *Workflow) ListRegions(ctx context.Context) ([]string, error) {
	dir, err := w.Fetcher.FetchDirectory(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "cannot fetch the server list")
	}
	return dir.Regions(), nil
}
