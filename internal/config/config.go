// Package config contains the optional configuration file. The file is
// human JSON, i.e., JSON with comments and trailing commas.
package config

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/pia-wg/pia-wg/internal/fsx"
	"github.com/pia-wg/pia-wg/internal/hujsonx"
	"github.com/pia-wg/pia-wg/internal/keygen"
	"github.com/pia-wg/pia-wg/internal/model"
	"github.com/pia-wg/pia-wg/internal/netxlite"
	"github.com/pia-wg/pia-wg/internal/serverlist"
)

const (
	// DefaultOutput is the default path of the configuration file we write.
	DefaultOutput = "wireguard.conf"

	// KeyGenExec selects generating keys by running wg(8).
	KeyGenExec = "exec"

	// KeyGenNative selects generating keys natively.
	KeyGenNative = "native"
)

// Config contains the settings. Empty fields mean "use the default".
type Config struct {
	// ServerListURL is the URL of the server list.
	ServerListURL string `json:"server_list_url"`

	// CACert is the path of a PEM file containing the provider's CA. When
	// empty, we use the CA bundled with the binary.
	CACert string `json:"ca_cert"`

	// KeyGen is either [KeyGenExec] or [KeyGenNative].
	KeyGen string `json:"keygen"`

	// WGCommand is the command line for running wg(8).
	WGCommand string `json:"wg_command"`

	// TimeoutSeconds is the per-request timeout in seconds.
	TimeoutSeconds int `json:"timeout_seconds"`

	// UserAgent is the User-Agent header to send.
	UserAgent string `json:"user_agent"`

	// Username is the account username.
	Username string `json:"username"`

	// Output is the path of the configuration file we write.
	Output string `json:"output"`
}

// Default returns the default settings.
func Default() *Config {
	return &Config{
		ServerListURL:  serverlist.DefaultURL,
		CACert:         "",
		KeyGen:         KeyGenExec,
		WGCommand:      keygen.DefaultCommand,
		TimeoutSeconds: int(netxlite.DefaultTimeout / time.Second),
		UserAgent:      model.HTTPHeaderUserAgent,
		Username:       "",
		Output:         DefaultOutput,
	}
}

// maxFileSize is the maximum size of the configuration file.
const maxFileSize = 1 << 16

// Read reads the file at path and applies its settings on top of the defaults.
func Read(path string) (*Config, error) {
	fp, err := fsx.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	data, err := io.ReadAll(io.LimitReader(fp, maxFileSize))
	if err != nil {
		return nil, err
	}
	var file Config
	if err := hujsonx.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", path, model.ErrParse, err)
	}
	config := Default()
	config.Apply(&file)
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return config, nil
}

// Apply overrides the settings with the non-empty settings in other.
func (c *Config) Apply(other *Config) {
	if other.ServerListURL != "" {
		c.ServerListURL = other.ServerListURL
	}
	if other.CACert != "" {
		c.CACert = other.CACert
	}
	if other.KeyGen != "" {
		c.KeyGen = other.KeyGen
	}
	if other.WGCommand != "" {
		c.WGCommand = other.WGCommand
	}
	if other.TimeoutSeconds != 0 {
		c.TimeoutSeconds = other.TimeoutSeconds
	}
	if other.UserAgent != "" {
		c.UserAgent = other.UserAgent
	}
	if other.Username != "" {
		c.Username = other.Username
	}
	if other.Output != "" {
		c.Output = other.Output
	}
}

var (
	// ErrInvalidKeyGen indicates an unknown key generator.
	ErrInvalidKeyGen = errors.New("config: keygen must be either exec or native")

	// ErrInvalidTimeout indicates a negative timeout.
	ErrInvalidTimeout = errors.New("config: timeout_seconds must be positive")
)

// Validate returns an error if the settings are not valid.
func (c *Config) Validate() error {
	switch c.KeyGen {
	case KeyGenExec, KeyGenNative:
	default:
		return fmt.Errorf("%w (got %q)", ErrInvalidKeyGen, c.KeyGen)
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("%w (got %d)", ErrInvalidTimeout, c.TimeoutSeconds)
	}
	return nil
}

// Timeout returns the per-request timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
