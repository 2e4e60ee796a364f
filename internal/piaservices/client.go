// Package piaservices implements clients for the per-region services
// that issue authentication tokens and register WireGuard keys.
//
// Both services listen on literal IP addresses and present certificates
// issued by the provider's own CA for the server's common name, so we
// always dial the IP address and validate the common name.
package piaservices

import (
	"crypto/x509"
	"fmt"
	"time"

	"github.com/pia-wg/pia-wg/internal/httpclientx"
	"github.com/pia-wg/pia-wg/internal/model"
	"github.com/pia-wg/pia-wg/internal/netxlite"
)

const (
	// GenerateTokenPath is the URL path of the token endpoint.
	GenerateTokenPath = "/authv3/generateToken"

	// AddKeyPath is the URL path of the key registration endpoint.
	AddKeyPath = "/addKey"

	// DefaultRegistrationPort is the port where the WireGuard gateway
	// registers keys, which is also the tunnel's UDP port.
	DefaultRegistrationPort = 1337
)

// Client is a client for the per-region services. Please use the
// [NewClient] factory to construct a new instance of client, otherwise
// you MUST fill all the fields marked as MANDATORY.
type Client struct {
	// CertPool is the OPTIONAL pool containing the provider's CA. When
	// nil, we call LoadCertPool before the first request.
	CertPool *x509.CertPool

	// LoadCertPool is the OPTIONAL function loading CertPool. When
	// nil, we use [BundledCertPool].
	LoadCertPool func() (*x509.CertPool, error)

	// Logger is the MANDATORY logger to use.
	Logger model.Logger

	// RegistrationPort is the MANDATORY port of the key registration endpoint.
	RegistrationPort int

	// Timeout is the OPTIONAL timeout for each request.
	Timeout time.Duration

	// TokenPort is the OPTIONAL port of the token endpoint. When zero
	// we use the default HTTPS port.
	TokenPort int

	// UserAgent is the MANDATORY user-agent to use.
	UserAgent string
}

// NewClient creates a new [*Client] trusting the given pool. A nil
// pool means we will trust the CA bundled with the binary.
func NewClient(pool *x509.CertPool, logger model.Logger) *Client {
	return &Client{
		CertPool:         pool,
		Logger:           logger,
		RegistrationPort: DefaultRegistrationPort,
		Timeout:          netxlite.DefaultTimeout,
		TokenPort:        0,
		UserAgent:        model.HTTPHeaderUserAgent,
	}
}

// certPool returns CertPool, loading it the first time.
func (c *Client) certPool() (*x509.CertPool, error) {
	if c.CertPool != nil {
		return c.CertPool, nil
	}
	load := c.LoadCertPool
	if load == nil {
		load = BundledCertPool
	}
	pool, err := load()
	if err != nil {
		return nil, fmt.Errorf("cannot load the CA certificate: %w", err)
	}
	c.CertPool = pool
	return pool, nil
}

// newConfig creates the [*httpclientx.Config] for talking with the given
// server. The caller owns the returned client and should close its idle
// connections when done.
func (c *Client) newConfig(server model.ServerEndpoint) (*httpclientx.Config, error) {
	pool, err := c.certPool()
	if err != nil {
		return nil, err
	}
	logger := model.ValidLoggerOrDefault(c.Logger)
	config := &httpclientx.Config{
		Client:    netxlite.NewHTTPClientPinned(logger, pool, server.CommonName, c.Timeout),
		Logger:    logger,
		UserAgent: c.UserAgent,
	}
	return config, nil
}
