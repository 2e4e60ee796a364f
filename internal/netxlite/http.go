package netxlite

//
// HTTP clients
//

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"net"
	"net/http"
	"time"

	"github.com/pia-wg/pia-wg/internal/model"
)

// DefaultTimeout is the default timeout for a whole HTTP request.
const DefaultTimeout = 30 * time.Second

// NewHTTPClientPinned creates a new [*http.Client] for talking with a server
// whose certificate has been issued by one of the CAs in pool for the given
// hostname. The URLs used with this client SHOULD contain a literal IP address
// and the requests SHOULD set the Host header to hostname. The returned client
// never uses proxies because the TLS handshake must be ours.
func NewHTTPClientPinned(
	logger model.DebugLogger, pool *x509.CertPool, hostname string, timeout time.Duration) *http.Client {
	return newHTTPClient(logger, timeout, func(address string) (*tls.Config, error) {
		return NewTLSConfigPinned(pool, hostname), nil
	})
}

// NewHTTPClientStdlib creates a new [*http.Client] that verifies certificates
// using the system trust store and the hostname in the URL.
func NewHTTPClientStdlib(logger model.DebugLogger, timeout time.Duration) *http.Client {
	return newHTTPClient(logger, timeout, func(address string) (*tls.Config, error) {
		hostname, _, err := net.SplitHostPort(address)
		if err != nil {
			return nil, err
		}
		config := &tls.Config{
			ServerName: hostname,
			MinVersion: tls.VersionTLS12,
			NextProtos: []string{"http/1.1"},
		}
		return config, nil
	})
}

func newHTTPClient(logger model.DebugLogger, timeout time.Duration, newConfig tlsConfigFactory) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	dialer := &tlsDialer{
		Dialer:    &net.Dialer{Timeout: timeout},
		Logger:    logger,
		NewConfig: newConfig,
		Timeout:   timeout,
	}
	txp := &http.Transport{
		DialTLSContext:        dialer.DialTLSContext,
		DialContext:           dialer.DialContext,
		Proxy:                 nil,
		ForceAttemptHTTP2:     false,
		MaxIdleConns:          1,
		IdleConnTimeout:       timeout,
		ResponseHeaderTimeout: timeout,
	}
	return &http.Client{
		Transport: txp,
		Timeout:   timeout,
	}
}

// tlsConfigFactory builds the TLS config for a given endpoint.
type tlsConfigFactory func(address string) (*tls.Config, error)

// tlsDialer dials TCP connections and performs TLS handshakes
// logging and wrapping errors.
type tlsDialer struct {
	Dialer    *net.Dialer
	Logger    model.DebugLogger
	NewConfig tlsConfigFactory
	Timeout   time.Duration
}

// DialContext dials a cleartext TCP connection.
func (d *tlsDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	d.Logger.Debugf("dial %s/%s...", address, network)
	start := time.Now()
	conn, err := d.Dialer.DialContext(ctx, network, address)
	elapsed := time.Since(start)
	if err != nil {
		err = NewErrWrapper(ClassifyGenericError, ConnectOperation, err)
		d.Logger.Debugf("dial %s/%s... %s in %s", address, network, err, elapsed)
		return nil, err
	}
	d.Logger.Debugf("dial %s/%s... ok in %s", address, network, elapsed)
	return conn, nil
}

// DialTLSContext dials a TCP connection and performs the TLS handshake.
func (d *tlsDialer) DialTLSContext(ctx context.Context, network, address string) (net.Conn, error) {
	config, err := d.NewConfig(address)
	if err != nil {
		return nil, NewTopLevelGenericErrWrapper(err)
	}
	conn, err := d.DialContext(ctx, network, address)
	if err != nil {
		return nil, err
	}
	tlsconn, err := d.handshake(ctx, conn, config)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return tlsconn, nil
}

func (d *tlsDialer) handshake(ctx context.Context, conn net.Conn, config *tls.Config) (net.Conn, error) {
	ctx, cancel := context.WithTimeout(ctx, d.Timeout)
	defer cancel()
	d.Logger.Debugf("tls {sni=%s next=%+v}...", config.ServerName, config.NextProtos)
	start := time.Now()
	tlsconn := tls.Client(conn, config)
	err := tlsconn.HandshakeContext(ctx)
	elapsed := time.Since(start)
	if err != nil {
		err = NewErrWrapper(ClassifyTLSHandshakeError, TLSHandshakeOperation, err)
		d.Logger.Debugf("tls {sni=%s next=%+v}... %s in %s",
			config.ServerName, config.NextProtos, err, elapsed)
		return nil, err
	}
	state := tlsconn.ConnectionState()
	d.Logger.Debugf("tls {sni=%s next=%+v}... ok in %s {next=%s v=%s}",
		config.ServerName, config.NextProtos, elapsed, state.NegotiatedProtocol,
		TLSVersionString(state.Version))
	return tlsconn, nil
}

// WrapHTTPError wraps an error returned by an HTTP round trip, preserving
// any classification we already performed when dialing. This function
// returns nil when passed a nil error.
func WrapHTTPError(err error) error {
	return MaybeNewErrWrapper(ClassifyGenericError, HTTPRoundTripOperation, err)
}
