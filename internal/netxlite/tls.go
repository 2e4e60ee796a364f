package netxlite

//
// TLS implementation
//

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"

	"github.com/pia-wg/pia-wg/internal/fsx"
)

var (
	tlsVersionString = map[uint16]string{
		tls.VersionTLS10: "TLSv1",
		tls.VersionTLS11: "TLSv1.1",
		tls.VersionTLS12: "TLSv1.2",
		tls.VersionTLS13: "TLSv1.3",
		0:                "", // guarantee correct behaviour
	}
)

// TLSVersionString returns a TLS version string. If value is zero, we
// return the empty string. If the value is unknown, we return
// `TLS_VERSION_UNKNOWN_ddd` where `ddd` is the numeric value passed
// to this function.
func TLSVersionString(value uint16) string {
	if str, found := tlsVersionString[value]; found {
		return str
	}
	return fmt.Sprintf("TLS_VERSION_UNKNOWN_%d", value)
}

// ErrNoCertificates indicates that a PEM bundle contained no certificates.
var ErrNoCertificates = errors.New("netxlite: no certificates in PEM data")

// NewCertPoolFromPEM returns a new [*x509.CertPool] containing only
// the certificates in the given PEM data, i.e., the system trust store
// is NOT part of the returned pool.
func NewCertPoolFromPEM(data []byte) (*x509.CertPool, error) {
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(data) {
		return nil, ErrNoCertificates
	}
	return pool, nil
}

// maxCertFileSize is the maximum size of a trust anchor file we read.
const maxCertFileSize = 1 << 20

// ReadCertPoolFile reads a PEM trust anchor file and returns the
// corresponding [*x509.CertPool]. The file is closed before returning.
func ReadCertPoolFile(path string) (*x509.CertPool, error) {
	fp, err := fsx.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	data, err := io.ReadAll(io.LimitReader(fp, maxCertFileSize))
	if err != nil {
		return nil, err
	}
	pool, err := NewCertPoolFromPEM(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pool, nil
}

// NewTLSConfigPinned returns a [*tls.Config] that uses hostname as the SNI
// and verifies the peer's chain against the given pool and hostname, regardless
// of the address we're actually connected to.
func NewTLSConfigPinned(pool *x509.CertPool, hostname string) *tls.Config {
	return &tls.Config{
		ServerName: hostname,
		RootCAs:    pool,
		// Only disables the stdlib verification, which we replace with
		// VerifyConnection so it works with any pool and hostname.
		InsecureSkipVerify: true,
		VerifyConnection: func(state tls.ConnectionState) error {
			return VerifyCertificateChain(hostname, state, pool)
		},
		MinVersion: tls.VersionTLS12,
		NextProtos: []string{"http/1.1"},
	}
}

// errNoPeerCertificate is an internal error returned when we don't have any peer certificate.
var errNoPeerCertificate = errors.New("no peer certificate")

// VerifyCertificateChain verifies the certificate chain in state using
// the given hostname and root CAs.
func VerifyCertificateChain(hostname string, state tls.ConnectionState, rootCAs *x509.CertPool) error {
	// This is approximately what crypto/tls does normally to verify the
	// peer's certificate, except that hostname comes from the caller.
	//
	// See https://github.com/golang/go/blob/go1.21.0/src/crypto/tls/example_test.go#L186
	opts := x509.VerifyOptions{
		DNSName:       hostname,
		Intermediates: x509.NewCertPool(),
		Roots:         rootCAs,
	}
	if len(state.PeerCertificates) < 1 {
		return errNoPeerCertificate
	}
	for _, cert := range state.PeerCertificates[1:] {
		opts.Intermediates.AddCert(cert)
	}
	_, err := state.PeerCertificates[0].Verify(opts)
	return err
}
