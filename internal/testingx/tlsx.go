package testingx

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"net"
	"sync"

	"github.com/ooni/netem"
	"github.com/pia-wg/pia-wg/internal/runtimex"
)

// TLSMITM is a test certification authority that generates on the fly a
// certificate for whatever SNI a client sends. Tests use it in place of
// the provider's CA.
type TLSMITM struct {
	cfg *netem.TLSMITMConfig
}

// MustNewTLSMITM creates a [*TLSMITM] with a fresh CA or panics.
func MustNewTLSMITM() *TLSMITM {
	return &TLSMITM{runtimex.Try1(netem.NewTLSMITMConfig())}
}

// CACertPEM returns the CA certificate PEM encoded, which is the format
// in which the provider ships its CA.
func (m *TLSMITM) CACertPEM() []byte {
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: m.cfg.Cert.Raw})
}

// DefaultCertPool returns a pool containing only the CA certificate.
func (m *TLSMITM) DefaultCertPool() (*x509.CertPool, error) {
	return m.cfg.CertPool()
}

// ServerTLSConfig returns the config for a server using the CA.
func (m *TLSMITM) ServerTLSConfig() *tls.Config {
	return m.cfg.TLSConfig()
}

// EOFServer is a TCP server closing each connection as soon as the
// client sends its TLS ClientHello.
type EOFServer struct {
	listener net.Listener
	wg       sync.WaitGroup
}

// MustNewEOFServer starts an [*EOFServer] on localhost or panics.
func MustNewEOFServer() *EOFServer {
	srv := &EOFServer{listener: runtimex.Try1(net.Listen("tcp", "127.0.0.1:0"))}
	srv.wg.Add(1)
	go srv.loop()
	return srv
}

func (srv *EOFServer) loop() {
	defer srv.wg.Done()
	for {
		conn, err := srv.listener.Accept()
		if err != nil {
			return
		}
		buffer := make([]byte, 1<<14)
		conn.Read(buffer)
		conn.Close()
	}
}

// Endpoint returns the TCP endpoint where the server is listening.
func (srv *EOFServer) Endpoint() string {
	return srv.listener.Addr().String()
}

// Close stops the server.
func (srv *EOFServer) Close() error {
	err := srv.listener.Close()
	srv.wg.Wait()
	return err
}
