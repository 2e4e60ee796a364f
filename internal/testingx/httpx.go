package testingx

import (
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"

	"github.com/pia-wg/pia-wg/internal/runtimex"
)

// HTTPServer is an [*httptest.Server] knowing its IP and port.
type HTTPServer struct {
	*httptest.Server
}

// MustNewHTTPServer starts a cleartext HTTP server on localhost.
func MustNewHTTPServer(handler http.Handler) *HTTPServer {
	return &HTTPServer{httptest.NewServer(handler)}
}

// MustNewHTTPServerTLS starts an HTTPS server on localhost whose certificates
// are generated on the fly by mitm for the SNI sent by the client.
func MustNewHTTPServerTLS(handler http.Handler, mitm *TLSMITM) *HTTPServer {
	srv := httptest.NewUnstartedServer(handler)
	srv.TLS = mitm.ServerTLSConfig()
	srv.StartTLS()
	return &HTTPServer{srv}
}

// IP returns the IP address where the server is listening.
func (s *HTTPServer) IP() string {
	host, _ := s.hostPort()
	return host
}

// Port returns the port where the server is listening.
func (s *HTTPServer) Port() string {
	_, port := s.hostPort()
	return port
}

func (s *HTTPServer) hostPort() (string, string) {
	URL := runtimex.Try1(url.Parse(s.URL))
	host, port := runtimex.Try2(net.SplitHostPort(URL.Host))
	return host, port
}

// HTTPHandlerBlockpage451 returns a handler returning 451 with a blockpage.
func HTTPHandlerBlockpage451() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnavailableForLegalReasons)
		w.Write([]byte("<html><head><title>451 Unavailable For Legal Reasons</title></head></html>\n"))
	})
}
