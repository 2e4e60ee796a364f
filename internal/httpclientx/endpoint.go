package httpclientx

import (
	"net"
	"net/url"
	"strconv"
	"strings"
)

// Endpoint is an HTTP endpoint.
//
// The zero value is invalid; construct using [NewEndpoint] or [NewEndpointIP].
type Endpoint struct {
	// URL is the MANDATORY endpoint URL.
	URL string

	// Host is the OPTIONAL host header to use when the URL
	// contains a literal IP address.
	Host string

	// Username is the OPTIONAL basic auth username.
	Username string

	// Password is the OPTIONAL basic auth password.
	Password string
}

// NewEndpoint constructs a new [*Endpoint] instance using the given URL.
func NewEndpoint(URL string) *Endpoint {
	return &Endpoint{
		URL:      URL,
		Host:     "",
		Username: "",
		Password: "",
	}
}

// NewEndpointIP constructs a new [*Endpoint] for an HTTPS server reachable
// at the given literal IP address. A zero port means the default port. The
// query, if not nil, is percent-encoded using [url.Values.Encode].
func NewEndpointIP(ip string, port int, path string, query url.Values) *Endpoint {
	host := ip
	switch {
	case port > 0:
		host = net.JoinHostPort(ip, strconv.Itoa(port))
	case strings.Contains(ip, ":"):
		host = "[" + ip + "]"
	}
	URL := &url.URL{
		Scheme: "https",
		Host:   host,
		Path:   path,
	}
	if query != nil {
		URL.RawQuery = query.Encode()
	}
	return NewEndpoint(URL.String())
}

// WithHostOverride returns a copy of the [*Endpoint] using the given host header override.
func (e *Endpoint) WithHostOverride(host string) *Endpoint {
	out := *e
	out.Host = host
	return &out
}

// WithBasicAuth returns a copy of the [*Endpoint] using the given basic auth credentials.
func (e *Endpoint) WithBasicAuth(username, password string) *Endpoint {
	out := *e
	out.Username = username
	out.Password = password
	return &out
}

// hasBasicAuth returns whether we should send an Authorization header.
func (e *Endpoint) hasBasicAuth() bool {
	return e.Username != "" || e.Password != ""
}
