package model

//
// Regions of the provider's server fleet.
//

// ServerEndpoint is a server inside a region.
type ServerEndpoint struct {
	// CommonName is the hostname we use both to validate the
	// server certificate and as the HTTP Host header.
	CommonName string

	// IP is the literal IP address we connect to.
	IP string
}

// Region is a provider-defined point of presence. A region is
// immutable after the server list has been parsed.
type Region struct {
	// ID is the provider's region identifier (e.g., "us_east").
	ID string

	// Name is the human readable name (e.g., "US East").
	Name string

	// Country is the OPTIONAL two letter country code.
	Country string

	// PortForward indicates whether the region supports port forwarding.
	PortForward bool

	// Geo indicates whether this is a geolocated (virtual) region.
	Geo bool

	// Meta is the metadata endpoint issuing tokens.
	Meta ServerEndpoint

	// Gateway is the WireGuard gateway endpoint registering keys.
	Gateway ServerEndpoint
}

// ServerDirectory maps region names to regions.
type ServerDirectory interface {
	// Regions returns the region names sorted in ascending order.
	Regions() []string

	// Lookup returns the region with the given name or an
	// error matching [ErrRegionNotFound].
	Lookup(name string) (*Region, error)
}
