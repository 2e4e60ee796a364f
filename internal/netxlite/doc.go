// Package netxlite contains the network extensions we use to talk to
// the provider's servers.
//
// The most important feature is certificate pinning decoupled from the
// address we connect to: the provider's metadata and gateway servers are
// reached by literal IP address, yet their certificates are issued by the
// provider's own CA for a logical hostname. We dial the IP, send the logical
// hostname as SNI, and verify the peer chain against the bundled anchor
// and the logical hostname (see [NewTLSConfigPinned]).
//
// All the errors returned by this package are [*ErrWrapper] instances
// matching either [model.ErrTLS] or [model.ErrNetwork].
package netxlite
