package piaservices

//
// anchor.go - the provider's CA bundled with the binary.
//

//go:generate go run ./internal/genanchor -o anchor/ca.rsa.4096.crt

import (
	"crypto/x509"
	"embed"
	"errors"
	"io/fs"
	"path"

	"github.com/pia-wg/pia-wg/internal/netxlite"
)

// AnchorFileName is the name of the provider's CA certificate.
const AnchorFileName = "ca.rsa.4096.crt"

//go:embed anchor
var anchorFS embed.FS

// ErrNoBundledAnchor indicates that this build does not contain the
// provider's CA. Run `go generate ./internal/piaservices` and rebuild.
var ErrNoBundledAnchor = errors.New("piaservices: the provider CA is not bundled in this build")

// BundledCertPool returns a pool containing the provider's CA
// that we embedded into the binary at build time.
func BundledCertPool() (*x509.CertPool, error) {
	return certPoolFromFS(anchorFS, path.Join("anchor", AnchorFileName))
}

func certPoolFromFS(fsys fs.FS, name string) (*x509.CertPool, error) {
	data, err := fs.ReadFile(fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoBundledAnchor
	}
	if err != nil {
		return nil, err
	}
	return netxlite.NewCertPoolFromPEM(data)
}
