// Command genanchor downloads the provider's CA certificate so that
// the piaservices package can embed it.
package main

import (
	"context"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/apex/log"
	"github.com/pia-wg/pia-wg/internal/httpclientx"
	"github.com/pia-wg/pia-wg/internal/model"
	"github.com/pia-wg/pia-wg/internal/netxlite"
	"github.com/pia-wg/pia-wg/internal/runtimex"
)

// sourceURL is where the provider publishes the certificate.
const sourceURL = "https://raw.githubusercontent.com/pia-foss/manual-connections/master/ca.rsa.4096.crt"

// expectedOrganization is the organization of the certificate subject.
const expectedOrganization = "Private Internet Access"

// checkAnchor ensures that data is a single PEM certificate of a CA
// belonging to the provider and signed by itself.
func checkAnchor(data []byte) error {
	block, rest := pem.Decode(data)
	if block == nil || block.Type != "CERTIFICATE" {
		return errors.New("genanchor: not a PEM certificate")
	}
	if len(strings.TrimSpace(string(rest))) > 0 {
		return errors.New("genanchor: trailing data after the certificate")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return err
	}
	if !cert.IsCA {
		return errors.New("genanchor: not a CA certificate")
	}
	if len(cert.Subject.Organization) < 1 || cert.Subject.Organization[0] != expectedOrganization {
		return fmt.Errorf("genanchor: unexpected subject: %s", cert.Subject)
	}
	return cert.CheckSignatureFrom(cert)
}

func main() {
	output := kingpin.Flag("output", "Where to write the certificate.").Short('o').Required().String()
	kingpin.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	config := &httpclientx.Config{
		Client:    netxlite.NewHTTPClientStdlib(log.Log, time.Minute),
		Logger:    log.Log,
		UserAgent: model.HTTPHeaderUserAgent,
	}
	data := runtimex.Try1(httpclientx.GetRaw(ctx, httpclientx.NewEndpoint(sourceURL), config))
	runtimex.PanicOnError(checkAnchor(data), "the downloaded certificate is not the provider CA")
	runtimex.Try0(os.WriteFile(*output, data, 0644))
	log.Infof("written %s", *output)
}
