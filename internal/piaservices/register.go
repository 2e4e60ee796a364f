package piaservices

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pia-wg/pia-wg/internal/httpclientx"
	"github.com/pia-wg/pia-wg/internal/model"
	"golang.zx2c4.com/wireguard/wgctrl/wgtypes"
)

// ErrRegistration is the error returned when the gateway does not
// accept our key. It matches [model.ErrRegistrationFailed].
type ErrRegistration struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Body is the raw response body.
	Body []byte
}

// Error implements error.
func (err *ErrRegistration) Error() string {
	return fmt.Sprintf("%s: status code %d: %s",
		model.ErrRegistrationFailed.Error(), err.StatusCode, strings.TrimSpace(string(err.Body)))
}

// Unwrap allows using errors.Is with [model.ErrRegistrationFailed].
func (err *ErrRegistration) Unwrap() error {
	return model.ErrRegistrationFailed
}

// addKeyResponse is the response of the key registration endpoint.
type addKeyResponse struct {
	Status string `json:"status"`
	model.ConnectionParams
}

// minDNSServers is the minimum number of DNS servers the tunnel needs.
const minDNSServers = 2

var (
	// errMissingField indicates that a mandatory response field is missing.
	errMissingField = errors.New("piaservices: missing field")

	// errInvalidServerKey indicates that server_key is not a WireGuard key.
	errInvalidServerKey = errors.New("piaservices: invalid server_key")

	// errTooFewDNSServers indicates that we got fewer DNS servers than we need.
	errTooFewDNSServers = errors.New("piaservices: too few DNS servers")
)

// RegisterKey registers the given public key with the region's WireGuard
// gateway using the given token. When the gateway does not accept the key
// the error is an [*ErrRegistration]; when the response lacks mandatory
// fields the error matches [model.ErrParse]; transport errors match
// either [model.ErrNetwork] or [model.ErrTLS].
func (c *Client) RegisterKey(ctx context.Context, region *model.Region,
	token model.AuthToken, publicKey string) (*model.ConnectionParams, error) {
	config, err := c.newConfig(region.Gateway)
	if err != nil {
		return nil, err
	}
	defer config.Client.CloseIdleConnections()

	query := url.Values{}
	query.Set("pt", string(token))
	query.Set("pubkey", publicKey)
	epnt := httpclientx.NewEndpointIP(region.Gateway.IP, c.RegistrationPort, AddKeyPath, query).
		WithHostOverride(region.Gateway.CommonName)

	config.Logger.Infof("registering %s with %s (%s)", publicKey, region.Gateway.CommonName, region.Gateway.IP)
	rawrespbody, err := httpclientx.GetRaw(ctx, epnt, config)
	var failed *httpclientx.ErrRequestFailed
	switch {
	case errors.As(err, &failed):
		return nil, &ErrRegistration{StatusCode: failed.StatusCode, Body: failed.Body}
	case err != nil:
		return nil, err
	}

	var resp addKeyResponse
	if err := json.Unmarshal(rawrespbody, &resp); err != nil || resp.Status != "OK" {
		return nil, &ErrRegistration{StatusCode: http.StatusOK, Body: rawrespbody}
	}
	if err := validateConnectionParams(&resp.ConnectionParams); err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrParse, err)
	}

	config.Logger.Infof("registered key; tunnel address is %s", resp.PeerIP)
	params := resp.ConnectionParams
	return &params, nil
}

// validateConnectionParams ensures we have all the fields we need
// for generating a tunnel configuration.
func validateConnectionParams(params *model.ConnectionParams) error {
	switch {
	case params.PeerIP == "":
		return fmt.Errorf("%w: peer_ip", errMissingField)
	case params.ServerKey == "":
		return fmt.Errorf("%w: server_key", errMissingField)
	case !isValidKey(params.ServerKey):
		return fmt.Errorf("%w: %q", errInvalidServerKey, params.ServerKey)
	case params.ServerIP == "":
		return fmt.Errorf("%w: server_ip", errMissingField)
	case len(params.DNSServers) < minDNSServers:
		return fmt.Errorf("%w: got %d, need %d", errTooFewDNSServers, len(params.DNSServers), minDNSServers)
	default:
		return nil
	}
}

// isValidKey returns whether key is a base64 encoded WireGuard key.
func isValidKey(key string) bool {
	_, err := wgtypes.ParseKey(key)
	return err == nil
}
