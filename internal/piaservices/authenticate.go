package piaservices

import (
	"context"
	"errors"
	"fmt"

	"github.com/pia-wg/pia-wg/internal/httpclientx"
	"github.com/pia-wg/pia-wg/internal/model"
)

// tokenResponse is the response of the token endpoint.
type tokenResponse struct {
	Status string `json:"status"`
	Token  string `json:"token"`
}

// Authenticate exchanges the given credentials for a token using the
// region's metadata server. When the server does not issue a token the
// error matches [model.ErrAuthenticationFailed]; transport errors match
// either [model.ErrNetwork] or [model.ErrTLS].
func (c *Client) Authenticate(
	ctx context.Context, region *model.Region, creds model.Credentials) (model.AuthToken, error) {
	config, err := c.newConfig(region.Meta)
	if err != nil {
		return "", err
	}
	defer config.Client.CloseIdleConnections()

	epnt := httpclientx.NewEndpointIP(region.Meta.IP, c.TokenPort, GenerateTokenPath, nil).
		WithHostOverride(region.Meta.CommonName).
		WithBasicAuth(creds.Username, creds.Password)

	config.Logger.Infof("requesting a token from %s (%s)", region.Meta.CommonName, region.Meta.IP)
	resp, err := httpclientx.GetJSON[*tokenResponse](ctx, epnt, config)

	var failed *httpclientx.ErrRequestFailed
	switch {
	case errors.As(err, &failed):
		return "", fmt.Errorf("%w: status code %d", model.ErrAuthenticationFailed, failed.StatusCode)
	case errors.Is(err, model.ErrParse):
		return "", fmt.Errorf("%w: %s", model.ErrAuthenticationFailed, err.Error())
	case err != nil:
		return "", err
	case resp.Status != "OK":
		return "", fmt.Errorf("%w: status %q", model.ErrAuthenticationFailed, resp.Status)
	case resp.Token == "":
		return "", fmt.Errorf("%w: empty token", model.ErrAuthenticationFailed)
	}

	config.Logger.Infof("obtained a token from %s", region.Meta.CommonName)
	return model.AuthToken(resp.Token), nil
}
