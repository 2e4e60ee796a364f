package httpclientx

//
// getraw.go - GET a raw response.
//

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pia-wg/pia-wg/internal/model"
)

// ErrRequestFailed indicates that the server returned a status code other than 200.
type ErrRequestFailed struct {
	// StatusCode is the status code returned by the server.
	StatusCode int

	// Body is the raw response body.
	Body []byte
}

// Error implements error.
func (err *ErrRequestFailed) Error() string {
	return fmt.Sprintf("httpx: request failed: %d", err.StatusCode)
}

// Unwrap allows matching this error against [model.ErrNetwork].
func (err *ErrRequestFailed) Unwrap() error {
	return model.ErrNetwork
}

// GetRaw sends a GET request and reads a raw response.
//
// Arguments:
//
// - ctx is the cancellable context;
//
// - epnt is the HTTP [*Endpoint] to use;
//
// - config is the config to use.
//
// This function either returns an error or a valid body. When the status
// code is not 200, the error is an [*ErrRequestFailed].
func GetRaw(ctx context.Context, epnt *Endpoint, config *Config) ([]byte, error) {
	resp, err := Do(ctx, epnt, config)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ErrRequestFailed{StatusCode: resp.StatusCode, Body: resp.Body}
	}
	return resp.Body, nil
}
