package httpclientx

//
// do.go - send a request and read the response.
//

import (
	"compress/gzip"
	"context"
	"io"
	"net/http"

	"github.com/pia-wg/pia-wg/internal/model"
	"github.com/pia-wg/pia-wg/internal/netxlite"
)

// DefaultMaxBodySize is the maximum response body size we read.
const DefaultMaxBodySize = 1 << 22

// Response is an HTTP response whose body we have already read.
type Response struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Body is the response body, possibly empty but never nil.
	Body []byte
}

// Do sends a GET request and reads the response. This function does not
// fail when the status code indicates failure; callers that need that
// behavior should use [GetRaw] instead.
//
// Network errors are [*netxlite.ErrWrapper] instances matching
// either [model.ErrNetwork] or [model.ErrTLS].
func Do(ctx context.Context, epnt *Endpoint, config *Config) (*Response, error) {
	// construct the request to use
	req, err := http.NewRequestWithContext(ctx, "GET", epnt.URL, nil)
	if err != nil {
		return nil, err
	}

	// send it and read the response
	return do(req, epnt, config)
}

func do(req *http.Request, epnt *Endpoint, config *Config) (*Response, error) {
	logger := model.ValidLoggerOrDefault(config.Logger)

	// allow talking with servers whose URL contains a literal IP address
	req.Host = epnt.Host

	if epnt.hasBasicAuth() {
		req.SetBasicAuth(epnt.Username, epnt.Password)
	}
	req.Header.Set("User-Agent", config.UserAgent)

	// the query may contain secrets, so we never log it
	logger.Debugf("httpx: GET %s://%s%s host=%s", req.URL.Scheme, req.URL.Host, req.URL.Path, req.Host)

	// get the response
	resp, err := config.Client.Do(req)
	if err != nil {
		err = netxlite.WrapHTTPError(err)
		logger.Debugf("httpx: GET %s%s... %s", req.URL.Host, req.URL.Path, err)
		return nil, err
	}
	defer resp.Body.Close()

	// handle the case of servers compressing regardless of what we asked
	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzreader, err := gzip.NewReader(reader)
		if err != nil {
			return nil, err
		}
		defer gzreader.Close()
		reader = gzreader
	}

	// read the response body
	body, err := io.ReadAll(io.LimitReader(reader, DefaultMaxBodySize))
	if err != nil {
		err = netxlite.NewErrWrapper(netxlite.ClassifyGenericError, netxlite.ReadOperation, err)
		logger.Debugf("httpx: GET %s%s... %s", req.URL.Host, req.URL.Path, err)
		return nil, err
	}
	if body == nil {
		body = []byte{}
	}

	logger.Debugf("httpx: GET %s%s... %d (%d bytes)", req.URL.Host, req.URL.Path, resp.StatusCode, len(body))
	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}
