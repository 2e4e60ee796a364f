package model

//
// Common HTTP definitions.
//

import "net/http"

// HTTPClient is an [*http.Client] like structure.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
	CloseIdleConnections()
}

var _ HTTPClient = &http.Client{}

// HTTPHeaderUserAgent is the default User-Agent header.
const HTTPHeaderUserAgent = "pia-wg/" + Version

// Version is the version of this software.
const Version = "0.4.0"
