package model

//
// Error taxonomy shared by all the provisioning stages.
//

import "errors"

var (
	// ErrNetwork indicates a transport-level failure reaching an endpoint.
	ErrNetwork = errors.New("network error")

	// ErrTLS indicates that the pinned certificate validation failed.
	ErrTLS = errors.New("tls error")

	// ErrParse indicates a malformed JSON document or response shape.
	ErrParse = errors.New("parse error")

	// ErrRegionNotFound indicates that the selected region is not in the directory.
	ErrRegionNotFound = errors.New("region not found")

	// ErrAuthenticationFailed indicates that the token endpoint did not issue a token.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrRegistrationFailed indicates that the gateway did not accept our public key.
	ErrRegistrationFailed = errors.New("key registration failed")

	// ErrKeyGen indicates that the key generator is missing or misbehaving.
	ErrKeyGen = errors.New("key generation failed")

	// ErrOutputExists indicates that the output configuration file already exists.
	ErrOutputExists = errors.New("output file already exists")
)
