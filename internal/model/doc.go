// Package model contains the types and interfaces shared by the
// provisioning stages: the error taxonomy (errors.go), the HTTP client
// interface (http.go), the logger (logger.go), the regions of the server
// fleet (region.go) and the data flowing from the credentials to the
// tunnel configuration we write to disk (tunnel.go).
//
// This package contains no logic except for small helpers strictly
// related to its data structures.
package model
