package mocks

import (
	"context"

	"github.com/pia-wg/pia-wg/internal/model"
)

// ServerDirectory allows mocking a model.ServerDirectory.
type ServerDirectory struct {
	MockRegions func() []string

	MockLookup func(name string) (*model.Region, error)
}

var _ model.ServerDirectory = &ServerDirectory{}

// Regions calls MockRegions.
func (d *ServerDirectory) Regions() []string {
	return d.MockRegions()
}

// Lookup calls MockLookup.
func (d *ServerDirectory) Lookup(name string) (*model.Region, error) {
	return d.MockLookup(name)
}

// DirectoryFetcher allows mocking a fetcher of the server directory.
type DirectoryFetcher struct {
	MockFetchDirectory func(ctx context.Context) (model.ServerDirectory, error)
}

// FetchDirectory calls MockFetchDirectory.
func (f *DirectoryFetcher) FetchDirectory(ctx context.Context) (model.ServerDirectory, error) {
	return f.MockFetchDirectory(ctx)
}
