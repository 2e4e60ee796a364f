// Package serverlist fetches and parses the provider's server list,
// which maps region names to the endpoints we need for provisioning.
package serverlist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sort"

	"github.com/pia-wg/pia-wg/internal/httpclientx"
	"github.com/pia-wg/pia-wg/internal/model"
)

// DefaultURL is the default URL of the server list.
const DefaultURL = "https://serverlist.piaservers.net/vpninfo/servers/v4"

// Config contains config for [Fetch]. Please, initialize the fields
// marked as MANDATORY, the others have sensible defaults.
type Config struct {
	// Client is the MANDATORY HTTP client to use.
	Client model.HTTPClient

	// Logger is the OPTIONAL logger to use.
	Logger model.Logger

	// URL is the OPTIONAL URL of the server list.
	URL string

	// UserAgent is the OPTIONAL user agent to use.
	UserAgent string
}

// Fetch downloads and parses the server list. Transport errors match
// either [model.ErrNetwork] or [model.ErrTLS], a status code other than
// 200 is an [*httpclientx.ErrRequestFailed] matching [model.ErrNetwork],
// and a malformed list matches [model.ErrParse].
func Fetch(ctx context.Context, config *Config) (*Directory, error) {
	logger := model.ValidLoggerOrDefault(config.Logger)
	URL := config.URL
	if URL == "" {
		URL = DefaultURL
	}
	userAgent := config.UserAgent
	if userAgent == "" {
		userAgent = model.HTTPHeaderUserAgent
	}
	logger.Infof("fetching the server list from %s", URL)
	data, err := httpclientx.GetRaw(ctx, httpclientx.NewEndpoint(URL), &httpclientx.Config{
		Client:    config.Client,
		Logger:    logger,
		UserAgent: userAgent,
	})
	if err != nil {
		return nil, err
	}
	return Parse(logger, data)
}

// serverListRecord is the JSON document at the beginning of the server list.
type serverListRecord struct {
	Regions *[]regionRecord `json:"regions"`
}

// regionRecord is a region inside the server list.
type regionRecord struct {
	ID          string                    `json:"id"`
	Name        string                    `json:"name"`
	Country     string                    `json:"country"`
	PortForward bool                      `json:"port_forward"`
	Geo         bool                      `json:"geo"`
	Servers     map[string][]serverRecord `json:"servers"`
}

// serverRecord is a server inside a region.
type serverRecord struct {
	IP string `json:"ip"`
	CN string `json:"cn"`
}

// errMissingRegions indicates that the server list has no regions field.
var errMissingRegions = errors.New("serverlist: missing regions")

// errEmptyRegionName indicates that a region has no name.
var errEmptyRegionName = errors.New("serverlist: region with empty name")

// Parse parses the server list. The list consists of a JSON document
// followed by a newline and a signature, so we only parse the bytes
// before the first newline. Regions without a usable metadata server
// or a usable WireGuard server are skipped.
func Parse(logger model.DebugLogger, data []byte) (*Directory, error) {
	if idx := bytes.IndexByte(data, '\n'); idx >= 0 {
		data = data[:idx]
	}
	var record serverListRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: %s", model.ErrParse, err)
	}
	if record.Regions == nil {
		return nil, fmt.Errorf("%w: %w", model.ErrParse, errMissingRegions)
	}
	dir := &Directory{regions: map[string]*model.Region{}}
	for _, entry := range *record.Regions {
		if entry.Name == "" {
			return nil, fmt.Errorf("%w: %w (id=%q)", model.ErrParse, errEmptyRegionName, entry.ID)
		}
		meta, good := firstUsableServer(entry.Servers["meta"])
		if !good {
			logger.Debugf("serverlist: skipping %q: no usable meta server", entry.Name)
			continue
		}
		gateway, good := firstUsableServer(entry.Servers["wg"])
		if !good {
			logger.Debugf("serverlist: skipping %q: no usable wg server", entry.Name)
			continue
		}
		if _, found := dir.regions[entry.Name]; found {
			logger.Debugf("serverlist: %q appears more than once; using the last entry", entry.Name)
		}
		dir.regions[entry.Name] = &model.Region{
			ID:          entry.ID,
			Name:        entry.Name,
			Country:     entry.Country,
			PortForward: entry.PortForward,
			Geo:         entry.Geo,
			Meta:        meta,
			Gateway:     gateway,
		}
	}
	logger.Debugf("serverlist: loaded %d regions", len(dir.regions))
	return dir, nil
}

// firstUsableServer returns the first server in the list, provided that
// it has a common name and a valid IP address.
func firstUsableServer(servers []serverRecord) (model.ServerEndpoint, bool) {
	if len(servers) < 1 {
		return model.ServerEndpoint{}, false
	}
	server := servers[0]
	if server.CN == "" || net.ParseIP(server.IP) == nil {
		return model.ServerEndpoint{}, false
	}
	return model.ServerEndpoint{CommonName: server.CN, IP: server.IP}, true
}

// Directory contains the usable regions indexed by name. A Directory
// is read-only once [Parse] has returned it.
type Directory struct {
	regions map[string]*model.Region
}

var _ model.ServerDirectory = &Directory{}

// Len returns the number of usable regions.
func (d *Directory) Len() int {
	return len(d.regions)
}

// Regions returns the names of the usable regions sorted in ascending order.
func (d *Directory) Regions() []string {
	names := make([]string, 0, len(d.regions))
	for name := range d.regions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns a copy of the region with the given name or an
// error matching [model.ErrRegionNotFound].
func (d *Directory) Lookup(name string) (*model.Region, error) {
	region, found := d.regions[name]
	if !found {
		return nil, fmt.Errorf("%w: %q", model.ErrRegionNotFound, name)
	}
	out := *region
	return &out, nil
}
