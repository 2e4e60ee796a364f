package wgconf

import (
	"bufio"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pia-wg/pia-wg/internal/model"
)

func newTestParams() *model.ConnectionParams {
	return &model.ConnectionParams{
		PeerIP:     "10.64.0.5",
		ServerKey:  "SRVKEYBASE64",
		ServerIP:   "10.0.0.2",
		ServerPort: 1337,
		DNSServers: []string{"10.0.0.241", "10.0.0.242"},
	}
}

func newTestKeys() *model.KeyPair {
	return &model.KeyPair{
		PrivateKey: "PRIVKEYBASE64",
		PublicKey:  "PUBKEYBASE64",
	}
}

const expectedConfig = `[Interface]
Address = 10.64.0.5
PrivateKey = PRIVKEYBASE64
DNS = 10.0.0.241,10.0.0.242

[Peer]
PublicKey = SRVKEYBASE64
Endpoint = 10.0.0.2:1337
AllowedIPs = 0.0.0.0/0
PersistentKeepalive = 25
`

func TestNewTunnelConfig(t *testing.T) {
	t.Run("with two DNS servers", func(t *testing.T) {
		config := NewTunnelConfig(newTestParams(), newTestKeys())
		expect := &model.TunnelConfig{
			Address:             "10.64.0.5",
			PrivateKey:          "PRIVKEYBASE64",
			DNS:                 []string{"10.0.0.241", "10.0.0.242"},
			PublicKey:           "SRVKEYBASE64",
			Endpoint:            "10.0.0.2:1337",
			AllowedIPs:          "0.0.0.0/0",
			PersistentKeepalive: 25,
		}
		if diff := cmp.Diff(expect, config); diff != "" {
			t.Fatal(diff)
		}
	})

	t.Run("we only use the first two DNS servers", func(t *testing.T) {
		params := newTestParams()
		params.DNSServers = append(params.DNSServers, "10.0.0.243")
		config := NewTunnelConfig(params, newTestKeys())
		if diff := cmp.Diff([]string{"10.0.0.241", "10.0.0.242"}, config.DNS); diff != "" {
			t.Fatal(diff)
		}
		config.DNS[0] = "1.1.1.1"
		if params.DNSServers[0] != "10.0.0.241" {
			t.Fatal("the config aliases the params")
		}
	})

	t.Run("with an IPv6 server address", func(t *testing.T) {
		params := newTestParams()
		params.ServerIP = "2001:db8::1"
		config := NewTunnelConfig(params, newTestKeys())
		if config.Endpoint != "[2001:db8::1]:1337" {
			t.Fatal("unexpected endpoint", config.Endpoint)
		}
	})
}

func TestRender(t *testing.T) {
	t.Run("we produce the expected text", func(t *testing.T) {
		got := Render(NewTunnelConfig(newTestParams(), newTestKeys()))
		if diff := cmp.Diff(expectedConfig, got); diff != "" {
			t.Fatal(diff)
		}
	})

	t.Run("rendering is deterministic", func(t *testing.T) {
		config := NewTunnelConfig(newTestParams(), newTestKeys())
		first := Render(config)
		for idx := 0; idx < 10; idx++ {
			if Render(config) != first {
				t.Fatal("rendering is not deterministic")
			}
		}
	})

	t.Run("the text round trips", func(t *testing.T) {
		config := NewTunnelConfig(newTestParams(), newTestKeys())
		sections := parseINI(t, Render(config))
		expect := map[string]map[string]string{
			"Interface": {
				"Address":    "10.64.0.5",
				"PrivateKey": "PRIVKEYBASE64",
				"DNS":        "10.0.0.241,10.0.0.242",
			},
			"Peer": {
				"PublicKey":           "SRVKEYBASE64",
				"Endpoint":            "10.0.0.2:1337",
				"AllowedIPs":          "0.0.0.0/0",
				"PersistentKeepalive": "25",
			},
		}
		if diff := cmp.Diff(expect, sections); diff != "" {
			t.Fatal(diff)
		}
	})
}

// parseINI parses the INI-like format used by wg-quick.
func parseINI(t *testing.T, text string) map[string]map[string]string {
	out := map[string]map[string]string{}
	var current map[string]string
	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
			current = map[string]string{}
			out[strings.Trim(line, "[]")] = current
		default:
			key, value, found := strings.Cut(line, " = ")
			if !found || current == nil {
				t.Fatal("unexpected line", line)
			}
			current[key] = value
		}
	}
	return out
}
