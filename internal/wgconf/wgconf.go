// Package wgconf builds and renders wg-quick configurations.
package wgconf

import (
	"net"
	"strconv"
	"strings"

	"github.com/pia-wg/pia-wg/internal/model"
)

const (
	// EndpointPort is the gateway's UDP port.
	EndpointPort = 1337

	// AllowedIPs routes all IPv4 traffic through the tunnel.
	AllowedIPs = "0.0.0.0/0"

	// PersistentKeepalive is the keepalive interval in seconds.
	PersistentKeepalive = 25

	// maxDNSServers is the number of DNS servers we configure.
	maxDNSServers = 2
)

// NewTunnelConfig creates a [*model.TunnelConfig] from the parameters returned
// by a successful key registration and the key pair we registered.
func NewTunnelConfig(params *model.ConnectionParams, keys *model.KeyPair) *model.TunnelConfig {
	dns := params.DNSServers
	if len(dns) > maxDNSServers {
		dns = dns[:maxDNSServers]
	}
	return &model.TunnelConfig{
		Address:             params.PeerIP,
		PrivateKey:          keys.PrivateKey,
		DNS:                 append([]string{}, dns...),
		PublicKey:           params.ServerKey,
		Endpoint:            net.JoinHostPort(params.ServerIP, strconv.Itoa(EndpointPort)),
		AllowedIPs:          AllowedIPs,
		PersistentKeepalive: PersistentKeepalive,
	}
}

// Render serializes the given config. The output only depends on the
// config, ends with a newline, and contains one blank line between sections.
func Render(config *model.TunnelConfig) string {
	var sb strings.Builder
	sb.WriteString("[Interface]\n")
	writeKV(&sb, "Address", config.Address)
	writeKV(&sb, "PrivateKey", config.PrivateKey)
	writeKV(&sb, "DNS", strings.Join(config.DNS, ","))
	sb.WriteString("\n")
	sb.WriteString("[Peer]\n")
	writeKV(&sb, "PublicKey", config.PublicKey)
	writeKV(&sb, "Endpoint", config.Endpoint)
	writeKV(&sb, "AllowedIPs", config.AllowedIPs)
	writeKV(&sb, "PersistentKeepalive", strconv.Itoa(config.PersistentKeepalive))
	return sb.String()
}

func writeKV(sb *strings.Builder, key, value string) {
	sb.WriteString(key)
	sb.WriteString(" = ")
	sb.WriteString(value)
	sb.WriteString("\n")
}
