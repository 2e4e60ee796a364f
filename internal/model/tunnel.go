package model

//
// Data flowing through the provisioning pipeline.
//

import "fmt"

// Credentials contains the username and password. We only keep
// them in memory for the duration of the authentication call.
type Credentials struct {
	Username string
	Password string
}

// String implements fmt.Stringer and redacts the password.
func (c Credentials) String() string {
	return fmt.Sprintf("%s:[scrubbed]", c.Username)
}

// GoString implements fmt.GoStringer and redacts the password.
func (c Credentials) GoString() string {
	return fmt.Sprintf("model.Credentials{Username: %q, Password: \"[scrubbed]\"}", c.Username)
}

// AuthToken is the opaque short-lived token issued by the metadata endpoint.
type AuthToken string

// KeyPair is a WireGuard keypair generated for a single run.
type KeyPair struct {
	// PrivateKey is the base64 encoded private key.
	PrivateKey string

	// PublicKey is the base64 encoded public key.
	PublicKey string
}

// ConnectionParams is what the gateway returns after accepting our public key.
type ConnectionParams struct {
	// PeerIP is the address assigned to our end of the tunnel.
	PeerIP string `json:"peer_ip"`

	// PeerPublicKey echoes the public key we registered.
	PeerPublicKey string `json:"peer_pubkey"`

	// ServerKey is the gateway's WireGuard public key.
	ServerKey string `json:"server_key"`

	// ServerIP is the gateway's external address.
	ServerIP string `json:"server_ip"`

	// ServerPort is the gateway's WireGuard port.
	ServerPort int `json:"server_port"`

	// ServerVIP is the gateway's tunnel-internal address.
	ServerVIP string `json:"server_vip"`

	// DNSServers contains the DNS servers reachable through the tunnel.
	DNSServers []string `json:"dns_servers"`
}

// TunnelConfig is the wg-quick configuration we write to disk. Construct
// it using wgconf.NewTunnelConfig, which requires a successful key
// registration and the keypair we registered.
type TunnelConfig struct {
	// Interface section.
	Address    string
	PrivateKey string
	DNS        []string

	// Peer section.
	PublicKey           string
	Endpoint            string
	AllowedIPs          string
	PersistentKeepalive int
}
