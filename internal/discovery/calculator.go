package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// TXT record keys published by keycalc servers
const (
	TXTVersion = "version"
	TXTPath    = "path"
)

// Calculator is a keycalc server found on the local network
type Calculator struct {
	// Instance is the advertised service instance name (e.g., "kitchen")
	Instance string

	// Hostname is the mDNS hostname (e.g., "pantry.local.")
	Hostname string

	// IP is the IPv4 address when available, else IPv6
	IP string

	// Port is the keypad server port (typically 7464)
	Port int

	// Metadata contains the TXT record data, e.g. "version=v0.3.0"
	Metadata map[string]string

	// DiscoveredAt is when the calculator was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the calculator
func (c *Calculator) String() string {
	return fmt.Sprintf("keycalc %q (%s) at %s", c.Instance, c.Hostname, c.Addr())
}

// Addr returns host:port suitable for remote.Dial
func (c *Calculator) Addr() string {
	return net.JoinHostPort(c.IP, strconv.Itoa(c.Port))
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (c *Calculator) GetMetadata(key string) string {
	if c.Metadata == nil {
		return ""
	}
	return c.Metadata[key]
}

// Version returns the advertised server version, or "unknown"
func (c *Calculator) Version() string {
	if v := c.GetMetadata(TXTVersion); v != "" {
		return v
	}
	return "unknown"
}
