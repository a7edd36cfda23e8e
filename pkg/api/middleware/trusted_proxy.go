package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/dd0wney/threatloom/pkg/logging"
)

// ParseTrustedProxies parses CIDR ranges or bare IP addresses. Entries that
// parse as neither are returned in invalid.
func ParseTrustedProxies(entries []string) (networks []*net.IPNet, invalid []string) {
	for _, entry := range entries {
		cidr := strings.TrimSpace(entry)
		if cidr == "" {
			continue
		}

		// Single IPs become /32 or /128 networks
		if !strings.Contains(cidr, "/") {
			ip := net.ParseIP(cidr)
			if ip == nil {
				invalid = append(invalid, cidr)
				continue
			}
			if ip.To4() != nil {
				cidr += "/32"
			} else {
				cidr += "/128"
			}
		}

		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			invalid = append(invalid, cidr)
			continue
		}
		networks = append(networks, network)
	}
	return networks, invalid
}

// ClientIPResolver works out the originating client address of a request.
// X-Real-IP and X-Forwarded-For are only honoured when the direct peer is a
// trusted proxy, so clients cannot spoof their address to dodge rate limits.
type ClientIPResolver struct {
	networks []*net.IPNet
}

// NewClientIPResolver creates a resolver trusting the given proxies.
// Invalid entries are logged and skipped.
func NewClientIPResolver(proxies []string, logger logging.Logger) *ClientIPResolver {
	networks, invalid := ParseTrustedProxies(proxies)
	if logger != nil {
		for _, entry := range invalid {
			logger.Warn("ignoring invalid trusted proxy", logging.String("entry", entry))
		}
		if len(networks) == 0 {
			logger.Debug("no trusted proxies configured, forwarding headers ignored")
		}
	}
	return &ClientIPResolver{networks: networks}
}

// IsTrusted reports whether remoteAddr ("host:port" or bare IP) belongs to
// a trusted proxy network
func (c *ClientIPResolver) IsTrusted(remoteAddr string) bool {
	if c == nil || len(c.networks) == 0 {
		return false
	}

	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}

	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}

	for _, network := range c.networks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// ClientIP returns the client address for r
func (c *ClientIPResolver) ClientIP(r *http.Request) string {
	if c.IsTrusted(r.RemoteAddr) {
		// X-Real-IP first (typically set by nginx)
		if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
			return ip.String()
		}

		// The leftmost X-Forwarded-For entry is the original client
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
				return ip.String()
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
