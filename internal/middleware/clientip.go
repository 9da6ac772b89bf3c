package middleware

import (
	"net"
	"net/http"
	"net/netip"
)

// UnknownClientIP is reported when the peer address cannot be parsed
const UnknownClientIP = "0.0.0.0"

// ClientIP returns the address of the connected peer.
// Forwarding headers are ignored since any client can set them.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return UnknownClientIP
	}
	return addr.Unmap().String()
}
