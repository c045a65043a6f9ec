package proxy

import (
	"net"
	"strings"
)

// Header is one name/value pair as it appeared on the wire.
type Header struct {
	Name  string
	Value string
}

// HeaderList keeps headers in receipt order, duplicates included, so the
// forwarded head can reproduce the client's block byte for byte.
type HeaderList []Header

// Get returns the value of the first header whose name matches,
// case-insensitively.
func (hl HeaderList) Get(name string) (string, bool) {
	for _, h := range hl {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}

// Request is the parsed head of a client request. Leftover holds any body
// bytes that arrived in the same reads as the head.
type Request struct {
	Method   string
	Target   string
	Proto    string
	Headers  HeaderList
	Leftover []byte
}

// IsConnect reports whether the request asks for a tunnel.
func (r *Request) IsConnect() bool {
	return r.Method == "CONNECT"
}

// Target is the origin endpoint a request resolves to.
type Target struct {
	Host   string
	Port   string
	Tunnel bool

	// LogURL is the canonical URL recorded for the connection:
	// https://host for tunnels, the full URI for absolute-form requests,
	// and http://host+path otherwise.
	LogURL string
}

// Addr returns the dialable host:port, bracketing IPv6 literals.
func (t Target) Addr() string {
	return net.JoinHostPort(t.Host, t.Port)
}
