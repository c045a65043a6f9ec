package proxy

import (
	"errors"
	"net/url"
	"strings"
)

var errBadTarget = errors.New("request target cannot be resolved")

// resolveTarget derives the origin endpoint and the log URL for a parsed
// request.
//
// CONNECT carries an authority (host:port, port defaulting to 443).
// Absolute-form targets carry a full URI (port defaulting to 80). Anything
// else is origin-form and the endpoint comes from the Host header.
func resolveTarget(req *Request) (Target, error) {
	if req.IsConnect() {
		host, port := splitAuthority(req.Target, "443")
		if host == "" {
			return Target{}, errBadTarget
		}
		return Target{
			Host:   host,
			Port:   port,
			Tunnel: true,
			LogURL: "https://" + host,
		}, nil
	}

	// Absolute-form means the target itself parses with a scheme and host.
	// A path whose query embeds a URL stays origin-form.
	if u, err := url.Parse(req.Target); err == nil && u.Scheme != "" && u.Host != "" {
		port := u.Port()
		if port == "" {
			port = "80"
		}
		return Target{
			Host:   u.Hostname(),
			Port:   port,
			LogURL: req.Target,
		}, nil
	}

	authority, ok := req.Headers.Get("Host")
	if !ok || authority == "" {
		return Target{}, errBadTarget
	}
	host, port := splitAuthority(authority, "80")
	if host == "" {
		return Target{}, errBadTarget
	}
	path := req.Target
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return Target{
		Host:   host,
		Port:   port,
		LogURL: "http://" + authority + path,
	}, nil
}

// splitAuthority splits host[:port], keeping bracketed IPv6 literals whole.
// A missing or empty port falls back to defaultPort.
func splitAuthority(authority, defaultPort string) (host, port string) {
	if strings.HasPrefix(authority, "[") {
		end := strings.Index(authority, "]")
		if end < 0 {
			return "", defaultPort
		}
		host = authority[1:end]
		rest := authority[end+1:]
		if strings.HasPrefix(rest, ":") && len(rest) > 1 {
			return host, rest[1:]
		}
		return host, defaultPort
	}
	host, port, found := strings.Cut(authority, ":")
	if !found || port == "" {
		return host, defaultPort
	}
	return host, port
}
