package proxy

import (
	"errors"
	"strings"
)

var errBadRequestLine = errors.New("malformed request line")

// parseRequest splits a head produced by readHead into its request line and
// ordered header list. Header lines without a colon or with an empty name
// are skipped rather than rejected.
func parseRequest(head string, leftover []byte) (*Request, error) {
	lines := strings.Split(head, "\r\n")

	method, rest, ok := strings.Cut(lines[0], " ")
	if !ok {
		return nil, errBadRequestLine
	}
	target, proto, ok := strings.Cut(rest, " ")
	if !ok {
		return nil, errBadRequestLine
	}

	req := &Request{
		Method:   method,
		Target:   target,
		Proto:    proto,
		Leftover: leftover,
	}
	for _, line := range lines[1:] {
		if line == "" {
			continue
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		req.Headers = append(req.Headers, Header{
			Name:  name,
			Value: strings.TrimSpace(value),
		})
	}
	return req, nil
}
