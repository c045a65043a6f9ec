package proxy

import (
	"encoding/base64"
	"errors"
	"strings"
)

var errAuthRequired = errors.New("proxy authentication required")

// authorize checks the request's Proxy-Authorization header against the
// configured credentials. Anything other than a well-formed Basic header
// with an exact username:password match is a refusal.
func authorize(req *Request, username, password string) bool {
	value, ok := req.Headers.Get("Proxy-Authorization")
	if !ok {
		return false
	}
	scheme, token, ok := strings.Cut(value, " ")
	if !ok || !strings.EqualFold(scheme, "Basic") {
		return false
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(token))
	if err != nil {
		return false
	}
	user, pass, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return false
	}
	return user == username && pass == password
}
