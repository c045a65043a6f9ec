package proxy

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func basicHeader(user, pass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   bool
	}{
		{"valid", basicHeader("alice", "wonderland"), true},
		{"scheme is case insensitive", strings.Replace(basicHeader("alice", "wonderland"), "Basic", "basic", 1), true},
		{"wrong password", basicHeader("alice", "hatter"), false},
		{"wrong user", basicHeader("bob", "wonderland"), false},
		{"password is case sensitive", basicHeader("alice", "Wonderland"), false},
		{"not basic", "Bearer abcdef", false},
		{"bad base64", "Basic %%%", false},
		{"no colon in credentials", "Basic " + base64.StdEncoding.EncodeToString([]byte("alicewonderland")), false},
		{"empty value", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &Request{Headers: HeaderList{{Name: "Proxy-Authorization", Value: tt.header}}}
			assert.Equal(t, tt.want, authorize(req, "alice", "wonderland"))
		})
	}
}

func TestAuthorizeMissingHeader(t *testing.T) {
	assert.False(t, authorize(&Request{}, "alice", "wonderland"))
}
