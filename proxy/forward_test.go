package proxy

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOriginFormTarget(t *testing.T) {
	tests := []struct{ name, in, want string }{
		{"absolute with query", "http://example.com/p?q=2", "/p?q=2"},
		{"absolute bare host", "http://example.com", "/"},
		{"fragment dropped", "http://example.com/p?q=2#sec", "/p?q=2"},
		{"origin form untouched", "/already", "/already"},
		{"url in query untouched", "/redirect?url=http://evil.example/", "/redirect?url=http://evil.example/"},
		{"asterisk form untouched", "*", "*"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, originFormTarget(tt.in))
		})
	}
}

func TestForwardHeadRewritesAbsoluteTarget(t *testing.T) {
	req := &Request{
		Method: "GET",
		Target: "http://example.com:8080/path?q=1#frag",
		Proto:  "HTTP/1.1",
		Headers: HeaderList{
			{Name: "Host", Value: "example.com:8080"},
			{Name: "Accept", Value: "*/*"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, forwardHead(&buf, req))

	lines := strings.Split(buf.String(), "\r\n")
	assert.Equal(t, "GET /path?q=1 HTTP/1.1", lines[0])
	assert.NotContains(t, buf.String(), "frag")
}

func TestForwardHeadKeepsOriginFormTarget(t *testing.T) {
	req := &Request{
		Method:  "GET",
		Target:  "/direct",
		Proto:   "HTTP/1.1",
		Headers: HeaderList{{Name: "Host", Value: "example.com"}},
	}

	var buf bytes.Buffer
	require.NoError(t, forwardHead(&buf, req))
	assert.True(t, strings.HasPrefix(buf.String(), "GET /direct HTTP/1.1\r\n"))
}

func TestForwardHeadStripsProxyHeaders(t *testing.T) {
	req := &Request{
		Method: "GET",
		Target: "http://example.com/",
		Proto:  "HTTP/1.1",
		Headers: HeaderList{
			{Name: "Host", Value: "example.com"},
			{Name: "Proxy-Authorization", Value: "Basic Zm9vOmJhcg=="},
			{Name: "proxy-connection", Value: "keep-alive"},
			{Name: "Accept", Value: "text/html"},
			{Name: "Accept", Value: "application/json"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, forwardHead(&buf, req))

	got := buf.String()
	assert.NotContains(t, got, "Proxy-Authorization")
	assert.NotContains(t, got, "proxy-connection")

	// Surviving headers keep their order, duplicates included.
	wantTail := "Host: example.com\r\n" +
		"Accept: text/html\r\n" +
		"Accept: application/json\r\n" +
		"\r\n"
	assert.True(t, strings.HasSuffix(got, wantTail), got)
}

func TestForwardHeadAppendsLeftover(t *testing.T) {
	req := &Request{
		Method:   "POST",
		Target:   "http://example.com/submit",
		Proto:    "HTTP/1.1",
		Headers:  HeaderList{{Name: "Content-Length", Value: "4"}},
		Leftover: []byte("data"),
	}

	var buf bytes.Buffer
	require.NoError(t, forwardHead(&buf, req))

	assert.True(t, strings.HasPrefix(buf.String(), "POST /submit HTTP/1.1\r\n"))
	assert.True(t, strings.HasSuffix(buf.String(), "\r\n\r\ndata"))
}
