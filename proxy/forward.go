package proxy

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// droppedHeaders never reach the origin: credentials stay between client
// and proxy, and Proxy-Connection is not a real end-to-end header.
var droppedHeaders = []string{"Proxy-Authorization", "Proxy-Connection"}

func isDroppedHeader(name string) bool {
	for _, dropped := range droppedHeaders {
		if strings.EqualFold(name, dropped) {
			return true
		}
	}
	return false
}

// originFormTarget rewrites an absolute-form target to the path?query the
// origin expects. Fragments never go on the wire. Targets that do not parse
// with a scheme and host pass through untouched.
func originFormTarget(target string) string {
	u, err := url.Parse(target)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return target
	}
	return u.RequestURI()
}

// forwardHead writes the client's request head to the origin, rewritten to
// origin form with proxy-only headers removed, then replays any body bytes
// that were read along with the head.
func forwardHead(w io.Writer, req *Request) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s %s %s\r\n", req.Method, originFormTarget(req.Target), req.Proto)
	for _, h := range req.Headers {
		if isDroppedHeader(h.Name) {
			continue
		}
		fmt.Fprintf(bw, "%s: %s\r\n", h.Name, h.Value)
	}
	bw.WriteString("\r\n")
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write request head: %w", err)
	}

	if len(req.Leftover) > 0 {
		if _, err := w.Write(req.Leftover); err != nil {
			return fmt.Errorf("write request body: %w", err)
		}
	}
	return nil
}
