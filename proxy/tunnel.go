package proxy

import (
	"fmt"
	"io"
)

// proxyAgent is announced on established tunnels.
const proxyAgent = "wicket"

// writeTunnelEstablished tells the client its tunnel is up, echoing the
// protocol version the client used on its CONNECT line.
func writeTunnelEstablished(w io.Writer, proto string) error {
	_, err := fmt.Fprintf(w, "%s 200 Connection Established\r\nProxy-Agent: %s\r\n\r\n", proto, proxyAgent)
	return err
}
