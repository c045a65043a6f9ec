package proxy

import (
	"net"
	"time"
)

// dialOrigin opens the TCP connection to an origin, bounded by the connect
// timeout.
func dialOrigin(addr string, timeout time.Duration) (net.Conn, error) {
	return net.DialTimeout("tcp", addr, timeout)
}

// isTimeout reports whether err is a network timeout, which callers map to
// 504 rather than 502.
func isTimeout(err error) bool {
	ne, ok := err.(net.Error)
	return ok && ne.Timeout()
}

// timedConn arms a fresh deadline before every read and write so a stalled
// peer cannot hold a connection open past the configured timeouts. A zero
// timeout leaves that direction unbounded.
type timedConn struct {
	net.Conn
	readTimeout  time.Duration
	writeTimeout time.Duration
}

func (c *timedConn) Read(p []byte) (int, error) {
	if c.readTimeout > 0 {
		if err := c.Conn.SetReadDeadline(time.Now().Add(c.readTimeout)); err != nil {
			return 0, err
		}
	}
	return c.Conn.Read(p)
}

func (c *timedConn) Write(p []byte) (int, error) {
	if c.writeTimeout > 0 {
		if err := c.Conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			return 0, err
		}
	}
	return c.Conn.Write(p)
}
