package proxy

import (
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// timeoutErr mimics a net.Error whose deadline fired.
type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestIsTimeout(t *testing.T) {
	assert.True(t, isTimeout(timeoutErr{}))
	assert.False(t, isTimeout(errors.New("connection refused")))
	assert.False(t, isTimeout(nil))
}

func TestDialOrigin(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			accepted <- conn
		}
	}()

	conn, err := dialOrigin(ln.Addr().String(), time.Second)
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	select {
	case origin := <-accepted:
		origin.Close()
	case <-time.After(5 * time.Second):
		t.Fatal("origin never saw the dial")
	}
}

func TestDialOriginRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	_, err = dialOrigin(addr, time.Second)
	require.Error(t, err)
	assert.False(t, isTimeout(err))
}

func TestTimedConnReadDeadline(t *testing.T) {
	near, far := net.Pipe()
	defer near.Close()
	defer far.Close()

	timed := &timedConn{Conn: near, readTimeout: 20 * time.Millisecond}

	_, err := timed.Read(make([]byte, 1))
	require.Error(t, err)
	assert.True(t, isTimeout(err))
}

func TestTimedConnWriteDeadline(t *testing.T) {
	near, far := net.Pipe()
	defer near.Close()
	defer far.Close()

	// Nobody reads far, so the write can only end via the deadline.
	timed := &timedConn{Conn: near, writeTimeout: 20 * time.Millisecond}

	_, err := timed.Write([]byte("stall"))
	require.Error(t, err)
	assert.True(t, isTimeout(err))
}

func TestTimedConnPassesData(t *testing.T) {
	near, far := net.Pipe()
	defer near.Close()
	defer far.Close()

	go func() {
		buf := make([]byte, 4)
		if _, err := io.ReadFull(far, buf); err == nil {
			_, _ = far.Write(buf)
		}
	}()

	timed := &timedConn{Conn: near, readTimeout: 5 * time.Second, writeTimeout: 5 * time.Second}

	_, err := timed.Write([]byte("ping"))
	require.NoError(t, err)

	buf := make([]byte, 4)
	_, err = io.ReadFull(timed, buf)
	require.NoError(t, err)
	assert.Equal(t, "ping", string(buf))
}
