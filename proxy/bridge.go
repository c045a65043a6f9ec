package proxy

import (
	"errors"
	"io"
	"net"
	"sync"
	"syscall"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// bridgeChunkSize is the per-iteration copy size while relaying a session.
const bridgeChunkSize = 80 * 1024

// bridge relays bytes between the client and the origin in both directions
// until either side finishes. The first direction to finish closes both
// connections, which unblocks the opposite copy immediately. Returns the
// bytes moved client-to-origin and origin-to-client.
func (p *Proxy) bridge(id uint64, client, origin net.Conn) (toOrigin, toClient int64) {
	var once sync.Once
	teardown := func() {
		once.Do(func() {
			if err := closePair(client, origin); err != nil && !isCloseError(err) {
				p.logger.Debug("Session close failed",
					zap.Uint64("conn", id),
					zap.Error(err))
			}
		})
	}

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		defer teardown()
		n, err := relay(origin, client)
		toOrigin = n
		if err != nil && !isCloseError(err) {
			p.logger.Warn("Relay to origin failed",
				zap.Uint64("conn", id),
				zap.Error(err),
			)
		}
	}()

	go func() {
		defer wg.Done()
		defer teardown()
		n, err := relay(client, origin)
		toClient = n
		if err != nil && !isCloseError(err) {
			p.logger.Warn("Relay to client failed",
				zap.Uint64("conn", id),
				zap.Error(err),
			)
		}
	}()

	wg.Wait()
	return toOrigin, toClient
}

func relay(dst io.Writer, src io.Reader) (int64, error) {
	buf := make([]byte, bridgeChunkSize)
	return io.CopyBuffer(dst, src, buf)
}

// closePair tears down both ends of a session.
func closePair(a, b net.Conn) error {
	return multierr.Append(a.Close(), b.Close())
}

// isCloseError reports whether err is an ordinary consequence of one side
// of a session going away: end of stream, peer reset, a socket closed by
// the other relay direction, or an armed deadline firing.
func isCloseError(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
