package proxy

import (
	"errors"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/wicketproxy/wicket/config"
)

// Proxy accepts client connections and relays each to the origin its
// request names, either as a raw CONNECT tunnel or as a rewritten plain
// HTTP request.
type Proxy struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *Metrics

	// dial opens origin connections; tests swap it out.
	dial func(addr string, timeout time.Duration) (net.Conn, error)

	listener net.Listener
	connSeq  atomic.Uint64
	handlers sync.WaitGroup
}

func New(cfg *config.Config, logger *zap.Logger, metrics *Metrics) *Proxy {
	return &Proxy{cfg: cfg, logger: logger, metrics: metrics, dial: dialOrigin}
}

// Listen binds the client listener without accepting yet, so callers can
// learn the bound address before Serve runs.
func (p *Proxy) Listen(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	p.listener = listener
	return nil
}

// Addr returns the bound listener address. Only valid after Listen.
func (p *Proxy) Addr() net.Addr {
	return p.listener.Addr()
}

// Serve accepts connections until the listener closes, handling each on
// its own goroutine. Accept errors other than shutdown are logged and the
// loop keeps listening.
func (p *Proxy) Serve() error {
	p.logger.Info("Proxy server started", zap.String("addr", p.listener.Addr().String()))

	for {
		conn, err := p.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			p.logger.Error("Error accepting connection", zap.Error(err))
			continue
		}

		p.handlers.Add(1)
		go p.handleConnection(conn)
	}
}

// Start runs the proxy server on addr until Close.
func (p *Proxy) Start(addr string) error {
	if err := p.Listen(addr); err != nil {
		return err
	}
	return p.Serve()
}

// Close stops accepting and waits for in-flight connections to finish.
func (p *Proxy) Close() error {
	var err error
	if p.listener != nil {
		err = p.listener.Close()
	}
	p.handlers.Wait()
	return err
}

// handleConnection runs one client connection start to finish: read and
// parse the request head, resolve and authorize it, connect to the origin,
// then hand both sockets to the bridge.
func (p *Proxy) handleConnection(conn net.Conn) {
	defer p.handlers.Done()

	id := p.connSeq.Add(1)
	p.metrics.ConnectionsTotal.Inc()
	p.metrics.ActiveConnections.Inc()
	defer p.metrics.ActiveConnections.Dec()

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Connection handler panicked",
				zap.Uint64("conn", id),
				zap.Any("panic", r),
				zap.Stack("stack"))
		}
	}()

	client := &timedConn{
		Conn:         conn,
		readTimeout:  p.cfg.RecvTimeout,
		writeTimeout: p.cfg.SendTimeout,
	}
	defer client.Close()

	head, leftover, err := readHead(client)
	if err != nil {
		if errors.Is(err, errHeadTooLarge) || errors.Is(err, errHeadTruncated) {
			p.fail(client, id, 400, err)
		} else {
			p.logger.Debug("Client read failed before request",
				zap.Uint64("conn", id),
				zap.Error(err))
		}
		return
	}
	if head == "" {
		// Client connected and left without sending anything.
		return
	}

	req, err := parseRequest(head, leftover)
	if err != nil {
		p.fail(client, id, 400, err)
		return
	}

	target, err := resolveTarget(req)
	if err != nil {
		p.fail(client, id, 400, err)
		return
	}

	p.logger.Info("Connection opened",
		zap.Uint64("conn", id),
		zap.String("client", conn.RemoteAddr().String()),
		zap.String("url", target.LogURL))

	if p.cfg.AuthEnabled() && !authorize(req, p.cfg.Username, p.cfg.Password) {
		p.fail(client, id, 407, errAuthRequired)
		return
	}

	start := time.Now()
	origin, err := p.dial(target.Addr(), p.cfg.ConnectTimeout)
	if err != nil {
		status := 502
		if isTimeout(err) {
			status = 504
		}
		p.fail(client, id, status, err)
		return
	}
	p.metrics.DialSeconds.Observe(time.Since(start).Seconds())

	timedOrigin := &timedConn{
		Conn:         origin,
		readTimeout:  p.cfg.RecvTimeout,
		writeTimeout: p.cfg.SendTimeout,
	}
	defer timedOrigin.Close()

	if target.Tunnel {
		if err := writeTunnelEstablished(client, req.Proto); err != nil {
			p.logger.Debug("Tunnel confirmation write failed",
				zap.Uint64("conn", id),
				zap.Error(err))
			return
		}
		p.metrics.ResponsesTotal.WithLabelValues("200").Inc()
		// Clients may send tunnel bytes in the same packet as the
		// CONNECT head; replay them before bridging.
		if len(req.Leftover) > 0 {
			if _, err := timedOrigin.Write(req.Leftover); err != nil {
				p.logger.Debug("Tunnel preamble write failed",
					zap.Uint64("conn", id),
					zap.Error(err))
				return
			}
		}
	} else {
		if err := forwardHead(timedOrigin, req); err != nil {
			p.logger.Warn("Request forward failed",
				zap.Uint64("conn", id),
				zap.Error(err))
			return
		}
	}

	toOrigin, toClient := p.bridge(id, client, timedOrigin)
	p.metrics.BytesRelayedTotal.WithLabelValues("client_to_origin").Add(float64(toOrigin))
	p.metrics.BytesRelayedTotal.WithLabelValues("origin_to_client").Add(float64(toClient))

	p.logger.Debug("Connection closed",
		zap.Uint64("conn", id),
		zap.Int64("bytes_to_origin", toOrigin),
		zap.Int64("bytes_to_client", toClient))
}

// fail logs a terminal request failure and answers the client with the
// matching error page before the connection closes.
func (p *Proxy) fail(conn net.Conn, id uint64, status int, reason error) {
	p.logger.Warn("Request rejected",
		zap.Uint64("conn", id),
		zap.Int("status", status),
		zap.Error(reason))
	p.metrics.ResponsesTotal.WithLabelValues(strconv.Itoa(status)).Inc()

	if err := writeErrorResponse(conn, status, reason.Error()); err != nil && !isCloseError(err) {
		p.logger.Debug("Error response write failed",
			zap.Uint64("conn", id),
			zap.Error(err))
	}
}
