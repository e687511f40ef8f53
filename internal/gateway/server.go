// Package gateway exposes the service over a unix domain socket speaking
// newline-delimited JSON, plus an optional TCP listener serving the same
// protocol over HTTP and WebSocket for remote callers.
package gateway

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/fast-gateway-protocol/github/internal/config"
	"github.com/fast-gateway-protocol/github/internal/logging"
	"github.com/fast-gateway-protocol/github/internal/service"
	"github.com/fast-gateway-protocol/github/internal/version"
)

// ErrSocketInUse is returned when another daemon already answers on the
// socket path.
var ErrSocketInUse = errors.New("socket already in use")

// Dispatcher is the service surface the gateway serves. *service.Service
// implements it; tests substitute stubs.
type Dispatcher interface {
	Name() string
	Methods() []*service.Method
	Dispatch(method string, params map[string]any) (any, *service.Error)
	HealthCheck() map[string]service.HealthStatus
}

// Server accepts connections on the daemon socket and, when configured, on
// a TCP listen address.
type Server struct {
	cfg        config.GatewayConfig
	svc        Dispatcher
	log        *logging.Logger
	startedAt  time.Time
	httpServer *http.Server
	upgrader   websocket.Upgrader

	mu    sync.Mutex
	conns map[net.Conn]struct{}
}

// New creates a gateway server over the given dispatcher.
func New(cfg config.GatewayConfig, svc Dispatcher, log *logging.Logger) *Server {
	return &Server{
		cfg:   cfg,
		svc:   svc,
		log:   log.Sub("gateway"),
		conns: make(map[net.Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     checkWebSocketOrigin(cfg.AllowedOrigins),
		},
	}
}

// checkWebSocketOrigin returns a function that validates WebSocket Origin
// headers. Requests without an Origin header (non-browser clients) are
// always allowed; browser origins must match the configured list.
func checkWebSocketOrigin(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}

// Start listens on the configured socket (and TCP address, if any) and
// serves until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	ln, err := s.listenSocket()
	if err != nil {
		return err
	}
	s.startedAt = time.Now()

	s.log.Info().
		Str("socket", s.cfg.Socket).
		Str("service", s.svc.Name()).
		Int("methods", len(s.svc.Methods())).
		Msg("gateway listening")

	errCh := make(chan error, 2)

	go func() {
		errCh <- s.acceptLoop(ctx, ln)
	}()

	if s.cfg.Listen != "" {
		httpLn, err := net.Listen("tcp", s.cfg.Listen)
		if err != nil {
			ln.Close()
			return fmt.Errorf("failed to listen on %s: %w", s.cfg.Listen, err)
		}
		mux := http.NewServeMux()
		s.registerHTTPRoutes(mux)
		s.httpServer = &http.Server{
			Handler:      withMiddleware(mux, s.log, s.cfg.AllowedOrigins),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
			BaseContext:  func(net.Listener) context.Context { return ctx },
		}
		s.log.Info().Str("addr", httpLn.Addr().String()).Msg("http listener enabled")
		go func() {
			if err := s.httpServer.Serve(httpLn); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
				return
			}
			errCh <- nil
		}()
	}

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			s.shutdown()
			ln.Close()
			os.Remove(s.cfg.Socket)
			return err
		}
	}

	s.log.Info().Msg("shutting down gateway")
	s.shutdown()
	ln.Close()
	os.Remove(s.cfg.Socket)
	return nil
}

// listenSocket binds the unix socket, replacing a stale socket file left by
// a crashed daemon. A socket that still answers means another daemon owns it.
func (s *Server) listenSocket() (net.Listener, error) {
	path := s.cfg.Socket
	if _, err := os.Stat(path); err == nil {
		conn, err := net.DialTimeout("unix", path, time.Second)
		if err == nil {
			conn.Close()
			return nil, fmt.Errorf("%w: %s", ErrSocketInUse, path)
		}
		if err := os.Remove(path); err != nil {
			return nil, fmt.Errorf("removing stale socket: %w", err)
		}
		s.log.Debug().Str("socket", path).Msg("removed stale socket")
	}

	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", path, err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		ln.Close()
		os.Remove(path)
		return nil, fmt.Errorf("restricting socket permissions: %w", err)
	}
	return ln, nil
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		s.track(conn)
		go func() {
			defer s.untrack(conn)
			s.serveConn(conn)
		}()
	}
}

func (s *Server) track(conn net.Conn) {
	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) untrack(conn net.Conn) {
	conn.Close()
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
}

func (s *Server) shutdown() {
	if s.httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.httpServer.Shutdown(shutdownCtx)
	}
	s.mu.Lock()
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()
}

// serveConn reads request lines until the peer disconnects. Responses are
// written in request order; each request runs to completion before the next
// line is read, so one slow call never interleaves responses.
func (s *Server) serveConn(conn net.Conn) {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), s.cfg.MaxLineBytes)
	enc := json.NewEncoder(conn)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		resp := s.handleLine(line)
		if err := enc.Encode(resp); err != nil {
			s.log.Warn().Err(err).Msg("failed to write response")
			return
		}
	}

	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			enc.Encode(NewErrorResponse("", string(service.CodeValidationFailed),
				fmt.Sprintf("request exceeds %d bytes", s.cfg.MaxLineBytes)))
		}
		s.log.Debug().Err(err).Msg("connection read ended")
	}
}

// handleLine decodes one request line, answers gateway builtins, and routes
// everything else to the dispatcher.
func (s *Server) handleLine(line []byte) Response {
	req, eshape := DecodeRequest(line)
	if eshape != nil {
		return Response{ID: req.ID, OK: false, Error: eshape}
	}

	start := time.Now()
	resp := s.handleRequest(req)
	s.log.Debug().
		Str("id", req.ID).
		Str("method", req.Method).
		Bool("ok", resp.OK).
		Dur("duration", time.Since(start)).
		Msg("request")
	return resp
}

func (s *Server) handleRequest(req Request) Response {
	switch req.Method {
	case "methods", s.svc.Name() + ".methods":
		return NewResponse(req.ID, s.describe())
	case "gateway.health":
		return NewResponse(req.ID, s.healthReport())
	}

	out, derr := s.svc.Dispatch(req.Method, req.Params)
	if derr != nil {
		return NewErrorResponse(req.ID, string(derr.Code), derr.Message)
	}
	return NewResponse(req.ID, out)
}

// describe is the discovery payload: the full method catalog plus protocol
// metadata.
func (s *Server) describe() map[string]any {
	return map[string]any{
		"service":  s.svc.Name(),
		"version":  version.Version,
		"protocol": ProtocolVersion,
		"methods":  s.svc.Methods(),
	}
}

func (s *Server) healthReport() map[string]any {
	checks := s.svc.HealthCheck()
	status := "healthy"
	for _, c := range checks {
		if !c.Healthy {
			status = "unhealthy"
		}
	}
	return map[string]any{
		"status":         status,
		"version":        version.Version,
		"uptime_seconds": int64(time.Since(s.startedAt).Seconds()),
		"checks":         checks,
	}
}
