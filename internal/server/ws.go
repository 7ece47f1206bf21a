package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const shutdownTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// sessions tracks open websocket connections so shutdown can close them;
// http.Server.Shutdown does not touch hijacked connections.
type sessions struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func (s *sessions) add(c *websocket.Conn) {
	s.mu.Lock()
	if s.conns == nil {
		s.conns = make(map[*websocket.Conn]struct{})
	}
	s.conns[c] = struct{}{}
	s.mu.Unlock()
}

func (s *sessions) remove(c *websocket.Conn) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
}

func (s *sessions) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	for c := range s.conns {
		_ = c.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		c.Close()
	}
}

// Handler returns the HTTP handler for the websocket transport: MCP on /ws
// and a health check on /healthz.
func (s *Server) Handler() http.Handler {
	return s.handler(&sessions{})
}

func (s *Server) handler(open *sessions) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		s.serveWebsocket(open, w, r)
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprintln(w, "ok")
	})
	return mux
}

// ListenAndServe serves the websocket transport on addr until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener is ListenAndServe on an existing listener.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	open := &sessions{}
	srv := &http.Server{
		Handler:           s.handler(open),
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv.RegisterOnShutdown(open.closeAll)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.log.WithField("addr", ln.Addr().String()).Info("websocket transport listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("websocket transport shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// serveWebsocket runs one session. Each text frame holds one JSON-RPC
// request; responses are written back in order on the same connection.
func (s *Server) serveWebsocket(open *sessions, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	open.add(conn)
	defer open.remove(conn)

	log := s.log.WithField("session", uuid.New().String())
	log.WithField("remote", r.RemoteAddr).Info("session opened")
	defer log.Info("session closed")

	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WithError(err).Warn("websocket read failed")
			}
			return
		}
		if mt != websocket.TextMessage {
			continue
		}

		resp := s.handleMessage(log, data)
		if resp == nil {
			continue
		}
		if err := conn.WriteJSON(resp); err != nil {
			log.WithError(err).Warn("websocket write failed")
			return
		}
	}
}
