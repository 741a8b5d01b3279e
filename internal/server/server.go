// internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

const shutdownTimeout = 5 * time.Second

type Options struct {
	Addr string
	// AllowedOrigins lists the Origin headers accepted on /ws. "*" accepts
	// any origin. When empty only same-origin browsers may connect; clients
	// that send no Origin header are always accepted.
	AllowedOrigins []string
	// MaxMessageBytes caps one client frame. Larger frames close the
	// connection.
	MaxMessageBytes int64
	StrictVariables bool
}

func (o *Options) normalize() {
	if o.Addr == "" {
		o.Addr = "127.0.0.1:7420"
	}
	if o.MaxMessageBytes <= 0 {
		o.MaxMessageBytes = 64 << 10
	}
}

// Server evaluates programs sent over websocket connections. Every
// connection owns its own session and variables.
type Server struct {
	opts     Options
	upgrader websocket.Upgrader
	mux      *http.ServeMux

	mu      sync.Mutex
	clients map[string]*websocket.Conn
	closing bool
	// wg counts registered connections. Add happens under mu so it never
	// races with Wait once closing is set.
	wg sync.WaitGroup
}

func New(opts Options) *Server {
	opts.normalize()
	s := &Server{
		opts:    opts,
		mux:     http.NewServeMux(),
		clients: make(map[string]*websocket.Conn),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.HandleFunc("/ws", s.handleWebSocket)
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

// Clients reports the number of open connections.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// ListenAndServe listens on Options.Addr and serves until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", s.opts.Addr)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is canceled, then stops
// accepting, closes every websocket and waits for their handlers.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		glog.V(1).Infof("serving on %s", ln.Addr())
		errc <- httpServer.Serve(ln)
	}()

	select {
	case err := <-errc:
		return errors.Wrap(err, "serve")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := httpServer.Shutdown(shutdownCtx)
	s.closeClients()
	s.wg.Wait()
	glog.V(1).Infof("server stopped")
	if err != nil {
		return errors.Wrap(err, "shutdown")
	}
	return nil
}

// closeClients closes every open websocket and refuses later ones.
func (s *Server) closeClients() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closing = true
	for id, conn := range s.clients {
		goingAway(conn)
		glog.V(1).Infof("closed connection %s", id)
	}
}

func goingAway(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	conn.Close()
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if len(s.opts.AllowedOrigins) == 0 {
		return sameOrigin(r, origin)
	}
	return slices.Contains(s.opts.AllowedOrigins, "*") || slices.Contains(s.opts.AllowedOrigins, origin)
}

func sameOrigin(r *http.Request, origin string) bool {
	for _, scheme := range []string{"http://", "https://"} {
		if origin == scheme+r.Host {
			return true
		}
	}
	return false
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"clients": s.Clients(),
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		glog.V(1).Infof("websocket upgrade failed: %v", err)
		return
	}
	conn.SetReadLimit(s.opts.MaxMessageBytes)

	id := uuid.NewString()
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		goingAway(conn)
		glog.V(1).Infof("refused connection from %s during shutdown", r.RemoteAddr)
		return
	}
	s.clients[id] = conn
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	defer func() {
		s.mu.Lock()
		delete(s.clients, id)
		s.mu.Unlock()
		conn.Close()
		glog.V(1).Infof("connection %s closed", id)
	}()

	glog.V(1).Infof("connection %s from %s", id, r.RemoteAddr)
	newClient(id, conn, s.opts.StrictVariables).serve()
}
