package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"

	cws "github.com/coder/websocket"
	"github.com/creachadair/jrpc2"
)

// WebServer exposes the JSON-RPC surface to browser clients: a plain HTTP
// bridge at /rpc and a WebSocket endpoint at /rpc/ws that additionally
// receives push notifications (publication.status, calendar.refetch).
type WebServer struct {
	port     int
	l        *log.Logger
	rs       *RPCServer
	notifier *RPCNotifier
	server   *http.Server
	mu       sync.Mutex
}

// NewWebServer creates a WebServer over the given RPC server and notifier.
func NewWebServer(l *log.Logger, rs *RPCServer, notifier *RPCNotifier, port int) *WebServer {
	return &WebServer{port: port, l: l, rs: rs, notifier: notifier}
}

// Notifier returns the push notifier for this server.
func (s *WebServer) Notifier() *RPCNotifier {
	return s.notifier
}

func (s *WebServer) handleWS(w http.ResponseWriter, r *http.Request) {
	if !validToken(s.rs.secret, bearerToken(r)) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := cws.Accept(w, r, nil)
	if err != nil {
		s.l.Println("Error accepting websocket:", err.Error())
		return
	}

	ch := &wsChannel{conn: conn, ctx: r.Context()}
	srv := jrpc2.NewServer(s.rs.methods, &jrpc2.ServerOptions{AllowPush: true})
	srv.Start(ch)
	s.notifier.Register(srv)
	defer s.notifier.Unregister(srv)

	_ = srv.Wait()
	_ = ch.Close()
}

func (s *WebServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/rpc", requireToken(s.rs.secret, &s.rs.bridge))
	mux.HandleFunc("/rpc/ws", s.handleWS)
	return mux
}

func (s *WebServer) addr() string {
	host := "127.0.0.1"
	if s.rs.listenAll {
		host = "0.0.0.0"
	}
	return fmt.Sprintf("%s:%d", host, s.port)
}

// Start runs the HTTP server and blocks until shutdown.
func (s *WebServer) Start() error {
	s.mu.Lock()
	s.server = &http.Server{
		Addr:    s.addr(),
		Handler: s.handler(),
	}
	s.mu.Unlock()

	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil // Expected during shutdown
	}
	return err
}

// Shutdown gracefully stops the web server and the RPC bridge.
func (s *WebServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rs.Close()
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
