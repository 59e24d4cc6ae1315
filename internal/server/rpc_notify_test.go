package server

import (
	"encoding/json"
	"io"
	"log"
	"strings"
	"sync"
	"testing"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/creachadair/jrpc2/handler"

	"github.com/pubdeck/pubdeck/pkg/publib"
)

// newTestServer creates a jrpc2 server with push support backed by an
// io.Pipe-based channel. Returns the client channel (for draining), the
// server, and a cleanup function. The client channel must be drained or
// closed to avoid blocking the server's push operations.
func newTestServer(t *testing.T) (channel.Channel, *jrpc2.Server, func()) {
	t.Helper()
	cr, sw := io.Pipe()
	sr, cw := io.Pipe()
	cli := channel.Line(cr, cw)
	srvCh := channel.Line(sr, sw)

	srv := jrpc2.NewServer(handler.Map{}, &jrpc2.ServerOptions{AllowPush: true})
	srv.Start(srvCh)

	cleanup := func() {
		cli.Close()
		_ = srv.Wait()
	}
	return cli, srv, cleanup
}

func TestNewRPCNotifier(t *testing.T) {
	n := NewRPCNotifier(nil)
	if n == nil {
		t.Fatal("expected non-nil notifier")
	}
	if n.Count() != 0 {
		t.Fatalf("expected 0 servers, got %d", n.Count())
	}
}

func TestRPCNotifier_RegisterUnregister(t *testing.T) {
	n := NewRPCNotifier(nil)
	cli, srv, cleanup := newTestServer(t)
	defer cleanup()
	_ = cli

	n.Register(srv)
	if n.Count() != 1 {
		t.Fatalf("expected 1 server after register, got %d", n.Count())
	}

	n.Unregister(srv)
	if n.Count() != 0 {
		t.Fatalf("expected 0 servers after unregister, got %d", n.Count())
	}

	// Unregistering again should not panic.
	n.Unregister(srv)
	if n.Count() != 0 {
		t.Fatalf("expected 0 servers, got %d", n.Count())
	}
}

func TestRPCNotifier_DoubleRegister(t *testing.T) {
	n := NewRPCNotifier(nil)
	cli, srv, cleanup := newTestServer(t)
	defer cleanup()
	_ = cli

	n.Register(srv)
	n.Register(srv)
	if n.Count() != 1 {
		t.Fatalf("expected 1 server after double register, got %d", n.Count())
	}
}

func TestRPCNotifier_Broadcast_NoServers(t *testing.T) {
	n := NewRPCNotifier(nil)
	// Broadcast with no servers should not panic.
	n.Broadcast("test.method", map[string]string{"key": "value"})
}

func TestRPCNotifier_NotifyStatus(t *testing.T) {
	n := NewRPCNotifier(nil)
	cli, srv, cleanup := newTestServer(t)
	defer cleanup()

	n.Register(srv)

	// Drain the notification in a goroutine since the channel is synchronous.
	done := make(chan []byte, 1)
	go func() {
		data, _ := cli.Recv()
		done <- data
	}()

	n.NotifyStatus("pub-1", publib.StatusScheduled, publib.StatusProcessing, "")

	data := <-done
	var msg struct {
		Method string          `json:"method"`
		Params json.RawMessage `json:"params"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal notification: %v", err)
	}
	if msg.Method != "publication.status" {
		t.Fatalf("expected method publication.status, got %s", msg.Method)
	}
	if !strings.Contains(string(msg.Params), "pub-1") {
		t.Fatalf("expected params to carry publication id, got %s", string(msg.Params))
	}

	if n.Count() != 1 {
		t.Fatalf("expected 1 server after successful broadcast, got %d", n.Count())
	}
}

func TestRPCNotifier_NotifyRefetch(t *testing.T) {
	n := NewRPCNotifier(nil)
	cli, srv, cleanup := newTestServer(t)
	defer cleanup()

	n.Register(srv)

	done := make(chan []byte, 1)
	go func() {
		data, _ := cli.Recv()
		done <- data
	}()

	n.NotifyRefetch(7)

	data := <-done
	var msg struct {
		Method string `json:"method"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal notification: %v", err)
	}
	if msg.Method != "calendar.refetch" {
		t.Fatalf("expected method calendar.refetch, got %s", msg.Method)
	}
}

func TestRPCNotifier_Broadcast_DisconnectedServer(t *testing.T) {
	l := log.New(io.Discard, "", 0)
	n := NewRPCNotifier(l)

	cli, srv, _ := newTestServer(t)

	n.Register(srv)

	// Close the client side to simulate disconnect.
	cli.Close()
	_ = srv.Wait()

	// Broadcast should remove the failed server.
	n.NotifyStatus("pub-1", publib.StatusProcessing, publib.StatusFailed, "connection lost")

	if n.Count() != 0 {
		t.Fatalf("expected 0 servers after disconnect, got %d", n.Count())
	}
}

func TestRPCNotifier_Broadcast_PartialFailure(t *testing.T) {
	l := log.New(io.Discard, "", 0)
	n := NewRPCNotifier(l)

	cli1, srv1, cleanup1 := newTestServer(t)
	defer cleanup1()

	cli2, srv2, _ := newTestServer(t)

	n.Register(srv1)
	n.Register(srv2)

	cli2.Close()
	_ = srv2.Wait()

	done := make(chan struct{}, 1)
	go func() { _, _ = cli1.Recv(); done <- struct{}{} }()

	n.NotifyRefetch(3)

	<-done

	if n.Count() != 1 {
		t.Fatalf("expected 1 server after partial failure, got %d", n.Count())
	}
}

func TestRPCNotifier_ConcurrentRegisterUnregister(t *testing.T) {
	n := NewRPCNotifier(log.New(io.Discard, "", 0))
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cli, srv, _ := newTestServer(t)

			n.Register(srv)
			_ = n.Count()
			n.Unregister(srv)

			cli.Close()
			_ = srv.Wait()
		}()
	}
	wg.Wait()

	if n.Count() != 0 {
		t.Fatalf("expected 0 servers after concurrent register/unregister, got %d", n.Count())
	}
}
