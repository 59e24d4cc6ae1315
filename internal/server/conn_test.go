package server

import (
	"net"
	"sync"
	"testing"
	"time"
)

func TestNewSyncConn(t *testing.T) {
	c1, c2 := net.Pipe()
	defer c1.Close()
	defer c2.Close()

	sc := NewSyncConn(c1)
	if sc == nil {
		t.Fatal("expected non-nil SyncConn")
	}
	if sc.Conn != c1 {
		t.Fatal("expected conn to be set")
	}
}

func TestSyncConnReadWrite(t *testing.T) {
	c1, c2 := net.Pipe()
	defer c1.Close()
	defer c2.Close()

	sc1 := NewSyncConn(c1)
	sc2 := NewSyncConn(c2)

	msg := []byte("hello world")
	go func() {
		_ = sc1.Write(msg)
	}()

	data, err := sc2.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(data) != string(msg) {
		t.Fatalf("expected %q, got %q", msg, data)
	}
}

func TestSyncConnWrite_Error(t *testing.T) {
	c1, c2 := net.Pipe()
	c2.Close()
	defer c1.Close()

	sc := NewSyncConn(c1)
	if err := sc.Write([]byte("test")); err == nil {
		t.Fatal("expected error on write to closed connection")
	}
}

func TestSyncConnRead_Error(t *testing.T) {
	c1, c2 := net.Pipe()
	c2.Close()
	defer c1.Close()

	sc := NewSyncConn(c1)
	if _, err := sc.Read(); err == nil {
		t.Fatal("expected error on read from closed connection")
	}
}

func TestSyncConnConcurrentWrites(t *testing.T) {
	c1, c2 := net.Pipe()
	defer c1.Close()
	defer c2.Close()

	sc1 := NewSyncConn(c1)
	sc2 := NewSyncConn(c2)

	received := make(chan []byte, 10)
	go func() {
		for i := 0; i < 5; i++ {
			data, err := sc2.Read()
			if err != nil {
				return
			}
			received <- data
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = sc1.Write([]byte("msg"))
		}()
	}
	wg.Wait()

	timeout := time.After(1 * time.Second)
	for i := 0; i < 5; i++ {
		select {
		case <-received:
		case <-timeout:
			t.Fatalf("timeout waiting for message %d", i)
		}
	}
}
