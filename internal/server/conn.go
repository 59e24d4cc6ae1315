package server

import (
	"net"
	"sync"
)

// SyncConn serializes frame IO on a client connection. A publication
// watcher's connection is written to by both its request handler and pool
// broadcasts, so frames must not interleave mid-write.
type SyncConn struct {
	Conn     net.Conn
	rmu, wmu sync.Mutex
}

func NewSyncConn(conn net.Conn) *SyncConn {
	return &SyncConn{Conn: conn}
}

// Write sends one length-prefixed frame.
func (s *SyncConn) Write(b []byte) error {
	return write(&s.wmu, s.Conn, b)
}

// Read receives one length-prefixed frame.
func (s *SyncConn) Read() ([]byte, error) {
	return read(&s.rmu, s.Conn)
}
