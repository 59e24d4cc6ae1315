package server

import (
	"fmt"
	"log"
	"net"
	"sync"
)

// Pool tracks which client connections are watching which publications,
// plus a set of connections subscribed to every update. Status pushes for
// a publication go to its watchers and to all subscribers.
type Pool struct {
	mu   *sync.RWMutex
	m    map[string][]net.Conn
	subs []net.Conn
	e    map[string]*Error
}

func NewPool(l *log.Logger) *Pool {
	return &Pool{
		mu: &sync.RWMutex{},
		m:  make(map[string][]net.Conn),
		e:  make(map[string]*Error),
	}
}

// Watch registers conn as the watcher of the given publication, replacing
// any previous watchers.
func (p *Pool) Watch(uid string, conn net.Conn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if conn == nil {
		p.m[uid] = []net.Conn{}
		return
	}
	p.m[uid] = []net.Conn{conn}
}

// AddConnections appends watchers to the given publication.
func (p *Pool) AddConnections(uid string, conns []net.Conn) {
	p.mu.RLock()
	_conns := p.m[uid]
	p.mu.RUnlock()
	if _conns == nil {
		_conns = []net.Conn{}
	}
	_conns = append(_conns, conns...)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.m[uid] = _conns
}

// Subscribe registers conn to receive every broadcast, regardless of
// which publication it concerns.
func (p *Pool) Subscribe(conn net.Conn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subs = append(p.subs, conn)
}

// HasWatch reports whether any connection watches the given publication.
func (p *Pool) HasWatch(uid string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.m[uid]
	return ok
}

// Drop removes all watchers of the given publication.
func (p *Pool) Drop(uid string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.m, uid)
}

// Broadcast sends data to the watchers of uid and to all subscribers.
func (p *Pool) Broadcast(uid string, data []byte) error {
	head := intToBytes(uint32(len(data)))
	p.mu.RLock()
	defer p.mu.RUnlock()
	conns := append([]net.Conn{}, p.m[uid]...)
	conns = append(conns, p.subs...)
	for _, conn := range conns {
		if conn == nil {
			continue
		}
		_, err := conn.Write(head)
		if err != nil {
			return fmt.Errorf("error writing: %s", err.Error())
		}
		_, err = conn.Write(data)
		if err != nil {
			return fmt.Errorf("error writing: %s", err.Error())
		}
	}
	return nil
}

// BroadcastAll sends data to every subscribed connection.
func (p *Pool) BroadcastAll(data []byte) error {
	head := intToBytes(uint32(len(data)))
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, conn := range p.subs {
		if conn == nil {
			continue
		}
		_, err := conn.Write(head)
		if err != nil {
			return fmt.Errorf("error writing: %s", err.Error())
		}
		_, err = conn.Write(data)
		if err != nil {
			return fmt.Errorf("error writing: %s", err.Error())
		}
	}
	return nil
}

// WriteError records an error for the given publication. A critical error
// is never overwritten by a warning.
func (p *Pool) WriteError(uid string, errType ErrorType, errMessage string) {
	p.mu.RLock()
	err, ok := p.e[uid]
	if ok && err.Type == ErrorTypeCritical && errType != ErrorTypeCritical {
		p.mu.RUnlock()
		return
	}
	p.mu.RUnlock()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.e[uid] = &Error{errType, errMessage}
}

// ForceWriteError records an error unconditionally.
func (p *Pool) ForceWriteError(uid string, errType ErrorType, errMessage string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.e[uid] = &Error{errType, errMessage}
}

// GetError returns the recorded error for the given publication, if any.
func (p *Pool) GetError(uid string) *Error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.e[uid]
}
