package publib

import (
	"log"
	"runtime/debug"
	"sync"
)

// SafeGo runs fn in a goroutine with panic recovery, so a panicking
// publish path cannot take down the scheduler or the RPC surface that
// launched it.
// If wg is non-nil, it is decremented on completion (normal or panic).
// If l is non-nil, panics are logged with stack traces.
// If onPanic is non-nil, it is called with the recovered value.
func SafeGo(l *log.Logger, wg *sync.WaitGroup, context string, onPanic func(r any), fn func()) {
	go func() {
		if wg != nil {
			defer wg.Done()
		}
		defer func() {
			if r := recover(); r != nil {
				if l != nil {
					l.Printf("PANIC [%s]: %v\n%s", context, r, debug.Stack())
				}
				if onPanic != nil {
					onPanic(r)
				}
			}
		}()
		fn()
	}()
}

// safeCall invokes fn with panic recovery, logging the panic when l is
// non-nil. Used to isolate user-supplied callbacks so one failing callback
// cannot abort a notify cycle.
func safeCall(l *log.Logger, context string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			if l != nil {
				l.Printf("PANIC [%s]: %v\n%s", context, r, debug.Stack())
			}
		}
	}()
	fn()
}
