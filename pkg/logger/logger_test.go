package logger

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"
)

func newBufLogger() (*StandardLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return NewStandardLogger(log.New(buf, "", 0)), buf
}

func TestStandardLoggerLevels(t *testing.T) {
	logger, buf := newBufLogger()

	logger.Info("test message %d", 123)
	if out := buf.String(); !strings.Contains(out, "[INFO]") || !strings.Contains(out, "test message 123") {
		t.Errorf("unexpected info output: %s", out)
	}

	buf.Reset()
	logger.Warning("warning message %s", "test")
	if out := buf.String(); !strings.Contains(out, "[WARNING]") || !strings.Contains(out, "warning message test") {
		t.Errorf("unexpected warning output: %s", out)
	}

	buf.Reset()
	logger.Error("error message: %v", "failed")
	if out := buf.String(); !strings.Contains(out, "[ERROR]") || !strings.Contains(out, "error message: failed") {
		t.Errorf("unexpected error output: %s", out)
	}

	if err := logger.Close(); err != nil {
		t.Errorf("expected nil error, got: %v", err)
	}
}

func TestNopLogger(t *testing.T) {
	logger := NewNopLogger()

	// Should not panic
	logger.Info("test")
	logger.Warning("test")
	logger.Error("test")

	if err := logger.Close(); err != nil {
		t.Errorf("expected nil error, got: %v", err)
	}
}

func TestMultiLoggerBroadcast(t *testing.T) {
	l1, buf1 := newBufLogger()
	l2, buf2 := newBufLogger()
	m := NewMultiLogger(l1, l2)

	m.Info("hello %s", "world")
	if !strings.Contains(buf1.String(), "hello world") || !strings.Contains(buf2.String(), "hello world") {
		t.Errorf("expected message in both backends: %q / %q", buf1.String(), buf2.String())
	}

	m.Warning("warn")
	m.Error("err")
	if !strings.Contains(buf1.String(), "[WARNING] warn") || !strings.Contains(buf1.String(), "[ERROR] err") {
		t.Errorf("unexpected output: %s", buf1.String())
	}
}

type failingCloser struct {
	NopLogger
	err error
}

func (f *failingCloser) Close() error { return f.err }

func TestMultiLoggerCloseReturnsFirstError(t *testing.T) {
	errBoom := errors.New("boom")
	m := NewMultiLogger(
		NewNopLogger(),
		&failingCloser{err: errBoom},
		&failingCloser{err: errors.New("later")},
	)
	if err := m.Close(); err != errBoom {
		t.Fatalf("expected first close error, got %v", err)
	}
}

func TestMultiLoggerSkipsNilBackends(t *testing.T) {
	l1, buf1 := newBufLogger()
	m := NewMultiLogger(nil, l1, nil)

	m.Info("still works")
	if !strings.Contains(buf1.String(), "still works") {
		t.Errorf("expected message in backend: %q", buf1.String())
	}
	if err := m.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
