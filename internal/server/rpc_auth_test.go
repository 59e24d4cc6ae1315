package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// dummyHandler is a simple handler that returns 200 OK for testing the auth middleware.
var dummyHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
})

func TestRequireToken_ValidToken(t *testing.T) {
	secret := "test-secret-12345"
	handler := requireToken(secret, dummyHandler)

	req := httptest.NewRequest(http.MethodPost, "/jsonrpc", nil)
	req.Header.Set("Authorization", "Bearer "+secret)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if rr.Body.String() != "ok" {
		t.Fatalf("expected 'ok' body, got %q", rr.Body.String())
	}
}

func TestRequireToken_MissingToken(t *testing.T) {
	secret := "test-secret-12345"
	handler := requireToken(secret, dummyHandler)

	req := httptest.NewRequest(http.MethodPost, "/jsonrpc", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp["jsonrpc"] != "2.0" {
		t.Fatalf("expected jsonrpc 2.0, got %v", resp["jsonrpc"])
	}
	errObj, ok := resp["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error object, got %v", resp["error"])
	}
	if errObj["code"].(float64) != -32600 {
		t.Fatalf("expected error code -32600, got %v", errObj["code"])
	}
	if errObj["message"] != "Unauthorized" {
		t.Fatalf("expected 'Unauthorized', got %v", errObj["message"])
	}
}

func TestRequireToken_WrongToken(t *testing.T) {
	secret := "test-secret-12345"
	handler := requireToken(secret, dummyHandler)

	req := httptest.NewRequest(http.MethodPost, "/jsonrpc", nil)
	req.Header.Set("Authorization", "Bearer wrong-token")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestRequireToken_EmptySecret(t *testing.T) {
	// When the secret is empty, requireToken should reject ALL requests.
	// This ensures RPC cannot accidentally run without auth.
	handler := requireToken("", dummyHandler)

	req := httptest.NewRequest(http.MethodPost, "/jsonrpc", nil)
	req.Header.Set("Authorization", "Bearer anything")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 when secret is empty, got %d", rr.Code)
	}
}

func TestRequireToken_QueryParameter(t *testing.T) {
	secret := "test-secret-12345"
	handler := requireToken(secret, dummyHandler)

	req := httptest.NewRequest(http.MethodPost, "/jsonrpc?token="+secret, nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 with query token, got %d", rr.Code)
	}
}

func TestValidToken(t *testing.T) {
	if !validToken("secret", "secret") {
		t.Fatal("expected matching tokens to return true")
	}
	if validToken("secret", "wrong") {
		t.Fatal("expected non-matching tokens to return false")
	}
	if validToken("secret", "") {
		t.Fatal("expected empty token to return false")
	}
	if validToken("", "anything") {
		t.Fatal("expected empty secret to return false")
	}
	if validToken("", "") {
		t.Fatal("expected both empty to return false")
	}
}

func TestBearerToken(t *testing.T) {
	mkReq := func(header, query string) *http.Request {
		target := "/jsonrpc"
		if query != "" {
			target += "?token=" + query
		}
		r := httptest.NewRequest(http.MethodPost, target, nil)
		if header != "" {
			r.Header.Set("Authorization", header)
		}
		return r
	}

	if got := bearerToken(mkReq("Bearer abc", "")); got != "abc" {
		t.Errorf("header token: got %q", got)
	}
	if got := bearerToken(mkReq("", "xyz")); got != "xyz" {
		t.Errorf("query token: got %q", got)
	}
	// header wins over query
	if got := bearerToken(mkReq("Bearer abc", "xyz")); got != "abc" {
		t.Errorf("header precedence: got %q", got)
	}
	// header without the Bearer prefix never falls through to the query
	if got := bearerToken(mkReq("abc", "xyz")); got != "" {
		t.Errorf("malformed header: got %q", got)
	}
	if got := bearerToken(mkReq("", "")); got != "" {
		t.Errorf("no token: got %q", got)
	}
}
