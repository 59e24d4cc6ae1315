package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pubdeck/pubdeck/pkg/loading"
	"github.com/pubdeck/pubdeck/pkg/publib"
)

// rpcCall sends a JSON-RPC request to the bridge and returns the parsed response.
func rpcCall(t *testing.T, handler http.Handler, method string, params any, authToken string) (int, map[string]any) {
	t.Helper()
	reqBody := map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"id":      1,
	}
	if params != nil {
		reqBody["params"] = params
	}
	data, err := json.Marshal(reqBody)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/jsonrpc", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	resp := rr.Result()
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	var result map[string]any
	if len(body) > 0 {
		if err := json.Unmarshal(body, &result); err != nil {
			t.Fatalf("unmarshal response: %v (body: %s)", err, string(body))
		}
	}
	return rr.Code, result
}

// rpcCallRaw sends a raw body to the bridge and returns the parsed response.
func rpcCallRaw(t *testing.T, handler http.Handler, body []byte, authToken string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/jsonrpc", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	resp := rr.Result()
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)

	var result map[string]any
	if len(respBody) > 0 {
		_ = json.Unmarshal(respBody, &result)
	}
	return rr.Code, result
}

// resultObj extracts the "result" object from an RPC response, failing if absent.
func resultObj(t *testing.T, resp map[string]any) map[string]any {
	t.Helper()
	result, ok := resp["result"].(map[string]any)
	if !ok {
		t.Fatalf("expected result object, got %v", resp)
	}
	return result
}

// errorObj extracts the "error" object from an RPC response, failing if absent.
func errorObj(t *testing.T, resp map[string]any) map[string]any {
	t.Helper()
	errObj, ok := resp["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error object, got %v", resp)
	}
	return errObj
}

// publishRecorder counts publish invocations passed through the RPC layer.
type publishRecorder struct {
	mu  sync.Mutex
	ids []string
}

func (r *publishRecorder) publish(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, id)
	return nil
}

// newTestRPCHandler builds an RPC handler backed by an in-memory manager.
func newTestRPCHandler(t *testing.T) (http.Handler, string, *publishRecorder, func()) {
	t.Helper()
	secret := "test-rpc-secret"
	l := log.New(io.Discard, "", 0)

	m, err := publib.InitManager(":memory:", &publib.ManagerOpts{Logger: l})
	if err != nil {
		t.Fatalf("InitManager: %v", err)
	}
	tracker := loading.NewTracker(loading.StrategyLinear, l)
	events := publib.NewEventSource(m, time.Now)
	trigger := publib.NewRefetchTrigger(l)
	resched := publib.NewRescheduler(m, trigger, l)
	rec := &publishRecorder{}

	cfg := &RPCConfig{
		Secret:  secret,
		Version: "1.0.0",
	}
	rs := NewRPCServer(cfg, m, tracker, events, resched, rec.publish)
	handler := requireToken(secret, rs.bridge)
	cleanup := func() {
		rs.Close()
		tracker.Close()
		m.Close()
	}
	return handler, secret, rec, cleanup
}

// createDraft creates a draft publication over RPC and returns its id.
func createDraft(t *testing.T, handler http.Handler, secret string) string {
	t.Helper()
	code, resp := rpcCall(t, handler, "publication.create", map[string]any{
		"userId":    "user-1",
		"content":   map[string]any{"text": "hello world"},
		"platforms": []string{"facebook"},
	}, secret)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	pub, ok := resultObj(t, resp)["publication"].(map[string]any)
	if !ok {
		t.Fatalf("expected publication in result, got %v", resp)
	}
	id, _ := pub["id"].(string)
	if id == "" {
		t.Fatalf("expected non-empty publication id")
	}
	return id
}

func TestRPCSystemGetVersion(t *testing.T) {
	handler, secret, _, cleanup := newTestRPCHandler(t)
	defer cleanup()

	code, resp := rpcCall(t, handler, "system.getVersion", nil, secret)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if resp["jsonrpc"] != "2.0" {
		t.Fatalf("expected jsonrpc 2.0, got %v", resp["jsonrpc"])
	}
	if resp["id"].(float64) != 1 {
		t.Fatalf("expected id 1, got %v", resp["id"])
	}
	result := resultObj(t, resp)
	if result["version"] != "1.0.0" {
		t.Fatalf("expected version 1.0.0, got %v", result["version"])
	}
}

func TestRPCSystemReady(t *testing.T) {
	handler, secret, _, cleanup := newTestRPCHandler(t)
	defer cleanup()

	code, resp := rpcCall(t, handler, "system.ready", nil, secret)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	state, ok := resultObj(t, resp)["state"].(map[string]any)
	if !ok {
		t.Fatalf("expected state object, got %v", resp)
	}
	// No registered dependencies: the tracker reports ready.
	if state["GlobalLoading"] != false {
		t.Fatalf("expected GlobalLoading false, got %v", state["GlobalLoading"])
	}
	if state["Progress"].(float64) != 100 {
		t.Fatalf("expected Progress 100, got %v", state["Progress"])
	}
}

func TestRPCAuthRequired(t *testing.T) {
	handler, _, _, cleanup := newTestRPCHandler(t)
	defer cleanup()

	code, resp := rpcCall(t, handler, "system.getVersion", nil, "")
	if code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
	if errorObj(t, resp)["message"] != "Unauthorized" {
		t.Fatalf("expected 'Unauthorized', got %v", resp)
	}

	code, _ = rpcCall(t, handler, "system.getVersion", nil, "wrong-token")
	if code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong token, got %d", code)
	}
}

func TestRPCMethodNotFound(t *testing.T) {
	handler, secret, _, cleanup := newTestRPCHandler(t)
	defer cleanup()

	_, resp := rpcCall(t, handler, "nonexistent.method", nil, secret)
	errCode := errorObj(t, resp)["code"].(float64)
	if errCode != -32601 {
		t.Fatalf("expected error code -32601 (Method not found), got %v", errCode)
	}
}

func TestRPCParseError(t *testing.T) {
	handler, secret, _, cleanup := newTestRPCHandler(t)
	defer cleanup()

	// jrpc2 bridge returns HTTP 500 for bodies that cannot be parsed into
	// a JSON-RPC request.
	code, _ := rpcCallRaw(t, handler, []byte("not valid json"), secret)
	if code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for parse error, got %d", code)
	}
}

func TestRPCPublicationCreate(t *testing.T) {
	handler, secret, _, cleanup := newTestRPCHandler(t)
	defer cleanup()

	code, resp := rpcCall(t, handler, "publication.create", map[string]any{
		"userId":    "user-1",
		"content":   map[string]any{"text": "launch announcement"},
		"platforms": []string{"facebook", "instagram"},
	}, secret)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	pub := resultObj(t, resp)["publication"].(map[string]any)
	if pub["status"] != "draft" {
		t.Fatalf("expected draft status, got %v", pub["status"])
	}
	if pub["user_id"] != "user-1" {
		t.Fatalf("expected user_id user-1, got %v", pub["user_id"])
	}
}

func TestRPCPublicationCreate_MissingUserId(t *testing.T) {
	handler, secret, _, cleanup := newTestRPCHandler(t)
	defer cleanup()

	_, resp := rpcCall(t, handler, "publication.create", map[string]any{
		"content":   map[string]any{"text": "hello"},
		"platforms": []string{"facebook"},
	}, secret)
	errCode := errorObj(t, resp)["code"].(float64)
	if errCode != -32602 {
		t.Fatalf("expected error code -32602, got %v", errCode)
	}
}

func TestRPCPublicationCreate_ValidationFailure(t *testing.T) {
	handler, secret, _, cleanup := newTestRPCHandler(t)
	defer cleanup()

	// Empty content and no platforms: validation errors are reported as an
	// invalid-params error, not a transport failure.
	_, resp := rpcCall(t, handler, "publication.create", map[string]any{
		"userId":    "user-1",
		"content":   map[string]any{"text": ""},
		"platforms": []string{},
	}, secret)
	errCode := errorObj(t, resp)["code"].(float64)
	if errCode != -32602 {
		t.Fatalf("expected error code -32602, got %v", errCode)
	}
}

func TestRPCPublicationGet(t *testing.T) {
	handler, secret, _, cleanup := newTestRPCHandler(t)
	defer cleanup()

	id := createDraft(t, handler, secret)

	code, resp := rpcCall(t, handler, "publication.get", map[string]any{"id": id}, secret)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	pub := resultObj(t, resp)["publication"].(map[string]any)
	if pub["id"] != id {
		t.Fatalf("expected id %s, got %v", id, pub["id"])
	}
}

func TestRPCPublicationGet_NotFound(t *testing.T) {
	handler, secret, _, cleanup := newTestRPCHandler(t)
	defer cleanup()

	_, resp := rpcCall(t, handler, "publication.get", map[string]any{"id": "missing"}, secret)
	errCode := errorObj(t, resp)["code"].(float64)
	if errCode != -32001 {
		t.Fatalf("expected error code -32001, got %v", errCode)
	}
}

func TestRPCPublicationUpdate(t *testing.T) {
	handler, secret, _, cleanup := newTestRPCHandler(t)
	defer cleanup()

	id := createDraft(t, handler, secret)

	code, resp := rpcCall(t, handler, "publication.update", map[string]any{
		"id":      id,
		"content": map[string]any{"text": "revised copy"},
	}, secret)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	pub := resultObj(t, resp)["publication"].(map[string]any)
	content := pub["content"].(map[string]any)
	if content["text"] != "revised copy" {
		t.Fatalf("expected updated text, got %v", content["text"])
	}
}

func TestRPCPublicationScheduleAndCancel(t *testing.T) {
	handler, secret, _, cleanup := newTestRPCHandler(t)
	defer cleanup()

	id := createDraft(t, handler, secret)
	at := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)

	code, resp := rpcCall(t, handler, "publication.schedule", map[string]any{
		"id":          id,
		"scheduledAt": at,
	}, secret)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	pub := resultObj(t, resp)["publication"].(map[string]any)
	if pub["status"] != "scheduled" {
		t.Fatalf("expected scheduled status, got %v", pub["status"])
	}

	_, resp = rpcCall(t, handler, "publication.cancel", map[string]any{"id": id}, secret)
	pub = resultObj(t, resp)["publication"].(map[string]any)
	if pub["status"] != "cancelled" {
		t.Fatalf("expected cancelled status, got %v", pub["status"])
	}
}

func TestRPCPublicationSchedule_PastDate(t *testing.T) {
	handler, secret, _, cleanup := newTestRPCHandler(t)
	defer cleanup()

	id := createDraft(t, handler, secret)
	at := time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)

	_, resp := rpcCall(t, handler, "publication.schedule", map[string]any{
		"id":          id,
		"scheduledAt": at,
	}, secret)
	errCode := errorObj(t, resp)["code"].(float64)
	if errCode != -32602 {
		t.Fatalf("expected error code -32602, got %v", errCode)
	}
}

func TestRPCPublicationSchedule_InvalidCron(t *testing.T) {
	handler, secret, _, cleanup := newTestRPCHandler(t)
	defer cleanup()

	id := createDraft(t, handler, secret)
	at := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)

	_, resp := rpcCall(t, handler, "publication.schedule", map[string]any{
		"id":          id,
		"scheduledAt": at,
		"cronExpr":    "bad-expr",
	}, secret)
	errObj := errorObj(t, resp)
	if errObj["code"].(float64) != -32602 {
		t.Fatalf("expected error code -32602, got %v", errObj["code"])
	}
	if !strings.Contains(errObj["message"].(string), "invalid cron expression") {
		t.Fatalf("expected cron rejection message, got %v", errObj["message"])
	}
}

func TestRPCPublicationReschedule(t *testing.T) {
	handler, secret, _, cleanup := newTestRPCHandler(t)
	defer cleanup()

	id := createDraft(t, handler, secret)
	at := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)
	if _, resp := rpcCall(t, handler, "publication.schedule", map[string]any{
		"id":          id,
		"scheduledAt": at,
	}, secret); resp["error"] != nil {
		t.Fatalf("schedule failed: %v", resp["error"])
	}

	newStart := time.Now().Add(2 * time.Hour).UTC()
	code, resp := rpcCall(t, handler, "publication.reschedule", map[string]any{
		"id":       id,
		"newStart": newStart.Format(time.RFC3339),
	}, secret)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	pub := resultObj(t, resp)["publication"].(map[string]any)
	got, err := time.Parse(time.RFC3339, pub["scheduled_at"].(string))
	if err != nil {
		t.Fatalf("parse scheduled_at: %v", err)
	}
	if got.Unix() != newStart.Unix() {
		t.Fatalf("expected scheduled_at %v, got %v", newStart, got)
	}
}

func TestRPCPublicationReschedule_NotFound(t *testing.T) {
	handler, secret, _, cleanup := newTestRPCHandler(t)
	defer cleanup()

	_, resp := rpcCall(t, handler, "publication.reschedule", map[string]any{
		"id":       "missing",
		"newStart": time.Now().Add(time.Hour).UTC().Format(time.RFC3339),
	}, secret)
	errCode := errorObj(t, resp)["code"].(float64)
	if errCode != -32001 {
		t.Fatalf("expected error code -32001, got %v", errCode)
	}
}

func TestRPCPublicationPublishNow(t *testing.T) {
	handler, secret, rec, cleanup := newTestRPCHandler(t)
	defer cleanup()

	id := createDraft(t, handler, secret)

	code, resp := rpcCall(t, handler, "publication.publishNow", map[string]any{"id": id}, secret)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if resp["error"] != nil {
		t.Fatalf("unexpected error: %v", resp["error"])
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.ids) != 1 || rec.ids[0] != id {
		t.Fatalf("expected publish call for %s, got %v", id, rec.ids)
	}
}

func TestRPCPublicationDelete(t *testing.T) {
	handler, secret, _, cleanup := newTestRPCHandler(t)
	defer cleanup()

	id := createDraft(t, handler, secret)

	code, resp := rpcCall(t, handler, "publication.delete", map[string]any{"id": id}, secret)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if resp["error"] != nil {
		t.Fatalf("unexpected error: %v", resp["error"])
	}

	_, resp = rpcCall(t, handler, "publication.get", map[string]any{"id": id}, secret)
	errCode := errorObj(t, resp)["code"].(float64)
	if errCode != -32001 {
		t.Fatalf("expected error code -32001 after delete, got %v", errCode)
	}
}

func TestRPCPublicationDelete_ScheduledRejected(t *testing.T) {
	handler, secret, _, cleanup := newTestRPCHandler(t)
	defer cleanup()

	id := createDraft(t, handler, secret)
	at := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)
	if _, resp := rpcCall(t, handler, "publication.schedule", map[string]any{
		"id":          id,
		"scheduledAt": at,
	}, secret); resp["error"] != nil {
		t.Fatalf("schedule failed: %v", resp["error"])
	}

	_, resp := rpcCall(t, handler, "publication.delete", map[string]any{"id": id}, secret)
	errCode := errorObj(t, resp)["code"].(float64)
	if errCode != -32002 {
		t.Fatalf("expected error code -32002, got %v", errCode)
	}
}

func TestRPCPublicationList(t *testing.T) {
	handler, secret, _, cleanup := newTestRPCHandler(t)
	defer cleanup()

	id := createDraft(t, handler, secret)

	code, resp := rpcCall(t, handler, "publication.list", map[string]any{
		"userId": "user-1",
	}, secret)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	pubs, ok := resultObj(t, resp)["publications"].([]any)
	if !ok || len(pubs) != 1 {
		t.Fatalf("expected 1 publication, got %v", resultObj(t, resp)["publications"])
	}
	if pubs[0].(map[string]any)["id"] != id {
		t.Fatalf("expected id %s, got %v", id, pubs[0])
	}
}

func TestRPCCalendarEvents(t *testing.T) {
	handler, secret, _, cleanup := newTestRPCHandler(t)
	defer cleanup()

	id := createDraft(t, handler, secret)
	at := time.Now().Add(time.Hour).UTC()
	if _, resp := rpcCall(t, handler, "publication.schedule", map[string]any{
		"id":          id,
		"scheduledAt": at.Format(time.RFC3339),
	}, secret); resp["error"] != nil {
		t.Fatalf("schedule failed: %v", resp["error"])
	}

	code, resp := rpcCall(t, handler, "calendar.events", map[string]any{
		"from": time.Now().UTC().Format(time.RFC3339),
		"to":   time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339),
	}, secret)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	events, ok := resultObj(t, resp)["events"].([]any)
	if !ok || len(events) != 1 {
		t.Fatalf("expected 1 event, got %v", resultObj(t, resp)["events"])
	}
	ev := events[0].(map[string]any)
	if ev["id"] != id {
		t.Fatalf("expected event id %s, got %v", id, ev["id"])
	}
}

func TestRPCBridgeLifecycle(t *testing.T) {
	cfg := &RPCConfig{
		Secret:  "test",
		Version: "1.0.0",
	}
	rs := NewRPCServer(cfg, nil, nil, nil, nil, nil)
	// Close should not panic.
	rs.Close()
	rs.Close()
}
