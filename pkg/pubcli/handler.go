package pubcli

import (
	"encoding/json"

	"github.com/pubdeck/pubdeck/common"
	"github.com/pubdeck/pubdeck/pkg/loading"
	"github.com/pubdeck/pubdeck/pkg/publib"
)

// Handler defines the interface for processing daemon updates.
// Implementations receive raw JSON messages and are responsible for
// unmarshaling and processing them appropriately.
type Handler interface {
	Handle(json.RawMessage) error
}

// NewStatusHandler creates a handler for publication status pushes.
// The status parameter filters updates to only those reaching the given
// status; pass an empty string to receive all of them.
func NewStatusHandler(status publib.Status, callback func(*common.StatusUpdate) error) *StatusHandler {
	return &StatusHandler{
		Status:   status,
		Callback: callback,
	}
}

// StatusHandler processes publication status pushes from the daemon.
type StatusHandler struct {
	Status   publib.Status
	Callback func(*common.StatusUpdate) error
}

// Handle unmarshals a status push, applies the status filter, and invokes
// the callback for matching updates.
func (h *StatusHandler) Handle(m json.RawMessage) error {
	var v common.StatusUpdate
	err := json.Unmarshal(m, &v)
	if err != nil {
		return err
	}
	if h.Status != "" && v.NewStatus != h.Status {
		return nil
	}
	return h.Callback(&v)
}

// NewRefetchHandler creates a handler for calendar refetch pushes.
func NewRefetchHandler(callback func(*common.RefetchUpdate) error) *RefetchHandler {
	return &RefetchHandler{Callback: callback}
}

// RefetchHandler processes calendar refetch pushes from the daemon.
type RefetchHandler struct {
	Callback func(*common.RefetchUpdate) error
}

func (h *RefetchHandler) Handle(m json.RawMessage) error {
	var v common.RefetchUpdate
	err := json.Unmarshal(m, &v)
	if err != nil {
		return err
	}
	return h.Callback(&v)
}

// NewLoadingHandler creates a handler for daemon readiness pushes.
func NewLoadingHandler(callback func(*loading.State) error) *LoadingHandler {
	return &LoadingHandler{Callback: callback}
}

// LoadingHandler processes startup readiness pushes from the daemon.
type LoadingHandler struct {
	Callback func(*loading.State) error
}

func (h *LoadingHandler) Handle(m json.RawMessage) error {
	var v loading.State
	err := json.Unmarshal(m, &v)
	if err != nil {
		return err
	}
	return h.Callback(&v)
}
