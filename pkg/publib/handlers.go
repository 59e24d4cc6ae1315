package publib

import "log"

type (
	// ErrorHandlerFunc handles publication-level errors.
	ErrorHandlerFunc func(id string, err error)
	// StatusChangeHandlerFunc is called after a publication status transition
	// has been applied and persisted.
	StatusChangeHandlerFunc func(id string, from, to Status)
	// PublishStartHandlerFunc is called when publishing to a platform begins.
	PublishStartHandlerFunc func(id string, platform Platform)
	// PublishCompleteHandlerFunc is called when a platform accepts the
	// publication, with the remote id it assigned.
	PublishCompleteHandlerFunc func(id string, platform Platform, remoteId string)
	// AssetReadyHandlerFunc is called by the asset poller when an uploaded
	// asset finishes processing with a usable URL.
	AssetReadyHandlerFunc func(assetId, url string)
	// ScheduleMissedHandlerFunc is called at startup for scheduled
	// publications whose publish time passed while the daemon was down.
	ScheduleMissedHandlerFunc func(id string)
)

// Handlers aggregates optional lifecycle callbacks for publication
// operations. Missing handlers are replaced with no-ops.
type Handlers struct {
	ErrorHandler           ErrorHandlerFunc
	StatusChangeHandler    StatusChangeHandlerFunc
	PublishStartHandler    PublishStartHandlerFunc
	PublishCompleteHandler PublishCompleteHandlerFunc
	ScheduleMissedHandler  ScheduleMissedHandlerFunc
}

func (h *Handlers) setDefault(l *log.Logger) {
	if h.StatusChangeHandler == nil {
		h.StatusChangeHandler = func(id string, from, to Status) {}
	}
	if h.PublishStartHandler == nil {
		h.PublishStartHandler = func(id string, platform Platform) {}
	}
	if h.PublishCompleteHandler == nil {
		h.PublishCompleteHandler = func(id string, platform Platform, remoteId string) {}
	}
	if h.ScheduleMissedHandler == nil {
		h.ScheduleMissedHandler = func(id string) {}
	}
	if h.ErrorHandler == nil {
		h.ErrorHandler = func(id string, err error) {
			if l != nil {
				l.Printf("%s: Error: %s", id, err.Error())
			}
		}
	} else {
		errHandler := h.ErrorHandler
		h.ErrorHandler = func(id string, err error) {
			if l != nil {
				l.Printf("%s: Error: %s", id, err.Error())
			}
			errHandler(id, err)
		}
	}
}
