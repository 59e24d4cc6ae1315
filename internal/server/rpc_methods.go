package server

import (
	"context"
	"errors"
	"time"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/creachadair/jrpc2/jhttp"

	"github.com/pubdeck/pubdeck/pkg/loading"
	"github.com/pubdeck/pubdeck/pkg/publib"
)

// Custom JSON-RPC error codes for publication operations.
const (
	codePublicationNotFound = jrpc2.Code(-32001)
	codeNotAllowed          = jrpc2.Code(-32002)
	codeInvalidParams       = jrpc2.Code(-32602)
)

// PublishFunc pushes a publication through the full publish flow. It is
// supplied by the daemon so the RPC layer stays transport-only.
type PublishFunc func(ctx context.Context, id string) error

// RPCConfig holds configuration for the JSON-RPC endpoint.
type RPCConfig struct {
	Secret    string // Auth token (required -- empty means RPC disabled)
	ListenAll bool   // If true, bind to 0.0.0.0 instead of 127.0.0.1
	Version   string // Daemon version
}

// RPCServer manages the JSON-RPC 2.0 bridge and method handlers.
type RPCServer struct {
	bridge    jhttp.Bridge
	methods   handler.Map
	secret    string
	version   string
	listenAll bool
	manager   *publib.Manager
	tracker   *loading.Tracker
	events    *publib.EventSource
	resched   *publib.Rescheduler
	publish   PublishFunc
}

// VersionResult is the response for system.getVersion.
type VersionResult struct {
	Version string `json:"version"`
}

// ReadyResult is the response for system.ready.
type ReadyResult struct {
	State loading.State `json:"state"`
}

// IdParam is a common input with just a publication id.
type IdParam struct {
	Id string `json:"id"`
}

// CreateParams is the input for publication.create.
type CreateParams struct {
	UserId      string                                 `json:"userId"`
	Content     publib.Content                         `json:"content"`
	Platforms   []publib.Platform                      `json:"platforms"`
	Kinds       map[publib.Platform]publib.ContentKind `json:"kinds,omitempty"`
	ScheduledAt time.Time                              `json:"scheduledAt,omitempty"`
	CronExpr    string                                 `json:"cronExpr,omitempty"`
}

// UpdateParams is the input for publication.update.
type UpdateParams struct {
	Id      string         `json:"id"`
	Content publib.Content `json:"content"`
}

// ScheduleParams is the input for publication.schedule.
type ScheduleParams struct {
	Id          string    `json:"id"`
	ScheduledAt time.Time `json:"scheduledAt"`
	CronExpr    string    `json:"cronExpr,omitempty"`
}

// RescheduleParams is the input for publication.reschedule.
type RescheduleParams struct {
	Id       string    `json:"id"`
	NewStart time.Time `json:"newStart"`
}

// PublicationResult wraps a single publication.
type PublicationResult struct {
	Publication *publib.Publication `json:"publication"`
}

// ListParams is the input for publication.list.
type ListParams struct {
	UserId   string          `json:"userId,omitempty"`
	From     time.Time       `json:"from,omitempty"`
	To       time.Time       `json:"to,omitempty"`
	Statuses []publib.Status `json:"statuses,omitempty"`
	Platform publib.Platform `json:"platform,omitempty"`
}

// ListResult is the response for publication.list.
type ListResult struct {
	Publications []*publib.Publication `json:"publications"`
}

// EventsParams is the input for calendar.events.
type EventsParams struct {
	From     time.Time       `json:"from"`
	To       time.Time       `json:"to"`
	Statuses []publib.Status `json:"statuses,omitempty"`
	Platform publib.Platform `json:"platform,omitempty"`
	Search   string          `json:"search,omitempty"`
}

// EventsResult is the response for calendar.events.
type EventsResult struct {
	Events []publib.CalendarEvent `json:"events"`
}

// EmptyResult is a placeholder for methods that return no data.
type EmptyResult struct{}

// NewRPCServer creates a new RPCServer with method handlers and HTTP bridge.
func NewRPCServer(cfg *RPCConfig, m *publib.Manager, tracker *loading.Tracker, events *publib.EventSource, resched *publib.Rescheduler, publish PublishFunc) *RPCServer {
	rs := &RPCServer{
		secret:    cfg.Secret,
		version:   cfg.Version,
		listenAll: cfg.ListenAll,
		manager:   m,
		tracker:   tracker,
		events:    events,
		resched:   resched,
		publish:   publish,
	}

	rs.methods = handler.Map{
		"system.getVersion":      handler.New(rs.systemGetVersion),
		"system.ready":           handler.New(rs.systemReady),
		"publication.create":     handler.New(rs.publicationCreate),
		"publication.update":     handler.New(rs.publicationUpdate),
		"publication.get":        handler.New(rs.publicationGet),
		"publication.schedule":   handler.New(rs.publicationSchedule),
		"publication.reschedule": handler.New(rs.publicationReschedule),
		"publication.cancel":     handler.New(rs.publicationCancel),
		"publication.publishNow": handler.New(rs.publicationPublishNow),
		"publication.delete":     handler.New(rs.publicationDelete),
		"publication.list":       handler.New(rs.publicationList),
		"calendar.events":        handler.New(rs.calendarEvents),
	}

	rs.bridge = jhttp.NewBridge(rs.methods, nil)
	return rs
}

func (rs *RPCServer) systemGetVersion(_ context.Context) (*VersionResult, error) {
	return &VersionResult{Version: rs.version}, nil
}

func (rs *RPCServer) systemReady(_ context.Context) (*ReadyResult, error) {
	return &ReadyResult{State: rs.tracker.Snapshot()}, nil
}

// publicationCreate creates a new draft or scheduled publication.
func (rs *RPCServer) publicationCreate(ctx context.Context, p *CreateParams) (*PublicationResult, error) {
	if p.UserId == "" {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "missing required param: userId"}
	}
	pub := &publib.Publication{
		UserId:      p.UserId,
		Content:     p.Content,
		Platforms:   p.Platforms,
		Kinds:       p.Kinds,
		ScheduledAt: p.ScheduledAt,
		CronExpr:    p.CronExpr,
	}
	res, err := rs.manager.Create(ctx, pub)
	if err != nil {
		return nil, rpcError(err)
	}
	if !res.OK {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: joinErrors(res.Errors)}
	}
	return &PublicationResult{Publication: pub}, nil
}

// publicationUpdate replaces the content of an editable publication.
func (rs *RPCServer) publicationUpdate(ctx context.Context, p *UpdateParams) (*PublicationResult, error) {
	res, err := rs.manager.UpdateContent(ctx, p.Id, p.Content)
	if err != nil {
		return nil, rpcError(err)
	}
	if !res.OK {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: joinErrors(res.Errors)}
	}
	pub, err := rs.manager.Get(ctx, p.Id)
	if err != nil {
		return nil, rpcError(err)
	}
	return &PublicationResult{Publication: pub}, nil
}

func (rs *RPCServer) publicationGet(ctx context.Context, p *IdParam) (*PublicationResult, error) {
	pub, err := rs.manager.Get(ctx, p.Id)
	if err != nil {
		return nil, rpcError(err)
	}
	return &PublicationResult{Publication: pub}, nil
}

// publicationSchedule sets or replaces the scheduled publish time.
func (rs *RPCServer) publicationSchedule(ctx context.Context, p *ScheduleParams) (*PublicationResult, error) {
	res, err := rs.manager.Schedule(ctx, p.Id, p.ScheduledAt, p.CronExpr)
	if err != nil {
		return nil, rpcError(err)
	}
	if !res.OK {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: joinErrors(res.Errors)}
	}
	pub, err := rs.manager.Get(ctx, p.Id)
	if err != nil {
		return nil, rpcError(err)
	}
	return &PublicationResult{Publication: pub}, nil
}

// publicationReschedule moves a publication to a new start time. This is
// the calendar drag-and-drop path: a single attempt, refetch on success.
func (rs *RPCServer) publicationReschedule(ctx context.Context, p *RescheduleParams) (*PublicationResult, error) {
	err := rs.resched.Drop(ctx, publib.EventDrop{
		Id:       p.Id,
		NewStart: p.NewStart,
	})
	if err != nil {
		return nil, rpcError(err)
	}
	pub, err := rs.manager.Get(ctx, p.Id)
	if err != nil {
		return nil, rpcError(err)
	}
	return &PublicationResult{Publication: pub}, nil
}

func (rs *RPCServer) publicationCancel(ctx context.Context, p *IdParam) (*PublicationResult, error) {
	pub, err := rs.manager.Cancel(ctx, p.Id)
	if err != nil {
		return nil, rpcError(err)
	}
	return &PublicationResult{Publication: pub}, nil
}

// publicationPublishNow pushes the publication through the publish flow
// immediately, bypassing its schedule.
func (rs *RPCServer) publicationPublishNow(ctx context.Context, p *IdParam) (*EmptyResult, error) {
	pub, err := rs.manager.Get(ctx, p.Id)
	if err != nil {
		return nil, rpcError(err)
	}
	if !pub.CanPublishNow() {
		return nil, &jrpc2.Error{Code: codeNotAllowed, Message: "publication not publishable in status " + string(pub.Status)}
	}
	if rs.publish == nil {
		return nil, &jrpc2.Error{Code: codeNotAllowed, Message: "publishing unavailable"}
	}
	if err := rs.publish(ctx, p.Id); err != nil {
		return nil, rpcError(err)
	}
	return &EmptyResult{}, nil
}

func (rs *RPCServer) publicationDelete(ctx context.Context, p *IdParam) (*EmptyResult, error) {
	if err := rs.manager.Delete(ctx, p.Id); err != nil {
		return nil, rpcError(err)
	}
	return &EmptyResult{}, nil
}

func (rs *RPCServer) publicationList(ctx context.Context, p *ListParams) (*ListResult, error) {
	pubs, err := rs.manager.List(ctx, publib.ListQuery{
		UserId:   p.UserId,
		From:     p.From,
		To:       p.To,
		Statuses: p.Statuses,
		Platform: p.Platform,
	})
	if err != nil {
		return nil, rpcError(err)
	}
	return &ListResult{Publications: pubs}, nil
}

// calendarEvents returns the sorted calendar projection of publications in
// the requested range.
func (rs *RPCServer) calendarEvents(ctx context.Context, p *EventsParams) (*EventsResult, error) {
	events, err := rs.events.Events(ctx, p.From, p.To, publib.EventFilters{
		Statuses: p.Statuses,
		Platform: p.Platform,
		Search:   p.Search,
	})
	if err != nil {
		return nil, rpcError(err)
	}
	return &EventsResult{Events: events}, nil
}

// rpcError maps domain errors onto JSON-RPC error codes.
func rpcError(err error) error {
	switch {
	case errors.Is(err, publib.ErrPublicationNotFound):
		return &jrpc2.Error{Code: codePublicationNotFound, Message: "publication not found"}
	case errors.Is(err, publib.ErrInvalidTransition),
		errors.Is(err, publib.ErrNotEditable),
		errors.Is(err, publib.ErrNotDeletable),
		errors.Is(err, publib.ErrNotSchedulable),
		errors.Is(err, publib.ErrNotPublishable):
		return &jrpc2.Error{Code: codeNotAllowed, Message: err.Error()}
	default:
		return &jrpc2.Error{Code: codeInvalidParams, Message: err.Error()}
	}
}

func joinErrors(errs []string) string {
	if len(errs) == 0 {
		return "invalid publication"
	}
	out := errs[0]
	for _, e := range errs[1:] {
		out += "; " + e
	}
	return out
}

// Close shuts down the jrpc2 bridge, releasing internal goroutines.
func (rs *RPCServer) Close() {
	rs.bridge.Close()
}
