package api

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/pubdeck/pubdeck/common"
	"github.com/pubdeck/pubdeck/internal/scheduler"
	"github.com/pubdeck/pubdeck/internal/server"
	"github.com/pubdeck/pubdeck/pkg/publib"
)

func (s *Api) scheduleHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.ScheduleParams
	if err := json.Unmarshal(body, &m); err != nil {
		return common.UPDATE_SCHEDULE, nil, err
	}
	if m.PublicationId == "" {
		return common.UPDATE_SCHEDULE, nil, errors.New("publication_id is required")
	}
	// Reject recurrences that never fire (or not within a year) before
	// touching the store.
	if m.CronExpr != "" && !scheduler.ValidCron(m.CronExpr, time.Now()) {
		return common.UPDATE_SCHEDULE, nil, errors.New("invalid cron expression: " + m.CronExpr)
	}

	res, err := s.manager.Schedule(context.Background(), m.PublicationId, m.ScheduledAt, m.CronExpr)
	if err != nil {
		return common.UPDATE_SCHEDULE, nil, err
	}
	if !res.OK {
		return common.UPDATE_SCHEDULE, nil, errors.New(strings.Join(res.Errors, "; "))
	}

	if s.deps.Scheduler != nil {
		s.deps.Scheduler.Remove(m.PublicationId)
		s.deps.Scheduler.Add(scheduler.PublishEvent{
			PublicationId: m.PublicationId,
			TriggerAt:     m.ScheduledAt,
			CronExpr:      m.CronExpr,
		})
	}

	pub, err := s.manager.Get(context.Background(), m.PublicationId)
	if err != nil {
		return common.UPDATE_SCHEDULE, nil, err
	}
	pool.Watch(pub.Id, sconn.Conn)
	return common.UPDATE_SCHEDULE, &common.PublicationResponse{
		Publication: pub,
	}, nil
}

// rescheduleHandler is the calendar drag-and-drop path. The move has
// already happened optimistically on the client; a failure here tells the
// client to revert it, so the handler makes exactly one attempt.
func (s *Api) rescheduleHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.RescheduleParams
	if err := json.Unmarshal(body, &m); err != nil {
		return common.UPDATE_RESCHEDULE, nil, err
	}
	if m.PublicationId == "" {
		return common.UPDATE_RESCHEDULE, nil, errors.New("publication_id is required")
	}

	err := s.deps.Rescheduler.Drop(context.Background(), publib.EventDrop{
		Id:       m.PublicationId,
		NewStart: m.NewStart,
	})
	if err != nil {
		return common.UPDATE_RESCHEDULE, nil, err
	}

	pub, err := s.manager.Get(context.Background(), m.PublicationId)
	if err != nil {
		return common.UPDATE_RESCHEDULE, nil, err
	}
	if s.deps.Scheduler != nil {
		s.deps.Scheduler.Remove(m.PublicationId)
		s.deps.Scheduler.Add(scheduler.PublishEvent{
			PublicationId: pub.Id,
			TriggerAt:     m.NewStart,
			CronExpr:      pub.CronExpr,
		})
	}
	return common.UPDATE_RESCHEDULE, &common.PublicationResponse{
		Publication: pub,
	}, nil
}

func (s *Api) cancelHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.InputPublicationId
	if err := json.Unmarshal(body, &m); err != nil {
		return common.UPDATE_CANCEL, nil, err
	}
	if m.PublicationId == "" {
		return common.UPDATE_CANCEL, nil, errors.New("publication_id is required")
	}

	pub, err := s.manager.Cancel(context.Background(), m.PublicationId)
	if err != nil {
		return common.UPDATE_CANCEL, nil, err
	}
	if s.deps.Scheduler != nil {
		s.deps.Scheduler.Remove(m.PublicationId)
	}
	return common.UPDATE_CANCEL, &common.PublicationResponse{
		Publication: pub,
	}, nil
}
