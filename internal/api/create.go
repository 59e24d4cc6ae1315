package api

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/pubdeck/pubdeck/common"
	"github.com/pubdeck/pubdeck/internal/scheduler"
	"github.com/pubdeck/pubdeck/internal/server"
	"github.com/pubdeck/pubdeck/pkg/publib"
)

func newPublication(m *common.CreateParams) *publib.Publication {
	return &publib.Publication{
		UserId:      m.UserId,
		Content:     m.Content,
		Platforms:   m.Platforms,
		Kinds:       m.Kinds,
		ScheduledAt: m.ScheduledAt,
		CronExpr:    m.CronExpr,
	}
}

func (s *Api) createHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.CreateParams
	if err := json.Unmarshal(body, &m); err != nil {
		return common.UPDATE_CREATE, nil, err
	}
	if m.UserId == "" {
		return common.UPDATE_CREATE, nil, errors.New("user_id is required")
	}

	pub := newPublication(&m)
	res, err := s.manager.Create(context.Background(), pub)
	if err != nil {
		return common.UPDATE_CREATE, nil, err
	}
	if !res.OK {
		return common.UPDATE_CREATE, nil, errors.New(strings.Join(res.Errors, "; "))
	}

	pool.Watch(pub.Id, sconn.Conn)
	if !pub.ScheduledAt.IsZero() && s.deps.Scheduler != nil {
		s.deps.Scheduler.Add(scheduler.PublishEvent{
			PublicationId: pub.Id,
			TriggerAt:     pub.ScheduledAt,
			CronExpr:      pub.CronExpr,
		})
	}

	return common.UPDATE_CREATE, &common.PublicationResponse{
		Publication: pub,
	}, nil
}
