package api

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/pubdeck/pubdeck/common"
	"github.com/pubdeck/pubdeck/internal/server"
)

func (s *Api) deleteHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.InputPublicationId
	if err := json.Unmarshal(body, &m); err != nil {
		return common.UPDATE_DELETE, nil, err
	}
	if m.PublicationId == "" {
		return common.UPDATE_DELETE, nil, errors.New("publication_id is required")
	}

	if err := s.manager.Delete(context.Background(), m.PublicationId); err != nil {
		return common.UPDATE_DELETE, nil, err
	}
	if s.deps.Scheduler != nil {
		s.deps.Scheduler.Remove(m.PublicationId)
	}
	pool.Drop(m.PublicationId)
	return common.UPDATE_DELETE, nil, nil
}
