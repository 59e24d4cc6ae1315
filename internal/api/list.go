package api

import (
	"context"
	"encoding/json"

	"github.com/pubdeck/pubdeck/common"
	"github.com/pubdeck/pubdeck/internal/server"
	"github.com/pubdeck/pubdeck/pkg/publib"
)

func (s *Api) listHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.ListParams
	if err := json.Unmarshal(body, &m); err != nil {
		return common.UPDATE_LIST, nil, err
	}

	pubs, err := s.manager.List(context.Background(), publib.ListQuery{
		UserId:   m.UserId,
		From:     m.From,
		To:       m.To,
		Statuses: m.Statuses,
		Platform: m.Platform,
	})
	if err != nil {
		return common.UPDATE_LIST, nil, err
	}
	return common.UPDATE_LIST, &common.ListResponse{
		Publications: pubs,
	}, nil
}

// eventsHandler returns the calendar projection of publications in the
// requested range, sorted for display.
func (s *Api) eventsHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.EventsParams
	if err := json.Unmarshal(body, &m); err != nil {
		return common.UPDATE_EVENTS, nil, err
	}

	events, err := s.deps.Events.Events(context.Background(), m.From, m.To, publib.EventFilters{
		Statuses: m.Statuses,
		Platform: m.Platform,
		Search:   m.Search,
	})
	if err != nil {
		return common.UPDATE_EVENTS, nil, err
	}
	return common.UPDATE_EVENTS, &common.EventsResponse{
		Events: events,
	}, nil
}
