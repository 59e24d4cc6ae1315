package api

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/pubdeck/pubdeck/common"
	"github.com/pubdeck/pubdeck/internal/server"
)

func (s *Api) updateHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.UpdateParams
	if err := json.Unmarshal(body, &m); err != nil {
		return common.UPDATE_UPDATE, nil, err
	}
	if m.PublicationId == "" {
		return common.UPDATE_UPDATE, nil, errors.New("publication_id is required")
	}

	res, err := s.manager.UpdateContent(context.Background(), m.PublicationId, m.Content)
	if err != nil {
		return common.UPDATE_UPDATE, nil, err
	}
	if !res.OK {
		return common.UPDATE_UPDATE, nil, errors.New(strings.Join(res.Errors, "; "))
	}

	pub, err := s.manager.Get(context.Background(), m.PublicationId)
	if err != nil {
		return common.UPDATE_UPDATE, nil, err
	}
	return common.UPDATE_UPDATE, &common.PublicationResponse{
		Publication: pub,
	}, nil
}
