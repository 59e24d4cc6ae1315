package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pubdeck/pubdeck/common"
	"github.com/pubdeck/pubdeck/internal/server"
	"github.com/pubdeck/pubdeck/pkg/publib"
)

// publishNowHandler pushes a publication through the publish flow
// immediately, bypassing its schedule. Publishing runs in the background;
// status changes reach the client through pool broadcasts.
func (s *Api) publishNowHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.InputPublicationId
	if err := json.Unmarshal(body, &m); err != nil {
		return common.UPDATE_PUBLISH_NOW, nil, err
	}
	if m.PublicationId == "" {
		return common.UPDATE_PUBLISH_NOW, nil, errors.New("publication_id is required")
	}

	pub, err := s.manager.Get(context.Background(), m.PublicationId)
	if err != nil {
		return common.UPDATE_PUBLISH_NOW, nil, err
	}
	if !pub.CanPublishNow() {
		return common.UPDATE_PUBLISH_NOW, nil, fmt.Errorf("publication not publishable in status %s", pub.Status)
	}
	if s.deps.Publish == nil {
		return common.UPDATE_PUBLISH_NOW, nil, errors.New("publishing unavailable")
	}

	if s.deps.Scheduler != nil {
		s.deps.Scheduler.Remove(pub.Id)
	}
	pool.Watch(pub.Id, sconn.Conn)
	publib.SafeGo(s.log, nil, "publish "+pub.Id, nil, func() {
		if err := s.deps.Publish(context.Background(), pub.Id); err != nil {
			s.log.Printf("publish %s: %v", pub.Id, err)
		}
	})

	return common.UPDATE_PUBLISH_NOW, &common.PublicationResponse{
		Publication: pub,
	}, nil
}
