package api

import (
	"encoding/json"

	"github.com/pubdeck/pubdeck/common"
	"github.com/pubdeck/pubdeck/internal/server"
)

// versionHandler returns the daemon's version information.
func (s *Api) versionHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	return common.UPDATE_VERSION, &common.VersionResponse{
		Version: s.deps.Version,
	}, nil
}

// readyHandler returns the current startup loading snapshot so clients can
// render readiness progress.
func (s *Api) readyHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	return common.UPDATE_READY, &common.ReadyResponse{
		State: s.deps.Tracker.Snapshot(),
	}, nil
}
