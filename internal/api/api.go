package api

import (
	"log"

	"github.com/pubdeck/pubdeck/common"
	"github.com/pubdeck/pubdeck/internal/scheduler"
	"github.com/pubdeck/pubdeck/internal/server"
	"github.com/pubdeck/pubdeck/pkg/credman"
	"github.com/pubdeck/pubdeck/pkg/loading"
	"github.com/pubdeck/pubdeck/pkg/publib"
)

// Deps bundles the daemon services the API handlers operate on.
type Deps struct {
	Tracker     *loading.Tracker
	Scheduler   *scheduler.Scheduler
	Poller      *publib.AssetPoller
	Tokens      *credman.TokenManager
	Events      *publib.EventSource
	Rescheduler *publib.Rescheduler
	Publish     server.PublishFunc
	Version     string
}

type Api struct {
	log     *log.Logger
	manager *publib.Manager
	deps    *Deps
}

func NewApi(l *log.Logger, m *publib.Manager, deps *Deps) (*Api, error) {
	return &Api{
		log:     l,
		manager: m,
		deps:    deps,
	}, nil
}

func (s *Api) RegisterHandlers(server *server.Server) {
	// publication API methods
	server.RegisterHandler(common.UPDATE_CREATE, s.createHandler)
	server.RegisterHandler(common.UPDATE_UPDATE, s.updateHandler)
	server.RegisterHandler(common.UPDATE_SCHEDULE, s.scheduleHandler)
	server.RegisterHandler(common.UPDATE_RESCHEDULE, s.rescheduleHandler)
	server.RegisterHandler(common.UPDATE_CANCEL, s.cancelHandler)
	server.RegisterHandler(common.UPDATE_PUBLISH_NOW, s.publishNowHandler)
	server.RegisterHandler(common.UPDATE_DELETE, s.deleteHandler)
	server.RegisterHandler(common.UPDATE_LIST, s.listHandler)
	server.RegisterHandler(common.UPDATE_EVENTS, s.eventsHandler)

	// asset API methods
	server.RegisterHandler(common.UPDATE_ASSET_UPLOAD, s.assetUploadHandler)
	server.RegisterHandler(common.UPDATE_ASSET_GET, s.assetGetHandler)

	// account API methods
	server.RegisterHandler(common.UPDATE_ACCOUNT_CONNECT, s.accountConnectHandler)
	server.RegisterHandler(common.UPDATE_ACCOUNT_LIST, s.accountListHandler)

	// system API methods
	server.RegisterHandler(common.UPDATE_VERSION, s.versionHandler)
	server.RegisterHandler(common.UPDATE_READY, s.readyHandler)
}

func (s *Api) Close() error {
	return s.manager.Close()
}
