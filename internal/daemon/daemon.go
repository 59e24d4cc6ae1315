// Package daemon assembles and runs the pubdeckd components: store,
// manager, tracker, scheduler, platform router, token store, and the
// socket/web servers.
package daemon

import (
	"context"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/pubdeck/pubdeck/common"
	"github.com/pubdeck/pubdeck/internal/api"
	"github.com/pubdeck/pubdeck/internal/config"
	"github.com/pubdeck/pubdeck/internal/scheduler"
	"github.com/pubdeck/pubdeck/internal/server"
	"github.com/pubdeck/pubdeck/pkg/credman"
	"github.com/pubdeck/pubdeck/pkg/credman/keyring"
	"github.com/pubdeck/pubdeck/pkg/loading"
	"github.com/pubdeck/pubdeck/pkg/logger"
	"github.com/pubdeck/pubdeck/pkg/platform"
	"github.com/pubdeck/pubdeck/pkg/publib"
)

// Components holds all initialized daemon components. This allows for
// unified initialization and cleanup across entry points.
type Components struct {
	Manager   *publib.Manager
	Tracker   *loading.Tracker
	Scheduler *scheduler.Scheduler
	Tokens    *credman.TokenManager
	Router    *platform.PlatformRouter
	Api       *api.Api
	Server    *server.Server
	Notifier  *server.RPCNotifier
	Trigger   *publib.RefetchTrigger

	logger logger.Logger
	stdLog *log.Logger
	cancel context.CancelFunc
}

// tokenSource bridges the string-keyed token manager to the typed
// publishing port.
type tokenSource struct {
	tm *credman.TokenManager
}

func (ts *tokenSource) AccessToken(p publib.Platform, userId string) (string, error) {
	return ts.tm.AccessToken(string(p), userId)
}

// Init initializes all daemon components from the given configuration.
// On error, any partially initialized components are cleaned up before
// returning.
func Init(ctx context.Context, cfg config.Config, lg logger.Logger, version string) (*Components, error) {
	stdLog := log.Default()
	if lg == nil {
		lg = logger.NewStandardLogger(stdLog)
	}

	ctx, cancel := context.WithCancel(ctx)
	c := &Components{logger: lg, stdLog: stdLog, cancel: cancel}

	// Startup readiness tracking. The socket server comes up immediately;
	// clients watch these dependencies to know when the daemon is usable.
	strategy := loading.Strategy(cfg.Loading.Strategy)
	tracker := loading.NewTracker(strategy, stdLog)
	tracker.Register(loading.Dependency{
		Id:         "database",
		Name:       "Publications database",
		Priority:   loading.PriorityCritical,
		Phase:      loading.PhaseInitialization,
		IsLoading:  true,
		IsRequired: true,
	})
	tracker.Register(loading.Dependency{
		Id:         "credentials",
		Name:       "Account credentials",
		Priority:   loading.PriorityHigh,
		Phase:      loading.PhaseAuthentication,
		IsLoading:  true,
		IsRequired: true,
		Timeout:    30 * time.Second,
	})
	tracker.Register(loading.Dependency{
		Id:         "schedules",
		Name:       "Publish schedules",
		Priority:   loading.PriorityHigh,
		Phase:      loading.PhaseDataLoading,
		IsLoading:  true,
		IsRequired: true,
	})
	tracker.Register(loading.Dependency{
		Id:        "platform-gateway",
		Name:      "Platform gateway",
		Priority:  loading.PriorityMedium,
		Phase:     loading.PhaseInitialization,
		IsLoading: false,
	})
	c.Tracker = tracker

	// Push surface first so lifecycle handlers have somewhere to publish.
	notifier := server.NewRPCNotifier(stdLog)
	c.Notifier = notifier
	trigger := publib.NewRefetchTrigger(stdLog)
	trigger.Subscribe(func(rev uint64) {
		notifier.NotifyRefetch(rev)
	})
	c.Trigger = trigger

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
		lg.Error("Data directory creation failed: %v", err)
		cancel()
		return nil, err
	}

	m, err := publib.InitManager(cfg.Database.Path, &publib.ManagerOpts{
		Logger: stdLog,
		Handlers: &publib.Handlers{
			StatusChangeHandler: func(id string, from, to publib.Status) {
				notifier.NotifyStatus(id, from, to, "")
			},
			ErrorHandler: func(id string, err error) {
				notifier.NotifyStatus(id, "", publib.StatusFailed, err.Error())
			},
			ScheduleMissedHandler: func(id string) {
				lg.Warning("Missed schedule for publication %s", id)
			},
		},
	})
	if err != nil {
		lg.Error("Manager initialization failed: %v", err)
		cancel()
		return nil, err
	}
	c.Manager = m
	tracker.Update("database", false, nil)

	// Token store: key from the OS keyring with a file fallback.
	key, err := keyring.NewKeyring().LoadOrCreate(cfg.Credentials.KeyFallback)
	if err != nil {
		lg.Error("Keyring initialization failed: %v", err)
		m.Close()
		cancel()
		return nil, err
	}
	tokens, err := credman.NewTokenManager(cfg.Credentials.TokenFile, key)
	if err != nil {
		lg.Error("Token manager initialization failed: %v", err)
		m.Close()
		cancel()
		return nil, err
	}
	c.Tokens = tokens
	tracker.Update("credentials", false, nil)

	client := &http.Client{Timeout: 30 * time.Second}
	router := platform.NewPlatformRouter(client, cfg.Platform.BaseURL)
	c.Router = router

	publish := func(ctx context.Context, id string) error {
		_, err := m.Publish(ctx, id, router, &tokenSource{tm: tokens})
		return err
	}

	// Publish scheduler with restart recovery: overdue scheduled
	// publications fall back to draft, future ones are re-armed.
	// Publishing runs off the scheduler goroutine: a slow or panicking
	// platform adapter must not stall or kill the timer loop.
	sched := scheduler.New(ctx, func(id string) {
		publib.SafeGo(stdLog, nil, "scheduled publish "+id, nil, func() {
			if err := publish(context.Background(), id); err != nil {
				lg.Error("Scheduled publish %s failed: %v", id, err)
			}
		})
	})
	c.Scheduler = sched

	pubs, err := m.List(ctx, publib.ListQuery{
		Statuses: []publib.Status{publib.StatusScheduled},
	})
	if err != nil {
		lg.Error("Schedule scan failed: %v", err)
		tracker.Update("schedules", false, err)
	} else {
		missed, future := scheduler.LoadSchedules(pubs, time.Now())
		for _, p := range missed {
			if err := m.MarkMissed(ctx, p.Id); err != nil {
				lg.Warning("Could not mark %s missed: %v", p.Id, err)
			}
		}
		for _, ev := range future {
			sched.Add(ev)
		}
		tracker.Update("schedules", false, nil)
	}

	// Asset pipeline. The poller persists finished assets locally.
	assetClient := platform.NewAssetClient(client, cfg.Assets.BaseURL, cfg.RPC.Secret)
	pollCfg := publib.DefaultPollConfig()
	if cfg.Assets.PollAttempts > 0 {
		pollCfg.MaxAttempts = cfg.Assets.PollAttempts
	}
	if cfg.Assets.PollDelaySec > 0 {
		pollCfg.Delay = time.Duration(cfg.Assets.PollDelaySec) * time.Second
	}
	poller := publib.NewAssetPoller(assetClient, nil, &pollCfg, stdLog)
	poller.SetStore(m.Store())
	poller.SetReadyHandler(func(assetId, url string) {
		lg.Info("Asset %s ready at %s", assetId, url)
	})

	events := publib.NewEventSource(m, time.Now)
	resched := publib.NewRescheduler(m, trigger, stdLog)

	rpcServ := server.NewRPCServer(&server.RPCConfig{
		Secret:    cfg.RPC.Secret,
		ListenAll: cfg.RPC.ListenAll,
		Version:   version,
	}, m, tracker, events, resched, publish)
	web := server.NewWebServer(stdLog, rpcServ, notifier, cfg.Server.WebPort)

	s, err := api.NewApi(stdLog, m, &api.Deps{
		Tracker:     tracker,
		Scheduler:   sched,
		Poller:      poller,
		Tokens:      tokens,
		Events:      events,
		Rescheduler: resched,
		Publish:     publish,
		Version:     version,
	})
	if err != nil {
		lg.Error("API initialization failed: %v", err)
		m.Close()
		cancel()
		return nil, err
	}
	c.Api = s

	serv := server.NewServer(stdLog, web, cfg.Server.Port)
	s.RegisterHandlers(serv)
	c.Server = serv

	// Socket subscribers get readiness pushes alongside the polled
	// system.ready endpoint.
	tracker.Subscribe(func(st loading.State) {
		if err := serv.Pool().BroadcastAll(server.MakeResult(common.UPDATE_LOADING, st)); err != nil {
			lg.Warning("Loading broadcast failed: %v", err)
		}
	})

	return c, nil
}

// Run initializes the daemon and blocks serving requests until the context
// is cancelled.
func Run(ctx context.Context, cfg config.Config, lg logger.Logger, version string) error {
	c, err := Init(ctx, cfg, lg, version)
	if err != nil {
		return err
	}
	defer c.Close()
	return c.Server.Start(ctx)
}

// Close releases all daemon component resources in reverse order of
// initialization.
func (c *Components) Close() {
	if c.stdLog != nil {
		c.stdLog.Println("Shutting down daemon...")
	}

	if c.cancel != nil {
		c.cancel()
	}
	if c.Tracker != nil {
		c.Tracker.Close()
	}
	if c.Api != nil {
		_ = c.Api.Close()
	}
	if c.logger != nil {
		_ = c.logger.Close()
	}

	if c.stdLog != nil {
		c.stdLog.Println("Daemon stopped")
	}
}
