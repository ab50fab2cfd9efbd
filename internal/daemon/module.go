package daemon

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/mingle-app/mingle/internal/api"
	"github.com/mingle-app/mingle/internal/bus"
	"github.com/mingle-app/mingle/internal/chat"
	"github.com/mingle-app/mingle/internal/directory"
	"github.com/mingle-app/mingle/internal/lock"
	"github.com/mingle-app/mingle/internal/logging"
	"github.com/mingle-app/mingle/internal/paths"
	"github.com/mingle-app/mingle/internal/store"
)

// Params holds the resolved daemon configuration passed to the fx module.
type Params struct {
	DataDir    string
	ListenAddr string
}

// Module returns the fx module for the daemon, composing all providers and
// lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("daemon",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideBus,
			provideLock,
			provideStore,
			provideDirectory,
			provideRegistry,
			provideStream,
			provideAggregator,
			provideHandler,
			provideServer,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	return logging.New(paths.LogPath(p.DataDir))
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	if err := paths.EnsureDir(p.DataDir); err != nil {
		return nil, err
	}
	logger.Info("acquiring data dir lock", zap.String("data_dir", p.DataDir))
	l, err := lock.Acquire(p.DataDir)
	if err != nil {
		return nil, err
	}
	logger.Info("data dir lock acquired")
	return l, nil
}

func provideStore(p Params, _ *lock.Lock, logger *zap.Logger) (*store.DB, error) {
	dbPath := paths.DBPath(p.DataDir)
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Info("migrations up to date", zap.Uint("version", result.Version))
	}
	logger.Info("store initialized", zap.String("path", dbPath))
	return db, nil
}

func provideDirectory(db *store.DB) directory.Client {
	return directory.NewStoreClient(db)
}

func provideRegistry(db *store.DB, b *bus.Bus, logger *zap.Logger) *chat.Registry {
	return chat.NewRegistry(db, b, logger)
}

func provideStream(db *store.DB, b *bus.Bus, logger *zap.Logger) *chat.Stream {
	return chat.NewStream(db, b, logger)
}

func provideAggregator(db *store.DB, b *bus.Bus, dir directory.Client, logger *zap.Logger) *chat.Aggregator {
	return chat.NewAggregator(db, b, dir, logger)
}

func provideHandler(registry *chat.Registry, stream *chat.Stream, aggregator *chat.Aggregator, dir directory.Client, logger *zap.Logger) *api.Handler {
	return api.NewHandler(registry, stream, aggregator, dir, logger)
}

func provideServer(p Params, h *api.Handler, logger *zap.Logger) (*api.Server, error) {
	return api.NewServer(p.ListenAddr, h, logger)
}

func registerLifecycle(lc fx.Lifecycle, srv *api.Server, lk *lock.Lock, db *store.DB, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				if err := srv.Start(); err != nil {
					logger.Error("http server error", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			srv.Stop(ctx)
			if err := db.Close(); err != nil {
				logger.Warn("error closing store", zap.Error(err))
			}
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("daemon stopped")
			return nil
		},
	})
}
