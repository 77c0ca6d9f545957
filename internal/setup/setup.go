package setup

import (
	"context"
	"log"
	"net/http"

	"github.com/robalyx/steamfriends/internal/presence"
	"github.com/robalyx/steamfriends/internal/redis"
	"github.com/robalyx/steamfriends/internal/setup/config"
	"github.com/robalyx/steamfriends/internal/setup/telemetry"
	"github.com/robalyx/steamfriends/internal/steam/cache"
	"github.com/robalyx/steamfriends/internal/steam/checker"
	"github.com/robalyx/steamfriends/internal/steam/fetcher"
	"github.com/robalyx/steamfriends/internal/steam/session"
	"github.com/robalyx/steamfriends/internal/storage"
	"go.uber.org/zap"
)

// App bundles all core dependencies and services needed by the application.
// Each field represents a major subsystem that needs initialization and cleanup.
type App struct {
	Config       *config.Config         // Application configuration
	Logger       *zap.Logger            // Main application logger
	LogManager   *telemetry.Manager     // Log management system
	RedisManager *redis.Manager         // Redis connection manager, nil when Redis is not configured
	Backend      storage.Backend        // Record store backend
	Store        *cache.RecordStore     // Friend record codec over Backend
	Fetcher      *fetcher.FriendFetcher // Steam Web API client
	Cache        *cache.Cache           // Friend record cache, started by the caller
	Roster       presence.Roster        // Online users
	Checker      *checker.FriendChecker // Friendship queries
	Tracker      *session.Tracker       // Connect and disconnect events
	pprofServer  *pprofServer           // Debug HTTP server for pprof
}

// InitializeApp bootstraps all application dependencies in the correct order,
// ensuring each component has its required dependencies available.
func InitializeApp(ctx context.Context, logDir string) (*App, error) {
	cfg, _, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	// Logging system is initialized next to capture setup issues
	logManager := telemetry.NewManager(logDir, &cfg.Debug)

	logger, err := logManager.GetLogger()
	if err != nil {
		return nil, err
	}

	// Redis is optional unless the redis storage backend is selected
	var redisManager *redis.Manager
	if cfg.Redis.Host != "" {
		redisManager = redis.NewManager(&cfg.Redis, logger)
	}

	backend, err := newBackend(ctx, cfg, redisManager, logger)
	if err != nil {
		closeRedis(redisManager)
		return nil, err
	}

	roster, err := newRoster(redisManager, logger)
	if err != nil {
		_ = backend.Close()
		closeRedis(redisManager)
		return nil, err
	}

	store := cache.NewRecordStore(backend, logger)
	friendFetcher := fetcher.NewFriendFetcher(&cfg.Steam, &http.Client{}, logger)
	friendCache := cache.New(store, friendFetcher, cfg.Steam.RefreshIntervalDuration(), logger)

	var pprofSrv *pprofServer
	if cfg.Debug.EnablePprof {
		srv, err := startPprofServer(cfg.Debug.PprofPort, logger)
		if err != nil {
			logger.Error("Failed to start pprof server", zap.Error(err))
		} else {
			pprofSrv = srv

			logger.Warn("pprof debugging endpoint enabled - this should not be used in production!")
		}
	}

	logger.Info("Application initialized",
		zap.String("storageBackend", cfg.Storage.Backend),
		zap.Bool("redis", redisManager != nil),
		zap.Bool("steamEnabled", cfg.Steam.Enabled()))

	return &App{
		Config:       cfg,
		Logger:       logger,
		LogManager:   logManager,
		RedisManager: redisManager,
		Backend:      backend,
		Store:        store,
		Fetcher:      friendFetcher,
		Cache:        friendCache,
		Roster:       roster,
		Checker:      checker.NewFriendChecker(friendCache, roster, logger),
		Tracker:      session.NewTracker(friendCache, roster, logger),
		pprofServer:  pprofSrv,
	}, nil
}

// Cleanup ensures graceful shutdown of all components in reverse initialization order.
// Logs but does not fail on cleanup errors to ensure all components get cleanup attempts.
func (s *App) Cleanup(ctx context.Context) {
	if s.pprofServer != nil {
		if err := s.pprofServer.srv.Shutdown(ctx); err != nil {
			s.Logger.Error("Failed to shutdown pprof server", zap.Error(err))
		}

		_ = s.pprofServer.listener.Close()
	}

	if err := s.Backend.Close(); err != nil {
		s.Logger.Error("Failed to close storage backend", zap.Error(err))
	}

	// Sync buffered logs before shutdown
	if err := s.Logger.Sync(); err != nil {
		log.Printf("Failed to sync logger: %v", err)
	}

	s.LogManager.Close()

	// Close Redis connections last as other components might need it during cleanup
	closeRedis(s.RedisManager)
}

func closeRedis(m *redis.Manager) {
	if m != nil {
		m.Close()
	}
}
