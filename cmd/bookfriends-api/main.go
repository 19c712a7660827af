package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MarcoPoloResearchLab/bookfriends/internal/config"
	"github.com/MarcoPoloResearchLab/bookfriends/internal/database"
	"github.com/MarcoPoloResearchLab/bookfriends/internal/drafts"
	"github.com/MarcoPoloResearchLab/bookfriends/internal/groups"
	"github.com/MarcoPoloResearchLab/bookfriends/internal/kvstore"
	"github.com/MarcoPoloResearchLab/bookfriends/internal/logging"
	"github.com/MarcoPoloResearchLab/bookfriends/internal/metrics"
	"github.com/MarcoPoloResearchLab/bookfriends/internal/records"
	"github.com/MarcoPoloResearchLab/bookfriends/internal/server"
	"github.com/MarcoPoloResearchLab/bookfriends/internal/sessions"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfgFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bookfriends-api",
		Short: "Book Friends journaling backend",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}

	setupFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupFlags(cmd *cobra.Command) {
	config.ApplyDefaults(viper.GetViper())
	defaults := config.NewViper()
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	cmd.PersistentFlags().String("http-address", defaults.GetString("http.address"), "HTTP listen address")
	cmd.PersistentFlags().String("store-driver", defaults.GetString("store.driver"), "Key-value store driver (sqlite, memory, redis)")
	cmd.PersistentFlags().String("database-path", defaults.GetString("database.path"), "SQLite database path")
	cmd.PersistentFlags().String("redis-address", defaults.GetString("redis.address"), "Redis server address")
	cmd.PersistentFlags().Int("redis-db", defaults.GetInt("redis.db"), "Redis logical database")
	cmd.PersistentFlags().String("redis-password", "", "Redis password (overrides env)")
	cmd.PersistentFlags().String("redis-key-prefix", defaults.GetString("redis.key_prefix"), "Prefix applied to every redis key")
	cmd.PersistentFlags().Int("code-max-attempts", defaults.GetInt("groups.code_max_attempts"), "Draws allowed when generating a group code")
	cmd.PersistentFlags().String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("log-format", defaults.GetString("log.format"), "Log format (json, console)")

	bindFlag(cmd, "http.address", "http-address")
	bindFlag(cmd, "store.driver", "store-driver")
	bindFlag(cmd, "database.path", "database-path")
	bindFlag(cmd, "redis.address", "redis-address")
	bindFlag(cmd, "redis.db", "redis-db")
	bindFlag(cmd, "redis.password", "redis-password")
	bindFlag(cmd, "redis.key_prefix", "redis-key-prefix")
	bindFlag(cmd, "groups.code_max_attempts", "code-max-attempts")
	bindFlag(cmd, "log.level", "log-level")
	bindFlag(cmd, "log.format", "log-format")
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	if err := viper.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if cfgFile != "" && errors.As(err, &configNotFound) {
			return err
		}
	}

	return nil
}

func runServer(ctx context.Context) error {
	appConfig, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(appConfig.LogLevel, appConfig.LogFormat)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	store, closeStore, err := openStore(ctx, appConfig, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	adapter, err := kvstore.NewAdapter(kvstore.AdapterConfig{
		Store:    store,
		Logger:   logger,
		Observer: collector,
	})
	if err != nil {
		return err
	}

	groupRegistry, err := groups.NewRegistry(groups.RegistryConfig{
		Adapter:     adapter,
		MaxAttempts: appConfig.CodeMaxAttempts,
		Observer:    collector,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	recordRepository, err := records.NewRepository(records.RepositoryConfig{
		Adapter: adapter,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	recordFactory, err := records.NewFactory(records.NewUUIDProvider(), time.Now)
	if err != nil {
		return err
	}

	sessionManager, err := sessions.NewManager(sessions.ManagerConfig{
		Adapter: adapter,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	draftCache, err := drafts.NewCache(adapter)
	if err != nil {
		return err
	}

	handler, err := server.NewHTTPHandler(server.Dependencies{
		Registry: groupRegistry,
		Records:  recordRepository,
		Factory:  recordFactory,
		Sessions: sessionManager,
		Drafts:   draftCache,
		Gatherer: registry,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    appConfig.HTTPAddress,
		Handler: handler,
	}

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("address", appConfig.HTTPAddress),
			zap.String("store_driver", appConfig.StoreDriver))
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-signalCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// openStore builds the configured backend and a func that releases it.
func openStore(ctx context.Context, appConfig config.AppConfig, logger *zap.Logger) (kvstore.Store, func(), error) {
	switch appConfig.StoreDriver {
	case config.StoreDriverMemory:
		logger.Warn("using in-memory store; data is lost on exit")
		return kvstore.NewMemoryStore(), func() {}, nil
	case config.StoreDriverRedis:
		store := kvstore.NewRedisStore(kvstore.RedisConfig{
			Address:   appConfig.RedisAddress,
			DB:        appConfig.RedisDB,
			Password:  appConfig.RedisPassword,
			KeyPrefix: appConfig.RedisKeyPrefix,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := store.Ping(pingCtx); err != nil {
			store.Close() //nolint:errcheck
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	default:
		db, err := database.OpenSQLite(appConfig.DatabasePath, logger)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, err
		}
		store, err := kvstore.NewSQLStore(db, time.Now)
		if err != nil {
			sqlDB.Close() //nolint:errcheck
			return nil, nil, err
		}
		return store, func() { _ = sqlDB.Close() }, nil
	}
}
