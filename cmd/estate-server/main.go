package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/estate/estate/internal/config"
	"github.com/estate/estate/internal/logger"
	"github.com/estate/estate/internal/people"
	"github.com/estate/estate/internal/server"
)

func main() {
	config.Load()

	log := initLogger()
	log.Info("Configuration loaded", zap.String("store", config.Storage().Type))

	store, db, err := newStore(log)
	if err != nil {
		log.Fatal("Failed to initialize store", zap.Error(err))
	}

	health := server.NewHealthManager(log)
	health.AddChecker(server.NewStoreHealthChecker(store))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := health.StartupHealthCheck(ctx); err != nil {
		cancel()
		log.Fatal("Startup health check failed", zap.Error(err))
	}
	cancel()

	storage := config.Storage()
	manager := people.NewService(store, log)
	srv := server.New(manager, newRecordingArchive(manager, log), health, server.StorageInfo{
		Environment: storage.Environment,
		Storage:     storage.Label,
		Mount:       storage.Root,
	}, log)

	addr := fmt.Sprintf("%s:%d", config.Http().Host, config.Http().Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv.Router(),
	}

	done := setupSignalHandler(httpServer, db, log)

	log.Info("Starting estate server", zap.String("address", addr))

	err = httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("Failed to start server", zap.Error(err))
	}

	<-done
	log.Info("Server shutdown complete")
}

func initLogger() *zap.Logger {
	logConfig := config.Logger()

	log, err := logger.New(logger.Options{
		Level:  logConfig.Level,
		Format: logConfig.Format,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	return log
}

// newStore opens the configured person store. The returned db is nil for the
// filesystem store.
func newStore(log *zap.Logger) (people.Store, *bun.DB, error) {
	switch storeType := config.Storage().Type; storeType {
	case "filesystem":
		root := config.Storage().Root
		log.Info("Using filesystem store", zap.String("root", root))
		store, err := people.NewFileStore(root, log)
		if err != nil {
			return nil, nil, err
		}
		sweepTempFiles(root, log)
		return store, nil, nil

	case "postgres":
		pgConfig := config.Postgres()
		log.Info("Database configuration",
			zap.String("host", pgConfig.Host),
			zap.Int("port", pgConfig.Port),
			zap.String("database", pgConfig.Database),
			zap.String("user", pgConfig.User))

		db, err := people.OpenPostgres(pgConfig.DSN(), pgConfig.MaxOpenConnections)
		if err != nil {
			return nil, nil, err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := people.CreateTables(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return people.NewPostgresStore(db), db, nil

	default:
		return nil, nil, fmt.Errorf("unknown store type %q", storeType)
	}
}

// newRecordingArchive keeps recordings on the storage root whatever the
// person store is. Import is disabled when the root cannot be bootstrapped.
func newRecordingArchive(manager people.Manager, log *zap.Logger) *people.RecordingArchive {
	root := config.Storage().Root
	if err := people.BootstrapArchive(root); err != nil {
		log.Warn("Recording import disabled", zap.String("root", root), zap.Error(err))
		return nil
	}
	return people.NewRecordingArchive(root, manager, log)
}

// sweepTempFiles removes files left by writes interrupted by a crash or power loss
func sweepTempFiles(root string, log *zap.Logger) {
	count, err := people.CleanupTempFiles(root, people.TempFilePattern, log)
	if err != nil {
		log.Warn("Temp file cleanup failed", zap.Error(err))
		return
	}
	if count > 0 {
		log.Info("Removed leftover temp files", zap.Int("count", count))
	}
}

func setupSignalHandler(server *http.Server, db *bun.DB, log *zap.Logger) chan struct{} {
	done := make(chan struct{}, 1)

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-signalCh

		log.Info("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Error("Error during server shutdown", zap.Error(err))
		}

		if db != nil {
			if err := db.Close(); err != nil {
				log.Error("Error closing database", zap.Error(err))
			}
		}

		done <- struct{}{}
	}()

	return done
}
