package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/train-scheduler/internal/application"
	"github.com/example/train-scheduler/internal/config"
	httptransport "github.com/example/train-scheduler/internal/http"
	"github.com/example/train-scheduler/internal/logging"
	"github.com/example/train-scheduler/internal/persistence"
	"github.com/example/train-scheduler/internal/persistence/memory"
	"github.com/example/train-scheduler/internal/persistence/postgres"
	"github.com/example/train-scheduler/internal/persistence/sqlite"
	"github.com/example/train-scheduler/internal/timeofday"
)

func main() {
	bootstrap := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		bootstrap.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		bootstrap.Error("failed to configure logger", "error", err)
		os.Exit(1)
	}

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open storage", "store", cfg.Store, "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	station, err := store.GetStation(ctx, cfg.DefaultStationID)
	if err != nil {
		logger.Error("default station is not provisioned", "station_id", cfg.DefaultStationID, "error", err)
		os.Exit(1)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           newHandler(store, station.ID, time.Now, logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("train scheduler API listening",
		"addr", server.Addr,
		"store", cfg.Store,
		"station", station.Name,
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg config.Config) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return logging.New(os.Stdout, level, cfg.LogFormat)
}

// store is the union of repositories every backend provides.
type store interface {
	persistence.TrainRepository
	persistence.StationRepository
	persistence.ScheduleRepository
	Close() error
}

func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (store, error) {
	switch cfg.Store {
	case config.StoreMemory:
		logger.Warn("using in-memory storage; schedules are lost on restart")
		return memory.Open(memory.DefaultSeed()), nil
	case config.StorePostgres:
		if err := postgres.RunMigrations(cfg.PostgresDSN, logger); err != nil {
			return nil, fmt.Errorf("apply postgres migrations: %w", err)
		}
		storage, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return storage, nil
	default:
		storage, err := sqlite.Open(cfg.SQLiteDSN)
		if err != nil {
			return nil, err
		}
		if err := storage.Migrate(ctx); err != nil {
			_ = storage.Close()
			return nil, fmt.Errorf("apply sqlite migrations: %w", err)
		}
		return storage, nil
	}
}

func newHandler(repos store, stationID int64, now func() time.Time, logger *slog.Logger) http.Handler {
	trains := newTrainDirectoryAdapter(repos)
	schedules := newScheduleStoreAdapter(repos)

	scheduleService := application.NewScheduleServiceWithLogger(trains, schedules, stationID, now, logger)
	trainService := application.NewTrainServiceWithLogger(trains, logger)

	return httptransport.NewRouter(httptransport.RouterConfig{
		Schedules: httptransport.NewScheduleHandler(scheduleService, logger),
		Trains:    httptransport.NewTrainHandler(trainService, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
		},
	})
}

type trainDirectoryAdapter struct {
	repo persistence.TrainRepository
}

func newTrainDirectoryAdapter(repo persistence.TrainRepository) *trainDirectoryAdapter {
	return &trainDirectoryAdapter{repo: repo}
}

func (a *trainDirectoryAdapter) ResolveTrain(ctx context.Context, name string) (application.Train, error) {
	stored, err := a.repo.GetTrainByName(ctx, name)
	if err != nil {
		return application.Train{}, err
	}
	return toApplicationTrain(stored), nil
}

func (a *trainDirectoryAdapter) ListTrains(ctx context.Context) ([]application.Train, error) {
	models, err := a.repo.ListTrains(ctx)
	if err != nil {
		return nil, err
	}
	trains := make([]application.Train, 0, len(models))
	for _, model := range models {
		trains = append(trains, toApplicationTrain(model))
	}
	return trains, nil
}

type scheduleStoreAdapter struct {
	repo persistence.ScheduleRepository
}

func newScheduleStoreAdapter(repo persistence.ScheduleRepository) *scheduleStoreAdapter {
	return &scheduleStoreAdapter{repo: repo}
}

func (a *scheduleStoreAdapter) InsertSchedules(ctx context.Context, trainID, stationID int64, times []timeofday.TimeOfDay) error {
	return a.repo.InsertSchedules(ctx, trainID, stationID, times)
}

func (a *scheduleStoreAdapter) FindByTrainName(ctx context.Context, name string) ([]application.ScheduleEntry, error) {
	models, err := a.repo.ListSchedulesByTrainName(ctx, name)
	if err != nil {
		return nil, err
	}
	return toApplicationEntries(models), nil
}

func (a *scheduleStoreAdapter) FindCollisions(ctx context.Context) ([]application.ScheduleEntry, error) {
	models, err := a.repo.ListCollisions(ctx)
	if err != nil {
		return nil, err
	}
	return toApplicationEntries(models), nil
}

func toApplicationTrain(model persistence.Train) application.Train {
	return application.Train{ID: model.ID, Name: model.Name}
}

func toApplicationEntries(models []persistence.Schedule) []application.ScheduleEntry {
	entries := make([]application.ScheduleEntry, 0, len(models))
	for _, model := range models {
		entries = append(entries, application.ScheduleEntry{
			Train:       toApplicationTrain(model.Train),
			Station:     application.Station{ID: model.Station.ID, Name: model.Station.Name},
			ArrivalTime: model.ArrivalTime,
		})
	}
	return entries
}
