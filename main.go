package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	api "taskboard/cmd/api"
	activityRepo "taskboard/internal/activity/repository"
	activityUsecase "taskboard/internal/activity/usecase"
	authRepo "taskboard/internal/auth/repository"
	authUsecase "taskboard/internal/auth/usecase"
	"taskboard/internal/notification"
	searchRepo "taskboard/internal/search/repository"
	searchUsecase "taskboard/internal/search/usecase"
	taskRepo "taskboard/internal/task/repository"
	"taskboard/internal/task/scheduler"
	taskUsecase "taskboard/internal/task/usecase"
	"taskboard/pkg/config"
	"taskboard/pkg/database"
	"taskboard/pkg/fcm"
	"taskboard/pkg/logging"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// repositories groups one implementation of every store interface.
type repositories struct {
	users      authRepo.UserRepository
	devices    authRepo.DeviceTokenRepository
	tasks      taskRepo.TaskRepository
	activities activityRepo.ActivityRepository
	search     searchRepo.SearchRepository
	close      func()
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logging.Logger.Fatalf("invalid configuration: %v", err)
	}

	logging.Init(logging.Options{SystemName: "api", Level: cfg.LogLevel, File: cfg.LogFile})
	log := logging.For("main")
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize %s store: %v", cfg.StoreDriver, err)
	}
	defer repos.close()
	log.Infof("using %s store", cfg.StoreDriver)

	// Activity events (Pub/Sub), optional
	var publisher activityUsecase.Publisher
	if cfg.ActivityEventsEnabled() {
		notifService, err := notification.NewService(ctx, cfg.GoogleProjectID, cfg.ActivityTopic, cfg.GoogleCredentials)
		if err != nil {
			log.Warnf("activity events disabled: %v", err)
		} else {
			defer notifService.Close()
			publisher = notifService
			log.Infof("publishing activities to topic %s", cfg.ActivityTopic)
		}
	}

	// Initialize use cases (dependency injection)
	recorder := activityUsecase.NewRecorder(repos.activities, publisher)
	indexer := searchUsecase.NewIndexer(repos.search)
	taskUc := taskUsecase.NewTaskUsecase(repos.tasks, indexer, recorder)
	authUc := authUsecase.NewAuthUsecase(repos.users, repos.devices, taskUc, cfg)

	// Due-date reminders over FCM, optional
	var sender scheduler.Sender
	if cfg.RemindersEnabled() {
		fcmClient, err := fcm.NewClient(ctx, cfg.FirebaseCredentials)
		if err != nil {
			log.Warnf("push reminders disabled: %v", err)
		} else {
			sender = fcmClient
		}
	}
	reminders := scheduler.NewTaskReminderScheduler(repos.tasks, repos.devices, sender, cfg.ReminderInterval, cfg.ReminderLead)
	reminders.Start(ctx)

	go purgeExpiredRefreshTokens(ctx, repos.users)

	handler := api.NewHandler(authUc, taskUc, cfg)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- handler.Start(":" + cfg.Port)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			log.Errorf("server stopped: %v", err)
		}
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := handler.Shutdown(shutdownCtx); err != nil {
		log.Errorf("graceful shutdown failed: %v", err)
	}
	reminders.Stop()
}

func openRepositories(ctx context.Context, cfg *config.Config) (*repositories, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		client, db, err := database.NewMongoConnection(ctx, cfg)
		if err != nil {
			return nil, err
		}
		r := &repositories{close: func() { _ = client.Disconnect(context.Background()) }}
		if r.users, err = authRepo.NewMongoUserRepository(ctx, db); err != nil {
			return nil, err
		}
		if r.devices, err = authRepo.NewMongoDeviceTokenRepository(ctx, db); err != nil {
			return nil, err
		}
		if r.tasks, err = taskRepo.NewMongoTaskRepository(ctx, db); err != nil {
			return nil, err
		}
		if r.activities, err = activityRepo.NewMongoActivityRepository(ctx, db); err != nil {
			return nil, err
		}
		if r.search, err = searchRepo.NewMongoSearchRepository(ctx, db); err != nil {
			return nil, err
		}
		return r, nil

	case config.DriverPostgres, config.DriverSQLite:
		var db *gorm.DB
		var err error
		if cfg.StoreDriver == config.DriverPostgres {
			db, err = database.NewPostgresConnection(cfg)
		} else {
			db, err = database.NewSQLiteConnection(cfg.SQLitePath)
		}
		if err != nil {
			return nil, err
		}
		r := &repositories{close: func() { _ = database.Close(db) }}
		if r.users, err = authRepo.NewGormUserRepository(db); err != nil {
			return nil, err
		}
		if r.devices, err = authRepo.NewGormDeviceTokenRepository(db); err != nil {
			return nil, err
		}
		if r.tasks, err = taskRepo.NewGormTaskRepository(db); err != nil {
			return nil, err
		}
		if r.activities, err = activityRepo.NewGormActivityRepository(db); err != nil {
			return nil, err
		}
		if r.search, err = searchRepo.NewGormSearchRepository(db); err != nil {
			return nil, err
		}
		return r, nil
	}
	return nil, errors.New("unknown store driver " + cfg.StoreDriver)
}

// purgeExpiredRefreshTokens drops dead refresh tokens once an hour.
func purgeExpiredRefreshTokens(ctx context.Context, users authRepo.UserRepository) {
	log := logging.For("tokens")
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := users.DeleteExpiredRefreshTokens(ctx, time.Now().UTC()); err != nil {
				log.Warnf("failed to purge expired refresh tokens: %v", err)
			}
		}
	}
}
