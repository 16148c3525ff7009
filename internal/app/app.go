// Package app builds the object graph shared by the API server and the
// sheet-sync CLI.
package app

import (
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/dms-admin-api/internal/handler"
	"github.com/noah-isme/dms-admin-api/internal/repository"
	"github.com/noah-isme/dms-admin-api/internal/service"
	"github.com/noah-isme/dms-admin-api/pkg/cache"
	"github.com/noah-isme/dms-admin-api/pkg/config"
	"github.com/noah-isme/dms-admin-api/pkg/database"
	"github.com/noah-isme/dms-admin-api/pkg/sheets"
)

// Container holds the long-lived services.
type Container struct {
	Config *config.Config
	Logger *zap.Logger
	DB     *sqlx.DB
	Redis  *redis.Client

	Metrics  *service.MetricsService
	Sheets   *sheets.Client
	Teachers *service.TeacherService
	Students *service.StudentService
	Lessons  *service.LessonScheduleService
	Sync     *service.SyncService
	Exports  *service.ExportService
}

// New connects to postgres and (optionally) redis, then wires repositories
// and services. storage may be nil when archiving is not needed.
func New(cfg *config.Config, logger *zap.Logger, storage service.FileStorage) (*Container, error) {
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return nil, err
	}
	rdb := cache.NewOptional(cfg.Redis, cfg.Cache.Enabled, logger)
	return Wire(cfg, logger, db, rdb, storage), nil
}

// Wire assembles the container from already-open connections. rdb may be nil.
func Wire(cfg *config.Config, logger *zap.Logger, db *sqlx.DB, rdb *redis.Client, storage service.FileStorage) *Container {
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := service.NewMetricsService()
	validate := validator.New()

	sheetClient := sheets.New(sheets.Options{
		ExportHost: cfg.Sheets.ExportHost,
		WebhookURL: cfg.Sheets.WebhookURL,
		TabGIDs: map[string]string{
			cfg.Sheets.TeacherTab:    cfg.Sheets.TeacherGID,
			cfg.Sheets.EnrollmentTab: cfg.Sheets.EnrollmentGID,
		},
		Timeout:  cfg.Sheets.HTTPTimeout,
		Logger:   logger.Named("sheets"),
		Observer: metrics,
	})
	sheetID := cfg.Sheets.ResolvedSheetID()

	teacherRepo := repository.NewTeacherRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	lessonRepo := repository.NewLessonScheduleRepository(db)

	var cacheRepo service.CacheRepository
	if rdb != nil {
		cacheRepo = repository.NewCacheRepository(rdb, logger)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logger, cfg.Cache.Enabled)

	pusher := service.NewSheetPusher(sheetClient, sheetID, metrics, logger)
	sequencer := service.NewStudentCodeSequencer(studentRepo, sheetClient, sheetID, cfg.Sheets.EnrollmentTab, logger)

	return &Container{
		Config:   cfg,
		Logger:   logger,
		DB:       db,
		Redis:    rdb,
		Metrics:  metrics,
		Sheets:   sheetClient,
		Teachers: service.NewTeacherService(teacherRepo, pusher, cacheSvc, validate, logger),
		Students: service.NewStudentService(studentRepo, sequencer, pusher, cacheSvc, validate, logger),
		Lessons:  service.NewLessonScheduleService(lessonRepo, teacherRepo, cfg.Lessons.MaxPerCard, validate, logger),
		Sync: service.NewSyncService(studentRepo, teacherRepo, sheetClient, service.SyncConfig{
			SheetID:       sheetID,
			TeacherTab:    cfg.Sheets.TeacherTab,
			EnrollmentTab: cfg.Sheets.EnrollmentTab,
		}, cacheSvc, metrics, logger),
		Exports: service.NewExportService(teacherRepo, studentRepo, storage, logger),
	}
}

// Handlers returns the API handlers backed by the container services.
func (c *Container) Handlers() handler.Handlers {
	return handler.Handlers{
		Teachers: handler.NewTeacherHandler(c.Teachers, c.Exports),
		Students: handler.NewStudentHandler(c.Students, c.Exports),
		Lessons:  handler.NewLessonScheduleHandler(c.Lessons),
		Sync:     handler.NewSyncHandler(c.Sync),
	}
}

// Close releases the database and redis connections.
func (c *Container) Close() {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Logger.Warn("close redis", zap.Error(err))
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			c.Logger.Warn("close postgres", zap.Error(err))
		}
	}
}
