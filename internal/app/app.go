package app

import (
	"context"
	"fmt"

	"github.com/spf13/afero"

	"github.com/semmidev/mysqlbackup/internal/adapter/archiver"
	"github.com/semmidev/mysqlbackup/internal/adapter/database"
	"github.com/semmidev/mysqlbackup/internal/adapter/storage"
	"github.com/semmidev/mysqlbackup/internal/config"
	"github.com/semmidev/mysqlbackup/internal/domain"
	"github.com/semmidev/mysqlbackup/internal/infrastructure/logger"
	"github.com/semmidev/mysqlbackup/internal/infrastructure/scheduler"
	"github.com/semmidev/mysqlbackup/internal/usecase"
)

type App struct {
	config    *config.Config
	logger    *logger.Logger
	scheduler *scheduler.Scheduler
	backup    domain.BackupExecutor
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log, err := logger.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := cfg.Resolve(); err != nil {
		log.Criticalf("Configuration cannot be used: %v", err)
		log.Close()
		return nil, fmt.Errorf("resolve config: %w", err)
	}

	log.Infof("Backup root: %s", cfg.BackupPath)
	log.Infof("Using %s and %s, %d database(s) excluded", cfg.MySQL.Bin, cfg.MySQLDump.Bin, len(cfg.Exclude))

	fs := afero.NewOsFs()
	folders := storage.NewLocal(fs)
	mysql := database.NewMySQL(cfg)

	uploadTargets, notifiers := initializeUploadTargets(ctx, cfg, log)

	backup := usecase.NewBackup(
		cfg.BackupPath,
		folders,
		usecase.NewEnumerator(mysql, cfg.Exclude, log),
		usecase.NewDump(mysql, cfg.MySQLDump.Concurrency, log),
		archiver.NewZip(fs),
		usecase.NewUpload(uploadTargets, log),
		usecase.NewCleanup(folders, log),
		notifiers,
		log,
	)

	return &App{
		config:    cfg,
		logger:    log,
		scheduler: scheduler.New(log),
		backup:    backup,
	}, nil
}

func initializeUploadTargets(ctx context.Context, cfg *config.Config, log *logger.Logger) ([]usecase.UploadTarget, []domain.Notifier) {
	var (
		targets   []usecase.UploadTarget
		notifiers []domain.Notifier
	)

	for _, targetCfg := range cfg.GetEnabledUploadTargets() {
		var stor domain.Storage

		switch targetCfg.Type {
		case "gdrive":
			g, err := storage.NewGDrive(ctx, &targetCfg)
			if err != nil {
				log.Errorf("Failed to initialize Google Drive: %v", err)
				continue
			}
			stor = g
			log.Infof("Google Drive upload enabled")

		case "s3":
			s, err := storage.NewS3(ctx, &targetCfg)
			if err != nil {
				log.Errorf("Failed to initialize S3: %v", err)
				continue
			}
			stor = s
			log.Infof("AWS S3 upload enabled (bucket: %s)", targetCfg.Bucket)

		case "telegram":
			tg, err := storage.NewTelegram(&targetCfg)
			if err != nil {
				log.Errorf("Failed to initialize Telegram: %v", err)
				continue
			}
			stor = tg
			notifiers = append(notifiers, tg)
			log.Infof("Telegram upload enabled")

		default:
			log.Warnf("Unknown upload target type: %s", targetCfg.Type)
			continue
		}

		targets = append(targets, usecase.UploadTarget{
			Name:    targetCfg.Type,
			Storage: stor,
		})
	}

	return targets, notifiers
}

// Scheduled reports whether the app runs as a daemon.
func (a *App) Scheduled() bool {
	return a.config.Schedule != ""
}

// RunOnce performs a single backup run for today.
func (a *App) RunOnce(ctx context.Context) domain.Outcome {
	return a.backup.Execute(ctx)
}

// Run triggers a backup run on every tick of the configured schedule until ctx
// is cancelled.
func (a *App) Run(ctx context.Context) error {
	if err := a.scheduler.AddJob(a.config.Schedule, func(ctx context.Context) error {
		outcome := a.backup.Execute(ctx)
		if !outcome.Succeeded() {
			return fmt.Errorf("backup run ended in %s", outcome.State)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("failed to schedule backup: %w", err)
	}

	a.scheduler.Start()
	a.logger.Infof("Scheduler started: %s", a.config.Schedule)

	<-ctx.Done()
	return nil
}

func (a *App) Shutdown() {
	a.logger.Infof("Shutting down...")
	a.scheduler.Stop()
	a.logger.Close()
}
