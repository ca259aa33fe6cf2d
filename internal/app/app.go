// Package app builds the storage stack and services from config. It is shared
// by the API, the TUI and the CLI.
package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/stoptracker/internal/backup"
	"github.com/MrJamesThe3rd/stoptracker/internal/config"
	"github.com/MrJamesThe3rd/stoptracker/internal/database"
	"github.com/MrJamesThe3rd/stoptracker/internal/expense"
	"github.com/MrJamesThe3rd/stoptracker/internal/export"
	"github.com/MrJamesThe3rd/stoptracker/internal/importer"
	"github.com/MrJamesThe3rd/stoptracker/internal/rate"
	"github.com/MrJamesThe3rd/stoptracker/internal/settings"
	"github.com/MrJamesThe3rd/stoptracker/internal/storage"
	"github.com/MrJamesThe3rd/stoptracker/internal/storage/firestoredb"
	"github.com/MrJamesThe3rd/stoptracker/internal/storage/mongodb"
	"github.com/MrJamesThe3rd/stoptracker/internal/storage/postgres"
	"github.com/MrJamesThe3rd/stoptracker/internal/storage/sqlite"
	"github.com/MrJamesThe3rd/stoptracker/internal/workday"
)

type App struct {
	Config *config.Config
	Logger *zap.Logger
	Store  *storage.Repository

	DayLog      *storage.Collection[workday.Record]
	ExpenseLog  *storage.Collection[expense.Record]
	RateSetting *storage.Document[rate.Config]

	Workdays *workday.Service
	Expenses *expense.Service
	Settings *settings.Service
	Backups  *backup.Service
	Exports  *export.Service
	Importer *importer.Service

	closers []func() error
}

// New opens the SQLite cache and the configured remote.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	cache, err := sqlite.Open(cfg.Cache.Path)
	if err != nil {
		return nil, err
	}

	remote, closeRemote, err := openRemote(ctx, cfg, logger)
	if err != nil {
		_ = cache.Close()
		return nil, err
	}

	a := Build(cfg, logger, cache, remote)
	a.closers = append(a.closers, closeRemote, cache.Close)

	return a, nil
}

// Build wires services over already opened backends. remote may be nil.
func Build(cfg *config.Config, logger *zap.Logger, cache, remote storage.Backend) *App {
	if logger == nil {
		logger = zap.NewNop()
	}

	store := storage.NewRepository(cache, remote, logger.Named("storage"))

	a := &App{
		Config:      cfg,
		Logger:      logger,
		Store:       store,
		DayLog:      storage.NewCollection[workday.Record](store, storage.KindDeliveryLogs),
		ExpenseLog:  storage.NewCollection[expense.Record](store, storage.KindExpenses),
		RateSetting: storage.NewDocument[rate.Config](store, storage.KindSettings),
	}

	a.Workdays = workday.NewService(a.DayLog)
	a.Expenses = expense.NewService(a.ExpenseLog)
	a.Settings = settings.NewService(settingsDocument{doc: a.RateSetting})
	a.Backups = backup.NewService(a.Workdays, a.Expenses, a.Settings)
	a.Exports = export.NewService(a.Workdays, a.Expenses, a.Backups, cfg.App.DateLayout)
	a.Importer = importer.NewService(cfg.App.DateLayout)

	return a
}

func (a *App) Close() error {
	var errs []error

	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}

	a.closers = nil

	return errors.Join(errs...)
}

func openRemote(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storage.Backend, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Remote.Driver {
	case config.RemotePostgres:
		db, err := database.New(ctx, cfg.ConnectionString(), database.PoolOptions{
			MaxOpenConns:    cfg.DB.MaxOpenConns,
			MaxIdleConns:    cfg.DB.MaxIdleConns,
			ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
		})
		if err != nil {
			return nil, nil, err
		}

		store := postgres.New(db, cfg.ConnectionString())
		if err := store.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}

		logger.Info("using postgres remote", zap.String("host", cfg.DB.Host), zap.String("database", cfg.DB.Name))

		return store, db.Close, nil

	case config.RemoteMongo:
		store, err := mongodb.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, nil, err
		}

		logger.Info("using mongo remote", zap.String("database", cfg.Mongo.Database))

		return store, func() error { return store.Close(context.Background()) }, nil

	case config.RemoteFirestore:
		store, err := firestoredb.Connect(ctx, cfg.Firestore.ProjectID, cfg.Firestore.CredentialsFile)
		if err != nil {
			return nil, nil, err
		}

		logger.Info("using firestore remote", zap.String("project", cfg.Firestore.ProjectID))

		return store, store.Close, nil

	case config.RemoteNone, "":
		logger.Info("no remote configured, using local cache only")
		return nil, noop, nil
	}

	return nil, nil, fmt.Errorf("unknown remote driver %q", cfg.Remote.Driver)
}

// settingsDocument adapts the settings document to settings.Repository.
type settingsDocument struct {
	doc *storage.Document[rate.Config]
}

func (s settingsDocument) Load(ctx context.Context, scope string) (rate.Config, error) {
	cfg, err := s.doc.Load(ctx, scope)
	if errors.Is(err, storage.ErrNotFound) {
		return rate.Config{}, settings.ErrNotFound
	}

	return cfg, err
}

func (s settingsDocument) Save(ctx context.Context, scope string, cfg rate.Config) error {
	return s.doc.Save(ctx, scope, cfg)
}
