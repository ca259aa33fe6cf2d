package http

import (
	"github.com/MrJamesThe3rd/stoptracker/internal/app"
	"github.com/MrJamesThe3rd/stoptracker/internal/http/backup"
	"github.com/MrJamesThe3rd/stoptracker/internal/http/expense"
	"github.com/MrJamesThe3rd/stoptracker/internal/http/export"
	"github.com/MrJamesThe3rd/stoptracker/internal/http/reconcile"
	"github.com/MrJamesThe3rd/stoptracker/internal/http/settings"
	"github.com/MrJamesThe3rd/stoptracker/internal/http/stats"
	"github.com/MrJamesThe3rd/stoptracker/internal/http/stream"
	"github.com/MrJamesThe3rd/stoptracker/internal/http/workday"
)

// NewHandlers builds every v1 handler from the application services.
func NewHandlers(a *app.App) Handlers {
	logger := a.Logger.Named("http")

	return Handlers{
		Workdays:  workday.NewHandler(a.Workdays, a.Settings, a.Importer, logger),
		Expenses:  expense.NewHandler(a.Expenses, logger),
		Settings:  settings.NewHandler(a.Settings, logger),
		Stats:     stats.NewHandler(a.Workdays, logger),
		Reconcile: reconcile.NewHandler(a.Workdays, logger),
		Export:    export.NewHandler(a.Exports, a.Workdays, a.Expenses, logger),
		Backup:    backup.NewHandler(a.Backups, logger),
		Stream:    stream.NewHandler(a.Store, logger),
	}
}

// OptionsFrom reads router options from the application config.
func OptionsFrom(a *app.App) Options {
	return Options{
		JWTSecret:      a.Config.Auth.JWTSecret,
		DefaultScope:   a.Config.App.Scope,
		AllowedOrigins: a.Config.CORS.AllowedOrigins,
		Timeout:        a.Config.Server.Timeout,
	}
}
