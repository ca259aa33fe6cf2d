package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"cloud.google.com/go/civil"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/stoptracker/internal/app"
	"github.com/MrJamesThe3rd/stoptracker/internal/config"
	"github.com/MrJamesThe3rd/stoptracker/internal/logger"
)

// runtime carries what every subcommand needs once flags are parsed.
type runtime struct {
	cfg    *config.Config
	log    *zap.Logger
	scope  string
	layout string
}

// NewRootCmd builds a fresh command tree. Each call has its own flag state.
func NewRootCmd() *cobra.Command {
	rt := &runtime{}

	root := &cobra.Command{
		Use:   "stopctl",
		Short: "Stop tracker command line",
		Long: `stopctl logs delivery workdays and expenses and reports on them.
Storage is the same SQLite cache and optional remote the API and TUI use.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			_ = godotenv.Load()

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			log, err := logger.New(cfg.Log.Level, cfg.Log.Development)
			if err != nil {
				return err
			}

			rt.cfg = cfg
			rt.log = log.Named("stopctl")

			if rt.scope == "" {
				rt.scope = cfg.App.Scope
			}

			if rt.layout == "" {
				rt.layout = cfg.App.DateLayout
			}

			return nil
		},
	}

	root.PersistentFlags().StringVar(&rt.scope, "scope", "", "Data scope (defaults to SCOPE)")
	root.PersistentFlags().StringVar(&rt.layout, "date-layout", "", "Go date layout for input and output (defaults to DATE_LAYOUT)")

	root.AddCommand(
		newAddCmd(rt),
		newListCmd(rt),
		newRemoveCmd(rt),
		newSummaryCmd(rt),
		newReconcileCmd(rt),
		newExpenseCmd(rt),
		newExportCmd(rt),
		newImportCmd(rt),
		newBackupCmd(rt),
		newRestoreCmd(rt),
		newRateCmd(rt),
		newTokenCmd(rt),
	)

	return root
}

// Execute is the entry point called from main.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withApp opens storage for the length of fn.
func (rt *runtime) withApp(ctx context.Context, fn func(context.Context, *app.App) error) error {
	a, err := app.New(ctx, rt.cfg, rt.log)
	if err != nil {
		return err
	}

	defer func() {
		if err := a.Close(); err != nil {
			rt.log.Warn("failed to close storage", zap.Error(err))
		}
	}()

	return fn(ctx, a)
}

// parseDate accepts the configured layout or ISO dates.
func (rt *runtime) parseDate(s string) (civil.Date, error) {
	if t, err := time.Parse(rt.layout, s); err == nil {
		return civil.DateOf(t), nil
	}

	d, err := civil.ParseDate(s)
	if err != nil {
		return civil.Date{}, fmt.Errorf("invalid date %q, use %s or YYYY-MM-DD", s, rt.layout)
	}

	return d, nil
}

// optionalDate parses s when set and returns the zero date otherwise.
func (rt *runtime) optionalDate(s string) (civil.Date, error) {
	if s == "" {
		return civil.Date{}, nil
	}

	return rt.parseDate(s)
}

func (rt *runtime) formatDate(d civil.Date) string {
	return d.In(time.UTC).Format(rt.layout)
}

func printTable(w io.Writer, headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers(headers...).
		Rows(rows...)

	fmt.Fprintln(w, t.Render())
}
