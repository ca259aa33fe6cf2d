package app_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/stoptracker/internal/app"
	"github.com/MrJamesThe3rd/stoptracker/internal/config"
	"github.com/MrJamesThe3rd/stoptracker/internal/rate"
	"github.com/MrJamesThe3rd/stoptracker/internal/workday"
)

func newConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := &config.Config{}
	cfg.App.Scope = "local"
	cfg.App.DateLayout = "02/01/2006"
	cfg.Cache.Path = filepath.Join(t.TempDir(), "cache.db")
	cfg.Remote.Driver = config.RemoteNone

	return cfg
}

func TestNew_LocalOnly(t *testing.T) {
	ctx := context.Background()
	cfg := newConfig(t)

	a, err := app.New(ctx, cfg, zap.NewNop())
	require.NoError(t, err)

	rateCfg, err := a.Settings.Get(ctx, "local")
	require.NoError(t, err)
	assert.Equal(t, rate.DefaultConfig(), rateCfg)

	stops := 115
	rec, err := a.Workdays.Add(ctx, "local", rateCfg, workday.CreateParams{Stops: &stops})
	require.NoError(t, err)
	assert.Equal(t, "225.2", rec.Total.String())

	require.NoError(t, a.Close())

	// Data survives a restart through the cache file.
	a, err = app.New(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	records, err := a.DayLog.Load(ctx, "local")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, rec.ID, records[0].ID)

	_, err = a.Store.Subscribe(ctx, "local", "deliveryLogs", func([]byte) {})
	assert.Error(t, err)
}

func TestNew_Settings(t *testing.T) {
	ctx := context.Background()

	a, err := app.New(ctx, newConfig(t), nil)
	require.NoError(t, err)
	defer a.Close()

	saved, err := a.Settings.ApplyPreset(ctx, "local", "125 Stops")
	require.NoError(t, err)

	got, err := a.Settings.Get(ctx, "local")
	require.NoError(t, err)
	assert.Equal(t, saved.CutoffPoint, got.CutoffPoint)
	assert.True(t, saved.RateAfterCutoff.Equal(got.RateAfterCutoff))

	other, err := a.Settings.Get(ctx, "someone-else")
	require.NoError(t, err)
	assert.Equal(t, 110, other.CutoffPoint)
}

func TestNew_UnknownDriver(t *testing.T) {
	cfg := newConfig(t)
	cfg.Remote.Driver = "redis"

	_, err := app.New(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}
