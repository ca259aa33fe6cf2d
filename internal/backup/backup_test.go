package backup_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/stoptracker/internal/backup"
	"github.com/MrJamesThe3rd/stoptracker/internal/expense"
	"github.com/MrJamesThe3rd/stoptracker/internal/rate"
	"github.com/MrJamesThe3rd/stoptracker/internal/settings"
	"github.com/MrJamesThe3rd/stoptracker/internal/workday"
)

type mocks struct {
	days     *workday.MockRepository
	expenses *expense.MockRepository
	settings *settings.MockRepository
}

func newService(t *testing.T) (*backup.Service, mocks) {
	ctrl := gomock.NewController(t)
	m := mocks{
		days:     workday.NewMockRepository(ctrl),
		expenses: expense.NewMockRepository(ctrl),
		settings: settings.NewMockRepository(ctrl),
	}

	svc := backup.NewService(
		workday.NewService(m.days),
		expense.NewService(m.expenses),
		settings.NewService(m.settings),
	)

	return svc, m
}

func day(date string, stops int) workday.Record {
	d, _ := civil.ParseDate(date)

	return workday.Record{
		ID:    uuid.New(),
		Date:  d,
		Stops: stops,
		Extra: decimal.Zero,
		Total: rate.ComputeTotal(stops, rate.DefaultConfig()),
	}
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	svc, m := newService(t)

	logs := []workday.Record{day("2024-01-15", 100)}
	m.days.EXPECT().Load(ctx, "s1").Return(logs, nil)
	m.expenses.EXPECT().Load(ctx, "s1").Return([]expense.Record{}, nil)
	m.settings.EXPECT().Load(ctx, "s1").Return(rate.Config{}, settings.ErrNotFound)

	snap, err := svc.Create(ctx, "s1")
	require.NoError(t, err)

	assert.Equal(t, logs, snap.Logs)
	assert.Empty(t, snap.Expenses)
	assert.Equal(t, rate.DefaultConfig(), snap.Settings)
	assert.False(t, snap.Timestamp.IsZero())
}

func TestService_Restore(t *testing.T) {
	ctx := context.Background()

	type testCase struct {
		name    string
		snap    backup.Snapshot
		setup   func(m mocks)
		wantErr error
	}

	tests := []testCase{
		{
			name: "ReplacesEverything",
			snap: backup.Snapshot{
				Logs:     []workday.Record{day("2024-01-16", 120), day("2024-01-15", 100)},
				Settings: rate.DefaultConfig(),
			},
			setup: func(m mocks) {
				m.settings.EXPECT().Save(ctx, "s1", rate.DefaultConfig()).Return(nil)
				m.expenses.EXPECT().Save(ctx, "s1", []expense.Record{}).Return(nil)
				m.days.EXPECT().Save(ctx, "s1", gomock.Len(2)).DoAndReturn(
					func(_ context.Context, _ string, records []workday.Record) error {
						assert.Equal(t, 100, records[0].Stops)
						return nil
					})
			},
		},
		{
			name: "InvalidSettings",
			snap: backup.Snapshot{
				Settings: rate.Config{CutoffPoint: -1},
			},
			setup:   func(mocks) {},
			wantErr: backup.ErrInvalidSnapshot,
		},
		{
			name: "NegativeStops",
			snap: backup.Snapshot{
				Logs:     []workday.Record{day("2024-01-15", -3)},
				Settings: rate.DefaultConfig(),
			},
			setup:   func(mocks) {},
			wantErr: workday.ErrInvalidStops,
		},
		{
			name: "SettingsSaveFails",
			snap: backup.Snapshot{Settings: rate.DefaultConfig()},
			setup: func(m mocks) {
				m.settings.EXPECT().Save(ctx, "s1", rate.DefaultConfig()).Return(assert.AnError)
			},
			wantErr: assert.AnError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newService(t)
			tt.setup(m)

			err := svc.Restore(ctx, "s1", tt.snap)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
		})
	}
}

func TestEncodeDecode(t *testing.T) {
	snap := &backup.Snapshot{
		Logs:     []workday.Record{day("2024-01-15", 115)},
		Expenses: []expense.Record{},
		Settings: rate.DefaultConfig(),
	}

	var buf bytes.Buffer
	require.NoError(t, backup.Encode(&buf, snap))
	assert.Contains(t, buf.String(), `"date": "2024-01-15"`)

	got, err := backup.Decode(&buf)
	require.NoError(t, err)
	require.Len(t, got.Logs, 1)
	assert.Equal(t, 115, got.Logs[0].Stops)
	assert.True(t, got.Logs[0].Total.Equal(decimal.RequireFromString("225.20")))
}

func TestDecode(t *testing.T) {
	type testCase struct {
		name    string
		input   string
		wantErr bool
	}

	tests := []testCase{
		{name: "NotJSON", input: "stops", wantErr: true},
		{name: "MissingLogs", input: `{"expenses":[]}`, wantErr: true},
		{name: "EmptyLogs", input: `{"logs":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, err := backup.Decode(strings.NewReader(tt.input))
			if tt.wantErr {
				assert.ErrorIs(t, err, backup.ErrInvalidSnapshot)
				return
			}

			require.NoError(t, err)
			assert.Empty(t, snap.Logs)
			assert.Equal(t, rate.DefaultConfig(), snap.Settings)
		})
	}
}
