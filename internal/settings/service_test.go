package settings_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/stoptracker/internal/rate"
	"github.com/MrJamesThe3rd/stoptracker/internal/settings"
)

const scope = "user-1"

func TestService_Get(t *testing.T) {
	saved := rate.Config{CutoffPoint: 90, RateBeforeCutoff: decimal.NewFromInt(2), RateAfterCutoff: decimal.NewFromInt(1)}

	type testCase struct {
		name      string
		setupMock func(m *settings.MockRepository)
		want      rate.Config
		wantErr   bool
	}

	tests := []testCase{
		{
			name: "Saved",
			setupMock: func(m *settings.MockRepository) {
				m.EXPECT().Load(gomock.Any(), scope).Return(saved, nil)
			},
			want: saved,
		},
		{
			name: "DefaultWhenAbsent",
			setupMock: func(m *settings.MockRepository) {
				m.EXPECT().Load(gomock.Any(), scope).Return(rate.Config{}, settings.ErrNotFound)
			},
			want: rate.DefaultConfig(),
		},
		{
			name: "LoadError",
			setupMock: func(m *settings.MockRepository) {
				m.EXPECT().Load(gomock.Any(), scope).Return(rate.Config{}, errors.New("offline"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := settings.NewMockRepository(ctrl)
			tt.setupMock(repo)

			got, err := settings.NewService(repo).Get(context.Background(), scope)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want.CutoffPoint, got.CutoffPoint)
			assert.True(t, tt.want.RateBeforeCutoff.Equal(got.RateBeforeCutoff))
			assert.True(t, tt.want.RateAfterCutoff.Equal(got.RateAfterCutoff))
		})
	}
}

func TestService_Save(t *testing.T) {
	t.Run("Invalid", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := settings.NewMockRepository(ctrl)

		err := settings.NewService(repo).Save(context.Background(), scope, rate.Config{CutoffPoint: -5})
		assert.ErrorIs(t, err, rate.ErrInvalidConfig)
	})

	t.Run("Valid", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := settings.NewMockRepository(ctrl)
		repo.EXPECT().Save(gomock.Any(), scope, rate.DefaultConfig()).Return(nil)

		assert.NoError(t, settings.NewService(repo).Save(context.Background(), scope, rate.DefaultConfig()))
	})
}

func TestService_ApplyPreset(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := settings.NewMockRepository(ctrl)
	repo.EXPECT().Save(gomock.Any(), scope, gomock.Any()).Return(nil)

	svc := settings.NewService(repo)

	got, err := svc.ApplyPreset(context.Background(), scope, "125 Stops")
	require.NoError(t, err)
	assert.Equal(t, 125, got.CutoffPoint)

	_, err = svc.ApplyPreset(context.Background(), scope, "200 Stops")
	assert.ErrorIs(t, err, rate.ErrInvalidConfig)
}
