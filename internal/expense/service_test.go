package expense_test

import (
	"context"
	"errors"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/stoptracker/internal/expense"
)

const scope = "user-1"

func amount(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestService_Add(t *testing.T) {
	type testCase struct {
		name      string
		params    expense.CreateParams
		setupMock func(m *expense.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name: "Success",
			params: expense.CreateParams{
				Date:     civil.Date{Year: 2024, Month: 1, Day: 2},
				Category: expense.CategoryFuel,
				Amount:   amount("45.10"),
			},
			setupMock: func(m *expense.MockRepository) {
				m.EXPECT().Load(gomock.Any(), scope).Return(nil, nil)
				m.EXPECT().Save(gomock.Any(), scope, gomock.Len(1)).Return(nil)
			},
		},
		{
			name:   "FreeTextCategory",
			params: expense.CreateParams{Category: "  Parking ", Amount: amount("3")},
			setupMock: func(m *expense.MockRepository) {
				m.EXPECT().Load(gomock.Any(), scope).Return(nil, nil)
				m.EXPECT().
					Save(gomock.Any(), scope, gomock.Any()).
					DoAndReturn(func(_ context.Context, _ string, r []expense.Record) error {
						assert.Equal(t, expense.Category("Parking"), r[0].Category)
						return nil
					})
			},
		},
		{
			name:    "MissingCategory",
			params:  expense.CreateParams{Amount: amount("1")},
			wantErr: expense.ErrMissingCategory,
		},
		{
			name:    "MissingAmount",
			params:  expense.CreateParams{Category: expense.CategoryOther},
			wantErr: expense.ErrMissingAmount,
		},
		{
			name:    "NegativeAmount",
			params:  expense.CreateParams{Category: expense.CategoryOther, Amount: amount("-2")},
			wantErr: expense.ErrInvalidAmount,
		},
		{
			name:   "SaveError",
			params: expense.CreateParams{Category: expense.CategoryOther, Amount: amount("2")},
			setupMock: func(m *expense.MockRepository) {
				m.EXPECT().Load(gomock.Any(), scope).Return(nil, nil)
				m.EXPECT().Save(gomock.Any(), scope, gomock.Any()).Return(errors.New("rejected"))
			},
			wantErr: errors.New("saving expenses"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := expense.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			got, err := expense.NewService(repo).Add(context.Background(), scope, tt.params)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorContains(t, err, tt.wantErr.Error())
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, got.ID)
			assert.False(t, got.Date.IsZero())
		})
	}
}

func TestService_Delete(t *testing.T) {
	rec := expense.Record{ID: uuid.New(), Category: expense.CategoryFuel, Amount: decimal.NewFromInt(10)}

	ctrl := gomock.NewController(t)
	repo := expense.NewMockRepository(ctrl)
	repo.EXPECT().Load(gomock.Any(), scope).Return([]expense.Record{rec}, nil).Times(2)
	repo.EXPECT().Save(gomock.Any(), scope, gomock.Len(0)).Return(nil)

	svc := expense.NewService(repo)
	require.NoError(t, svc.Delete(context.Background(), scope, rec.ID))
	assert.ErrorIs(t, svc.Delete(context.Background(), scope, uuid.New()), expense.ErrNotFound)
}

func TestSummarize(t *testing.T) {
	records := []expense.Record{
		{Category: expense.CategoryFuel, Amount: decimal.RequireFromString("40.50")},
		{Category: expense.CategoryPhone, Amount: decimal.RequireFromString("15")},
		{Category: expense.CategoryFuel, Amount: decimal.RequireFromString("39.50")},
	}

	got := expense.Summarize(records)

	require.Len(t, got.Categories, 2)
	assert.Equal(t, expense.CategoryFuel, got.Categories[0].Category)
	assert.Equal(t, 2, got.Categories[0].Count)
	assert.True(t, got.Categories[0].Total.Equal(decimal.NewFromInt(80)))
	assert.Equal(t, 1, got.Categories[1].Count)
	assert.True(t, got.Total.Equal(decimal.NewFromInt(95)))

	empty := expense.Summarize(nil)
	assert.Empty(t, empty.Categories)
	assert.True(t, empty.Total.IsZero())
}
