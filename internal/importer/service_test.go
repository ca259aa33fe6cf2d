package importer_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/MrJamesThe3rd/stoptracker/internal/importer"
	"github.com/MrJamesThe3rd/stoptracker/internal/workday"
)

func date(y, m, d int) civil.Date {
	return civil.Date{Year: y, Month: time.Month(m), Day: d}
}

func TestService_Import_Standard(t *testing.T) {
	type args struct {
		layout string
		input  string
	}

	type want struct {
		date  civil.Date
		stops int
		extra string
		notes string
	}

	type testCase struct {
		name    string
		args    args
		want    []want
		wantErr error
		anyErr  bool
	}

	tests := []testCase{
		{
			name: "ExportRoundTrip",
			args: args{
				layout: "02/01/2006",
				input:  "Date,Stops,Extra,Total\n15/01/2024,90,0,178.2\n16/01/2024,120,5,999\n",
			},
			want: []want{
				{date: date(2024, 1, 15), stops: 90, extra: "0"},
				{date: date(2024, 1, 16), stops: 120, extra: "5"},
			},
		},
		{
			name: "ISODatesAndNotes",
			args: args{
				input: "date,stops,extra,notes\n2024-02-01,101,\"1,250.50\",rain all day\n",
			},
			want: []want{
				{date: date(2024, 2, 1), stops: 101, extra: "1250.5", notes: "rain all day"},
			},
		},
		{
			name: "PreambleAndFooter",
			args: args{
				input: "Driver export\n\nDate,Stops\n2024-02-01,80\nTotal,80\n",
			},
			want: []want{
				{date: date(2024, 2, 1), stops: 80, extra: "0"},
			},
		},
		{
			name:   "NoHeader",
			args:   args{input: "2024-02-01,80\n"},
			anyErr: true,
		},
		{
			name:    "BadStops",
			args:    args{input: "Date,Stops\n2024-02-01,eighty\n"},
			wantErr: workday.ErrInvalidStops,
		},
		{
			name:    "BadExtra",
			args:    args{input: "Date,Stops,Extra\n2024-02-01,80,lots\n"},
			wantErr: workday.ErrInvalidExtra,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, err := importer.NewService(tt.args.layout).Import(importer.FormatStandard, strings.NewReader(tt.args.input))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			if tt.anyErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.Len(t, params, len(tt.want))

			for i, w := range tt.want {
				assert.Equal(t, w.date, params[i].Date)
				require.NotNil(t, params[i].Stops)
				assert.Equal(t, w.stops, *params[i].Stops)
				assert.True(t, decimal.RequireFromString(w.extra).Equal(params[i].Extra), "extra %s", params[i].Extra)
				assert.Equal(t, w.notes, params[i].Notes)
			}
		})
	}
}

func TestService_Import_EU(t *testing.T) {
	input := "Data;Paragens;Extra;Notas\n" +
		"30-01-2026;112;12,50;Sintra\n" +
		"31.01.2026;95;;\n"

	params, err := importer.NewService("").Import(importer.FormatEU, strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, params, 2)

	assert.Equal(t, date(2026, 1, 30), params[0].Date)
	assert.Equal(t, 112, *params[0].Stops)
	assert.True(t, decimal.RequireFromString("12.5").Equal(params[0].Extra))
	assert.Equal(t, "Sintra", params[0].Notes)

	assert.Equal(t, date(2026, 1, 31), params[1].Date)
	assert.True(t, params[1].Extra.IsZero())
}

func TestService_Import_EULatin1(t *testing.T) {
	content := "Observação do mês\nData;Paragens;Extra\n02-01-2026;100;1.000,00\n"

	encoded, err := charmap.Windows1252.NewEncoder().String(content)
	require.NoError(t, err)

	params, err := importer.NewService("").Import(importer.FormatEU, bytes.NewReader([]byte(encoded)))
	require.NoError(t, err)
	require.Len(t, params, 1)
	assert.True(t, decimal.NewFromInt(1000).Equal(params[0].Extra))
}

func TestService_Import_UnknownFormat(t *testing.T) {
	_, err := importer.NewService("").Import("xlsx", strings.NewReader(""))
	assert.ErrorIs(t, err, importer.ErrUnknownFormat)
}
