package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	enc "github.com/MrJamesThe3rd/stoptracker/internal/encoding"
	"github.com/MrJamesThe3rd/stoptracker/internal/workday"
)

// Parser reads one CSV dialect. The header may be preceded by free-form
// preamble lines; rows whose date cell does not parse are skipped as
// footers. Any Total column is ignored.
type Parser struct {
	profile Profile
}

func NewParser(p Profile) *Parser {
	return &Parser{profile: p}
}

func (p *Parser) Parse(r io.Reader) ([]workday.CreateParams, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	reader := csv.NewReader(utf8r)
	reader.Comma = p.profile.Comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	cols, headerIdx, ok := p.detectHeader(rows)
	if !ok {
		return nil, fmt.Errorf("no %s header found: expected Date and Stops columns", p.profile.Name)
	}

	return p.parseRows(cols, rows[headerIdx+1:], headerIdx+1)
}

type columns struct {
	date, stops, extra, notes int
}

func (p *Parser) detectHeader(rows [][]string) (columns, int, bool) {
	for rowIdx, row := range rows {
		cols := columns{date: -1, stops: -1, extra: -1, notes: -1}

		for i, cell := range row {
			name := strings.ToLower(strings.TrimSpace(cell))

			switch {
			case cols.date < 0 && matches(p.profile.DateCols, name):
				cols.date = i
			case cols.stops < 0 && matches(p.profile.StopsCols, name):
				cols.stops = i
			case cols.extra < 0 && matches(p.profile.ExtraCols, name):
				cols.extra = i
			case cols.notes < 0 && matches(p.profile.NotesCols, name):
				cols.notes = i
			}
		}

		if cols.date >= 0 && cols.stops >= 0 {
			return cols, rowIdx, true
		}
	}

	return columns{}, 0, false
}

func matches(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}

	return false
}

// parseRows fails on the first data row with unreadable stops or extra pay.
// headerRowNum is the 0-based index of the header in the file.
func (p *Parser) parseRows(cols columns, rows [][]string, headerRowNum int) ([]workday.CreateParams, error) {
	var params []workday.CreateParams

	for i, row := range rows {
		rowNum := headerRowNum + i + 1

		date, ok := p.parseDate(cellValue(row, cols.date))
		if !ok {
			continue
		}

		stops, err := strconv.Atoi(cellValue(row, cols.stops))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, workday.ErrInvalidStops)
		}

		extra := decimal.Zero

		if s := cellValue(row, cols.extra); s != "" {
			extra, err = parseAmount(s, p.profile.DecimalComma)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", rowNum, workday.ErrInvalidExtra)
			}
		}

		params = append(params, workday.CreateParams{
			Date:  date,
			Stops: &stops,
			Extra: extra,
			Notes: cellValue(row, cols.notes),
		})
	}

	return params, nil
}

func (p *Parser) parseDate(s string) (civil.Date, bool) {
	if s == "" {
		return civil.Date{}, false
	}

	for _, layout := range p.profile.DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return civil.DateOf(t), true
		}
	}

	return civil.Date{}, false
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
