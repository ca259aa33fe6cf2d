// Package importer turns day-record CSV files into workday create params.
package importer

import (
	"errors"
	"io"

	"github.com/MrJamesThe3rd/stoptracker/internal/workday"
)

var ErrUnknownFormat = errors.New("unknown import format")

type Format string

const (
	// FormatStandard is comma separated with point decimals, the layout
	// produced by the exporter.
	FormatStandard Format = "standard"
	// FormatEU is semicolon separated with comma decimals and DD-MM-YYYY dates.
	FormatEU Format = "eu"
)

func Formats() []Format {
	return []Format{FormatStandard, FormatEU}
}

type Importer interface {
	Parse(r io.Reader) ([]workday.CreateParams, error)
}
