package importer

import (
	"fmt"
	"io"

	"github.com/MrJamesThe3rd/stoptracker/internal/workday"
)

type Service struct {
	importers map[Format]Importer
}

// NewService builds the importers. dateLayout is accepted by the standard
// format alongside ISO dates so exported files read back unchanged.
func NewService(dateLayout string) *Service {
	return &Service{
		importers: map[Format]Importer{
			FormatStandard: NewParser(standardProfile(dateLayout)),
			FormatEU:       NewParser(euProfile()),
		},
	}
}

func (s *Service) Import(format Format, r io.Reader) ([]workday.CreateParams, error) {
	if format == "" {
		format = FormatStandard
	}

	importer, ok := s.importers[format]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}

	return importer.Parse(r)
}
