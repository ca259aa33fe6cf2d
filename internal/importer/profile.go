package importer

import "time"

// Profile describes how one CSV dialect lays out day records.
type Profile struct {
	Name         Format
	Comma        rune
	DecimalComma bool
	DateLayouts  []string

	// Header names accepted for each column, compared case-insensitively.
	DateCols  []string
	StopsCols []string
	ExtraCols []string
	NotesCols []string
}

var (
	dateCols  = []string{"date", "data", "datum", "fecha"}
	stopsCols = []string{"stops", "paragens", "paradas", "stopps", "entregas"}
	extraCols = []string{"extra", "extra pay", "extras", "bonus"}
	notesCols = []string{"notes", "notas", "note"}
)

func standardProfile(layout string) Profile {
	layouts := []string{time.DateOnly}
	if layout != "" && layout != time.DateOnly {
		layouts = append(layouts, layout)
	}

	return Profile{
		Name:        FormatStandard,
		Comma:       ',',
		DateLayouts: layouts,
		DateCols:    dateCols,
		StopsCols:   stopsCols,
		ExtraCols:   extraCols,
		NotesCols:   notesCols,
	}
}

func euProfile() Profile {
	return Profile{
		Name:         FormatEU,
		Comma:        ';',
		DecimalComma: true,
		DateLayouts:  []string{"02-01-2006", "02/01/2006", "02.01.2006"},
		DateCols:     dateCols,
		StopsCols:    stopsCols,
		ExtraCols:    extraCols,
		NotesCols:    notesCols,
	}
}
