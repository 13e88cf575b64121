package importer

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Pair is one front/back row read from a spreadsheet.
type Pair struct {
	Front string
	Back  string
}

const defaultSheet = "Sheet1"

// ReadPairs reads front/back card pairs from columns A and B of an xlsx
// file. A header row named "front"/"Front" is skipped, as are rows with an
// empty side; validation beyond that is left to the card mirror.
func ReadPairs(path string) ([]Pair, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	sheet := defaultSheet
	if sheets := f.GetSheetList(); len(sheets) > 0 {
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	pairs := make([]Pair, 0, len(rows))
	for i, row := range rows {
		if len(row) < 2 {
			continue
		}
		front := strings.TrimSpace(row[0])
		back := strings.TrimSpace(row[1])
		if front == "" || back == "" {
			continue
		}
		if i == 0 && strings.EqualFold(front, "front") {
			continue
		}
		pairs = append(pairs, Pair{Front: front, Back: back})
	}

	return pairs, nil
}
