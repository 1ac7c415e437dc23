package itinerary

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/jszwec/csvutil"
)

// Row is one activity of an exported itinerary.
type Row struct {
	Day      string `csv:"day"`
	Activity string `csv:"activity"`
}

// Rows flattens sections into one row per non-empty content line, with list
// bullets removed.
func Rows(sections []Section) []Row {
	var rows []Row
	for _, section := range sections {
		for _, line := range strings.Split(section.Content, "\n") {
			line = strings.TrimSpace(line)
			line = strings.TrimSpace(strings.TrimLeft(line, "-*•"))
			if line == "" {
				continue
			}
			rows = append(rows, Row{Day: section.Title, Activity: line})
		}
	}
	return rows
}

// ExportCSV writes sections as a day,activity CSV with a header row.
func ExportCSV(w io.Writer, sections []Section) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)

	rows := Rows(sections)
	if len(rows) == 0 {
		if err := enc.EncodeHeader(Row{}); err != nil {
			return fmt.Errorf("encode header: %w", err)
		}
	} else if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("encode rows: %w", err)
	}

	cw.Flush()
	return cw.Error()
}
