// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/roodylabs/paperscout/pkg/types"
)

// csvHeader matches the spreadsheet column layout users import elsewhere.
var csvHeader = []string{"title", "authors", "abstract", "citations", "link", "source"}

// WriteCSV writes the records as UTF-8 CSV with a header row. Every field
// is emitted; records are normalized first so missing data appears as the
// standard fallback strings rather than empty cells.
func WriteCSV(w io.Writer, records []types.PaperRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		rec := r.Normalized()
		row := []string{rec.Title, rec.Authors, rec.Abstract, rec.CitationsOrMeta, rec.Link, string(rec.Source)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
