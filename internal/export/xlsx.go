// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"io"

	"github.com/tealeg/xlsx/v2"

	"github.com/roodylabs/paperscout/pkg/types"
)

// SheetName is the single worksheet the workbook carries.
const SheetName = "Research Papers"

// WriteXLSX writes the records as an XLSX workbook with one sheet and the
// same column layout as the CSV export.
func WriteXLSX(w io.Writer, records []types.PaperRecord) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName)
	if err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, name := range csvHeader {
		header.AddCell().SetString(name)
	}

	for _, r := range records {
		rec := r.Normalized()
		row := sheet.AddRow()
		for _, v := range []string{rec.Title, rec.Authors, rec.Abstract, rec.CitationsOrMeta, rec.Link, string(rec.Source)} {
			row.AddCell().SetString(v)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
