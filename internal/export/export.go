// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export renders search results to the supported output formats:
// an aligned terminal table, JSON, CSV, and an XLSX workbook.
package export

import (
	"fmt"
	"io"

	"github.com/roodylabs/paperscout/internal/aggregate"
)

// Format names an output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
	FormatXLSX  Format = "xlsx"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatTable, FormatJSON, FormatCSV, FormatXLSX:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown format %q (want table, json, csv, or xlsx)", s)
	}
}

// Write renders the result to w in the given format.
func Write(w io.Writer, res *aggregate.Result, format Format) error {
	switch format {
	case FormatTable:
		return WriteTable(w, res)
	case FormatJSON:
		return WriteJSON(w, res)
	case FormatCSV:
		return WriteCSV(w, res.Records)
	case FormatXLSX:
		return WriteXLSX(w, res.Records)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// FileExtension returns the conventional file extension for the format,
// without the dot. Table output has no file convention and maps to txt.
func FileExtension(format Format) string {
	switch format {
	case FormatJSON:
		return "json"
	case FormatCSV:
		return "csv"
	case FormatXLSX:
		return "xlsx"
	default:
		return "txt"
	}
}
