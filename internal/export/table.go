// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/roodylabs/paperscout/internal/aggregate"
)

const maxTableCell = 60

// WriteTable renders a human-readable summary: an aligned table of records
// followed by per-source counts and any source failures.
func WriteTable(w io.Writer, res *aggregate.Result) error {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tTITLE\tAUTHORS\tCITATIONS\tSOURCE")
	for i, r := range res.Records {
		rec := r.Normalized()
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			i+1,
			truncate(rec.Title, maxTableCell),
			truncate(rec.Authors, maxTableCell),
			truncate(rec.CitationsOrMeta, maxTableCell),
			rec.Source)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%d papers for %q\n", len(res.Records), res.Query)
	for _, src := range res.Sources() {
		fmt.Fprintf(w, "  %s: %d\n", src, res.Counts[src])
	}
	for _, f := range res.Failures {
		fmt.Fprintf(w, "  %s failed: %s\n", f.Source, f.Message)
	}
	return nil
}

// WriteJSON writes the full result, failures and counts included, as
// indented JSON.
func WriteJSON(w io.Writer, res *aggregate.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
