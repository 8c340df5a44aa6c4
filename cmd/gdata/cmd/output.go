package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// listing is a uniform row set the commands hand to the formatter:
// column keys in display order plus one map per entry.
type listing struct {
	Columns []string
	Rows    []map[string]string
}

// formatListing writes the listing in the requested format.
func formatListing(w io.Writer, format string, l listing) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(l.Rows)
	case "yaml":
		data, err := yaml.Marshal(l.Rows)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case "text", "":
		return formatText(w, l)
	}
	return fmt.Errorf("unknown output format %q", format)
}

// formatText prints one block per row, title-casing the column keys
// into labels.
func formatText(w io.Writer, l listing) error {
	caser := cases.Title(language.English)
	for _, row := range l.Rows {
		for _, col := range l.Columns {
			value := row[col]
			if value == "" {
				continue
			}
			label := caser.String(strings.ReplaceAll(col, "-", " "))
			if _, err := fmt.Fprintf(w, "%s: %s\n", label, value); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%d entries\n", len(l.Rows))
	return err
}
