package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/alexanderjulianmartinez/sqlite-schema/internal/source"
)

const (
	FormatText     = "text"
	FormatDetailed = "detailed"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
)

// Formats lists the names Format accepts.
var Formats = []string{FormatText, FormatDetailed, FormatJSON, FormatYAML}

// Text writes one line per column record. Only the table name and the
// declared type are printed; the column name is left out of this format.
func Text(info *source.DatabaseInfo) string {
	var b strings.Builder
	for _, t := range info.Tables {
		fmt.Fprintf(&b, "Table: %s Type: %s\n", t.Table, t.Type)
	}
	return b.String()
}

// Detailed is Text with the column name included.
func Detailed(info *source.DatabaseInfo) string {
	var b strings.Builder
	for _, t := range info.Tables {
		fmt.Fprintf(&b, "Table: %s Column: %s Type: %s\n", t.Table, t.Column, t.Type)
	}
	return b.String()
}

func JSON(info *source.DatabaseInfo) (string, error) {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode json: %w", err)
	}
	return string(data) + "\n", nil
}

func YAML(info *source.DatabaseInfo) (string, error) {
	data, err := yaml.Marshal(info)
	if err != nil {
		return "", fmt.Errorf("encode yaml: %w", err)
	}
	return string(data), nil
}

func Format(info *source.DatabaseInfo, format string) (string, error) {
	switch format {
	case FormatText, "":
		return Text(info), nil
	case FormatDetailed:
		return Detailed(info), nil
	case FormatJSON:
		return JSON(info)
	case FormatYAML:
		return YAML(info)
	default:
		return "", fmt.Errorf("unknown output format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
}
