package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
)

// Format is an output encoding for a [Plan].
type Format string

const (
	// FormatText writes one URL per line.
	FormatText Format = "text"
	// FormatJSON writes the whole plan as indented JSON.
	FormatJSON Format = "json"
	// FormatYAML writes the whole plan as YAML.
	FormatYAML Format = "yaml"
)

// AllFormats lists the formats accepted by [Encode].
var AllFormats = []Format{FormatText, FormatJSON, FormatYAML}

// ErrUnknownFormat is returned for an unsupported [Format].
var ErrUnknownFormat = errors.New("unknown format")

// GetFormat parses a format name.
func GetFormat(format string) (Format, error) {
	for _, f := range AllFormats {
		if strings.EqualFold(format, string(f)) {
			return f, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// Encode writes the plan to w.
func Encode(w io.Writer, p *Plan, format Format) error {
	switch format {
	case FormatText:
		for _, u := range p.URLs {
			_, err := fmt.Fprintln(w, u)
			if err != nil {
				return fmt.Errorf("write plan: %w", err)
			}
		}

	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		err := enc.Encode(p)
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}

	case FormatYAML:
		enc := yaml.NewEncoder(w, yaml.Indent(2), yaml.IndentSequence(true))

		err := enc.Encode(p)
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}

		err = enc.Close()
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}

	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	return nil
}
