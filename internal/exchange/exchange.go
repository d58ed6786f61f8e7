// Package exchange exports and imports the entry list as JSON or YAML.
package exchange

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/peakstate/internal/constants"
	"github.com/julianstephens/peakstate/internal/models"
	"github.com/julianstephens/peakstate/internal/utils"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"

	documentVersion = 1
)

// ParseFormat accepts json, yaml or yml.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported format %q (use json or yaml)", s)
	}
}

// FormatFromPath picks the format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Document is the export envelope.
type Document struct {
	App        string               `json:"app" yaml:"app"`
	Version    int                  `json:"version" yaml:"version"`
	ExportedAt string               `json:"exportedAt" yaml:"exportedAt"`
	Header     *models.Header       `json:"header,omitempty" yaml:"header,omitempty"`
	Entries    []models.EntryRecord `json:"entries" yaml:"entries"`
}

// Export writes header and entries to w.
func Export(w io.Writer, format Format, header models.Header, entries []models.CheckInEntry, now time.Time) error {
	doc := Document{
		App:        constants.AppName,
		Version:    documentVersion,
		ExportedAt: utils.FormatTimestamp(now),
		Header:     &header,
		Entries:    make([]models.EntryRecord, 0, len(entries)),
	}
	for _, e := range entries {
		doc.Entries = append(doc.Entries, e.Record())
	}

	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// Imported is the result of reading an export.
type Imported struct {
	Header  *models.Header
	Entries []models.CheckInEntry
}

// Import reads either an export document or a bare entry list, the shape the
// browser stored under its data key.
func Import(r io.Reader, format Format) (Imported, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Imported{}, fmt.Errorf("failed to read import: %w", err)
	}

	var doc Document
	switch format {
	case FormatJSON:
		doc, err = decodeJSON(data)
	case FormatYAML:
		doc, err = decodeYAML(data)
	default:
		err = fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return Imported{}, err
	}
	if doc.Version > documentVersion {
		return Imported{}, fmt.Errorf("export version (%d) is newer than supported version (%d) - please upgrade %s", doc.Version, documentVersion, constants.AppName)
	}

	out := Imported{
		Header:  doc.Header,
		Entries: make([]models.CheckInEntry, 0, len(doc.Entries)),
	}
	for _, rec := range doc.Entries {
		out.Entries = append(out.Entries, rec.Entry())
	}
	return out, nil
}

func decodeJSON(data []byte) (Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var records []models.EntryRecord
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return Document{}, fmt.Errorf("failed to parse json entry list: %w", err)
		}
		return Document{Entries: records}, nil
	}

	var doc Document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return Document{}, fmt.Errorf("failed to parse json export: %w", err)
	}
	return doc, nil
}

func decodeYAML(data []byte) (Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return Document{}, fmt.Errorf("failed to parse yaml export: %w", err)
	}
	if len(root.Content) == 0 {
		return Document{}, nil
	}

	node := root.Content[0]
	if node.Kind == yaml.SequenceNode {
		var records []models.EntryRecord
		if err := node.Decode(&records); err != nil {
			return Document{}, fmt.Errorf("failed to decode yaml entry list: %w", err)
		}
		return Document{Entries: records}, nil
	}

	var doc Document
	if err := node.Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("failed to decode yaml export: %w", err)
	}
	return doc, nil
}
