// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// ExportEntry holds one record with its provenance for export.
type ExportEntry struct {
	ID         string         `json:"id" yaml:"id"`
	Model      string         `json:"model" yaml:"model"`
	PaperID    string         `json:"paper_id" yaml:"paper_id"`
	PaperTitle string         `json:"paper_title,omitempty" yaml:"paper_title,omitempty"`
	Record     map[string]any `json:"record" yaml:"record"`
}

const exportLimit = 100000

// ExportYAML writes the knowledge base to knowledge/index/export.yaml.
// It supports the same filters as Retrieve.
func (s *Store) ExportYAML(ctx context.Context, opts QueryOptions) error {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return err
	}

	path := filepath.Join(s.knowledgeDir, indexDir, "export.yaml")
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportJSON writes the knowledge base to knowledge/index/export.json.
// It supports the same filters as Retrieve.
func (s *Store) ExportJSON(ctx context.Context, opts QueryOptions) error {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return err
	}

	path := filepath.Join(s.knowledgeDir, indexDir, "export.json")
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *Store) exportEntries(ctx context.Context, opts QueryOptions) ([]ExportEntry, error) {
	opts.MaxResults = exportLimit
	results, err := s.Retrieve(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	entries := make([]ExportEntry, len(results))
	for i, r := range results {
		entries[i] = ExportEntry{
			ID:         r.ID,
			Model:      r.Model,
			PaperID:    r.PaperID,
			PaperTitle: r.PaperTitle,
			Record:     r.Record,
		}
	}

	return entries, nil
}

// unmarshalRecord decodes the stored YAML serialization of a record
// into its map form for query and export output.
func unmarshalRecord(serialized string, out *map[string]any) error {
	return yaml.Unmarshal([]byte(serialized), out)
}
