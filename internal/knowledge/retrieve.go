// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
)

// QueryOptions holds parameters for knowledge base queries.
type QueryOptions struct {
	// Query is the FTS5 full-text search string.
	Query string

	// Model filters by model name, e.g. "BoilingPoint".
	Model string

	// Compound filters by an exact compound name or label.
	Compound string

	// PaperID filters by source paper.
	PaperID string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.Model == "" && q.Compound == "" && q.PaperID == ""
}

// QueryResult is one stored record with its paper metadata.
type QueryResult struct {
	ID             string         `json:"id" yaml:"id"`
	Model          string         `json:"model" yaml:"model"`
	PaperID        string         `json:"paper_id" yaml:"paper_id"`
	PaperTitle     string         `json:"paper_title,omitempty" yaml:"paper_title,omitempty"`
	Specifier      string         `json:"specifier,omitempty" yaml:"specifier,omitempty"`
	RawValue       string         `json:"raw_value,omitempty" yaml:"raw_value,omitempty"`
	RawUnits       string         `json:"raw_units,omitempty" yaml:"raw_units,omitempty"`
	Value          []float64      `json:"value,omitempty" yaml:"value,omitempty"`
	Error          float64        `json:"error,omitempty" yaml:"error,omitempty"`
	Units          string         `json:"units,omitempty" yaml:"units,omitempty"`
	CompoundNames  []string       `json:"compound_names,omitempty" yaml:"compound_names,omitempty"`
	CompoundLabels []string       `json:"compound_labels,omitempty" yaml:"compound_labels,omitempty"`
	Record         map[string]any `json:"record" yaml:"record"`
}

// Retrieve queries the knowledge base with optional full-text search
// and structured filters. Results are ranked by relevance for full-text
// queries or sorted by paper, model, and compound otherwise.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]QueryResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT r.id, r.model, r.paper_id, r.specifier, r.raw_value, r.raw_units,
				r.value, r.error, r.units, r.compound_names, r.compound_labels,
				r.serialized, p.title
			FROM records_fts
			JOIN records r ON r.rowid = records_fts.rowid
			LEFT JOIN papers p ON r.paper_id = p.id
			WHERE records_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT r.id, r.model, r.paper_id, r.specifier, r.raw_value, r.raw_units,
				r.value, r.error, r.units, r.compound_names, r.compound_labels,
				r.serialized, p.title
			FROM records r
			LEFT JOIN papers p ON r.paper_id = p.id
			WHERE 1=1`)
	}

	if opts.Model != "" {
		qb.WriteString(` AND r.model = ?`)
		args = append(args, opts.Model)
	}

	if opts.PaperID != "" {
		qb.WriteString(` AND r.paper_id = ?`)
		args = append(args, opts.PaperID)
	}

	if opts.Compound != "" {
		qb.WriteString(` AND (EXISTS (SELECT 1 FROM json_each(r.compound_names) WHERE value = ?)
			OR EXISTS (SELECT 1 FROM json_each(r.compound_labels) WHERE value = ?))`)
		args = append(args, opts.Compound, opts.Compound)
	}

	if useFTS {
		qb.WriteString(` ORDER BY records_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY r.paper_id, r.model, r.compound_names`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying knowledge base: %w", err)
	}
	defer rows.Close()

	var results []QueryResult
	for rows.Next() {
		qr, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, qr)
	}

	return results, rows.Err()
}

func scanResult(rows *sql.Rows) (QueryResult, error) {
	var (
		qr         QueryResult
		valueJSON  sql.NullString
		namesJSON  sql.NullString
		labelsJSON sql.NullString
		serialized string
		title      sql.NullString
	)

	if err := rows.Scan(
		&qr.ID, &qr.Model, &qr.PaperID, &qr.Specifier, &qr.RawValue, &qr.RawUnits,
		&valueJSON, &qr.Error, &qr.Units, &namesJSON, &labelsJSON,
		&serialized, &title,
	); err != nil {
		return QueryResult{}, fmt.Errorf("scanning row: %w", err)
	}

	if valueJSON.Valid {
		json.Unmarshal([]byte(valueJSON.String), &qr.Value)
	}
	if namesJSON.Valid {
		json.Unmarshal([]byte(namesJSON.String), &qr.CompoundNames)
	}
	if labelsJSON.Valid {
		json.Unmarshal([]byte(labelsJSON.String), &qr.CompoundLabels)
	}
	if title.Valid {
		qr.PaperTitle = title.String
	}
	if err := unmarshalRecord(serialized, &qr.Record); err != nil {
		return QueryResult{}, fmt.Errorf("decoding record %s: %w", qr.ID, err)
	}

	return qr, nil
}
