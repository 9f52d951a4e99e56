// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract runs registered models over tokenized documents and
// owns the record lifecycle: matching, interpretation, contextual
// merging, deduplication, and validation.
package extract

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/chemextract/internal/ingest"
	"github.com/pdiddy/chemextract/internal/model"
	"github.com/pdiddy/chemextract/internal/pattern"
	"github.com/pdiddy/chemextract/internal/tokenize"
	"github.com/pdiddy/chemextract/pkg/types"
)

const extractedDir = "extracted"

// Result is the extraction output for one paper.
type Result struct {
	PaperID string          `yaml:"paper"`
	Title   string          `yaml:"title,omitempty"`
	Records []*model.Record `yaml:"records"`
}

// BatchSummary holds counts from a batch extraction run.
type BatchSummary struct {
	Extracted int
	Skipped   int
	Failed    int
}

// Total returns the number of papers processed.
func (s BatchSummary) Total() int {
	return s.Extracted + s.Skipped + s.Failed
}

// HasFailures reports whether any papers failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// candidate is a record with the index of the element it came from,
// kept through the merge pass.
type candidate struct {
	record  *model.Record
	element int
}

// Extract runs every parser of every model over the document and
// returns the merged, deduplicated, valid records in document order.
//
// Title and heading elements run only compound models; a heading names
// a substance, it does not state its properties. Quantity records left
// without a compound after matching are completed contextually: first
// from a mention in the same element, then from the nearest preceding
// heading, then from the title.
func Extract(doc *types.Document, models []*model.Model, budget int) []*model.Record {
	cands := collect(doc, models, budget)
	mergeContextual(doc, cands)

	// Collapse compound mentions that share a name or label, keeping
	// the position of the first mention.
	var out []*model.Record
	var compounds []*model.Record
	for _, c := range cands {
		if c.record.Schema() != model.Compound {
			out = append(out, c.record)
			continue
		}
		merged := false
		for _, prev := range compounds {
			if sharesMention(prev, c.record) && prev.Merge(c.record) {
				merged = true
				break
			}
		}
		if !merged {
			compounds = append(compounds, c.record)
			out = append(out, c.record)
		}
	}

	return dedupe(out)
}

// collect scans every sentence with every applicable parser.
func collect(doc *types.Document, models []*model.Model, budget int) []candidate {
	var cands []candidate
	for ei, el := range doc.Elements {
		for _, m := range models {
			if el.Kind.IsHeading() && m.Schema != model.Compound {
				continue
			}
			for _, p := range m.Parsers {
				for _, s := range el.Sentences {
					for _, res := range pattern.Scan(p.Root(), s.Tokens, budget) {
						for _, r := range p.Interpret(res.Root) {
							cands = append(cands, candidate{record: r, element: ei})
						}
					}
				}
			}
		}
	}
	return cands
}

// mergeContextual fills the contextual compound of quantity records
// from surrounding mentions, nearest scope first.
func mergeContextual(doc *types.Document, cands []candidate) {
	scope := headingScopes(doc)
	titleIdx := -1
	for i, el := range doc.Elements {
		if el.Kind == types.ElementTitle {
			titleIdx = i
			break
		}
	}

	tryElement := func(r *model.Record, ei int) bool {
		for _, c := range cands {
			if c.element == ei && c.record.Schema() == model.Compound && r.Merge(c.record) {
				return true
			}
		}
		return false
	}

	for _, c := range cands {
		if c.record.Schema() == model.Compound {
			continue
		}
		if tryElement(c.record, c.element) {
			continue
		}
		if h := scope[c.element]; h >= 0 && tryElement(c.record, h) {
			continue
		}
		if titleIdx >= 0 && titleIdx != scope[c.element] {
			tryElement(c.record, titleIdx)
		}
	}
}

// headingScopes maps each element index to the nearest preceding
// heading or title element, or -1.
func headingScopes(doc *types.Document) []int {
	scope := make([]int, len(doc.Elements))
	last := -1
	for i, el := range doc.Elements {
		if el.Kind.IsHeading() {
			last = i
		}
		scope[i] = last
	}
	return scope
}

// sharesMention reports whether two compound records refer to the same
// substance: they share a name or a label.
func sharesMention(a, b *model.Record) bool {
	return intersects(a.Strings("names"), b.Strings("names")) ||
		intersects(a.Strings("labels"), b.Strings("labels"))
}

func intersects(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

// dedupe drops records equal to an earlier one, then records that are
// empty or missing required fields.
func dedupe(records []*model.Record) []*model.Record {
	var out []*model.Record
	for _, r := range records {
		if r.Empty() || !r.Valid() {
			continue
		}
		dup := false
		for _, prev := range out {
			if prev.Equal(r) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, r)
		}
	}
	return out
}

// ExtractPaper ingests one markdown paper and extracts its records.
func ExtractPaper(path string, tok *tokenize.Tokenizer, models []*model.Model, budget int) (*Result, error) {
	doc, err := ingest.File(path, tok)
	if err != nil {
		return nil, err
	}
	return &Result{
		PaperID: doc.ID,
		Title:   doc.Title,
		Records: Extract(doc, models, budget),
	}, nil
}

// ExtractAll processes every markdown paper in cfg.PapersDir and writes
// one record file per paper to cfg.KnowledgeDir/extracted/. Papers
// whose output is newer than the source are skipped.
func ExtractAll(cfg types.ExtractionConfig, tok *tokenize.Tokenizer, models []*model.Model, w io.Writer) (BatchSummary, error) {
	outDir := filepath.Join(cfg.KnowledgeDir, extractedDir)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return BatchSummary{}, fmt.Errorf("creating output directory: %w", err)
	}

	entries, err := os.ReadDir(cfg.PapersDir)
	if err != nil {
		return BatchSummary{}, fmt.Errorf("reading papers directory %s: %w", cfg.PapersDir, err)
	}

	var summary BatchSummary

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}

		paperID := strings.TrimSuffix(entry.Name(), ".md")
		mdPath := filepath.Join(cfg.PapersDir, entry.Name())
		outPath := filepath.Join(outDir, paperID+"-records.yaml")

		changed, err := hasChanged(mdPath, outPath)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", paperID, err)
			summary.Failed++
			continue
		}
		if !changed {
			fmt.Fprintf(w, "skipped %s\n", paperID)
			summary.Skipped++
			continue
		}

		result, err := ExtractPaper(mdPath, tok, models, cfg.BacktrackBudget)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", paperID, err)
			summary.Failed++
			continue
		}

		if err := writeResult(outPath, result); err != nil {
			fmt.Fprintf(w, "failed  %s: write error: %v\n", paperID, err)
			summary.Failed++
			continue
		}

		fmt.Fprintf(w, "extracted %s (%d records)\n", paperID, len(result.Records))
		summary.Extracted++
	}

	return summary, nil
}

// hasChanged reports whether the paper is newer than the output file.
// Returns true if the output does not exist.
func hasChanged(mdPath, outPath string) (bool, error) {
	mdInfo, err := os.Stat(mdPath)
	if err != nil {
		return false, fmt.Errorf("stat paper %s: %w", mdPath, err)
	}

	outInfo, err := os.Stat(outPath)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, fmt.Errorf("stat output %s: %w", outPath, err)
	}

	return mdInfo.ModTime().After(outInfo.ModTime()), nil
}

// writeResult marshals a paper's records to a YAML file.
func writeResult(path string, result *Result) error {
	data, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshaling records: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadResult reads a record file written by ExtractAll.
func LoadResult(path string, registry map[string]*model.Schema) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading records %s: %w", path, err)
	}

	var raw struct {
		Paper   string           `yaml:"paper"`
		Title   string           `yaml:"title"`
		Records []map[string]any `yaml:"records"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing records %s: %w", path, err)
	}

	result := &Result{PaperID: raw.Paper, Title: raw.Title}
	for i, m := range raw.Records {
		r, err := model.Deserialize(m, registry)
		if err != nil {
			return nil, fmt.Errorf("record %d in %s: %w", i, path, err)
		}
		result.Records = append(result.Records, r)
	}
	return result, nil
}
