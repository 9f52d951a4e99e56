package knowledge

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/chemextract/internal/extract"
	"github.com/pdiddy/chemextract/internal/model"
	"github.com/pdiddy/chemextract/pkg/types"
)

func compound(t *testing.T, names ...string) *model.Record {
	t.Helper()
	r := model.NewRecord(model.Compound)
	require.NoError(t, r.Set("names", names))
	return r
}

func boilingPoint(t *testing.T, raw string, value float64, compoundName string) *model.Record {
	t.Helper()
	r := model.NewRecord(model.BoilingPoint)
	require.NoError(t, r.Set("raw_value", raw))
	require.NoError(t, r.Set("value", []float64{value}))
	require.NoError(t, r.Set("units", "Celsius^(1.0)"))
	if compoundName != "" {
		require.NoError(t, r.Set("compound", compound(t, compoundName)))
	}
	return r
}

func writeResult(t *testing.T, knowledgeDir string, result *extract.Result) string {
	t.Helper()
	dir := filepath.Join(knowledgeDir, "extracted")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	data, err := yaml.Marshal(result)
	require.NoError(t, err)
	path := filepath.Join(dir, result.PaperID+"-records.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	knowledgeDir := t.TempDir()
	store, err := NewStore(types.KnowledgeBaseConfig{KnowledgeDir: knowledgeDir})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, knowledgeDir
}

func TestIngestAndRetrieve(t *testing.T) {
	store, knowledgeDir := newTestStore(t)
	ctx := context.Background()

	writeResult(t, knowledgeDir, &extract.Result{
		PaperID: "coumarin-343",
		Title:   "Synthesis of Coumarin 343",
		Records: []*model.Record{
			compound(t, "Coumarin 343"),
			boilingPoint(t, "240", 240, "Coumarin 343"),
		},
	})
	writeResult(t, knowledgeDir, &extract.Result{
		PaperID: "benzene-survey",
		Records: []*model.Record{boilingPoint(t, "80", 80, "benzene")},
	})

	var buf bytes.Buffer
	summary, err := store.Ingest(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, IngestSummary{Indexed: 2}, summary)
	assert.Equal(t, 2, summary.Total())
	assert.Contains(t, buf.String(), "indexing coumarin-343")

	// Full-text search ranks the matching paper's records.
	results, err := store.Retrieve(ctx, QueryOptions{Query: "benzene"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "benzene-survey", results[0].PaperID)
	assert.Equal(t, []float64{80}, results[0].Value)
	assert.Equal(t, []string{"benzene"}, results[0].CompoundNames)
	assert.Contains(t, results[0].Record, "BoilingPoint")

	// Structured filters.
	results, err = store.Retrieve(ctx, QueryOptions{Model: "BoilingPoint"})
	require.NoError(t, err)
	assert.Len(t, results, 2)

	results, err = store.Retrieve(ctx, QueryOptions{Compound: "Coumarin 343"})
	require.NoError(t, err)
	require.Len(t, results, 2, "the compound record and its boiling point")
	for _, r := range results {
		assert.Equal(t, "coumarin-343", r.PaperID)
		assert.Equal(t, "Synthesis of Coumarin 343", r.PaperTitle)
	}

	results, err = store.Retrieve(ctx, QueryOptions{PaperID: "benzene-survey"})
	require.NoError(t, err)
	assert.Len(t, results, 1)

	// Ingest wrote the default export.
	_, err = os.Stat(filepath.Join(knowledgeDir, "index", "export.yaml"))
	assert.NoError(t, err)
}

func TestIngestIncremental(t *testing.T) {
	store, knowledgeDir := newTestStore(t)
	ctx := context.Background()

	path := writeResult(t, knowledgeDir, &extract.Result{
		PaperID: "one",
		Records: []*model.Record{boilingPoint(t, "240", 240, "benzene")},
	})

	summary, err := store.Ingest(ctx, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, IngestSummary{Indexed: 1}, summary)

	// Unchanged file: skipped.
	summary, err = store.Ingest(ctx, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, IngestSummary{Skipped: 1}, summary)

	// Touched file: re-indexed, replacing the old records.
	writeResult(t, knowledgeDir, &extract.Result{
		PaperID: "one",
		Records: []*model.Record{boilingPoint(t, "250", 250, "benzene")},
	})
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, future, future))

	summary, err = store.Ingest(ctx, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, IngestSummary{Updated: 1}, summary)

	results, err := store.Retrieve(ctx, QueryOptions{Model: "BoilingPoint"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, []float64{250}, results[0].Value)
}

func TestIngestBadFile(t *testing.T) {
	store, knowledgeDir := newTestStore(t)

	dir := filepath.Join(knowledgeDir, "extracted")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad-records.yaml"), []byte("records:\n  - Mystery: {}\n"), 0o644))

	summary, err := store.Ingest(context.Background(), &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, IngestSummary{Failed: 1}, summary)
}

func TestExport(t *testing.T) {
	store, knowledgeDir := newTestStore(t)
	ctx := context.Background()

	writeResult(t, knowledgeDir, &extract.Result{
		PaperID: "one",
		Records: []*model.Record{
			compound(t, "benzene"),
			boilingPoint(t, "80", 80, "benzene"),
		},
	})
	_, err := store.Ingest(ctx, &bytes.Buffer{})
	require.NoError(t, err)

	require.NoError(t, store.ExportYAML(ctx, QueryOptions{}))
	data, err := os.ReadFile(filepath.Join(knowledgeDir, "index", "export.yaml"))
	require.NoError(t, err)

	var entries []ExportEntry
	require.NoError(t, yaml.Unmarshal(data, &entries))
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, "one", e.PaperID)
		assert.NotEmpty(t, e.ID)
		assert.NotEmpty(t, e.Record)
	}

	require.NoError(t, store.ExportJSON(ctx, QueryOptions{Model: "BoilingPoint"}))
	data, err = os.ReadFile(filepath.Join(knowledgeDir, "index", "export.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"model": "BoilingPoint"`)
}

func TestQueryOptionsIsEmpty(t *testing.T) {
	assert.True(t, QueryOptions{}.IsEmpty())
	assert.False(t, QueryOptions{Model: "Compound"}.IsEmpty())
	assert.False(t, QueryOptions{Query: "benzene"}.IsEmpty())
}

func TestIngestMissingDir(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.Ingest(context.Background(), &bytes.Buffer{})
	require.Error(t, err)
}
