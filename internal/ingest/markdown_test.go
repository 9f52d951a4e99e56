package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/chemextract/internal/tokenize"
	"github.com/pdiddy/chemextract/pkg/types"
)

const paper = `# Synthesis of Coumarin 343

## Experimental

The crude product was recrystallized from ethanol. The procedure was
followed to yield a pale yellow solid (b.p. 240 °C).

Figure 1. Crystals of the product.

## Results

The melting point was 389 K.
`

func TestMarkdown(t *testing.T) {
	doc := Markdown([]byte(paper), "coumarin-343", tokenize.New())

	assert.Equal(t, "coumarin-343", doc.ID)
	assert.Equal(t, "Synthesis of Coumarin 343", doc.Title)

	var kinds []types.ElementKind
	for _, el := range doc.Elements {
		kinds = append(kinds, el.Kind)
	}
	assert.Equal(t, []types.ElementKind{
		types.ElementTitle,
		types.ElementHeading,
		types.ElementParagraph,
		types.ElementCaption,
		types.ElementHeading,
		types.ElementParagraph,
	}, kinds)

	// Soft-wrapped markdown joins into one flowing paragraph.
	para := doc.Elements[2]
	require.Len(t, para.Sentences, 2)
	assert.Contains(t, para.Sentences[1].Text, "(b.p. 240 °C).")
	assert.NotEmpty(t, para.Sentences[1].Tokens)
}

func TestMarkdownPreformattedBlock(t *testing.T) {
	// Indented blocks have no inline children; their text comes from the
	// block's raw line segments.
	src := "Characterization data:\n\n    m.p. 230–232 °C\n    b.p. 240 °C\n"
	doc := Markdown([]byte(src), "data", tokenize.New())

	require.Len(t, doc.Elements, 2)
	block := doc.Elements[1]
	assert.Equal(t, types.ElementParagraph, block.Kind)
	assert.Contains(t, block.Text, "m.p. 230–232 °C")
	assert.Contains(t, block.Text, "b.p. 240 °C")
}

func TestMarkdownWithoutTitle(t *testing.T) {
	doc := Markdown([]byte("Just one paragraph of text."), "plain", tokenize.New())
	assert.Empty(t, doc.Title)
	require.Len(t, doc.Elements, 1)
	assert.Equal(t, types.ElementParagraph, doc.Elements[0].Kind)
}

func TestFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample-paper.md")
	require.NoError(t, os.WriteFile(path, []byte(paper), 0o644))

	doc, err := File(path, tokenize.New())
	require.NoError(t, err)
	assert.Equal(t, "sample-paper", doc.ID)
	assert.Equal(t, "Synthesis of Coumarin 343", doc.Title)

	_, err = File(filepath.Join(dir, "missing.md"), tokenize.New())
	require.Error(t, err)
}
