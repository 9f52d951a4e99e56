package tokenize

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/chemextract/pkg/types"
)

func texts(tokens []types.Token) []string {
	var out []string
	for _, t := range tokens {
		out = append(out, t.Text)
	}
	return out
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			"plain boundary",
			"The solid was dried. The yield was high.",
			[]string{"The solid was dried.", "The yield was high."},
		},
		{
			"dotted abbreviation does not split",
			"The solid was dried (b.p. 240 °C). The yield was high.",
			[]string{"The solid was dried (b.p. 240 °C).", "The yield was high."},
		},
		{
			"known abbreviations before capitals and digits",
			"Prepared as in Fig. 2 from e.g. benzene. Workup followed.",
			[]string{"Prepared as in Fig. 2 from e.g. benzene.", "Workup followed."},
		},
		{
			"lowercase continuation does not split",
			"The m.p. of the product. was not recorded here",
			[]string{"The m.p. of the product. was not recorded here"},
		},
		{
			"single sentence without terminator",
			"no terminator at all",
			[]string{"no terminator at all"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, s := range New().Process(tt.text) {
				got = append(got, s.Text)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSentenceOffsets(t *testing.T) {
	text := "First one.  Second one."
	sents := New().Process(text)
	require.Len(t, sents, 2)
	for _, s := range sents {
		assert.Equal(t, s.Text, text[s.Start:s.End])
	}
	assert.Equal(t, "Second one.", sents[1].Text)
}

func TestWords(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"(b.p. 240 °C).", []string{"(", "b.p.", "240", "°C", ")", "."}},
		{"benzene, toluene; xylene", []string{"benzene", ",", "toluene", ";", "xylene"}},
		{"240(5), measured", []string{"240(5)", ",", "measured"}},
		{"230–240 °C", []string{"230–240", "°C"}},
		{"m.p. was 389 K.", []string{"m.p.", "was", "389", "K", "."}},
		{"[Cu(NH3)4]SO4 salt", []string{"[Cu(NH3)4]SO4", "salt"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, texts(Words(tt.in)), "input %q", tt.in)
	}
}

func TestWordOffsets(t *testing.T) {
	in := "(b.p. 240 °C)"
	for _, tok := range Words(in) {
		assert.Equal(t, tok.Text, in[tok.Start:tok.End])
	}
}

func TestNumberTagging(t *testing.T) {
	byText := map[string]string{}
	for _, tok := range Words("mixed 240 with 230–240 and 240(5) of benzene") {
		byText[tok.Text] = tok.Tag
	}
	assert.Equal(t, "CD", byText["240"])
	assert.Equal(t, "CD", byText["230–240"])
	assert.Equal(t, "CD", byText["240(5)"])
	assert.Equal(t, "", byText["benzene"])
}

func TestDictionaryTagger(t *testing.T) {
	tagger := NewDictionaryTagger([]string{"benzene", "benzoic acid", "Coumarin 343"})
	sents := NewWithTagger(tagger).Process("Benzoic acid and benzene were mixed with Coumarin 343.")
	require.Len(t, sents, 1)

	byText := map[string]string{}
	for _, tok := range sents[0].Tokens {
		byText[tok.Text] = tok.EntityTag
	}
	assert.Equal(t, "B-CM", byText["Benzoic"], "longest name wins")
	assert.Equal(t, "I-CM", byText["acid"])
	assert.Equal(t, "B-CM", byText["benzene"])
	assert.Equal(t, "B-CM", byText["Coumarin"])
	assert.Equal(t, "I-CM", byText["343"])
	assert.Equal(t, "", byText["mixed"])
}

func TestLoadLexicon(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.yaml")
	require.NoError(t, os.WriteFile(path, []byte("names:\n  - benzene\n  - benzoic acid\n"), 0o644))

	tagger, err := LoadLexicon(path)
	require.NoError(t, err)

	tokens := Words("benzoic acid dissolved in benzene")
	tagger.Tag(tokens)
	assert.Equal(t, "B-CM", tokens[0].EntityTag)
	assert.Equal(t, "I-CM", tokens[1].EntityTag)
	assert.Equal(t, "B-CM", tokens[4].EntityTag)

	_, err = LoadLexicon(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
