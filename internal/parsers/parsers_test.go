package parsers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/chemextract/internal/model"
	"github.com/pdiddy/chemextract/internal/pattern"
	"github.com/pdiddy/chemextract/pkg/types"
)

func toks(words ...string) []types.Token {
	out := make([]types.Token, len(words))
	for i, w := range words {
		out[i] = types.Token{Text: w}
	}
	return out
}

// entToks builds tokens from "word/TAG" specs, where the tag part is
// the entity tag and may be omitted.
func entToks(specs ...string) []types.Token {
	out := make([]types.Token, len(specs))
	for i, s := range specs {
		text, tag, _ := strings.Cut(s, "/")
		out[i] = types.Token{Text: text, EntityTag: tag}
	}
	return out
}

// run scans a parser over the tokens and interprets every match.
func run(p model.Parser, tokens []types.Token) []*model.Record {
	var records []*model.Record
	for _, res := range pattern.Scan(p.Root(), tokens, 0) {
		records = append(records, p.Interpret(res.Root)...)
	}
	return records
}

func TestBoilingPointParenthetical(t *testing.T) {
	sentence := toks("The", "procedure", "was", "followed", "to", "yield",
		"a", "pale", "yellow", "solid", "(", "b.p.", "240", "°C", ")")

	records := run(NewBoilingPointParser(), sentence)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "b.p.", r.String("specifier"))
	assert.Equal(t, "240", r.String("raw_value"))
	assert.Equal(t, "°C)", r.String("raw_units"), "trailing bracket stays in the raw capture")
	assert.Equal(t, []float64{240}, r.Floats("value"))
	assert.Equal(t, "Celsius^(1.0)", r.String("units"), "raw capture still resolves to Celsius")
}

func TestMeltingPointRangeYieldsOneRecord(t *testing.T) {
	for name, sentence := range map[string][]types.Token{
		"single token": toks("m.p.", "230–240", "°C"),
		"split tokens": toks("m.p.", "230", "–", "240", "°C"),
	} {
		t.Run(name, func(t *testing.T) {
			records := run(NewMeltingPointParser(), sentence)
			require.Len(t, records, 1, "a range is one record, not two")
			assert.Equal(t, "230–240", records[0].String("raw_value"))
			assert.Equal(t, []float64{230, 240}, records[0].Floats("value"))
		})
	}
}

func TestSpelledOutSpecifierWithFiller(t *testing.T) {
	sentence := toks("The", "boiling", "point", "of", "the", "product")
	require.Empty(t, run(NewBoilingPointParser(), sentence), "specifier without a value is no match")

	sentence = toks("the", "melting", "point", "was", "389", "K")
	records := run(NewMeltingPointParser(), sentence)
	require.Len(t, records, 1)
	assert.Equal(t, "melting point", records[0].String("specifier"))
	assert.Equal(t, []float64{389}, records[0].Floats("value"))
	assert.Equal(t, "Kelvin^(1.0)", records[0].String("units"))
}

func TestErrorMargins(t *testing.T) {
	records := run(NewBoilingPointParser(), toks("b.p.", "240", "±", "5", "K"))
	require.Len(t, records, 1)
	assert.Equal(t, "240±5", records[0].String("raw_value"))
	assert.Equal(t, []float64{240}, records[0].Floats("value"))
	margin, ok := records[0].Float("error")
	require.True(t, ok)
	assert.Equal(t, 5.0, margin)

	records = run(NewMeltingPointParser(), toks("m.p.", "240.5", "(", "3", ")", "°C"))
	require.Len(t, records, 1)
	assert.Equal(t, "240.5(3)", records[0].String("raw_value"))
	margin, ok = records[0].Float("error")
	require.True(t, ok)
	assert.InDelta(t, 0.3, margin, 1e-9, "parenthesized error scales to the last decimal place")
}

func TestStrictUnits(t *testing.T) {
	unitless := toks("b.p.", "240")
	assert.Empty(t, run(NewBoilingPointParser(WithStrictUnits(true)), unitless))

	records := run(NewBoilingPointParser(), unitless)
	require.Len(t, records, 1, "permissive mode keeps the unit-less record")
	assert.Equal(t, "", records[0].String("units"))

	unknown := toks("b.p.", "240", "mmHg")
	assert.Empty(t, run(NewBoilingPointParser(WithStrictUnits(true)), unknown))
	records = run(NewBoilingPointParser(), unknown)
	require.Len(t, records, 1)
	assert.Equal(t, "", records[0].String("units"), "unrecognized raw units carry no canonical form")
}

func TestCompoundParser(t *testing.T) {
	p := NewCompoundParser()

	records := run(p, entToks("4-amino/B-CM", "benzoic/I-CM", "acid/I-CM", "melts", "readily"))
	require.Len(t, records, 1)
	assert.Equal(t, []string{"4-amino benzoic acid"}, records[0].Strings("names"))

	records = run(p, entToks("benzene/B-CM", "and", "toluene/B-CM"))
	require.Len(t, records, 2, "separated mentions are separate records")

	records = run(p, entToks("benzene/B-CM", "toluene/B-CM"))
	require.Len(t, records, 1, "adjacent mentions share one record")
	assert.Equal(t, []string{"benzene", "toluene"}, records[0].Strings("names"))

	assert.Empty(t, run(p, toks("no", "entities", "here")))
}

func TestLabelParser(t *testing.T) {
	records := run(NewLabelParser(), toks("compound", "3", "and", "4a", "decomposed"))
	require.Len(t, records, 1)
	assert.Equal(t, []string{"3", "4a"}, records[0].Strings("labels"))

	assert.Empty(t, run(NewLabelParser(), toks("at", "240", "minutes")),
		"bare numbers without a cue word are not labels")
}

func TestDefaultModels(t *testing.T) {
	models := DefaultModels()
	require.Len(t, models, 3)
	assert.Same(t, model.Compound, models[0].Schema)
	assert.Len(t, models[0].Parsers, 2)
	assert.Same(t, model.MeltingPoint, models[1].Schema)
	assert.Same(t, model.BoilingPoint, models[2].Schema)
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		raw    string
		vals   []float64
		margin float64
		ok     bool
	}{
		{"240", []float64{240}, 0, true},
		{"240.5", []float64{240.5}, 0, true},
		{"-12.5", []float64{-12.5}, 0, true},
		{"240±5", []float64{240}, 5, true},
		{"240+/-5", []float64{240}, 5, true},
		{"240(5)", []float64{240}, 5, true},
		{"240.5(3)", []float64{240.5}, 0.3, true},
		{"230–240", []float64{230, 240}, 0, true},
		{"230-240", []float64{230, 240}, 0, true},
		{"", nil, 0, false},
		{"abc", nil, 0, false},
		{"240–", nil, 0, false},
	}
	for _, tt := range tests {
		vals, margin, ok := parseValue(tt.raw)
		if assert.Equal(t, tt.ok, ok, "raw %q", tt.raw) && ok {
			assert.Equal(t, tt.vals, vals, "raw %q", tt.raw)
			assert.InDelta(t, tt.margin, margin, 1e-9, "raw %q", tt.raw)
		}
	}
}
