package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"
)

func compound(names ...string) *Record {
	r := NewRecord(Compound)
	if len(names) > 0 {
		r.mustSet("names", names)
	}
	return r
}

func boilingPoint(raw string) *Record {
	r := NewRecord(BoilingPoint)
	r.mustSet("raw_value", raw)
	return r
}

func TestSerializeCompound(t *testing.T) {
	got := compound("Coumarin 343").Serialize()
	want := map[string]any{"Compound": map[string]any{"names": []string{"Coumarin 343"}}}
	assert.Equal(t, want, got)
}

func TestSerializeNestedQuantity(t *testing.T) {
	r := boilingPoint("240")
	r.mustSet("value", []float64{240.0})
	r.mustSet("units", "Celsius^(1.0)")
	r.mustSet("compound", compound("benzene"))

	got := r.Serialize()
	want := map[string]any{"BoilingPoint": map[string]any{
		"raw_value": "240",
		"value":     []float64{240.0},
		"units":     "Celsius^(1.0)",
		"compound":  map[string]any{"Compound": map[string]any{"names": []string{"benzene"}}},
	}}
	assert.Equal(t, want, got)
}

func TestYAMLFieldOrder(t *testing.T) {
	r := boilingPoint("240")
	r.mustSet("specifier", "b.p.")
	r.mustSet("raw_units", "°C")
	r.mustSet("value", []float64{240.0})

	data, err := yaml.Marshal(r)
	require.NoError(t, err)

	want := "BoilingPoint:\n" +
		"    specifier: b.p.\n" +
		"    raw_value: \"240\"\n" +
		"    raw_units: °C\n" +
		"    value:\n" +
		"        - 240\n"
	assert.Equal(t, want, string(data))
}

func TestSerializeRoundTrip(t *testing.T) {
	r := boilingPoint("240.5(3)")
	r.mustSet("specifier", "b.p.")
	r.mustSet("raw_units", "°C)")
	r.mustSet("value", []float64{240.5})
	r.mustSet("error", 0.3)
	r.mustSet("units", "Celsius^(1.0)")
	r.mustSet("compound", compound("benzene", "toluene"))

	data, err := yaml.Marshal(r)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(data, &decoded))

	back, err := Deserialize(decoded, Registry())
	require.NoError(t, err)
	assert.True(t, r.Equal(back), "round-trip must preserve all field values:\n%v\nvs\n%v", r.Serialize(), back.Serialize())
}

func TestDeserializeRejectsUnknownModel(t *testing.T) {
	_, err := Deserialize(map[string]any{"Mystery": map[string]any{}}, Registry())
	require.Error(t, err)
}

func TestValid(t *testing.T) {
	assert.False(t, NewRecord(BoilingPoint).Valid(), "raw_value is required")
	assert.True(t, boilingPoint("240").Valid())
	assert.True(t, compound("benzene").Valid(), "compound has no required fields")
}

func TestMergeFillsContextualCompound(t *testing.T) {
	bp := boilingPoint("240")
	cm := compound("benzene")

	require.True(t, bp.Merge(cm))
	assert.Equal(t, []string{"benzene"}, bp.Nested("compound").Strings("names"))

	// The nested record is a copy; mutating the source must not leak in.
	cm.mustSet("names", []string{"changed"})
	assert.Equal(t, []string{"benzene"}, bp.Nested("compound").Strings("names"))

	// A second, different compound cannot displace the first.
	assert.False(t, bp.Merge(compound("toluene")))
	assert.Equal(t, []string{"benzene"}, bp.Nested("compound").Strings("names"))
}

func TestMergeIncompatibleLeavesBothUntouched(t *testing.T) {
	a := boilingPoint("240")
	b := boilingPoint("250")
	beforeA, beforeB := a.Serialize(), b.Serialize()

	assert.False(t, a.Merge(b))
	assert.Equal(t, beforeA, a.Serialize())
	assert.Equal(t, beforeB, b.Serialize())
}

func TestMergeCommutativeAndIdempotent(t *testing.T) {
	build := func() (*Record, *Record) {
		a := boilingPoint("240")
		a.mustSet("specifier", "b.p.")
		b := boilingPoint("240")
		b.mustSet("units", "Celsius^(1.0)")
		b.mustSet("compound", compound("benzene"))
		return a, b
	}

	a1, b1 := build()
	require.True(t, a1.Merge(b1))

	a2, b2 := build()
	require.True(t, b2.Merge(a2))
	assert.True(t, a1.Equal(b2), "merge must be commutative for compatible records")

	// Merging the same record again changes nothing.
	_, b3 := build()
	snapshot := a1.Serialize()
	a1.Merge(b3)
	assert.Equal(t, snapshot, a1.Serialize(), "merge must be idempotent")
}

func TestMergeSelfIsNoOp(t *testing.T) {
	a := boilingPoint("240")
	before := a.Serialize()
	assert.False(t, a.Merge(a))
	assert.Equal(t, before, a.Serialize())
}

func TestCompoundUnionMerge(t *testing.T) {
	a := compound("toluene")
	b := compound("benzene", "toluene")
	require.True(t, a.Merge(b))
	assert.Equal(t, []string{"benzene", "toluene"}, a.Strings("names"))
}

func TestAddParserOrder(t *testing.T) {
	m := New(BoilingPoint)
	require.Empty(t, m.Parsers)
	m.AddParser(nil)
	m.AddParser(nil)
	assert.Len(t, m.Parsers, 2)
}

func TestSetRejectsWrongKind(t *testing.T) {
	r := NewRecord(BoilingPoint)
	assert.Error(t, r.Set("raw_value", 240))
	assert.Error(t, r.Set("value", "240"))
	assert.Error(t, r.Set("compound", boilingPoint("1")), "nested schema must match")
	assert.Error(t, r.Set("no_such_field", "x"))
}
