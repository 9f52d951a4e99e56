// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package model

// Compound is the chemical-entity schema. All fields are list-valued
// and merge by sorted union, so repeated mentions of the same compound
// collapse into one record.
var Compound = &Schema{
	Name: "Compound",
	Fields: []Field{
		{Name: "names", Kind: KindStringList, Rule: MergeUnion},
		{Name: "labels", Kind: KindStringList, Rule: MergeUnion},
		{Name: "roles", Kind: KindStringList, Rule: MergeUnion},
	},
}

// QuantitySchema declares the standard field set for a measured
// physical property: the captured specifier and raw spans, the parsed
// numeric value with optional error margin, canonical units, and the
// linked compound. The compound is contextual: it may be satisfied by a
// mention in a nearby sentence or heading rather than the originating
// match.
func QuantitySchema(name string) *Schema {
	return &Schema{
		Name: name,
		Fields: []Field{
			{Name: "specifier", Kind: KindString},
			{Name: "raw_value", Kind: KindString, Required: true},
			{Name: "raw_units", Kind: KindString},
			{Name: "value", Kind: KindFloatList},
			{Name: "error", Kind: KindFloat},
			{Name: "units", Kind: KindString},
			{Name: "compound", Kind: KindModel, Contextual: true, Model: Compound},
		},
	}
}

// MeltingPoint and BoilingPoint are the shipped temperature properties.
var (
	MeltingPoint = QuantitySchema("MeltingPoint")
	BoilingPoint = QuantitySchema("BoilingPoint")
)

// Registry maps model names to the shipped schemas, for deserializing
// stored record sets.
func Registry() map[string]*Schema {
	return map[string]*Schema{
		Compound.Name:     Compound,
		MeltingPoint.Name: MeltingPoint,
		BoilingPoint.Name: BoilingPoint,
	}
}
