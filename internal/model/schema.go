// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package model declares record schemas for extracted properties and
// implements record construction, validation, merging, and
// serialization.
package model

import "github.com/pdiddy/chemextract/internal/pattern"

// Kind is the value type of a schema field.
type Kind int

const (
	KindString Kind = iota
	KindStringList
	KindFloat
	KindFloatList
	KindModel
)

// MergeRule controls how a field combines during a record merge.
type MergeRule int

const (
	// MergeFillEmpty sets the field only when it is empty. Because
	// mergeable records must agree on shared non-empty fields, a set
	// field is never overwritten.
	MergeFillEmpty MergeRule = iota

	// MergeUnion combines list values as a sorted set union.
	MergeUnion
)

// Field declares one schema field: its name, value kind, and the
// validation and merge constraints that apply to it.
type Field struct {
	// Name is the serialized field name.
	Name string

	// Kind is the value type.
	Kind Kind

	// Required marks the record invalid, and discarded, if the field is
	// still empty after the contextual merge pass.
	Required bool

	// Contextual allows the field to be filled by merging with a record
	// extracted from a different sentence, rather than from the
	// originating match.
	Contextual bool

	// Rule is the field's merge behavior.
	Rule MergeRule

	// Model is the nested record schema for KindModel fields.
	Model *Schema
}

// Schema declares the ordered fields of a record type. Schemas are
// immutable once constructed; serialization follows declaration order.
type Schema struct {
	// Name is the model name, used as the single top-level key in the
	// serialized form.
	Name string

	// Fields are the declared fields in order.
	Fields []Field
}

// Field returns the declaration for a field name.
func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Parser pairs a root pattern with an interpreter that turns matched
// parse trees into records. Implementations live in internal/parsers.
type Parser interface {
	// Root is the compiled root pattern scanned over each sentence.
	Root() pattern.Element

	// Interpret converts one matched tree into zero or more records.
	// Conversion failures yield fewer records, never an error.
	Interpret(n *pattern.Node) []*Record
}

// Model associates a schema with its registered parsers. The parser
// list is the sole extension surface: adding a parser instance enables
// extraction of the model from free text. Parsers run in registration
// order, so register general parsers before specific ones.
type Model struct {
	Schema  *Schema
	Parsers []Parser
}

// New builds a model over a schema with any initial parsers.
func New(schema *Schema, parsers ...Parser) *Model {
	return &Model{Schema: schema, Parsers: parsers}
}

// AddParser appends a parser to the model's ordered parser list.
func (m *Model) AddParser(p Parser) {
	m.Parsers = append(m.Parsers, p)
}
