// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package model

import (
	"fmt"
	"reflect"
	"sort"

	"go.yaml.in/yaml/v3"
)

// Record is a concrete, possibly partial, instance of a schema.
// Records are created by parsers from one matched parse tree, may gain
// contextual fields during document-level merging, and are discarded if
// required fields remain empty.
type Record struct {
	schema *Schema
	values map[string]any
}

// NewRecord builds an empty record for a schema.
func NewRecord(schema *Schema) *Record {
	return &Record{schema: schema, values: map[string]any{}}
}

// Schema returns the record's schema.
func (r *Record) Schema() *Schema { return r.schema }

// Set assigns a field value, enforcing the declared kind.
func (r *Record) Set(name string, value any) error {
	f, ok := r.schema.Field(name)
	if !ok {
		return fmt.Errorf("model %s has no field %q", r.schema.Name, name)
	}
	switch f.Kind {
	case KindString:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("field %s.%s wants string, got %T", r.schema.Name, name, value)
		}
	case KindStringList:
		if _, ok := value.([]string); !ok {
			return fmt.Errorf("field %s.%s wants []string, got %T", r.schema.Name, name, value)
		}
	case KindFloat:
		if _, ok := value.(float64); !ok {
			return fmt.Errorf("field %s.%s wants float64, got %T", r.schema.Name, name, value)
		}
	case KindFloatList:
		if _, ok := value.([]float64); !ok {
			return fmt.Errorf("field %s.%s wants []float64, got %T", r.schema.Name, name, value)
		}
	case KindModel:
		nested, ok := value.(*Record)
		if !ok {
			return fmt.Errorf("field %s.%s wants *Record, got %T", r.schema.Name, name, value)
		}
		if nested.schema != f.Model {
			return fmt.Errorf("field %s.%s wants %s record, got %s", r.schema.Name, name, f.Model.Name, nested.schema.Name)
		}
	}
	r.values[name] = value
	return nil
}

// mustSet is Set for values whose kind is statically known to be right.
func (r *Record) mustSet(name string, value any) {
	if err := r.Set(name, value); err != nil {
		panic(err)
	}
}

// String returns the string value of a field, or "" if unset.
func (r *Record) String(name string) string {
	s, _ := r.values[name].(string)
	return s
}

// Strings returns the string-list value of a field.
func (r *Record) Strings(name string) []string {
	s, _ := r.values[name].([]string)
	return s
}

// Float returns the float value of a field and whether it is set.
func (r *Record) Float(name string) (float64, bool) {
	f, ok := r.values[name].(float64)
	return f, ok
}

// Floats returns the float-list value of a field.
func (r *Record) Floats(name string) []float64 {
	f, _ := r.values[name].([]float64)
	return f
}

// Nested returns the nested record value of a field, or nil.
func (r *Record) Nested(name string) *Record {
	n, _ := r.values[name].(*Record)
	return n
}

// fieldEmpty reports whether a field carries no usable value.
func (r *Record) fieldEmpty(name string) bool {
	v, ok := r.values[name]
	if !ok || v == nil {
		return true
	}
	switch t := v.(type) {
	case string:
		return t == ""
	case []string:
		return len(t) == 0
	case []float64:
		return len(t) == 0
	case *Record:
		return t == nil || t.Empty()
	}
	return false
}

// Empty reports whether every field of the record is empty.
func (r *Record) Empty() bool {
	for _, f := range r.schema.Fields {
		if !r.fieldEmpty(f.Name) {
			return false
		}
	}
	return true
}

// Valid reports whether every required field is filled, recursing into
// nested records that are present.
func (r *Record) Valid() bool {
	for _, f := range r.schema.Fields {
		if f.Required && r.fieldEmpty(f.Name) {
			return false
		}
		if f.Kind == KindModel && !r.fieldEmpty(f.Name) && !r.Nested(f.Name).Valid() {
			return false
		}
	}
	return true
}

// Equal reports full-field equality between two records.
func (r *Record) Equal(other *Record) bool {
	if r == nil || other == nil {
		return r == other
	}
	if r.schema != other.schema {
		return false
	}
	return reflect.DeepEqual(r.Serialize(), other.Serialize())
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	out := NewRecord(r.schema)
	for name, v := range r.values {
		switch t := v.(type) {
		case []string:
			out.values[name] = append([]string(nil), t...)
		case []float64:
			out.values[name] = append([]float64(nil), t...)
		case *Record:
			out.values[name] = t.Clone()
		default:
			out.values[name] = v
		}
	}
	return out
}

// Merge attempts to merge other into r. Two records of the same schema
// are mergeable only if every field non-empty in both agrees exactly;
// on success r's remaining fields fill from other per each field's
// merge rule. A record of a different schema merges into r only by
// filling an empty contextual nested-model field declared for that
// schema. Returns whether r changed or the pair was compatible;
// incompatible pairs leave both records untouched.
func (r *Record) Merge(other *Record) bool {
	if r == other || other == nil {
		return false
	}

	if r.schema != other.schema {
		return r.mergeNested(other)
	}

	// Compatibility: shared non-empty fields must agree exactly.
	for _, f := range r.schema.Fields {
		if r.fieldEmpty(f.Name) || other.fieldEmpty(f.Name) {
			continue
		}
		if f.Rule == MergeUnion {
			continue
		}
		if !reflect.DeepEqual(r.values[f.Name], other.values[f.Name]) {
			if f.Kind == KindModel && r.Nested(f.Name).Equal(other.Nested(f.Name)) {
				continue
			}
			return false
		}
	}

	for _, f := range r.schema.Fields {
		switch {
		case f.Rule == MergeUnion && f.Kind == KindStringList:
			merged := unionStrings(r.Strings(f.Name), other.Strings(f.Name))
			if len(merged) > 0 {
				r.values[f.Name] = merged
			}
		case r.fieldEmpty(f.Name) && !other.fieldEmpty(f.Name):
			if f.Kind == KindModel {
				r.values[f.Name] = other.Nested(f.Name).Clone()
			} else {
				r.values[f.Name] = other.values[f.Name]
			}
		}
	}
	return true
}

// mergeNested fills an empty contextual nested-model field from a
// record of the field's schema.
func (r *Record) mergeNested(other *Record) bool {
	for _, f := range r.schema.Fields {
		if f.Kind != KindModel || !f.Contextual || f.Model != other.schema {
			continue
		}
		if !r.fieldEmpty(f.Name) {
			return false
		}
		r.values[f.Name] = other.Clone()
		return true
	}
	return false
}

func unionStrings(a, b []string) []string {
	seen := map[string]bool{}
	for _, s := range a {
		seen[s] = true
	}
	for _, s := range b {
		seen[s] = true
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Serialize converts the record to its one-key mapping form:
// {ModelName: {field: value}}. Empty fields are omitted; nested models
// serialize recursively in the same form.
func (r *Record) Serialize() map[string]any {
	fields := map[string]any{}
	for _, f := range r.schema.Fields {
		if r.fieldEmpty(f.Name) {
			continue
		}
		if f.Kind == KindModel {
			fields[f.Name] = r.Nested(f.Name).Serialize()
		} else {
			fields[f.Name] = r.values[f.Name]
		}
	}
	return map[string]any{r.schema.Name: fields}
}

// MarshalYAML serializes the record with fields in schema declaration
// order.
func (r *Record) MarshalYAML() (any, error) {
	return r.yamlNode(), nil
}

func (r *Record) yamlNode() *yaml.Node {
	inner := &yaml.Node{Kind: yaml.MappingNode}
	for _, f := range r.schema.Fields {
		if r.fieldEmpty(f.Name) {
			continue
		}
		key := &yaml.Node{Kind: yaml.ScalarNode, Value: f.Name}
		var val *yaml.Node
		if f.Kind == KindModel {
			val = r.Nested(f.Name).yamlNode()
		} else {
			val = &yaml.Node{}
			if err := val.Encode(r.values[f.Name]); err != nil {
				continue
			}
		}
		inner.Content = append(inner.Content, key, val)
	}
	outer := &yaml.Node{Kind: yaml.MappingNode}
	outer.Content = append(outer.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: r.schema.Name},
		inner,
	)
	return outer
}

// Deserialize rebuilds a record from its one-key mapping form. The
// registry maps model names to schemas. Round-trips are lossless for
// every field kind.
func Deserialize(m map[string]any, registry map[string]*Schema) (*Record, error) {
	if len(m) != 1 {
		return nil, fmt.Errorf("record mapping must have exactly one top-level key, got %d", len(m))
	}
	for name, raw := range m {
		schema, ok := registry[name]
		if !ok {
			return nil, fmt.Errorf("unknown model %q", name)
		}
		fields, ok := asStringMap(raw)
		if !ok {
			return nil, fmt.Errorf("model %q value must be a mapping", name)
		}
		return deserializeFields(schema, fields, registry)
	}
	return nil, fmt.Errorf("empty record mapping")
}

func deserializeFields(schema *Schema, fields map[string]any, registry map[string]*Schema) (*Record, error) {
	r := NewRecord(schema)
	for _, f := range schema.Fields {
		raw, ok := fields[f.Name]
		if !ok || raw == nil {
			continue
		}
		switch f.Kind {
		case KindString:
			s, ok := raw.(string)
			if !ok {
				return nil, fmt.Errorf("field %s.%s: want string, got %T", schema.Name, f.Name, raw)
			}
			r.values[f.Name] = s
		case KindStringList:
			list, err := toStringList(raw)
			if err != nil {
				return nil, fmt.Errorf("field %s.%s: %w", schema.Name, f.Name, err)
			}
			r.values[f.Name] = list
		case KindFloat:
			v, ok := toFloat(raw)
			if !ok {
				return nil, fmt.Errorf("field %s.%s: want number, got %T", schema.Name, f.Name, raw)
			}
			r.values[f.Name] = v
		case KindFloatList:
			list, err := toFloatList(raw)
			if err != nil {
				return nil, fmt.Errorf("field %s.%s: %w", schema.Name, f.Name, err)
			}
			r.values[f.Name] = list
		case KindModel:
			inner, ok := asStringMap(raw)
			if !ok {
				return nil, fmt.Errorf("field %s.%s: want mapping, got %T", schema.Name, f.Name, raw)
			}
			nested, err := Deserialize(inner, registry)
			if err != nil {
				return nil, fmt.Errorf("field %s.%s: %w", schema.Name, f.Name, err)
			}
			r.values[f.Name] = nested
		}
	}
	return r, nil
}

// asStringMap normalizes YAML/JSON decoded mappings.
func asStringMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = val
		}
		return out, true
	}
	return nil, false
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	}
	return 0, false
}

func toStringList(v any) ([]string, error) {
	switch t := v.(type) {
	case []string:
		return append([]string(nil), t...), nil
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("want string list, found %T", item)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, fmt.Errorf("want string list, got %T", v)
}

func toFloatList(v any) ([]float64, error) {
	switch t := v.(type) {
	case []float64:
		return append([]float64(nil), t...), nil
	case []any:
		out := make([]float64, 0, len(t))
		for _, item := range t {
			f, ok := toFloat(item)
			if !ok {
				return nil, fmt.Errorf("want number list, found %T", item)
			}
			out = append(out, f)
		}
		return out, nil
	}
	return nil, fmt.Errorf("want number list, got %T", v)
}
