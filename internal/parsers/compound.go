// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package parsers provides the shipped grammar parsers: chemical entity
// mentions, reference labels, and quantity expressions for temperature
// properties. Each parser pairs a root pattern with an interpreter that
// reads tagged spans out of the parse tree into records.
package parsers

import (
	"github.com/pdiddy/chemextract/internal/model"
	"github.com/pdiddy/chemextract/internal/pattern"
)

// entityName captures one contiguous entity mention. A mention starts
// on a B-CM token and extends over the following I-CM tokens, so two
// adjacent compounds with separate B-CM starts stay separate names.
var entityName = pattern.TagAction(
	pattern.Seq(pattern.Entity("B-CM"), pattern.ZeroOrMore(pattern.Entity("I-CM"))),
	"name", pattern.Join)

// CompoundParser extracts chemical entity mentions recognized by the
// tokenizer's entity tagger. A run of adjacent mentions becomes one
// record carrying all names.
type CompoundParser struct {
	root pattern.Element
}

func NewCompoundParser() *CompoundParser {
	return &CompoundParser{
		root: pattern.Tag(pattern.OneOrMore(entityName), "compound"),
	}
}

func (p *CompoundParser) Root() pattern.Element { return p.root }

func (p *CompoundParser) Interpret(n *pattern.Node) []*model.Record {
	names := n.AllText("compound", "name")
	if len(names) == 0 {
		return nil
	}
	r := model.NewRecord(model.Compound)
	if r.Set("names", names) != nil {
		return nil
	}
	return []*model.Record{r}
}

// labelExpr matches a reference label such as "3", "4a", or "BDT-1":
// an optional capitalized prefix followed by a short number with an
// optional letter suffix.
var labelExpr = pattern.MustR(`(?:[A-Z]+[-–−])?\d{1,3}[a-z]?`)

// LabelParser extracts compound reference labels from cue phrases like
// "compound 3" or "samples 4a and 4b". Bare numbers without a cue word
// are left alone; they are far more often quantities than labels.
type LabelParser struct {
	root pattern.Element
}

func NewLabelParser() *LabelParser {
	cue := pattern.Hide(pattern.Or(
		pattern.I("compound"), pattern.I("compounds"),
		pattern.I("sample"), pattern.I("samples"),
		pattern.I("complex"), pattern.I("complexes"),
		pattern.I("derivative"), pattern.I("derivatives"),
	))
	label := pattern.Tag(labelExpr, "label")
	more := pattern.ZeroOrMore(pattern.Seq(
		pattern.Hide(pattern.Or(pattern.W(","), pattern.I("and"))), label))
	p := &LabelParser{
		root: pattern.Tag(pattern.Seq(cue, label, more), "compound"),
	}
	return p
}

func (p *LabelParser) Root() pattern.Element { return p.root }

func (p *LabelParser) Interpret(n *pattern.Node) []*model.Record {
	labels := n.AllText("compound", "label")
	if len(labels) == 0 {
		return nil
	}
	r := model.NewRecord(model.Compound)
	if r.Set("labels", labels) != nil {
		return nil
	}
	return []*model.Record{r}
}
