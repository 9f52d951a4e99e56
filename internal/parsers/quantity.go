// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parsers

import (
	"github.com/pdiddy/chemextract/internal/model"
	"github.com/pdiddy/chemextract/internal/pattern"
	"github.com/pdiddy/chemextract/internal/units"
)

// Option configures a quantity parser.
type Option func(*QuantityParser)

// WithStrictUnits drops matches whose captured units are missing or do
// not resolve to a known unit. The default keeps them: the record
// carries the raw span with no canonical units field.
func WithStrictUnits(strict bool) Option {
	return func(p *QuantityParser) { p.strict = strict }
}

// numberExpr matches one numeric token, optionally already carrying a
// range or parenthesized error within the token.
const (
	number     = `[+\-]?\d+(?:\.\d+)?`
	rangeDash  = `[–−‒-]`
	numberExpr = number + `(?:` + rangeDash + `\d+(?:\.\d+)?)?(?:\(\d+\))?`
)

// valueSpan covers the numeric part of a quantity in its tokenized
// forms: a single token ("240", "230–240", "240(5)"), a range split
// across tokens ("230", "–", "240"), a parenthesized error split across
// tokens ("240", "(", "5", ")"), or an explicit margin ("240", "±",
// "5"). Merge re-joins the tokens without separators so the interpreter
// sees one span regardless of tokenization.
var valueSpan = pattern.TagAction(pattern.Seq(
	pattern.MustR(numberExpr),
	pattern.Opt(pattern.Or(
		pattern.Seq(pattern.MustR(rangeDash), pattern.MustR(number)),
		pattern.Seq(pattern.W("("), pattern.MustR(`\d+`), pattern.W(")")),
		pattern.Seq(pattern.Or(pattern.W("±"), pattern.W("+/-")), pattern.MustR(number)),
	)),
), "raw_value", pattern.Merge)

// unitsSpan covers a temperature unit token plus a trailing closing
// bracket when the quantity sits at the end of a parenthetical, so
// "(b.p. 240 °C)" captures raw units "°C)". Resolution to a canonical
// unit tolerates the stray bracket.
var unitsSpan = pattern.TagAction(pattern.Seq(
	pattern.MustR(`°[CFKcfk]?|°?[CFK]\.?|[Kk]elvins?\.?|[Cc]elsius\.?|[Ff]ahrenheit\.?`),
	pattern.Opt(pattern.W(")")),
), "raw_units", pattern.Merge)

// filler consumes the short connective words between a specifier and
// its value ("was", "of", "=", "ca.").
var filler = pattern.Hide(pattern.ZeroOrMore(pattern.Or(
	pattern.I("of"), pattern.I("was"), pattern.I("is"), pattern.I("were"),
	pattern.I("at"), pattern.I("about"), pattern.I("approximately"),
	pattern.I("around"), pattern.I("ca"), pattern.I("ca."),
	pattern.W("="), pattern.W(":"), pattern.W(","), pattern.W("~"),
)))

// QuantityParser matches "<specifier> [filler] <value> [units]" and
// interprets the capture into one record of the given schema. The
// specifier expression is supplied by the property; everything else is
// shared.
type QuantityParser struct {
	schema *model.Schema
	root   pattern.Element
	strict bool
}

func NewQuantityParser(schema *model.Schema, specifier pattern.Element, opts ...Option) *QuantityParser {
	p := &QuantityParser{
		schema: schema,
		root: pattern.Seq(
			pattern.TagAction(specifier, "specifier", pattern.Join),
			filler,
			valueSpan,
			pattern.Opt(unitsSpan),
		),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *QuantityParser) Root() pattern.Element { return p.root }

func (p *QuantityParser) Interpret(n *pattern.Node) []*model.Record {
	raw, ok := n.FirstText("raw_value")
	if !ok {
		return nil
	}
	vals, margin, ok := parseValue(raw)
	if !ok {
		return nil
	}

	r := model.NewRecord(p.schema)
	if r.Set("raw_value", raw) != nil || r.Set("value", vals) != nil {
		return nil
	}
	if spec, ok := n.FirstText("specifier"); ok {
		r.Set("specifier", spec)
	}
	if margin != 0 {
		r.Set("error", margin)
	}

	rawUnits, haveUnits := n.FirstText("raw_units")
	if haveUnits {
		r.Set("raw_units", rawUnits)
		u, err := units.Parse(rawUnits)
		if err == nil {
			r.Set("units", u.Canonical())
		} else if p.strict {
			return nil
		}
	} else if p.strict {
		return nil
	}

	// An inline compound mention, when the grammar includes one, becomes
	// the nested compound directly rather than waiting for the
	// contextual merge pass.
	names := n.AllText("compound", "name")
	labels := n.AllText("compound", "label")
	if len(names) > 0 || len(labels) > 0 {
		cm := model.NewRecord(model.Compound)
		if len(names) > 0 {
			cm.Set("names", names)
		}
		if len(labels) > 0 {
			cm.Set("labels", labels)
		}
		r.Set("compound", cm)
	}
	return []*model.Record{r}
}

// NewMeltingPointParser recognizes melting point statements introduced
// by "m.p.", "mp", or the spelled-out specifier.
func NewMeltingPointParser(opts ...Option) *QuantityParser {
	spec := pattern.Or(
		pattern.I("m.p."), pattern.I("m.p"), pattern.I("mp"),
		pattern.Seq(pattern.I("melting"), pattern.Or(pattern.I("point"), pattern.I("points"), pattern.I("temperature"))),
	)
	return NewQuantityParser(model.MeltingPoint, spec, opts...)
}

// NewBoilingPointParser recognizes boiling point statements introduced
// by "b.p.", "bp", or the spelled-out specifier.
func NewBoilingPointParser(opts ...Option) *QuantityParser {
	spec := pattern.Or(
		pattern.I("b.p."), pattern.I("b.p"), pattern.I("bp"),
		pattern.Seq(pattern.I("boiling"), pattern.Or(pattern.I("point"), pattern.I("points"), pattern.I("temperature"))),
	)
	return NewQuantityParser(model.BoilingPoint, spec, opts...)
}

// DefaultModels returns the shipped model set with their parsers
// registered: compounds (entity mentions and reference labels), melting
// point, and boiling point.
func DefaultModels(opts ...Option) []*model.Model {
	return []*model.Model{
		model.New(model.Compound, NewCompoundParser(), NewLabelParser()),
		model.New(model.MeltingPoint, NewMeltingPointParser(opts...)),
		model.New(model.BoilingPoint, NewBoilingPointParser(opts...)),
	}
}
