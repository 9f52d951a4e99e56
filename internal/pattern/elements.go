// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pattern builds composable token-matching expressions and runs
// them against tokenized sentences, producing labeled parse trees.
//
// Expressions are immutable value objects: combinators allocate new
// nodes and never mutate their operands, so sub-expressions can be
// shared freely between grammars. Matching is deterministic
// backtracking with an explicit step budget; see Scan and MatchAt.
package pattern

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/chemextract/pkg/types"
)

// Element is a compiled token-matching expression.
type Element interface {
	match(c *matchCtx, pos int, k cont) bool
}

// cont receives a candidate match: the position after the consumed
// tokens and the nodes produced. Returning false rejects the candidate
// and resumes backtracking.
type cont func(next int, nodes []*Node) bool

// ActionFunc transforms the texts of a matched span into a single
// string. Attached with Action, or to a Tag via TagAction.
type ActionFunc func(texts []string) string

// Join concatenates matched texts with single spaces.
func Join(texts []string) string { return strings.Join(texts, " ") }

// Merge concatenates matched texts without separators.
func Merge(texts []string) string { return strings.Join(texts, "") }

func leaf(t types.Token, i int) *Node {
	return &Node{Begin: i, End: i + 1, Text: t.Text}
}

// nodeText computes the text for a span: the texts of the produced
// nodes when there are any, otherwise the covered tokens (so a tag
// wrapped around hidden content still carries the span text).
func nodeText(nodes []*Node, toks []types.Token, begin, end int, act ActionFunc) string {
	var texts []string
	if len(nodes) > 0 {
		for _, n := range nodes {
			texts = append(texts, n.Text)
		}
	} else {
		for i := begin; i < end; i++ {
			texts = append(texts, toks[i].Text)
		}
	}
	if act != nil {
		return act(texts)
	}
	return strings.Join(texts, " ")
}

// --- atomic matchers ---

type word struct {
	text string
	fold bool
}

// W matches a single token with exactly the given surface text.
func W(text string) Element { return word{text: text} }

// I matches a single token with the given surface text, ignoring case.
func I(text string) Element { return word{text: text, fold: true} }

func (w word) match(c *matchCtx, pos int, k cont) bool {
	if !c.step() || pos >= len(c.tokens) {
		return false
	}
	t := c.tokens[pos]
	if w.fold {
		if !strings.EqualFold(t.Text, w.text) {
			return false
		}
	} else if t.Text != w.text {
		return false
	}
	return k(pos+1, []*Node{leaf(t, pos)})
}

type regex struct {
	re *regexp.Regexp
}

// R matches a single token whose full surface text matches the regular
// expression. An invalid expression is a configuration error reported
// immediately, before any matching runs.
func R(expr string) (Element, error) {
	re, err := regexp.Compile(`^(?:` + expr + `)$`)
	if err != nil {
		return nil, fmt.Errorf("compiling pattern %q: %w", expr, err)
	}
	return regex{re: re}, nil
}

// MustR is like R but panics on an invalid expression. Use for grammar
// literals known at build time.
func MustR(expr string) Element {
	e, err := R(expr)
	if err != nil {
		panic(err)
	}
	return e
}

func (r regex) match(c *matchCtx, pos int, k cont) bool {
	if !c.step() || pos >= len(c.tokens) {
		return false
	}
	t := c.tokens[pos]
	if !r.re.MatchString(t.Text) {
		return false
	}
	return k(pos+1, []*Node{leaf(t, pos)})
}

type posTag struct {
	tag string
}

// T matches a single token carrying the given part-of-speech tag.
func T(tag string) Element { return posTag{tag: tag} }

func (p posTag) match(c *matchCtx, pos int, k cont) bool {
	if !c.step() || pos >= len(c.tokens) {
		return false
	}
	t := c.tokens[pos]
	if t.Tag != p.tag {
		return false
	}
	return k(pos+1, []*Node{leaf(t, pos)})
}

type entity struct {
	prefix string
}

// Entity matches a single token carrying an entity tag with the given
// prefix. An empty prefix matches any entity-tagged token. This is the
// placeholder for externally recognized chemical-entity mentions.
func Entity(prefix string) Element { return entity{prefix: prefix} }

func (e entity) match(c *matchCtx, pos int, k cont) bool {
	if !c.step() || pos >= len(c.tokens) {
		return false
	}
	t := c.tokens[pos]
	if t.EntityTag == "" || !strings.HasPrefix(t.EntityTag, e.prefix) {
		return false
	}
	return k(pos+1, []*Node{leaf(t, pos)})
}

type anyToken struct{}

// Any matches any single token.
func Any() Element { return anyToken{} }

func (anyToken) match(c *matchCtx, pos int, k cont) bool {
	if !c.step() || pos >= len(c.tokens) {
		return false
	}
	return k(pos+1, []*Node{leaf(c.tokens[pos], pos)})
}

type start struct{}

// Start matches only at the beginning of the sentence, consuming nothing.
func Start() Element { return start{} }

func (start) match(c *matchCtx, pos int, k cont) bool {
	if !c.step() || pos != 0 {
		return false
	}
	return k(pos, nil)
}

// --- combinators ---

type seq struct {
	parts []Element
}

// Seq matches its parts in order, contiguously.
func Seq(parts ...Element) Element {
	return seq{parts: append([]Element(nil), parts...)}
}

func (s seq) match(c *matchCtx, pos int, k cont) bool {
	var step func(i, p int, acc []*Node) bool
	step = func(i, p int, acc []*Node) bool {
		if i == len(s.parts) {
			return k(p, acc)
		}
		return s.parts[i].match(c, p, func(np int, nodes []*Node) bool {
			merged := append(acc[:len(acc):len(acc)], nodes...)
			return step(i+1, np, merged)
		})
	}
	return step(0, pos, nil)
}

type alt struct {
	branches []Element
}

// Or tries its branches left to right and commits to the first branch
// that lets the remainder of the enclosing pattern succeed.
func Or(branches ...Element) Element {
	return alt{branches: append([]Element(nil), branches...)}
}

func (a alt) match(c *matchCtx, pos int, k cont) bool {
	for _, b := range a.branches {
		if b.match(c, pos, k) {
			return true
		}
		if c.overBudget {
			return false
		}
	}
	return false
}

type opt struct {
	inner Element
}

// Opt matches the inner pattern zero or one time, preferring one.
func Opt(inner Element) Element { return opt{inner: inner} }

func (o opt) match(c *matchCtx, pos int, k cont) bool {
	if o.inner.match(c, pos, k) {
		return true
	}
	if c.overBudget {
		return false
	}
	return k(pos, nil)
}

type repeat struct {
	inner Element
	min   int
}

// ZeroOrMore matches the inner pattern greedily any number of times,
// backtracking one repetition at a time on failure.
func ZeroOrMore(inner Element) Element { return repeat{inner: inner} }

// OneOrMore is like ZeroOrMore but requires at least one repetition.
func OneOrMore(inner Element) Element { return repeat{inner: inner, min: 1} }

func (r repeat) match(c *matchCtx, pos int, k cont) bool {
	var try func(p, n int, acc []*Node) bool
	try = func(p, n int, acc []*Node) bool {
		ok := r.inner.match(c, p, func(np int, nodes []*Node) bool {
			if np == p {
				// Zero-width repetition would never terminate.
				return false
			}
			merged := append(acc[:len(acc):len(acc)], nodes...)
			return try(np, n+1, merged)
		})
		if ok {
			return true
		}
		if c.overBudget || n < r.min {
			return false
		}
		return k(p, acc)
	}
	return try(pos, 0, nil)
}

type not struct {
	inner Element
}

// Not is a zero-width negative lookahead: it succeeds, consuming
// nothing, only where the inner pattern does not match.
func Not(inner Element) Element { return not{inner: inner} }

func (n not) match(c *matchCtx, pos int, k cont) bool {
	matched := n.inner.match(c, pos, func(int, []*Node) bool { return true })
	if c.overBudget || matched {
		return false
	}
	return k(pos, nil)
}

type skipTo struct {
	inner Element
}

// SkipTo consumes tokens up to, but not including, the first position
// where the inner pattern matches. The skipped tokens appear as leaf
// nodes. Fails if the inner pattern never matches.
func SkipTo(inner Element) Element { return skipTo{inner: inner} }

func (s skipTo) match(c *matchCtx, pos int, k cont) bool {
	for i := pos; i <= len(c.tokens); i++ {
		if !c.step() {
			return false
		}
		matched := s.inner.match(c, i, func(int, []*Node) bool { return true })
		if c.overBudget {
			return false
		}
		if !matched {
			continue
		}
		var nodes []*Node
		for j := pos; j < i; j++ {
			nodes = append(nodes, leaf(c.tokens[j], j))
		}
		if k(i, nodes) {
			return true
		}
	}
	return false
}

type hide struct {
	inner Element
}

// Hide matches the inner pattern positionally but contributes no nodes
// to the tree. An enclosing Tag still covers the hidden span and takes
// its text from the consumed tokens.
func Hide(inner Element) Element { return hide{inner: inner} }

func (h hide) match(c *matchCtx, pos int, k cont) bool {
	return h.inner.match(c, pos, func(np int, _ []*Node) bool {
		return k(np, nil)
	})
}

type tagged struct {
	inner Element
	name  string
	act   ActionFunc
}

// Tag wraps the inner pattern's match in a named node so the span can
// be retrieved from the parse tree.
func Tag(inner Element, name string) Element {
	return tagged{inner: inner, name: name}
}

// TagAction is Tag with a text transform applied to the captured span.
func TagAction(inner Element, name string, act ActionFunc) Element {
	return tagged{inner: inner, name: name, act: act}
}

func (t tagged) match(c *matchCtx, pos int, k cont) bool {
	return t.inner.match(c, pos, func(np int, nodes []*Node) bool {
		n := &Node{
			Tag:      t.name,
			Begin:    pos,
			End:      np,
			Text:     nodeText(nodes, c.tokens, pos, np, t.act),
			Children: nodes,
		}
		return k(np, []*Node{n})
	})
}

type action struct {
	inner Element
	act   ActionFunc
}

// Action collapses the inner pattern's match into a single untagged
// text node, with the transform applied. Tags inside the span are
// flattened into their texts.
func Action(inner Element, act ActionFunc) Element {
	return action{inner: inner, act: act}
}

func (a action) match(c *matchCtx, pos int, k cont) bool {
	return a.inner.match(c, pos, func(np int, nodes []*Node) bool {
		n := &Node{
			Begin: pos,
			End:   np,
			Text:  nodeText(nodes, c.tokens, pos, np, a.act),
		}
		return k(np, []*Node{n})
	})
}
