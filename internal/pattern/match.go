// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pattern

import (
	"errors"

	"github.com/pdiddy/chemextract/pkg/types"
)

// DefaultBudget is the backtracking step budget per match attempt when
// the caller passes zero.
const DefaultBudget = 10000

// ErrNoMatch reports that the pattern did not match. Absence of a match
// is a normal outcome; callers usually test for it rather than
// propagate it.
var ErrNoMatch = errors.New("pattern: no match")

// ErrBudget reports that a match attempt exhausted its backtracking
// budget. Callers treat it as no-match.
var ErrBudget = errors.New("pattern: backtrack budget exceeded")

// matchCtx carries the token sequence and the step budget through one
// match attempt. Matching is read-only over the tokens.
type matchCtx struct {
	tokens     []types.Token
	budget     int
	steps      int
	overBudget bool
}

// step counts one matching step against the budget. Once the budget is
// exhausted every element fails, unwinding the whole attempt.
func (c *matchCtx) step() bool {
	if c.overBudget {
		return false
	}
	c.steps++
	if c.steps > c.budget {
		c.overBudget = true
		return false
	}
	return true
}

// Result is one successful match: the parse tree and the covered token
// range [Begin, End).
type Result struct {
	Root  *Node
	Begin int
	End   int
}

// MatchAt attempts to match the element at the given position. It
// returns ErrNoMatch if the pattern fails and ErrBudget if the attempt
// exhausted the step budget (budget <= 0 selects DefaultBudget).
// Matching never mutates the tokens; repeated calls on identical inputs
// yield identical results.
func MatchAt(e Element, toks []types.Token, pos, budget int) (Result, error) {
	if budget <= 0 {
		budget = DefaultBudget
	}
	c := &matchCtx{tokens: toks, budget: budget}

	var res Result
	ok := e.match(c, pos, func(next int, nodes []*Node) bool {
		if next == pos {
			// An empty match at the top level is never useful.
			return false
		}
		root := &Node{
			Begin:    pos,
			End:      next,
			Text:     nodeText(nodes, toks, pos, next, nil),
			Children: nodes,
		}
		res = Result{Root: root, Begin: pos, End: next}
		return true
	})

	if ok {
		return res, nil
	}
	if c.overBudget {
		return Result{}, ErrBudget
	}
	return Result{}, ErrNoMatch
}

// Scan finds every non-overlapping match in the token sequence, left to
// right. Each start position gets a fresh budget; attempts that exceed
// it are skipped like any other non-match.
func Scan(e Element, toks []types.Token, budget int) []Result {
	var out []Result
	pos := 0
	for pos < len(toks) {
		res, err := MatchAt(e, toks, pos, budget)
		if err != nil {
			pos++
			continue
		}
		out = append(out, res)
		pos = res.End
	}
	return out
}
