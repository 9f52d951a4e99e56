// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tokenize splits element text into sentences and tokens, with
// the splitting behavior scientific prose needs: dotted abbreviations
// do not end sentences, unit glyphs stay whole, and brackets split from
// words only when unbalanced within the token.
package tokenize

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/pdiddy/chemextract/pkg/types"
)

// abbreviations that end in a period without ending the sentence.
var abbreviations = map[string]bool{
	"b.p.":    true,
	"m.p.":    true,
	"e.g.":    true,
	"i.e.":    true,
	"etc.":    true,
	"ca.":     true,
	"cf.":     true,
	"vs.":     true,
	"al.":     true,
	"fig.":    true,
	"figs.":   true,
	"no.":     true,
	"approx.": true,
	"ref.":    true,
	"refs.":   true,
}

var (
	dottedAbbrevRe = regexp.MustCompile(`^(?:[A-Za-z]\.){2,}$`)
	numberTokenRe  = regexp.MustCompile(`^[+\-]?\d+(?:\.\d+)?(?:[–−‒-]\d+(?:\.\d+)?)?(?:\(\d+\))?$`)
)

// Tokenizer converts raw text into tagged sentences. The zero value
// splits and tokenizes without entity tagging; attach a tagger to mark
// chemical mentions.
type Tokenizer struct {
	tagger *DictionaryTagger
}

func New() *Tokenizer { return &Tokenizer{} }

// NewWithTagger returns a tokenizer that runs the entity tagger over
// every sentence it produces.
func NewWithTagger(tagger *DictionaryTagger) *Tokenizer {
	return &Tokenizer{tagger: tagger}
}

// Process splits text into sentences and tokenizes each. Sentence and
// token offsets are byte offsets into the input.
func (t *Tokenizer) Process(text string) []types.Sentence {
	var out []types.Sentence
	for _, span := range splitSentences(text) {
		s := types.Sentence{
			Text:   text[span.start:span.end],
			Start:  span.start,
			End:    span.end,
			Tokens: Words(text[span.start:span.end]),
		}
		if t.tagger != nil {
			t.tagger.Tag(s.Tokens)
		}
		out = append(out, s)
	}
	return out
}

type span struct {
	start, end int
}

// splitSentences finds sentence boundaries: a terminator followed by
// whitespace and an upper-case or digit start, unless the terminator
// closes a known abbreviation.
func splitSentences(text string) []span {
	var spans []span
	start := 0
	runes := []rune(text)
	// Byte offset of each rune, plus the end sentinel.
	offs := make([]int, 0, len(runes)+1)
	for i := range text {
		offs = append(offs, i)
	}
	offs = append(offs, len(text))

	flush := func(endRune int) {
		b, e := offs[start], offs[endRune]
		if trimmed := strings.TrimSpace(text[b:e]); trimmed != "" {
			lead := strings.Index(text[b:e], trimmed)
			spans = append(spans, span{b + lead, b + lead + len(trimmed)})
		}
		start = endRune
	}

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if r == '.' && isAbbreviation(runes, i) {
			continue
		}
		// Look past the terminator: whitespace then a capital or digit
		// (or end of input) confirms a boundary.
		j := i + 1
		for j < len(runes) && runes[j] == '.' {
			j++
		}
		if j == len(runes) {
			flush(j)
			continue
		}
		if !unicode.IsSpace(runes[j]) {
			continue
		}
		k := j
		for k < len(runes) && unicode.IsSpace(runes[k]) {
			k++
		}
		if k == len(runes) || unicode.IsUpper(runes[k]) || unicode.IsDigit(runes[k]) {
			flush(j)
			i = j - 1
		}
	}
	flush(len(runes))
	return spans
}

// isAbbreviation reports whether the period at position i terminates a
// known abbreviation or a dotted initialism like "b.p.".
func isAbbreviation(runes []rune, i int) bool {
	start := i
	for start > 0 && !unicode.IsSpace(runes[start-1]) {
		start--
	}
	word := strings.ToLower(string(runes[start : i+1]))
	word = strings.TrimLeft(word, openPunct)
	return abbreviations[word] || dottedAbbrevRe.MatchString(word)
}

// Words tokenizes one sentence. Token offsets are byte offsets into the
// sentence text.
func Words(sentence string) []types.Token {
	var out []types.Token
	for _, f := range fields(sentence) {
		out = append(out, splitToken(sentence, f.start, f.end)...)
	}
	for i := range out {
		if numberTokenRe.MatchString(out[i].Text) {
			out[i].Tag = "CD"
		}
	}
	return out
}

// fields returns the whitespace-separated spans of the sentence.
func fields(s string) []span {
	var out []span
	start := -1
	for i, r := range s {
		if unicode.IsSpace(r) {
			if start >= 0 {
				out = append(out, span{start, i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, span{start, len(s)})
	}
	return out
}

const (
	openPunct  = "([{\"'“‘"
	closePunct = ")]}\"'”’,;:!?"
)

// splitToken peels unbalanced brackets and sentence punctuation off a
// whitespace-delimited field, emitting them as separate tokens. The
// trailing period stays attached to dotted abbreviations.
func splitToken(s string, start, end int) []types.Token {
	var lead, trail []types.Token

	for start < end {
		r, size := firstRune(s[start:end])
		if !strings.ContainsRune(openPunct, r) || balancedBracket(s[start:end], r) {
			break
		}
		lead = append(lead, types.Token{Text: s[start : start+size], Start: start, End: start + size})
		start += size
	}

	for start < end {
		r, size := lastRune(s[start:end])
		if r == '.' {
			word := strings.ToLower(s[start:end])
			if abbreviations[word] || dottedAbbrevRe.MatchString(word) {
				break
			}
		} else if !strings.ContainsRune(closePunct, r) || balancedBracket(s[start:end], r) {
			break
		}
		trail = append([]types.Token{{Text: s[end-size : end], Start: end - size, End: end}}, trail...)
		end -= size
	}

	out := lead
	if start < end {
		out = append(out, types.Token{Text: s[start:end], Start: start, End: end})
	}
	return append(out, trail...)
}

// balancedBracket reports whether a bracket at the edge of the token
// has its partner inside, as in "240(5)". Balanced brackets stay
// attached; unbalanced ones split off.
func balancedBracket(tok string, r rune) bool {
	var open, close rune
	switch r {
	case '(', ')':
		open, close = '(', ')'
	case '[', ']':
		open, close = '[', ']'
	case '{', '}':
		open, close = '{', '}'
	default:
		return false
	}
	return strings.Count(tok, string(open)) == strings.Count(tok, string(close))
}

func firstRune(s string) (rune, int) {
	for _, r := range s {
		return r, len(string(r))
	}
	return 0, 0
}

func lastRune(s string) (rune, int) {
	var last rune
	for _, r := range s {
		last = r
	}
	return last, len(string(last))
}
