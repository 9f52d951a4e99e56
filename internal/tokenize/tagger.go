// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tokenize

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/chemextract/pkg/types"
)

// DictionaryTagger marks chemical entity mentions by matching token
// sequences against a lexicon of known names. The first token of a
// mention gets entity tag "B-CM" and the rest "I-CM".
type DictionaryTagger struct {
	// entries maps the lower-cased first token of each name to the full
	// token sequences starting with it, longest first.
	entries map[string][][]string
}

// lexicon is the on-disk YAML shape.
type lexicon struct {
	Names []string `yaml:"names"`
}

// NewDictionaryTagger builds a tagger over the given names. Multi-word
// names match as contiguous token runs; matching is case-insensitive.
func NewDictionaryTagger(names []string) *DictionaryTagger {
	t := &DictionaryTagger{entries: make(map[string][][]string)}
	for _, name := range names {
		parts := strings.Fields(strings.ToLower(name))
		if len(parts) == 0 {
			continue
		}
		t.entries[parts[0]] = append(t.entries[parts[0]], parts)
	}
	// Longest sequence first so "benzoic acid" wins over "benzoic".
	for _, seqs := range t.entries {
		for i := 1; i < len(seqs); i++ {
			for j := i; j > 0 && len(seqs[j]) > len(seqs[j-1]); j-- {
				seqs[j], seqs[j-1] = seqs[j-1], seqs[j]
			}
		}
	}
	return t
}

// LoadLexicon reads a YAML lexicon file and builds a tagger from it.
func LoadLexicon(path string) (*DictionaryTagger, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading lexicon: %w", err)
	}
	var lex lexicon
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return nil, fmt.Errorf("parsing lexicon %s: %w", path, err)
	}
	return NewDictionaryTagger(lex.Names), nil
}

// Tag marks entity mentions in place. Longer mentions take precedence
// and mentions never overlap.
func (t *DictionaryTagger) Tag(tokens []types.Token) {
	for i := 0; i < len(tokens); {
		n := t.matchAt(tokens, i)
		if n == 0 {
			i++
			continue
		}
		tokens[i].EntityTag = "B-CM"
		for j := i + 1; j < i+n; j++ {
			tokens[j].EntityTag = "I-CM"
		}
		i += n
	}
}

// matchAt returns the length of the longest lexicon name starting at
// token i, or zero.
func (t *DictionaryTagger) matchAt(tokens []types.Token, i int) int {
	for _, seq := range t.entries[strings.ToLower(tokens[i].Text)] {
		if i+len(seq) > len(tokens) {
			continue
		}
		ok := true
		for j, part := range seq {
			if !strings.EqualFold(tokens[i+j].Text, part) {
				ok = false
				break
			}
		}
		if ok {
			return len(seq)
		}
	}
	return 0
}
