// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Token is the atomic unit of a sentence. The surface text and offsets
// come from the word tokenizer; the part-of-speech and entity tags are
// supplied by external taggers and are opaque to the matching core.
type Token struct {
	// Text is the surface text of the token.
	Text string `json:"text" yaml:"text"`

	// Start is the byte offset of the token within the sentence text.
	Start int `json:"start" yaml:"start"`

	// End is the byte offset one past the token within the sentence text.
	End int `json:"end" yaml:"end"`

	// Tag is the part-of-speech tag, if a tagger supplied one.
	Tag string `json:"tag,omitempty" yaml:"tag,omitempty"`

	// EntityTag marks chemical-entity mentions in IOB form
	// (e.g. "B-CM", "I-CM"). Empty for non-entity tokens.
	EntityTag string `json:"entity_tag,omitempty" yaml:"entity_tag,omitempty"`
}

// Sentence is an ordered sequence of tokens covering one sentence of an
// element's text.
type Sentence struct {
	// Text is the raw sentence text.
	Text string `json:"text" yaml:"text"`

	// Start is the byte offset of the sentence within the element text.
	Start int `json:"start" yaml:"start"`

	// End is the byte offset one past the sentence within the element text.
	End int `json:"end" yaml:"end"`

	// Tokens are the sentence's tokens in order.
	Tokens []Token `json:"tokens" yaml:"tokens"`
}

// ElementKind categorizes a document element.
type ElementKind string

const (
	ElementTitle     ElementKind = "title"
	ElementHeading   ElementKind = "heading"
	ElementParagraph ElementKind = "paragraph"
	ElementFootnote  ElementKind = "footnote"
	ElementCaption   ElementKind = "caption"
)

// IsHeading reports whether the kind is a title or heading. Headings run
// only entity and label models, not property models.
func (k ElementKind) IsHeading() bool {
	return k == ElementTitle || k == ElementHeading
}

// Element is one structural unit of a document: a heading, a paragraph,
// a caption. It owns the sentences produced by the tokenizer.
type Element struct {
	// Kind categorizes the element.
	Kind ElementKind `json:"kind" yaml:"kind"`

	// Text is the raw element text.
	Text string `json:"text" yaml:"text"`

	// Sentences are the tokenized sentences of the element, in order.
	Sentences []Sentence `json:"sentences" yaml:"sentences"`
}

// Document is an ordered sequence of elements. The extraction
// orchestrator iterates it in order and owns the resulting record set.
type Document struct {
	// ID identifies the document (typically the source filename stem).
	ID string `json:"id" yaml:"id"`

	// Title is the document title, if one was found during ingestion.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Elements are the document's elements in reading order.
	Elements []Element `json:"elements" yaml:"elements"`
}
