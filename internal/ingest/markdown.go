// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest converts source papers into tokenized documents ready
// for extraction. Markdown is the supported source format.
package ingest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gtext "github.com/yuin/goldmark/text"

	"github.com/pdiddy/chemextract/internal/tokenize"
	"github.com/pdiddy/chemextract/pkg/types"
)

// captionRe marks paragraphs that are figure or table captions, which
// carry compound mentions but rarely full property statements.
var captionRe = regexp.MustCompile(`^(Figure|Fig\.|Table|Scheme)\s+\d`)

// File reads a markdown paper and returns the tokenized document. The
// document ID is the filename stem.
func File(path string, tok *tokenize.Tokenizer) (*types.Document, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading paper: %w", err)
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Markdown(src, stem, tok), nil
}

// Markdown parses markdown source into a tokenized document. Top-level
// structure maps directly onto elements: the first level-1 heading is
// the title, other headings are headings, and every other block is a
// paragraph or caption. Each element's text is tokenized in place.
func Markdown(src []byte, id string, tok *tokenize.Tokenizer) *types.Document {
	md := goldmark.New()
	root := md.Parser().Parse(gtext.NewReader(src))

	doc := &types.Document{ID: id}
	add := func(kind types.ElementKind, text string) {
		doc.Elements = append(doc.Elements, types.Element{
			Kind:      kind,
			Text:      text,
			Sentences: tok.Process(text),
		})
	}

	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			text := blockText(node, src)
			if text == "" {
				continue
			}
			if node.Level == 1 && doc.Title == "" {
				doc.Title = text
				add(types.ElementTitle, text)
			} else {
				add(types.ElementHeading, text)
			}
		default:
			text := blockText(n, src)
			if text == "" {
				continue
			}
			kind := types.ElementParagraph
			if captionRe.MatchString(text) {
				kind = types.ElementCaption
			}
			add(kind, text)
		}
	}
	return doc
}

// blockText collects the plain text of a block node, following nested
// inlines.
func blockText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if t, ok := c.(*ast.Text); ok {
				buf.Write(t.Value(src))
				if t.HardLineBreak() || t.SoftLineBreak() {
					buf.WriteByte(' ')
				}
				continue
			}
			walk(c)
		}
	}
	if n.Type() == ast.TypeBlock && n.FirstChild() == nil {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(src))
		}
	}
	walk(n)
	return strings.TrimSpace(buf.String())
}
