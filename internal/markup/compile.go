// Package markup compiles entry bodies from markdown into renderable HTML.
// The extension set is fixed, so compilation is a pure function of the
// source text: the same input always produces byte-identical output.
package markup

import (
	"bytes"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	mathjax "github.com/litao91/goldmark-mathjax"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"go.abhg.dev/goldmark/wikilink"
)

// Result holds both forms produced from one source body.
type Result struct {
	// HTML is the compiled, renderable document.
	HTML []byte
	// Plain is the concatenated text content, used for reading time.
	Plain string
}

var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Footnote,
		mathjax.MathJax,
		highlighting.NewHighlighting(
			highlighting.WithStyle("github-dark"),
			highlighting.WithFormatOptions(
				chromahtml.WithLineNumbers(false),
			),
		),
		&wikilink.Extender{Resolver: blogResolver{}},
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
	goldmark.WithRendererOptions(
		html.WithUnsafe(),
	),
)

// blogResolver points [[target]] links at the post detail route.
type blogResolver struct{}

func (blogResolver) ResolveWikilink(n *wikilink.Node) ([]byte, error) {
	dest := make([]byte, 0, len("/blog/")+len(n.Target))
	dest = append(dest, "/blog/"...)
	dest = append(dest, n.Target...)
	return dest, nil
}

// Compile parses source and renders it with heading anchor IDs, syntax
// highlighting, tables, footnotes, math and wikilinks applied. Malformed
// markup fails the entry's build; it is never partially rendered.
func Compile(source []byte) (Result, error) {
	ctx := parser.NewContext(parser.WithIDs(newHeadingIDs()))
	doc := md.Parser().Parse(text.NewReader(source), parser.WithContext(ctx))

	var plain bytes.Buffer
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock {
				plain.WriteByte(' ')
			}
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Text:
			plain.Write(t.Value(source))
		case *ast.String:
			plain.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("walk document: %w", err)
	}

	var out bytes.Buffer
	if err := md.Renderer().Render(&out, source, doc); err != nil {
		return Result{}, fmt.Errorf("render: %w", err)
	}

	return Result{HTML: out.Bytes(), Plain: plain.String()}, nil
}
