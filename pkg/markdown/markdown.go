// Package markdown wires linkifier scanning into a goldmark pipeline.
//
// The extension walks the parsed document and linkifies plain text
// nodes, leaving alone anything already claimed by markdown syntax:
// explicit links, autolinks, images, and code. Linkified spans become
// ordinary link nodes, so the downstream renderer emits them exactly
// like hand-written links.
//
// The extension reads the rule table once per document, at transform
// time. A table update while a document renders affects the next
// document, not the one in flight.
package markdown

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/arthur-debert/linkify/pkg/linkifier"
	"github.com/arthur-debert/linkify/pkg/scanner"
	"github.com/arthur-debert/linkify/pkg/table"
)

// Extension adds linkifier scanning to a goldmark.Markdown.
type Extension struct {
	table *table.Table
}

func NewExtension(t *table.Table) *Extension {
	return &Extension{table: t}
}

func (e *Extension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithASTTransformers(
		util.Prioritized(&transformer{table: e.table}, 500),
	))
}

// transformer rewrites text nodes after parsing, when the document
// structure already says what is code, link, or image.
type transformer struct {
	table *table.Table
}

func (t *transformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	snapshot := t.table.Get()
	if len(snapshot) == 0 {
		return
	}
	source := reader.Source()

	// Collect first, mutate after: splitting nodes mid-walk would
	// disturb the traversal.
	var texts []*ast.Text
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case ast.KindLink, ast.KindAutoLink, ast.KindImage, ast.KindCodeSpan:
			return ast.WalkSkipChildren, nil
		case ast.KindText:
			texts = append(texts, n.(*ast.Text))
		}
		return ast.WalkContinue, nil
	})

	for _, node := range texts {
		linkifyText(node, source, snapshot)
	}
}

// linkifyText replaces one text node with an alternation of plain text
// and link nodes, one link per scanned hit. Offsets from the scan are
// byte offsets into the node's segment, so the pieces keep pointing at
// the original source.
func linkifyText(node *ast.Text, source []byte, snapshot []*linkifier.Linkifier) {
	parent := node.Parent()
	if parent == nil {
		return
	}

	seg := node.Segment
	content := string(seg.Value(source))
	hits := scanner.ScanWith(snapshot, content)
	if len(hits) == 0 {
		return
	}

	soft, hard := node.SoftLineBreak(), node.HardLineBreak()

	var last ast.Node
	insert := func(n ast.Node) {
		parent.InsertBefore(parent, node, n)
		last = n
	}

	pos := 0
	for _, h := range hits {
		if h.Match.Start > pos {
			insert(ast.NewTextSegment(text.NewSegment(seg.Start+pos, seg.Start+h.Match.Start)))
		}

		link := ast.NewLink()
		link.Destination = []byte(h.URL)
		link.AppendChild(link, ast.NewTextSegment(
			text.NewSegment(seg.Start+h.Match.Start, seg.Start+h.Match.End)))
		insert(link)

		pos = h.Match.End
	}
	if pos < len(content) {
		insert(ast.NewTextSegment(text.NewSegment(seg.Start+pos, seg.Stop)))
	}

	// The node's line break flags move onto whatever now ends the run
	if soft || hard {
		tail, ok := last.(*ast.Text)
		if !ok {
			tail = ast.NewTextSegment(text.NewSegment(seg.Stop, seg.Stop))
			insert(tail)
		}
		tail.SetSoftLineBreak(soft)
		tail.SetHardLineBreak(hard)
	}

	parent.RemoveChild(parent, node)
}
