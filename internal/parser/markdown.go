package parser

import (
	"bytes"
	"io"

	"github.com/dgallion1/reportmerge/internal/docmodel"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. Headings become
// heading-styled paragraphs, everything else flows in as body text.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*docmodel.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	reader := text.NewReader(src)
	root := md.Parser().Parse(reader)

	out := &docmodel.Document{Title: titleFromFilename(filename)}

	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			title := string(node.Text(src))
			if title != "" {
				out.AddHeading(title, node.Level)
			}
		default:
			t := extractText(n, src)
			if t != "" {
				out.AddParagraph(t)
			}
		}
	}
	return out, nil
}

// extractText gets the text content of a goldmark AST node. A block node's
// inline children cover the same source segments as its Lines(), so text
// comes from the children when there are any and from the raw lines only for
// childless blocks (code blocks, thematic content).
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if !n.HasChildren() {
		if n.Type() == ast.TypeBlock {
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				buf.Write(seg.Value(src))
			}
		}
		return string(bytes.TrimSpace(buf.Bytes()))
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		} else {
			buf.WriteString(extractText(c, src))
		}
	}
	return string(bytes.TrimSpace(buf.Bytes()))
}
