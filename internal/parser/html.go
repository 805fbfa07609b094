package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/reportmerge/internal/docmodel"
	"golang.org/x/net/html"
)

// HTMLParser handles HTML files. h1-h6 map to heading styles, p/li/blockquote
// become body paragraphs, and <table> elements import as docmodel tables.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*docmodel.Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	out := &docmodel.Document{Title: titleFromFilename(filename)}
	if title := findTitle(root); title != "" {
		out.Title = title
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n.Data); level > 0 {
				if t := textContent(n); t != "" {
					out.AddHeading(t, level)
				}
				return
			}
			switch n.Data {
			case "script", "style", "nav", "footer", "header":
				return
			case "table":
				if tbl := htmlTable(n); tbl != nil {
					out.Nodes = append(out.Nodes, tbl)
				}
				return
			case "p", "li", "blockquote":
				if t := textContent(n); t != "" {
					out.AddParagraph(t)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	if body := findBody(root); body != nil {
		walk(body)
	} else {
		walk(root)
	}
	return out, nil
}

// htmlTable collects tr/th/td descendants into a table node; header cells
// come out bold.
func htmlTable(n *html.Node) *docmodel.Table {
	tbl := &docmodel.Table{}
	var rows func(*html.Node)
	rows = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			var cells []docmodel.Cell
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type != html.ElementNode || (c.Data != "td" && c.Data != "th") {
					continue
				}
				para := docmodel.Paragraph{
					Runs: []docmodel.Run{{Text: textContent(c), Bold: c.Data == "th"}},
				}
				cells = append(cells, docmodel.Cell{Paragraphs: []docmodel.Paragraph{para}})
			}
			if len(cells) > 0 {
				tbl.Rows = append(tbl.Rows, cells)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			rows(c)
		}
	}
	rows(n)
	if len(tbl.Rows) == 0 {
		return nil
	}
	return tbl
}

func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
