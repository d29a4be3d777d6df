package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTMLExporter writes a standalone HTML page.
type HTMLExporter struct{}

const style = `body{font-family:sans-serif;margin:2em}
table{border-collapse:collapse}
th,td{border:1px solid #ccc;padding:4px 8px;text-align:left}
tr.found td.outcome{color:#17803d}
tr.not_found td.outcome{color:#a16207}
tr.failed td.outcome{color:#b91c1c}`

// Export implements Exporter. The document is built as a node tree and
// rendered by x/net/html, which takes care of escaping.
func (HTMLExporter) Export(r *Report, w io.Writer) error {
	if _, err := io.WriteString(w, "<!DOCTYPE html>\n"); err != nil {
		return err
	}
	return html.Render(w, buildDocument(r))
}

func buildDocument(r *Report) *html.Node {
	title := "protocolo report"
	if r.DryRun {
		title += " (dry run)"
	}

	head := element(atom.Head, nil,
		element(atom.Meta, []html.Attribute{{Key: "charset", Val: "utf-8"}}),
		element(atom.Title, nil, text(title)),
		element(atom.Style, nil, text(style)),
	)

	summary := element(atom.Table, []html.Attribute{{Key: "class", Val: "summary"}},
		row(atom.Td, "Source", r.Source),
		row(atom.Td, "Destination", r.Destination),
		row(atom.Td, "Started", r.Started.Format(time.RFC3339)),
		row(atom.Td, "Duration", r.Duration().Round(time.Second).String()),
		row(atom.Td, "Documents", fmt.Sprint(r.Total())),
		row(atom.Td, "Found", fmt.Sprint(r.Found)),
		row(atom.Td, "Not found", fmt.Sprint(r.NotFound)),
		row(atom.Td, "Failed", fmt.Sprint(r.Failed)),
	)

	entries := element(atom.Table, []html.Attribute{{Key: "class", Val: "entries"}},
		row(atom.Th, "File", "Outcome", "Identifiers", "Destination", "Pages", "OCR passes", "Details"),
	)
	for _, e := range r.Entries {
		entries.AppendChild(entryRow(e))
	}

	body := element(atom.Body, nil,
		element(atom.H1, nil, text(title)),
		summary,
		element(atom.H2, nil, text("Documents")),
		entries,
	)

	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(element(atom.Html, []html.Attribute{{Key: "lang", Val: "pt-BR"}}, head, body))
	return doc
}

func entryRow(e Entry) *html.Node {
	var details []string
	if e.Error != "" {
		details = append(details, e.Error)
	}
	details = append(details, e.Warnings...)

	cells := []*html.Node{
		element(atom.Td, nil, text(e.File)),
		element(atom.Td, []html.Attribute{{Key: "class", Val: "outcome"}}, text(e.Outcome)),
		element(atom.Td, nil, text(strings.Join(e.Identifiers, ", "))),
		element(atom.Td, nil, text(e.Destination)),
		element(atom.Td, nil, text(fmt.Sprint(e.Pages))),
		element(atom.Td, nil, text(fmt.Sprintf("%d (%d failed)", e.Variants, e.Failures))),
		element(atom.Td, nil, text(strings.Join(details, "; "))),
	}
	return element(atom.Tr, []html.Attribute{{Key: "class", Val: e.Outcome}}, cells...)
}

// row builds a table row with one cell per value.
func row(cell atom.Atom, values ...string) *html.Node {
	tr := element(atom.Tr, nil)
	for _, v := range values {
		tr.AppendChild(element(cell, nil, text(v)))
	}
	return tr
}

func element(a atom.Atom, attrs []html.Attribute, children ...*html.Node) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
	for _, c := range children {
		n.AppendChild(c)
	}
	return n
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
