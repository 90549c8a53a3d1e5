package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"

	"github.com/slidekit/slidekit/model"
)

// MarkdownWriter converts documents to a Markdown outline: one section
// per slide, text content converted from its markup form, tables as
// Markdown tables and notes as blockquotes.
type MarkdownWriter struct {
	conv *converter.Converter
}

// NewMarkdownWriter creates a MarkdownWriter.
func NewMarkdownWriter() *MarkdownWriter {
	return &MarkdownWriter{
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
}

// Write renders doc as Markdown to w.
func (m *MarkdownWriter) Write(w io.Writer, doc *model.Document) error {
	var b strings.Builder
	if doc.Title != "" {
		fmt.Fprintf(&b, "# %s\n\n", doc.Title)
	}
	for i := range doc.Slides {
		slide := &doc.Slides[i]
		fmt.Fprintf(&b, "## Slide %d\n\n", i+1)
		ordered := slide.Clone()
		ordered.SortByZIndex()
		for j := range ordered.Elements {
			if err := m.writeElement(&b, &ordered.Elements[j]); err != nil {
				return err
			}
		}
		if slide.Notes != "" {
			for _, line := range strings.Split(strings.TrimSpace(slide.Notes), "\n") {
				fmt.Fprintf(&b, "> %s\n", line)
			}
			b.WriteString("\n")
		}
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("export: write markdown: %w", err)
	}
	return nil
}

func (m *MarkdownWriter) writeElement(b *strings.Builder, el *model.Element) error {
	switch {
	case el.Text != nil:
		return m.writeMarkup(b, el.Text.Content)
	case el.Shape != nil && el.Shape.Text != nil:
		return m.writeMarkup(b, el.Shape.Text.Content)
	case el.Table != nil:
		writeTable(b, el.Table)
	case el.Latex != nil:
		fmt.Fprintf(b, "$$\n%s\n$$\n\n", el.Latex.Formula)
	case el.Group != nil:
		for i := range el.Group.Children {
			if err := m.writeElement(b, &el.Group.Children[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *MarkdownWriter) writeMarkup(b *strings.Builder, content string) error {
	if strings.TrimSpace(content) == "" {
		return nil
	}
	md, err := m.conv.ConvertString(content)
	if err != nil {
		return fmt.Errorf("export: convert markup: %w", err)
	}
	if md = strings.TrimSpace(md); md != "" {
		b.WriteString(md)
		b.WriteString("\n\n")
	}
	return nil
}

func writeTable(b *strings.Builder, t *model.TablePayload) {
	if len(t.Rows) == 0 {
		return
	}
	row := func(cells []model.TableCell) {
		b.WriteString("|")
		for _, c := range cells {
			fmt.Fprintf(b, " %s |", strings.ReplaceAll(c.Text, "|", "\\|"))
		}
		b.WriteString("\n")
	}
	row(t.Rows[0])
	b.WriteString("|")
	for range t.Rows[0] {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")
	for _, r := range t.Rows[1:] {
		row(r)
	}
	b.WriteString("\n")
}
