// Package report builds the MentorAid model documentation as a list of
// blocks and renders it as Markdown or HTML.
package report

import (
	"fmt"

	"github.com/YuminosukeSato/mentoraid/pkg/errors"
)

// BlockKind identifies the type of a Block.
type BlockKind int

const (
	KindTitle BlockKind = iota
	KindHeading
	KindParagraph
	KindBullets
	KindNumbered
	KindTable
	KindCode
	KindImage
	KindPageBreak
)

func (k BlockKind) String() string {
	switch k {
	case KindTitle:
		return "title"
	case KindHeading:
		return "heading"
	case KindParagraph:
		return "paragraph"
	case KindBullets:
		return "bullets"
	case KindNumbered:
		return "numbered"
	case KindTable:
		return "table"
	case KindCode:
		return "code"
	case KindImage:
		return "image"
	case KindPageBreak:
		return "page-break"
	default:
		return fmt.Sprintf("BlockKind(%d)", int(k))
	}
}

// Item is one list entry. Lead, when set, is rendered in bold before Text.
type Item struct {
	Lead string
	Text string
}

// Block is one element of a Document. Which fields are used depends on Kind.
type Block struct {
	Kind BlockKind

	Level int    // heading: 1-3
	Text  string // title, heading, paragraph, code
	Lead  string // paragraph: bold prefix; title: subtitle

	Items []Item // bullets, numbered

	Header []string   // table
	Rows   [][]string // table

	Lang string // code
	Alt  string // image
	Src  string // image
}

// Document is an ordered list of blocks.
type Document struct {
	Blocks []Block
}

// Title appends the title block. subtitle may be empty.
func (d *Document) Title(title, subtitle string) *Document {
	d.Blocks = append(d.Blocks, Block{Kind: KindTitle, Text: title, Lead: subtitle})
	return d
}

// Heading appends a section heading of the given level.
func (d *Document) Heading(level int, text string) *Document {
	d.Blocks = append(d.Blocks, Block{Kind: KindHeading, Level: level, Text: text})
	return d
}

// Paragraph appends a plain paragraph.
func (d *Document) Paragraph(text string) *Document {
	d.Blocks = append(d.Blocks, Block{Kind: KindParagraph, Text: text})
	return d
}

// LeadParagraph appends a paragraph starting with a bold lead.
func (d *Document) LeadParagraph(lead, text string) *Document {
	d.Blocks = append(d.Blocks, Block{Kind: KindParagraph, Lead: lead, Text: text})
	return d
}

// Bullets appends an unordered list.
func (d *Document) Bullets(items ...Item) *Document {
	d.Blocks = append(d.Blocks, Block{Kind: KindBullets, Items: items})
	return d
}

// Numbered appends an ordered list.
func (d *Document) Numbered(items ...Item) *Document {
	d.Blocks = append(d.Blocks, Block{Kind: KindNumbered, Items: items})
	return d
}

// Table appends a table. Every row must have len(header) cells.
func (d *Document) Table(header []string, rows ...[]string) *Document {
	d.Blocks = append(d.Blocks, Block{Kind: KindTable, Header: header, Rows: rows})
	return d
}

// Code appends a fenced code block.
func (d *Document) Code(lang, text string) *Document {
	d.Blocks = append(d.Blocks, Block{Kind: KindCode, Lang: lang, Text: text})
	return d
}

// Image appends an image reference.
func (d *Document) Image(alt, src string) *Document {
	d.Blocks = append(d.Blocks, Block{Kind: KindImage, Alt: alt, Src: src})
	return d
}

// PageBreak appends a page break.
func (d *Document) PageBreak() *Document {
	d.Blocks = append(d.Blocks, Block{Kind: KindPageBreak})
	return d
}

// Headings returns the text of every heading of the given level, in order.
func (d *Document) Headings(level int) []string {
	var out []string
	for _, b := range d.Blocks {
		if b.Kind == KindHeading && b.Level == level {
			out = append(out, b.Text)
		}
	}
	return out
}

// Validate checks heading levels and table shapes.
func (d *Document) Validate() error {
	for i, b := range d.Blocks {
		switch b.Kind {
		case KindHeading:
			if b.Level < 1 || b.Level > 3 {
				return errors.NewValidationError("level", fmt.Sprintf("block %d: heading level must be 1-3", i), b.Level)
			}
		case KindTable:
			if len(b.Header) == 0 {
				return errors.NewValueError("Document.Validate", fmt.Sprintf("block %d: table without header", i))
			}
			for r, row := range b.Rows {
				if len(row) != len(b.Header) {
					return errors.Wrapf(errors.NewDimensionError("Document.Validate", len(b.Header), len(row), 1), "block %d row %d", i, r)
				}
			}
		case KindImage:
			if b.Src == "" {
				return errors.NewValueError("Document.Validate", fmt.Sprintf("block %d: image without source", i))
			}
		}
	}
	return nil
}
