package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// pageBreak is raw HTML so that printed HTML output starts a new page.
const pageBreak = `<div class="page-break"></div>`

// RenderMarkdown writes doc as GitHub-flavoured Markdown.
func RenderMarkdown(w io.Writer, doc *Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	for i, b := range doc.Blocks {
		if i > 0 {
			bw.WriteString("\n")
		}
		writeBlock(bw, b)
	}
	return bw.Flush()
}

func writeBlock(w *bufio.Writer, b Block) {
	switch b.Kind {
	case KindTitle:
		fmt.Fprintf(w, "# %s\n", b.Text)
		if b.Lead != "" {
			fmt.Fprintf(w, "\n## %s\n", b.Lead)
		}
	case KindHeading:
		// レベル1は文書タイトルの下なので "##" から始める
		fmt.Fprintf(w, "%s %s\n", strings.Repeat("#", b.Level+1), b.Text)
	case KindParagraph:
		switch {
		case b.Lead == "":
			fmt.Fprintf(w, "%s\n", hardBreaks(b.Text))
		case b.Text == "":
			fmt.Fprintf(w, "**%s**\n", b.Lead)
		default:
			fmt.Fprintf(w, "**%s** %s\n", b.Lead, hardBreaks(b.Text))
		}
	case KindBullets:
		for _, it := range b.Items {
			fmt.Fprintf(w, "- %s\n", item(it))
		}
	case KindNumbered:
		for i, it := range b.Items {
			fmt.Fprintf(w, "%d. %s\n", i+1, item(it))
		}
	case KindTable:
		writeRow(w, b.Header)
		seps := make([]string, len(b.Header))
		for i := range seps {
			seps[i] = "---"
		}
		fmt.Fprintf(w, "| %s |\n", strings.Join(seps, " | "))
		for _, row := range b.Rows {
			writeRow(w, row)
		}
	case KindCode:
		fmt.Fprintf(w, "```%s\n%s\n```\n", b.Lang, strings.TrimRight(b.Text, "\n"))
	case KindImage:
		fmt.Fprintf(w, "![%s](%s)\n", b.Alt, b.Src)
	case KindPageBreak:
		fmt.Fprintf(w, "%s\n", pageBreak)
	}
}

func item(it Item) string {
	if it.Lead == "" {
		return it.Text
	}
	return fmt.Sprintf("**%s** %s", it.Lead, it.Text)
}

func writeRow(w *bufio.Writer, cells []string) {
	escaped := make([]string, len(cells))
	for i, c := range cells {
		escaped[i] = cell(c)
	}
	fmt.Fprintf(w, "| %s |\n", strings.Join(escaped, " | "))
}

// cell makes s safe inside a GFM table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", "<br>")
}

// hardBreaks keeps single newlines of multi-line paragraphs.
func hardBreaks(s string) string {
	return strings.ReplaceAll(s, "\n", "  \n")
}
