package report

import (
	"bytes"
	"fmt"
	"html"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/YuminosukeSato/mentoraid/pkg/errors"
)

const stylesheet = `body { font-family: Calibri, Arial, sans-serif; max-width: 960px; margin: 2em auto; color: #222; }
h1 { color: #003366; text-align: center; font-size: 36pt; }
h2 { color: #003366; }
h3 { color: #336699; }
h4 { color: #336699; }
table { border-collapse: collapse; margin: 1em 0; }
th, td { border: 1px solid #8eaadb; padding: 4px 8px; vertical-align: top; }
th { background: #dbe5f1; }
code, pre { font-family: "Courier New", monospace; font-size: 9pt; }
.page-break { page-break-after: always; }
`

func markdownConverter() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		// page breaks and <br> in table cells are raw HTML
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)
}

// RenderHTML writes doc as a standalone HTML page. The body is the
// Markdown rendering converted with goldmark.
func RenderHTML(w io.Writer, doc *Document, title string) error {
	var md bytes.Buffer
	if err := RenderMarkdown(&md, doc); err != nil {
		return err
	}
	var body bytes.Buffer
	if err := markdownConverter().Convert(md.Bytes(), &body); err != nil {
		return errors.Wrap(err, "convert markdown")
	}
	_, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n<style>\n%s</style>\n</head>\n<body>\n%s</body>\n</html>\n",
		html.EscapeString(title), stylesheet, body.String())
	return errors.Wrap(err, "write html")
}
