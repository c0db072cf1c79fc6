package report

import (
	"bytes"
	"os"
	"path/filepath"
	"time"

	"github.com/YuminosukeSato/mentoraid/pkg/errors"
	"github.com/YuminosukeSato/mentoraid/pkg/log"
)

// DocumentTitle is the HTML page title of the generated documentation.
const DocumentTitle = "MentorAid ML Documentation"

// Options selects the output files of Generate. HTMLPath is required;
// MarkdownPath and ChartPath are skipped when empty.
type Options struct {
	HTMLPath     string
	MarkdownPath string
	ChartPath    string
	Logger       log.Logger
}

// Generate writes the study documentation. The chart is written first so
// the HTML can reference it relative to its own directory.
func Generate(opts Options, now time.Time) error {
	if opts.HTMLPath == "" {
		return errors.NewValidationError("html_path", "must not be empty", opts.HTMLPath)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.GetLogger()
	}
	logger = logger.With(log.ComponentKey, "report")

	var studyOpts []StudyOption
	if opts.ChartPath != "" {
		if err := AccuracyChart(opts.ChartPath, FinalRankings); err != nil {
			return err
		}
		src, err := filepath.Rel(filepath.Dir(opts.HTMLPath), opts.ChartPath)
		if err != nil {
			src = opts.ChartPath
		}
		studyOpts = append(studyOpts, WithChart(filepath.ToSlash(src)))
		logger.Info("Chart saved", log.PathKey, opts.ChartPath)
	}
	doc := MentorAidStudy(now, studyOpts...)

	var buf bytes.Buffer
	if err := RenderHTML(&buf, doc, DocumentTitle); err != nil {
		return err
	}
	if err := writeFile(opts.HTMLPath, buf.Bytes()); err != nil {
		return err
	}
	logger.Info("Documentation saved", log.PathKey, opts.HTMLPath, log.SizeKey, buf.Len())

	if opts.MarkdownPath != "" {
		buf.Reset()
		if err := RenderMarkdown(&buf, doc); err != nil {
			return err
		}
		if err := writeFile(opts.MarkdownPath, buf.Bytes()); err != nil {
			return err
		}
		logger.Info("Markdown saved", log.PathKey, opts.MarkdownPath)
	}
	return nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "create directory for %s", path)
	}
	return errors.Wrapf(os.WriteFile(path, data, 0o644), "write %s", path)
}
