// Package doctext converts uploaded documents into extraction-model input:
// plain text for PDFs and DOCX files, passthrough bytes for images.
package doctext

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kpcollege/studentportal/constants"
	"github.com/kpcollege/studentportal/internal/common"
	"github.com/kpcollege/studentportal/internal/llm"
)

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	MaxBytes  int64  // upload size cap, default 20MB
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 20 << 20
	}
	return &Extractor{cfg: cfg, runner: execRunner{}, logger: logger}
}

// Extract picks a strategy based on the uploaded filename's extension.
// PDF and DOCX yield text; images pass through untouched for the model to
// recognize. Whitespace-only text is an EmptyDocument.
func (e *Extractor) Extract(ctx context.Context, filename string, data []byte) (llm.Document, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(filename))
	format := constants.MapExtToFormat(ext)
	e.logger.Debug("doctext.extract.start", "filename", filename, "ext", ext, "bytes", len(data))

	if int64(len(data)) > e.cfg.MaxBytes {
		return llm.Document{}, fmt.Errorf("file exceeds %d bytes: %w", e.cfg.MaxBytes, common.ErrInvalidInput)
	}

	var doc llm.Document
	var err error
	switch format {
	case constants.PDF:
		doc.Text, err = e.pdfToText(ctx, data)
	case constants.DOCX:
		doc.Text, err = docxToText(data)
	case constants.IMAGE:
		doc.ImageBytes = data
		doc.MIMEType = constants.ImageMIMEType(ext)
	default:
		e.logger.Error("doctext.extract.unsupported", "filename", filename, "ext", ext)
		return llm.Document{}, fmt.Errorf("extension %q: %w", ext, common.ErrUnsupportedFileType)
	}
	if err != nil {
		return llm.Document{}, err
	}

	if format != constants.IMAGE && strings.TrimSpace(doc.Text) == "" {
		e.logger.Warn("doctext.extract.empty", "filename", filename)
		return llm.Document{}, common.ErrEmptyDocument
	}

	e.logger.Info("doctext.extract.ok",
		"filename", filename,
		"format", format,
		"text_len", len(doc.Text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return doc, nil
}

// pdfToText shells out to pdftotext, writing the upload to a temp file
// first. Page order is preserved; pdftotext separates pages with \f.
func (e *Extractor) pdfToText(ctx context.Context, data []byte) (string, error) {
	tmp, err := os.CreateTemp("", "portal-upload-*.pdf")
	if err != nil {
		return "", fmt.Errorf("temp file: %w", err)
	}
	defer func(path string) {
		if err := os.Remove(path); err != nil {
			e.logger.Warn("doctext.pdf.tmp_remove_failed", "path", path, "error", err)
		}
	}(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}

	// pdftotext -layout -enc UTF-8 -eol unix <tmp> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", tmp.Name(), "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w (%s)", err, truncate(string(errb), 512))
	}
	return string(out), nil
}
