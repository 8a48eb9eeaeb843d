package doctext

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kpcollege/studentportal/internal/common"
)

type fakeRunner struct {
	stdout []byte
	err    error
}

func (f fakeRunner) Run(_ context.Context, _ string, _ ...string) ([]byte, []byte, error) {
	return f.stdout, nil, f.err
}

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatalf("write entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestExtractDocx(t *testing.T) {
	docXML := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Anil Kumar</w:t></w:r><w:r><w:tab/><w:t>24KP1A0401</w:t></w:r></w:p>
    <w:p><w:r><w:t>Bhavana</w:t></w:r></w:p>
  </w:body>
</w:document>`
	e := NewExtractor(Config{}, nil)
	doc, err := e.Extract(context.Background(), "roster.docx", buildDocx(t, docXML))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !strings.Contains(doc.Text, "Anil Kumar\t24KP1A0401") {
		t.Fatalf("tab-joined run missing, got %q", doc.Text)
	}
	if !strings.Contains(doc.Text, "Bhavana\n") {
		t.Fatalf("paragraph break missing, got %q", doc.Text)
	}
}

func TestExtractDocxEmpty(t *testing.T) {
	docXML := `<w:document xmlns:w="x"><w:body><w:p><w:r><w:t>   </w:t></w:r></w:p></w:body></w:document>`
	e := NewExtractor(Config{}, nil)
	_, err := e.Extract(context.Background(), "blank.docx", buildDocx(t, docXML))
	if !errors.Is(err, common.ErrEmptyDocument) {
		t.Fatalf("got %v, want ErrEmptyDocument", err)
	}
}

func TestExtractPDFUsesRunner(t *testing.T) {
	e := NewExtractor(Config{}, nil)
	e.runner = fakeRunner{stdout: []byte("page one text\fpage two text")}
	doc, err := e.Extract(context.Background(), "roster.pdf", []byte("%PDF-1.4 fake"))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if doc.Text != "page one text\fpage two text" {
		t.Fatalf("unexpected text %q", doc.Text)
	}
}

func TestExtractPDFEmptyText(t *testing.T) {
	e := NewExtractor(Config{}, nil)
	e.runner = fakeRunner{stdout: []byte("  \n \f ")}
	_, err := e.Extract(context.Background(), "scan.pdf", []byte("%PDF"))
	if !errors.Is(err, common.ErrEmptyDocument) {
		t.Fatalf("got %v, want ErrEmptyDocument", err)
	}
}

func TestExtractImagePassthrough(t *testing.T) {
	e := NewExtractor(Config{}, nil)
	raw := []byte{0x89, 'P', 'N', 'G'}
	doc, err := e.Extract(context.Background(), "sheet.png", raw)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !bytes.Equal(doc.ImageBytes, raw) || doc.MIMEType != "image/png" {
		t.Fatalf("image not passed through: %+v", doc)
	}
	if doc.Text != "" {
		t.Fatalf("image extraction should not produce text")
	}
}

func TestExtractUnsupportedType(t *testing.T) {
	e := NewExtractor(Config{}, nil)
	_, err := e.Extract(context.Background(), "notes.txt", []byte("hello"))
	if !errors.Is(err, common.ErrUnsupportedFileType) {
		t.Fatalf("got %v, want ErrUnsupportedFileType", err)
	}
}

func TestExtractSizeCap(t *testing.T) {
	e := NewExtractor(Config{MaxBytes: 8}, nil)
	_, err := e.Extract(context.Background(), "big.pdf", make([]byte, 16))
	if !errors.Is(err, common.ErrInvalidInput) {
		t.Fatalf("got %v, want ErrInvalidInput", err)
	}
}
