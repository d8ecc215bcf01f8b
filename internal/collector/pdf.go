package collector

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/benvon/daily-journal/internal/logger"
	"github.com/benvon/daily-journal/internal/models"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// PDFDocument exposes per-page text of a parsed PDF. Pages are numbered from 1.
type PDFDocument interface {
	NumPage() int
	PageText(n int) (string, error)
}

// PDFOpener parses raw PDF bytes
type PDFOpener func(data []byte) (PDFDocument, error)

// PDFExtractor downloads a PDF and renders its pages as "[Page N]" blocks.
// Pages without text are skipped; a document that cannot be parsed yields "".
type PDFExtractor struct {
	store  FileStore
	open   PDFOpener
	logger *zap.Logger
}

// NewPDFExtractor returns a PDF extractor. A nil opener uses the built-in parser.
func NewPDFExtractor(store FileStore, open PDFOpener, log *zap.Logger) *PDFExtractor {
	if open == nil {
		open = OpenPDF
	}
	return &PDFExtractor{store: store, open: open, logger: logger.OrNop(log)}
}

func (e *PDFExtractor) Extract(ctx context.Context, f models.RemoteFile) (string, error) {
	data, err := e.store.Download(ctx, f.ID)
	if err != nil {
		return "", err
	}

	doc, err := e.open(data)
	if err != nil {
		e.logger.Warn("pdf_parse_failed",
			zap.String("file_id", f.ID),
			zap.String("file_name", logger.SanitizeFileName(f.Name)),
			zap.String("error", logger.SanitizeError(err)),
		)
		return "", nil
	}
	return renderPages(doc, func(n int, err error) {
		e.logger.Debug("pdf_page_skipped",
			zap.String("file_id", f.ID),
			zap.Int("page", n),
			zap.String("error", logger.SanitizeError(err)),
		)
	}), nil
}

func renderPages(doc PDFDocument, onSkip func(int, error)) string {
	var parts []string
	for n := 1; n <= doc.NumPage(); n++ {
		text, err := doc.PageText(n)
		if err != nil {
			onSkip(n, err)
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("[Page %d]\n%s", n, text))
	}
	return strings.Join(parts, "\n\n")
}

type ledongthucDocument struct {
	reader *pdf.Reader
	pages  int
}

// OpenPDF parses data with github.com/ledongthuc/pdf
func OpenPDF(data []byte) (doc PDFDocument, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("malformed pdf: %v", r)
		}
	}()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	return ledongthucDocument{reader: reader, pages: reader.NumPage()}, nil
}

func (d ledongthucDocument) NumPage() int {
	return d.pages
}

func (d ledongthucDocument) PageText(n int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("page %d: %v", n, r)
		}
	}()
	p := d.reader.Page(n)
	if p.V.IsNull() {
		return "", nil
	}
	return p.GetPlainText(nil)
}
