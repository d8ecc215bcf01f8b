package collector

import (
	"context"
	"fmt"
	"strings"

	"github.com/benvon/daily-journal/internal/models"
	"go.uber.org/zap"
)

// Kind identifies which extraction strategy applies to a file
type Kind string

const (
	KindPlainText   Kind = "plain_text"
	KindPDF         Kind = "pdf"
	KindDocument    Kind = "document"
	KindUnsupported Kind = "unsupported"
)

// Classify picks the extraction strategy for a file, by MIME type first and
// file name suffix second
func Classify(f models.RemoteFile) Kind {
	switch f.MIMEType {
	case models.MIMETypePlainText, models.MIMETypeMarkdown:
		return KindPlainText
	case models.MIMETypePDF:
		return KindPDF
	case models.MIMETypeGoogleDocument:
		return KindDocument
	}
	switch {
	case f.HasSuffix(".txt", ".md"):
		return KindPlainText
	case f.HasSuffix(".pdf"):
		return KindPDF
	}
	return KindUnsupported
}

// Extractor turns one remote file into text. An empty result means nothing usable
// was found; an error means the store could not be read.
type Extractor interface {
	Extract(ctx context.Context, f models.RemoteFile) (string, error)
}

// decodeText decodes UTF-8, dropping invalid byte sequences
func decodeText(data []byte) string {
	return strings.ToValidUTF8(string(data), "")
}

// PlainTextExtractor downloads text and Markdown files
type PlainTextExtractor struct {
	Store FileStore
}

func (e PlainTextExtractor) Extract(ctx context.Context, f models.RemoteFile) (string, error) {
	data, err := e.Store.Download(ctx, f.ID)
	if err != nil {
		return "", err
	}
	return decodeText(data), nil
}

// DocumentExtractor exports native cloud documents as plain text
type DocumentExtractor struct {
	Store FileStore
}

func (e DocumentExtractor) Extract(ctx context.Context, f models.RemoteFile) (string, error) {
	data, err := e.Store.Export(ctx, f.ID, models.MIMETypePlainText)
	if err != nil {
		return "", err
	}
	return decodeText(data), nil
}

// UnsupportedExtractor yields no text
type UnsupportedExtractor struct{}

func (UnsupportedExtractor) Extract(context.Context, models.RemoteFile) (string, error) {
	return "", nil
}

// Extractors dispatches each file to the extractor for its Kind
type Extractors struct {
	byKind map[Kind]Extractor
}

// NewExtractors wires the standard strategies to store
func NewExtractors(store FileStore, log *zap.Logger) *Extractors {
	return &Extractors{byKind: map[Kind]Extractor{
		KindPlainText:   PlainTextExtractor{Store: store},
		KindPDF:         NewPDFExtractor(store, nil, log),
		KindDocument:    DocumentExtractor{Store: store},
		KindUnsupported: UnsupportedExtractor{},
	}}
}

// With returns a copy that uses e for kind
func (x *Extractors) With(kind Kind, e Extractor) *Extractors {
	byKind := make(map[Kind]Extractor, len(x.byKind)+1)
	for k, v := range x.byKind {
		byKind[k] = v
	}
	byKind[kind] = e
	return &Extractors{byKind: byKind}
}

// For returns the extractor for f
func (x *Extractors) For(f models.RemoteFile) Extractor {
	if e, ok := x.byKind[Classify(f)]; ok {
		return e
	}
	return UnsupportedExtractor{}
}

// Extract classifies f and runs the matching extractor
func (x *Extractors) Extract(ctx context.Context, category models.SourceCategory, f models.RemoteFile) (models.ExtractedContent, error) {
	text, err := x.For(f).Extract(ctx, f)
	if err != nil {
		return models.ExtractedContent{}, fmt.Errorf("extract %s: %w", f.ID, err)
	}
	return models.ExtractedContent{Category: category, FileName: f.Name, Text: text}, nil
}
