package collector

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/benvon/daily-journal/internal/models"
	"go.uber.org/zap"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		file models.RemoteFile
		want Kind
	}{
		{"plain mime", models.RemoteFile{Name: "x", MIMEType: models.MIMETypePlainText}, KindPlainText},
		{"markdown mime", models.RemoteFile{Name: "x", MIMEType: models.MIMETypeMarkdown}, KindPlainText},
		{"pdf mime", models.RemoteFile{Name: "scan", MIMEType: models.MIMETypePDF}, KindPDF},
		{"native document", models.RemoteFile{Name: "Journal", MIMEType: models.MIMETypeGoogleDocument}, KindDocument},
		{"mime wins over suffix", models.RemoteFile{Name: "x.pdf", MIMEType: models.MIMETypePlainText}, KindPlainText},
		{"txt suffix", models.RemoteFile{Name: "x.TXT", MIMEType: "application/octet-stream"}, KindPlainText},
		{"md suffix", models.RemoteFile{Name: "x.md"}, KindPlainText},
		{"pdf suffix", models.RemoteFile{Name: "x.Pdf", MIMEType: "application/octet-stream"}, KindPDF},
		{"image", models.RemoteFile{Name: "x.jpg", MIMEType: "image/jpeg"}, KindUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Classify(tt.file); got != tt.want {
				t.Errorf("Classify(%+v) = %s, want %s", tt.file, got, tt.want)
			}
		})
	}
}

func TestPlainTextExtractor_DropsInvalidUTF8(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.content["f1"] = []byte("caf\xc3\xa9 \xff\xfeok")

	got, err := PlainTextExtractor{Store: store}.Extract(context.Background(), models.RemoteFile{ID: "f1"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != "café ok" {
		t.Errorf("Extract() = %q, want %q", got, "café ok")
	}
}

func TestDocumentExtractor(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.exports["doc"] = []byte("exported body")

	x := NewExtractors(store, zap.NewNop())
	got, err := x.Extract(context.Background(), models.SourceNotes, models.RemoteFile{ID: "doc", Name: "Doc.txt", MIMEType: models.MIMETypeGoogleDocument})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got.Text != "exported body" || got.Category != models.SourceNotes || got.FileName != "Doc.txt" {
		t.Errorf("Unexpected content: %+v", got)
	}
}

func TestExtractors_Unsupported(t *testing.T) {
	t.Parallel()

	x := NewExtractors(newFakeStore(), nil)
	got, err := x.Extract(context.Background(), models.SourceNotes, models.RemoteFile{ID: "img", Name: "a.png", MIMEType: "image/png"})
	if err != nil || !got.Empty() {
		t.Errorf("Expected empty content and no error, got %+v, %v", got, err)
	}
}

func TestExtractors_DownloadError(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.downloadErr["f1"] = errors.New("timeout")

	_, err := NewExtractors(store, nil).Extract(context.Background(), models.SourceVoice, models.RemoteFile{ID: "f1", Name: "a.txt"})
	if !errors.Is(err, store.downloadErr["f1"]) {
		t.Errorf("Expected download error, got %v", err)
	}
}

func TestPDFExtractor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  PDFDocument
		err  error
		want string
	}{
		{
			name: "second page unreadable",
			doc:  fakePDF{pages: []*string{strPtr("Page one text"), nil}},
			want: "[Page 1]\nPage one text",
		},
		{
			name: "blank page skipped",
			doc:  fakePDF{pages: []*string{strPtr("one"), strPtr("  \n"), strPtr("three")}},
			want: "[Page 1]\none\n\n[Page 3]\nthree",
		},
		{
			name: "document cannot be parsed",
			err:  errors.New("not a pdf"),
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store := newFakeStore()
			store.content["p"] = []byte("%PDF-1.4")
			open := func([]byte) (PDFDocument, error) { return tt.doc, tt.err }

			got, err := NewPDFExtractor(store, open, nil).Extract(context.Background(), models.RemoteFile{ID: "p", Name: "scan.pdf"})
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Extract() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOpenPDF_Garbage(t *testing.T) {
	t.Parallel()

	if _, err := OpenPDF([]byte("definitely not a pdf")); err == nil {
		t.Error("Expected error for non-PDF input")
	}
}

func TestOpenPDF_TwoPages(t *testing.T) {
	t.Parallel()

	data, err := os.ReadFile(filepath.Join("testdata", "two_pages.pdf"))
	if err != nil {
		t.Fatalf("Failed to read fixture: %v", err)
	}
	doc, err := OpenPDF(data)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if doc.NumPage() != 2 {
		t.Fatalf("Expected 2 pages, got %d", doc.NumPage())
	}

	tests := []struct {
		page int
		want string
	}{
		{1, "First page text"},
		{2, "Second page text"},
		{3, ""},
	}
	for _, tt := range tests {
		text, err := doc.PageText(tt.page)
		if err != nil {
			t.Fatalf("Page %d: unexpected error: %v", tt.page, err)
		}
		if strings.TrimSpace(text) != tt.want {
			t.Errorf("Page %d: expected %q, got %q", tt.page, tt.want, text)
		}
	}

	store := newFakeStore()
	store.content["p"] = data
	got, err := NewPDFExtractor(store, nil, nil).Extract(context.Background(), models.RemoteFile{ID: "p", Name: "scan.pdf"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	first, second := strings.Index(got, "[Page 1]"), strings.Index(got, "[Page 2]")
	if first != 0 || second < 0 || !strings.Contains(got[first:second], "First page text") || !strings.Contains(got[second:], "Second page text") {
		t.Errorf("Unexpected extraction: %q", got)
	}
}

func TestExtractors_With(t *testing.T) {
	t.Parallel()

	base := NewExtractors(newFakeStore(), nil)
	custom := base.With(KindUnsupported, PlainTextExtractor{Store: newFakeStore()})
	img := models.RemoteFile{Name: "a.png"}
	if _, ok := custom.For(img).(PlainTextExtractor); !ok {
		t.Error("Expected override to be used")
	}
	if _, ok := base.For(img).(UnsupportedExtractor); !ok {
		t.Error("Expected base to be unchanged")
	}
}
