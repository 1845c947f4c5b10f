package extract

import (
	"errors"
	"strings"
	"testing"
)

func TestPreviewRejectsNonPDF(t *testing.T) {
	_, err := Preview([]byte("plain text"), "notes.txt")
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestPreviewDetectsPDFByMagicBytes(t *testing.T) {
	// truncated payload: detection succeeds, parsing fails, never panics
	_, err := Preview([]byte("%PDF-1.7 truncated"), "upload.bin")
	if err == nil {
		t.Fatal("expected parse error for truncated pdf")
	}
	if errors.Is(err, ErrUnsupported) {
		t.Fatal("magic bytes should mark the payload as a pdf")
	}
}

func TestTrimPreviewCutsAtWordBoundary(t *testing.T) {
	long := strings.Repeat("word ", 1000)
	got := trimPreview(long)
	if len(got) > previewLimit {
		t.Fatalf("preview too long: %d", len(got))
	}
	if strings.HasSuffix(got, " ") {
		t.Fatal("preview should not end mid-separator")
	}

	short := "  short text  "
	if trimPreview(short) != "short text" {
		t.Fatalf("unexpected trim: %q", trimPreview(short))
	}
}
