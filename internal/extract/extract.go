package extract

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

const previewLimit = 2000

// ErrUnsupported is returned for attachments that are not PDFs.
var ErrUnsupported = fmt.Errorf("unsupported attachment type")

// Preview extracts a short plain-text preview from an attached PDF. It is
// best-effort: callers treat any error as "no preview available".
func Preview(data []byte, fileName string) (string, error) {
	if !isPDF(fileName, data) {
		return "", ErrUnsupported
	}
	text, err := pdfText(data)
	if err != nil {
		return "", fmt.Errorf("pdf preview %s: %w", fileName, err)
	}
	return trimPreview(text), nil
}

func isPDF(fileName string, data []byte) bool {
	if strings.ToLower(filepath.Ext(fileName)) == ".pdf" {
		return true
	}
	return bytes.HasPrefix(data, []byte("%PDF-"))
}

func pdfText(data []byte) (string, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func trimPreview(text string) string {
	text = strings.TrimSpace(text)
	if len(text) <= previewLimit {
		return text
	}
	cut := text[:previewLimit]
	if idx := strings.LastIndexByte(cut, ' '); idx > previewLimit/2 {
		cut = cut[:idx]
	}
	return cut
}
