package extract

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/futig/ragchat-backend/internal/entity"
	"github.com/ledongthuc/pdf"
)

// Text extracts plain text from an uploaded file based on its extension.
// Plain text and markdown pass through unchanged; PDF pages are
// flattened into a single string.
func Text(filename string, content []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".txt", ".md", ".markdown":
		return string(content), nil
	case ".pdf":
		return pdfText(content)
	default:
		return "", fmt.Errorf("%w: %s", entity.ErrInvalidExtension, ext)
	}
}

func pdfText(content []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open PDF: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract PDF text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("read PDF text: %w", err)
	}

	return buf.String(), nil
}
