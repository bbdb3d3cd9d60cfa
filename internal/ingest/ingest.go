// Package ingest turns a user-supplied reference, either raw text or a
// path to a text/PDF file, into email text.
package ingest

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"
)

// Resolve returns the email text behind pathOrText. An existing file
// is read, with PDFs getting their text extracted; anything else is
// taken as raw email content.
func Resolve(pathOrText string) (string, error) {
	candidate := strings.TrimSpace(pathOrText)
	fi, err := os.Stat(candidate)
	if err != nil || fi.IsDir() {
		return pathOrText, nil
	}
	log.Debug().Str("path", candidate).Msg("reading email from file")
	return ReadFile(candidate)
}

// ReadFile extracts the text of a local file by type.
func ReadFile(path string) (string, error) {
	if strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return readPDF(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

func readPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text %s: %w", path, err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return "", fmt.Errorf("extract pdf text %s: %w", path, err)
	}
	return buf.String(), nil
}
