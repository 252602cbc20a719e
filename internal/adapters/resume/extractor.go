// Package resume turns uploaded PDF resumes into plain text.
package resume

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"code.sajari.com/docconv"

	"github.com/okian/hackbite/internal/domain/rating"
	"github.com/okian/hackbite/pkg/logger"
)

const pdfMIME = "application/pdf"

var (
	// ErrEmptyDocument is returned for an empty upload.
	ErrEmptyDocument = errors.New("resume document is empty")
	// ErrNotPDF is returned when the upload does not start with a PDF header.
	ErrNotPDF = errors.New("resume is not a PDF document")
	// ErrNoText is returned when the PDF contains no extractable text.
	ErrNoText = errors.New("resume contains no text")
)

type convertFunc func(r io.Reader, mimeType string, readability bool) (*docconv.Response, error)

// Extractor implements rating.Extractor with docconv.
type Extractor struct {
	convert convertFunc
	logger  logger.Logger
}

var _ rating.Extractor = (*Extractor)(nil)

// New creates an extractor. PDF conversion needs poppler's pdftotext on PATH.
func New() *Extractor {
	return &Extractor{convert: docconv.Convert, logger: logger.Get().Named("resume")}
}

// Extract returns the text of a PDF document.
func (e *Extractor) Extract(ctx context.Context, pdf []byte) (string, error) {
	const op = "resume.extract"

	if len(pdf) == 0 {
		return "", fmt.Errorf("%s: %w", op, ErrEmptyDocument)
	}
	if !bytes.HasPrefix(bytes.TrimLeft(pdf, "\x00\t\r\n "), []byte("%PDF-")) {
		return "", fmt.Errorf("%s: %w", op, ErrNotPDF)
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	res, err := e.convert(bytes.NewReader(pdf), pdfMIME, false)
	if err != nil {
		e.logger.Warn(ctx, "pdf conversion failed", logger.Int("bytes", len(pdf)), logger.Error(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}
	text := strings.TrimSpace(res.Body)
	if text == "" {
		return "", fmt.Errorf("%s: %w", op, ErrNoText)
	}
	return text, nil
}
