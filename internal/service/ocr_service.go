package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/leonberkemeier/Receiptly/internal/ocr"

	"go.uber.org/zap"
)

// OCRService extracts text from uploaded receipt images and PDFs.
type OCRService struct {
	pipeline *ocr.Pipeline
	logger   *zap.Logger
}

func NewOCRService(engine ocr.Engine, logger *zap.Logger) *OCRService {
	return &OCRService{
		pipeline: ocr.NewPipeline(engine, logger),
		logger:   logger,
	}
}

// ExtractText decodes the upload and returns its text. PDFs with a text layer
// skip OCR entirely; everything else goes through preprocessing and tesseract.
// Supported formats: .jpg, .jpeg, .png, .pdf
func (s *OCRService) ExtractText(ctx context.Context, data []byte, filename string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !ocr.Supported(filename) {
		return "", invalid("image", fmt.Sprintf("unsupported file format: %s (supported: jpg, jpeg, png, pdf)", filepath.Ext(filename)))
	}

	src, err := ocr.Decode(data, filename)
	if err != nil {
		return "", invalid("image", err.Error())
	}

	text, err := s.pipeline.Extract(src)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(sanitizeUTF8(text))

	s.logger.Info("OCR extraction completed",
		zap.String("file", filename),
		zap.String("format", src.Info.Format),
		zap.Bool("embedded_text", src.Text != ""),
		zap.Int("text_length", len(text)),
	)

	if text == "" {
		return "", invalid("image", "no text found in "+strings.ToLower(src.Info.Format))
	}
	return text, nil
}
