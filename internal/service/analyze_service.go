package service

import (
	"context"
	"errors"

	"github.com/leonberkemeier/Receiptly/internal/dto"
	"github.com/leonberkemeier/Receiptly/internal/models"

	"go.uber.org/zap"
)

type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte, filename string) (string, error)
}

type ReceiptStructurer interface {
	StructureReceipt(ctx context.Context, text string) (*dto.ReceiptDraft, error)
}

// AnalyzeService turns an uploaded receipt into an unsaved draft. Either
// dependency may be nil, in which case analysis is disabled.
type AnalyzeService struct {
	extractor  TextExtractor
	structurer ReceiptStructurer
	logger     *zap.Logger
}

func NewAnalyzeService(extractor TextExtractor, structurer ReceiptStructurer, logger *zap.Logger) *AnalyzeService {
	return &AnalyzeService{
		extractor:  extractor,
		structurer: structurer,
		logger:     logger,
	}
}

func (s *AnalyzeService) Enabled() bool {
	return s != nil && s.extractor != nil && s.structurer != nil
}

func (s *AnalyzeService) Analyze(ctx context.Context, user models.User, data []byte, filename string) (*dto.AnalyzeReceiptResponse, error) {
	if !s.Enabled() {
		return nil, ErrAnalyzerDisabled
	}
	if len(data) == 0 {
		return nil, invalid("image", "file is empty")
	}

	text, err := s.extractor.ExtractText(ctx, data, filename)
	if err != nil {
		return nil, err
	}

	draft, err := s.structurer.StructureReceipt(ctx, text)
	if err != nil {
		if errors.Is(err, errEmptyReceiptText) {
			return nil, invalid("image", err.Error())
		}
		return nil, err
	}

	s.logger.Info("Receipt analyzed",
		zap.String("user_id", user.ID.String()),
		zap.String("file", filename),
		zap.Int("items", len(draft.Items)),
	)

	return &dto.AnalyzeReceiptResponse{
		Success:       true,
		Status:        "completed",
		Data:          *draft,
		ExtractedText: text,
	}, nil
}
