package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/leonberkemeier/Receiptly/internal/dto"
	"github.com/leonberkemeier/Receiptly/pkg/config"

	"github.com/Role1776/gigago"
	"go.uber.org/zap"
)

// minAnalyzableText is the shortest OCR output worth sending to the model.
const minAnalyzableText = 10

var errEmptyReceiptText = errors.New("extracted text is too short to analyze")

const systemInstruction = `You turn OCR output of shop receipts into structured data.
Always answer with a single JSON object and nothing else: no markdown, no comments.
Copy amounts exactly as printed, using a dot as the decimal separator.
If a value cannot be read, use an empty string.`

const receiptPrompt = `Extract the receipt below.

Receipt text:
%s

Return JSON in exactly this shape:
{
  "store": "shop name",
  "address": "shop address",
  "date": "YYYY-MM-DD",
  "time": "HH:MM",
  "total": "0.00",
  "items": [
    {"name": "item name", "price": "0.00", "quantity": "1"}
  ]
}`

// LLMService structures receipt text with GigaChat.
type LLMService struct {
	client   *gigago.Client
	logger   *zap.Logger
	complete func(ctx context.Context, prompt string) (string, error)
}

func NewLLMService(cfg *config.GigaChatConfig, logger *zap.Logger) (*LLMService, error) {
	ctx := context.Background()

	opts := []gigago.Option{
		gigago.WithCustomScope(cfg.Scope),
	}
	if cfg.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(ctx, cfg.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GigaChat client: %w", err)
	}

	model := client.GenerativeModel("GigaChat")
	model.SystemInstruction = systemInstruction
	model.Temperature = 0.1

	service := &LLMService{client: client, logger: logger}
	service.complete = func(ctx context.Context, prompt string) (string, error) {
		resp, err := model.Generate(ctx, []gigago.Message{
			{Role: gigago.RoleUser, Content: prompt},
		})
		if err != nil {
			return "", fmt.Errorf("failed to generate response: %w", err)
		}
		if len(resp.Choices) == 0 {
			return "", errors.New("no response from LLM")
		}
		return resp.Choices[0].Message.Content, nil
	}

	logger.Info("Using GigaChat model for receipt analysis")
	return service, nil
}

// StructureReceipt asks the model for a receipt draft built from OCR text.
func (s *LLMService) StructureReceipt(ctx context.Context, text string) (*dto.ReceiptDraft, error) {
	text = strings.TrimSpace(sanitizeUTF8(text))
	if len(text) < minAnalyzableText {
		s.logger.Warn("Extracted text is too short, skipping analysis", zap.Int("length", len(text)))
		return nil, errEmptyReceiptText
	}

	content, err := s.complete(ctx, fmt.Sprintf(receiptPrompt, text))
	if err != nil {
		return nil, err
	}

	draft, err := parseReceiptDraft(content)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Receipt analysis completed", zap.Int("items", len(draft.Items)))
	return draft, nil
}

func (s *LLMService) Close() error {
	if s.client != nil {
		s.client.Close()
	}
	return nil
}

// flexString accepts both JSON strings and numbers; models are not
// consistent about quoting amounts.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*f = flexString(n.String())
	return nil
}

type llmReceipt struct {
	Store   flexString `json:"store"`
	Address flexString `json:"address"`
	Date    flexString `json:"date"`
	Time    flexString `json:"time"`
	Total   flexString `json:"total"`
	Items   []struct {
		Name     flexString `json:"name"`
		Price    flexString `json:"price"`
		Quantity flexString `json:"quantity"`
	} `json:"items"`
}

// parseReceiptDraft pulls the first JSON object out of a model reply, which
// may be wrapped in markdown fences or prose.
func parseReceiptDraft(content string) (*dto.ReceiptDraft, error) {
	content = strings.TrimSpace(content)
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end < start {
		return nil, fmt.Errorf("invalid response format: %s", content)
	}

	var parsed llmReceipt
	if err := json.Unmarshal([]byte(content[start:end+1]), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	draft := &dto.ReceiptDraft{
		Store:   string(parsed.Store),
		Address: string(parsed.Address),
		Date:    string(parsed.Date),
		Time:    string(parsed.Time),
		Total:   normalizeAmount(string(parsed.Total)),
		Items:   make([]dto.ItemCreateRequest, 0, len(parsed.Items)),
	}
	for _, item := range parsed.Items {
		name := strings.TrimSpace(string(item.Name))
		if name == "" {
			continue
		}
		quantity := string(item.Quantity)
		if quantity == "" {
			quantity = "1"
		}
		draft.Items = append(draft.Items, dto.ItemCreateRequest{
			Name:     name,
			Price:    normalizeAmount(string(item.Price)),
			Quantity: quantity,
		})
	}
	return draft, nil
}

// normalizeAmount turns "25,99" into "25.99" and strips currency noise when
// the remainder is a plain number.
func normalizeAmount(value string) string {
	cleaned := strings.TrimSpace(value)
	cleaned = strings.Trim(cleaned, "$€£₽ ")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	if _, err := strconv.ParseFloat(cleaned, 64); err != nil {
		return strings.TrimSpace(value)
	}
	return cleaned
}
