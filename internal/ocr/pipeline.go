package ocr

import (
	"fmt"
	"image"
	"strings"

	"github.com/leonberkemeier/Receiptly/internal/imageproc"

	"go.uber.org/zap"
)

// MinConfidence is the confidence a word must exceed to be kept.
const MinConfidence = 30.0

// maxSingleWordTokens bounds how many tokens a single-word pass may return
// before its output is treated as noise.
const maxSingleWordTokens = 3

type ConfidenceStats struct {
	Average float64
	Min     float64
	Max     float64
	Words   int
}

// Report is the outcome of one pipeline run. Failed passes leave their field
// empty and add an entry to Errors.
type Report struct {
	Info          ImageInfo
	Threshold     uint8
	RawText       string
	ProcessedText string
	Confidence    *ConfidenceStats
	BlockText     string
	WordText      string
	Orientation   string
	Errors        []error
}

// Empty reports whether neither the raw nor the processed pass found text.
func (r *Report) Empty() bool {
	return r.RawText == "" && r.ProcessedText == ""
}

type Pipeline struct {
	engine Engine
	logger *zap.Logger
}

func NewPipeline(engine Engine, logger *zap.Logger) *Pipeline {
	return &Pipeline{engine: engine, logger: logger}
}

// Run executes every pass on src. It never fails as a whole: engine errors
// are collected on the report.
func (p *Pipeline) Run(src *Source) *Report {
	report := &Report{Info: src.Info}

	raw, err := p.engine.Text(src.Image, PSMAuto)
	if err != nil {
		report.fail("raw pass", err)
	}
	report.RawText = strings.TrimSpace(raw)

	p.processed(src.Image, report)

	block, err := p.engine.Text(src.Image, PSMSingleBlock)
	if err != nil {
		report.fail("single block pass", err)
	} else if block = strings.TrimSpace(block); block != report.RawText {
		report.BlockText = block
	}

	word, err := p.engine.Text(src.Image, PSMSingleWord)
	if err != nil {
		report.fail("single word pass", err)
	} else if word = strings.TrimSpace(word); word != "" && len(strings.Fields(word)) <= maxSingleWordTokens {
		report.WordText = word
	}

	osd, err := p.engine.DetectOrientation(src.Image)
	if err != nil {
		report.fail("orientation detection", err)
	}
	report.Orientation = strings.TrimSpace(osd)

	p.logger.Debug("OCR pipeline finished",
		zap.Int("raw_length", len(report.RawText)),
		zap.Int("processed_length", len(report.ProcessedText)),
		zap.Int("errors", len(report.Errors)),
	)
	return report
}

// Extract runs only the passes needed to get usable text out of src.
func (p *Pipeline) Extract(src *Source) (string, error) {
	if src.Text != "" {
		return src.Text, nil
	}

	report := &Report{Info: src.Info}
	p.processed(src.Image, report)
	if report.ProcessedText != "" {
		return report.ProcessedText, nil
	}

	raw, err := p.engine.Text(src.Image, PSMAuto)
	if err != nil {
		return "", fmt.Errorf("ocr failed: %w", err)
	}
	return strings.TrimSpace(raw), nil
}

func (p *Pipeline) processed(img image.Image, report *Report) {
	pre := imageproc.Preprocess(img)
	report.Threshold = pre.Threshold

	words, err := p.engine.Words(pre.Binary, PSMAuto)
	if err != nil {
		report.fail("processed pass", err)
		return
	}

	kept := FilterWords(words, MinConfidence)
	texts := make([]string, 0, len(kept))
	for _, w := range kept {
		texts = append(texts, w.Text)
	}
	report.ProcessedText = strings.Join(texts, " ")
	report.Confidence = Summarize(kept)
}

func (r *Report) fail(pass string, err error) {
	r.Errors = append(r.Errors, fmt.Errorf("%s: %w", pass, err))
}

// FilterWords keeps non-blank words whose confidence is strictly above min.
func FilterWords(words []Word, min float64) []Word {
	kept := make([]Word, 0, len(words))
	for _, w := range words {
		text := strings.TrimSpace(w.Text)
		if text == "" || w.Confidence <= min {
			continue
		}
		kept = append(kept, Word{Text: text, Confidence: w.Confidence})
	}
	return kept
}

// Summarize returns nil for an empty word list.
func Summarize(words []Word) *ConfidenceStats {
	if len(words) == 0 {
		return nil
	}
	stats := &ConfidenceStats{Min: words[0].Confidence, Max: words[0].Confidence, Words: len(words)}
	var sum float64
	for _, w := range words {
		sum += w.Confidence
		if w.Confidence < stats.Min {
			stats.Min = w.Confidence
		}
		if w.Confidence > stats.Max {
			stats.Max = w.Confidence
		}
	}
	stats.Average = sum / float64(len(words))
	return stats
}
