// Package ocr runs the receipt text extraction pipeline on top of an OCR
// engine: load, preprocess, recognize at several page segmentation modes and
// summarize word confidences.
package ocr

import "image"

// PageSegMode mirrors tesseract's page segmentation modes.
type PageSegMode int

const (
	PSMOrientationOnly PageSegMode = 0
	PSMAuto            PageSegMode = 3
	PSMSingleBlock     PageSegMode = 6
	PSMSingleWord      PageSegMode = 8
)

func (m PageSegMode) String() string {
	switch m {
	case PSMOrientationOnly:
		return "orientation and script detection"
	case PSMAuto:
		return "automatic"
	case PSMSingleBlock:
		return "single text block"
	case PSMSingleWord:
		return "single word"
	default:
		return "unknown"
	}
}

// Word is one recognized word with the engine's confidence in percent.
type Word struct {
	Text       string
	Confidence float64
}

// Engine is an OCR backend. Implementations need not be safe for concurrent use
// unless documented otherwise.
type Engine interface {
	Text(img image.Image, mode PageSegMode) (string, error)
	Words(img image.Image, mode PageSegMode) ([]Word, error)
	// DetectOrientation returns the engine's orientation and script report.
	DetectOrientation(img image.Image) (string, error)
}
