//go:build gosseract

package tesseract

import (
	"bytes"
	"fmt"
	"image"
	"strings"
	"sync"

	"github.com/leonberkemeier/Receiptly/internal/ocr"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

func Version() string {
	return strings.TrimSpace(gosseract.Version())
}

func New(languages ...string) (Engine, error) {
	lib, err := NewLibrary(languages...)
	if err != nil {
		return nil, err
	}
	return lib, nil
}

// Library serializes calls on one gosseract client. Orientation detection is
// not exposed by gosseract and falls back to the executable when present.
type Library struct {
	mu     sync.Mutex
	client *gosseract.Client
	osd    *CLI
}

func NewLibrary(languages ...string) (*Library, error) {
	if Version() == "" {
		return nil, ErrNotInstalled
	}

	client := gosseract.NewClient()
	if len(languages) > 0 {
		if err := client.SetLanguage(languages...); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set OCR languages: %w", err)
		}
	}

	lib := &Library{client: client}
	if cli, err := NewCLI(); err == nil {
		lib.osd = cli
	}
	return lib, nil
}

func (e *Library) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.client.Close()
}

func (e *Library) Text(img image.Image, mode ocr.PageSegMode) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.load(img, mode); err != nil {
		return "", err
	}
	return e.client.Text()
}

func (e *Library) Words(img image.Image, mode ocr.PageSegMode) ([]ocr.Word, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.load(img, mode); err != nil {
		return nil, err
	}
	boxes, err := e.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, err
	}

	words := make([]ocr.Word, 0, len(boxes))
	for _, box := range boxes {
		words = append(words, ocr.Word{Text: box.Word, Confidence: box.Confidence})
	}
	return words, nil
}

func (e *Library) DetectOrientation(img image.Image) (string, error) {
	if e.osd == nil {
		return "", fmt.Errorf("orientation detection needs the tesseract executable: %w", ErrNotInstalled)
	}
	return e.osd.DetectOrientation(img)
}

func (e *Library) load(img image.Image, mode ocr.PageSegMode) error {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}
	if err := e.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return err
	}
	return e.client.SetPageSegMode(pageSegMode(mode))
}

func pageSegMode(mode ocr.PageSegMode) gosseract.PageSegMode {
	switch mode {
	case ocr.PSMOrientationOnly:
		return gosseract.PSM_OSD_ONLY
	case ocr.PSMSingleBlock:
		return gosseract.PSM_SINGLE_BLOCK
	case ocr.PSMSingleWord:
		return gosseract.PSM_SINGLE_WORD
	default:
		return gosseract.PSM_AUTO
	}
}
