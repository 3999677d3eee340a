package ocr

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
)

var ErrUnsupportedFormat = errors.New("unsupported file format (supported: jpg, jpeg, png, pdf)")

var supportedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".pdf":  true,
}

// ImageInfo describes the decoded input.
type ImageInfo struct {
	Format     string
	Width      int
	Height     int
	ColorModel string
}

// Source is a decoded image ready for the pipeline. Text is set when the
// input was a PDF with an embedded text layer.
type Source struct {
	Image image.Image
	Info  ImageInfo
	Text  string
}

// Supported reports whether the file name has an extension the loader accepts.
func Supported(name string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(name))]
}

// Open reads and decodes the file at path.
func Open(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data, path)
}

// Decode decodes JPEG, PNG or the first page of a PDF.
func Decode(data []byte, name string) (*Source, error) {
	if isPDF(data, name) {
		return decodePDF(data)
	}
	if name != "" && !Supported(name) {
		return nil, ErrUnsupportedFormat
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return &Source{Image: img, Info: describe(img, format)}, nil
}

func decodePDF(data []byte) (*Source, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return nil, errors.New("PDF has no pages")
	}

	img, err := doc.Image(0)
	if err != nil {
		return nil, fmt.Errorf("failed to render PDF page: %w", err)
	}

	// a missing text layer is not an error, the page is OCRed instead
	text, _ := doc.Text(0)

	return &Source{
		Image: img,
		Info:  describe(img, "pdf"),
		Text:  strings.TrimSpace(text),
	}, nil
}

func isPDF(data []byte, name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf") || bytes.HasPrefix(data, []byte("%PDF"))
}

func describe(img image.Image, format string) ImageInfo {
	bounds := img.Bounds()
	return ImageInfo{
		Format:     strings.ToUpper(format),
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
		ColorModel: colorModelName(img.ColorModel()),
	}
}

func colorModelName(m color.Model) string {
	if _, ok := m.(color.Palette); ok {
		return "Paletted"
	}
	switch m {
	case color.RGBAModel:
		return "RGBA"
	case color.RGBA64Model:
		return "RGBA64"
	case color.NRGBAModel:
		return "NRGBA"
	case color.NRGBA64Model:
		return "NRGBA64"
	case color.AlphaModel:
		return "Alpha"
	case color.GrayModel:
		return "Gray"
	case color.Gray16Model:
		return "Gray16"
	case color.YCbCrModel:
		return "YCbCr"
	case color.CMYKModel:
		return "CMYK"
	default:
		return "unknown"
	}
}
