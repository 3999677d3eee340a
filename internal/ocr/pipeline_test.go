package ocr

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeEngine struct {
	texts    map[PageSegMode]string
	textErr  map[PageSegMode]error
	words    []Word
	wordsErr error
	osd      string
	osdErr   error

	wordsInput image.Image
}

func (f *fakeEngine) Text(_ image.Image, mode PageSegMode) (string, error) {
	if err := f.textErr[mode]; err != nil {
		return "", err
	}
	return f.texts[mode], nil
}

func (f *fakeEngine) Words(img image.Image, _ PageSegMode) ([]Word, error) {
	f.wordsInput = img
	return f.words, f.wordsErr
}

func (f *fakeEngine) DetectOrientation(image.Image) (string, error) {
	return f.osd, f.osdErr
}

func testSource() *Source {
	img := image.NewRGBA(image.Rect(0, 0, 6, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			if x < 3 {
				img.Set(x, y, color.Black)
			} else {
				img.Set(x, y, color.White)
			}
		}
	}
	return &Source{Image: img, Info: describe(img, "png")}
}

func TestPipeline_Run(t *testing.T) {
	engine := &fakeEngine{
		texts: map[PageSegMode]string{
			PSMAuto:        "COFFEE 4.99\nTOTAL 25.99\n",
			PSMSingleBlock: "COFFEE 4.99 TOTAL 25.99",
			PSMSingleWord:  "TOTAL",
		},
		words: []Word{
			{Text: "COFFEE", Confidence: 91},
			{Text: "~", Confidence: 12},
			{Text: "  ", Confidence: 95},
			{Text: "25.99", Confidence: 30},
			{Text: "TOTAL", Confidence: 71},
		},
		osd: "Orientation in degrees: 0\nScript: Latin\n",
	}

	report := NewPipeline(engine, zap.NewNop()).Run(testSource())

	assert.Empty(t, report.Errors)
	assert.Equal(t, "COFFEE 4.99\nTOTAL 25.99", report.RawText)
	assert.Equal(t, "COFFEE TOTAL", report.ProcessedText)
	require.NotNil(t, report.Confidence)
	assert.Equal(t, 2, report.Confidence.Words)
	assert.InDelta(t, 81.0, report.Confidence.Average, 0.001)
	assert.Equal(t, 71.0, report.Confidence.Min)
	assert.Equal(t, 91.0, report.Confidence.Max)
	assert.Equal(t, "COFFEE 4.99 TOTAL 25.99", report.BlockText)
	assert.Equal(t, "TOTAL", report.WordText)
	assert.Equal(t, "Orientation in degrees: 0\nScript: Latin", report.Orientation)
	assert.False(t, report.Empty())

	binary, ok := engine.wordsInput.(*image.Gray)
	require.True(t, ok, "processed pass should receive the binarized image")
	for _, v := range binary.Pix {
		assert.True(t, v == 0 || v == 255)
	}
}

func TestPipeline_Run_SkipsRedundantPasses(t *testing.T) {
	engine := &fakeEngine{
		texts: map[PageSegMode]string{
			PSMAuto:        "same text",
			PSMSingleBlock: " same text ",
			PSMSingleWord:  "one two three four",
		},
	}

	report := NewPipeline(engine, zap.NewNop()).Run(testSource())

	assert.Empty(t, report.BlockText)
	assert.Empty(t, report.WordText)
	assert.Nil(t, report.Confidence)
}

func TestPipeline_Run_CollectsErrors(t *testing.T) {
	boom := errors.New("engine crashed")
	engine := &fakeEngine{
		textErr: map[PageSegMode]error{
			PSMAuto:        boom,
			PSMSingleBlock: boom,
			PSMSingleWord:  boom,
		},
		wordsErr: boom,
		osdErr:   boom,
	}

	report := NewPipeline(engine, zap.NewNop()).Run(testSource())

	assert.Len(t, report.Errors, 5)
	for _, err := range report.Errors {
		assert.ErrorIs(t, err, boom)
	}
	assert.True(t, report.Empty())
	assert.Empty(t, report.Orientation)
}

func TestPipeline_Extract(t *testing.T) {
	t.Run("prefers embedded text", func(t *testing.T) {
		src := testSource()
		src.Text = "from pdf"
		text, err := NewPipeline(&fakeEngine{}, zap.NewNop()).Extract(src)
		require.NoError(t, err)
		assert.Equal(t, "from pdf", text)
	})

	t.Run("uses confident words", func(t *testing.T) {
		engine := &fakeEngine{words: []Word{{Text: "MILK", Confidence: 88}}}
		text, err := NewPipeline(engine, zap.NewNop()).Extract(testSource())
		require.NoError(t, err)
		assert.Equal(t, "MILK", text)
	})

	t.Run("falls back to raw pass", func(t *testing.T) {
		engine := &fakeEngine{
			texts: map[PageSegMode]string{PSMAuto: " raw \n"},
			words: []Word{{Text: "??", Confidence: 5}},
		}
		text, err := NewPipeline(engine, zap.NewNop()).Extract(testSource())
		require.NoError(t, err)
		assert.Equal(t, "raw", text)
	})

	t.Run("raw pass error", func(t *testing.T) {
		boom := errors.New("boom")
		engine := &fakeEngine{textErr: map[PageSegMode]error{PSMAuto: boom}}
		_, err := NewPipeline(engine, zap.NewNop()).Extract(testSource())
		assert.ErrorIs(t, err, boom)
	})
}

func TestFilterWords_ThresholdIsExclusive(t *testing.T) {
	kept := FilterWords([]Word{
		{Text: "a", Confidence: 30},
		{Text: "b", Confidence: 30.5},
	}, MinConfidence)
	require.Len(t, kept, 1)
	assert.Equal(t, "b", kept[0].Text)
}

func TestSummarize_Empty(t *testing.T) {
	assert.Nil(t, Summarize(nil))
}

func TestDecode_PNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 4, 3))))

	src, err := Decode(buf.Bytes(), "receipt.png")
	require.NoError(t, err)
	assert.Equal(t, ImageInfo{Format: "PNG", Width: 4, Height: 3, ColorModel: "NRGBA"}, src.Info)
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode([]byte("hello"), "notes.txt")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Decode([]byte("not an image"), "receipt.jpg")
	assert.Error(t, err)
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("a.JPG"))
	assert.True(t, Supported("scan.pdf"))
	assert.False(t, Supported("a.gif"))
	assert.False(t, Supported("noext"))
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	WriteHeader(&buf, "img.png", ImageInfo{Format: "PNG", Width: 4, Height: 3, ColorModel: "Gray"})
	WriteReport(&buf, &Report{
		RawText:       "TOTAL 25.99",
		ProcessedText: "TOTAL",
		Confidence:    &ConfidenceStats{Average: 80.5, Min: 71, Max: 90, Words: 2},
		WordText:      "TOTAL",
	})

	out := buf.String()
	assert.Contains(t, out, "Image Size: 4x3 pixels")
	assert.Contains(t, out, "--- Raw OCR Output ---\nTOTAL 25.99")
	assert.Contains(t, out, "Average Confidence: 80.50%")
	assert.Contains(t, out, "PSM 8 (Single word): TOTAL")
	assert.Contains(t, out, "Could not detect orientation/script")
	assert.NotContains(t, out, "No text detected")
}

func TestWriteReport_NoText(t *testing.T) {
	var buf bytes.Buffer
	WriteReport(&buf, &Report{})
	assert.True(t, strings.Contains(buf.String(), "No text detected in the image."))
	assert.Contains(t, buf.String(), "- Try with higher resolution images")
}
