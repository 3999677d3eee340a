package ocr

import (
	"fmt"
	"io"
	"strings"
)

var rule = strings.Repeat("=", 50)

// WriteHeader prints the input description.
func WriteHeader(w io.Writer, path string, info ImageInfo) {
	fmt.Fprintf(w, "Analyzing image: %s\n", path)
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Image Format: %s\n", info.Format)
	fmt.Fprintf(w, "Image Size: %dx%d pixels\n", info.Width, info.Height)
	fmt.Fprintf(w, "Image Mode: %s\n", info.ColorModel)
}

// WriteReport prints the OCR results section.
func WriteReport(w io.Writer, r *Report) {
	fmt.Fprintf(w, "\n%s\nOCR RESULTS:\n%s\n", rule, rule)

	if r.RawText != "" {
		fmt.Fprintf(w, "\n--- Raw OCR Output ---\n%s\n", r.RawText)
	}

	if r.ProcessedText != "" {
		fmt.Fprintf(w, "\n--- Processed OCR Output ---\n%s\n", r.ProcessedText)
		if c := r.Confidence; c != nil {
			fmt.Fprintf(w, "\nAverage Confidence: %.2f%%\n", c.Average)
			fmt.Fprintf(w, "Min Confidence: %.0f%%\n", c.Min)
			fmt.Fprintf(w, "Max Confidence: %.0f%%\n", c.Max)
		}
	}

	fmt.Fprintln(w, "\n--- Alternative OCR Configurations ---")
	if r.BlockText != "" {
		fmt.Fprintf(w, "PSM %d (Single text block):\n%s\n", PSMSingleBlock, r.BlockText)
	}
	if r.WordText != "" {
		fmt.Fprintf(w, "\nPSM %d (Single word): %s\n", PSMSingleWord, r.WordText)
	}

	if r.Orientation != "" {
		fmt.Fprintf(w, "\n--- Image Orientation & Script Detection ---\n%s\n", r.Orientation)
	} else {
		fmt.Fprintln(w, "\n--- Could not detect orientation/script ---")
	}

	if r.Empty() {
		fmt.Fprintln(w, "\nNo text detected in the image.")
		fmt.Fprintln(w, "Tips:")
		fmt.Fprintln(w, "- Ensure the image contains readable text")
		fmt.Fprintln(w, "- Try with higher resolution images")
		fmt.Fprintln(w, "- Check if text is in a supported language")
	}
}
