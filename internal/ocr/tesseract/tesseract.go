// Package tesseract implements ocr.Engine on top of Tesseract. The default
// build drives the tesseract executable; building with the gosseract tag
// links libtesseract through gosseract instead.
package tesseract

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/leonberkemeier/Receiptly/internal/ocr"

	"github.com/disintegration/imaging"
)

const (
	binaryName     = "tesseract"
	versionTimeout = 5 * time.Second
	runTimeout     = 30 * time.Second
)

var ErrNotInstalled = errors.New("tesseract OCR not found")

// InstallHint lists the usual ways to install tesseract.
const InstallHint = `Please install Tesseract OCR:
- Ubuntu/Debian: sudo apt-get install tesseract-ocr
- macOS: brew install tesseract
- Windows: Download from https://github.com/UB-Mannheim/tesseract/wiki`

// Engine is an OCR engine that holds resources until closed.
type Engine interface {
	ocr.Engine
	Close() error
}

var lookPath = exec.LookPath

// Binary returns the path of the tesseract executable on PATH.
func Binary() (string, error) {
	path, err := lookPath(binaryName)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotInstalled, err)
	}
	return path, nil
}

// binaryVersion runs `tesseract --version`; empty when the binary is missing
// or does not answer.
func binaryVersion() string {
	path, err := Binary()
	if err != nil {
		return ""
	}
	ctx, cancel := context.WithTimeout(context.Background(), versionTimeout)
	defer cancel()

	// tesseract 3.x prints the version on stderr
	out, err := exec.CommandContext(ctx, path, "--version").CombinedOutput()
	if err != nil {
		return ""
	}
	return parseVersion(string(out))
}

// parseVersion takes the first line of `tesseract --version`, e.g.
// "tesseract 5.3.0" or "tesseract v5.3.0.20221214".
func parseVersion(out string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(out), "\n")
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, binaryName) {
		return ""
	}
	return strings.TrimPrefix(strings.TrimSpace(strings.TrimPrefix(line, binaryName)), "v")
}

// CLI runs one tesseract process per call and is safe for concurrent use.
type CLI struct {
	binary    string
	languages []string
	timeout   time.Duration
}

func NewCLI(languages ...string) (*CLI, error) {
	path, err := Binary()
	if err != nil {
		return nil, err
	}
	return &CLI{binary: path, languages: languages, timeout: runTimeout}, nil
}

func (e *CLI) Close() error { return nil }

func (e *CLI) Text(img image.Image, mode ocr.PageSegMode) (string, error) {
	return e.run(img, e.args(mode))
}

// Words asks for tesseract's TSV output and keeps the word-level rows.
func (e *CLI) Words(img image.Image, mode ocr.PageSegMode) ([]ocr.Word, error) {
	out, err := e.run(img, append(e.args(mode), "tsv"))
	if err != nil {
		return nil, err
	}
	return parseTSV(out)
}

// DetectOrientation runs `tesseract <image> stdout --psm 0`.
func (e *CLI) DetectOrientation(img image.Image) (string, error) {
	out, err := e.run(img, []string{"--psm", strconv.Itoa(int(ocr.PSMOrientationOnly))})
	if err != nil {
		return "", fmt.Errorf("orientation detection failed: %w", err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", errors.New("orientation detection returned nothing")
	}
	return out, nil
}

func (e *CLI) args(mode ocr.PageSegMode) []string {
	args := []string{"--psm", strconv.Itoa(int(mode))}
	if len(e.languages) > 0 {
		args = append(args, "-l", strings.Join(e.languages, "+"))
	}
	return args
}

func (e *CLI) run(img image.Image, args []string) (string, error) {
	path, err := writeTemp(img)
	if err != nil {
		return "", err
	}
	defer os.Remove(path)

	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.binary, append([]string{path, "stdout"}, args...)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// parseTSV reads tesseract's TSV report:
// level page_num block_num par_num line_num word_num left top width height conf text
func parseTSV(out string) ([]ocr.Word, error) {
	const (
		wordLevel = "5"
		columns   = 12
	)

	words := []ocr.Word{}
	scanner := bufio.NewScanner(strings.NewReader(out))
	header := true
	for scanner.Scan() {
		if header {
			header = false
			continue
		}
		cols := strings.Split(scanner.Text(), "\t")
		if len(cols) < columns || cols[0] != wordLevel {
			continue
		}
		text := strings.TrimSpace(cols[11])
		if text == "" {
			continue
		}
		conf, err := strconv.ParseFloat(cols[10], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid confidence %q: %w", cols[10], err)
		}
		words = append(words, ocr.Word{Text: text, Confidence: conf})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return words, nil
}

func writeTemp(img image.Image) (string, error) {
	f, err := os.CreateTemp("", "ocr-*.png")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer f.Close()

	if err := imaging.Encode(f, img, imaging.PNG); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write temp image: %w", err)
	}
	return f.Name(), nil
}
