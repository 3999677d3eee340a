// Command ocr prints the text tesseract finds in a single receipt image
// together with confidence statistics.
//
// Usage: ocr <image_file>
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/leonberkemeier/Receiptly/internal/ocr"
	"github.com/leonberkemeier/Receiptly/internal/ocr/tesseract"
	"github.com/leonberkemeier/Receiptly/pkg/config"
	"github.com/leonberkemeier/Receiptly/pkg/logger"

	"go.uber.org/zap"
)

type engine interface {
	ocr.Engine
	Close() error
}

type deps struct {
	version   func() string
	newEngine func(languages ...string) (engine, error)
	logger    *zap.Logger
	languages []string
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Options{Level: cfg.Logger.Level, Console: true})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	d := deps{
		version: tesseract.Version,
		newEngine: func(languages ...string) (engine, error) {
			return tesseract.New(languages...)
		},
		logger:    log,
		languages: cfg.OCR.Languages,
	}
	os.Exit(run(os.Args[1:], os.Stdout, d))
}

func run(args []string, out io.Writer, d deps) int {
	if len(args) != 1 {
		fmt.Fprintln(out, "Usage: ocr <image_file>")
		fmt.Fprintln(out, "Example: ocr img.jpeg")
		return 1
	}
	path := args[0]

	if d.version() == "" {
		return notInstalled(out)
	}

	if _, err := os.Stat(path); err != nil {
		fmt.Fprintf(out, "Analyzing image: %s\n", path)
		fmt.Fprintf(out, "Error: File '%s' not found.\n", path)
		return 1
	}

	src, err := ocr.Open(path)
	if err != nil {
		fmt.Fprintf(out, "Error analyzing image: %v\n", err)
		return 1
	}
	ocr.WriteHeader(out, path, src.Info)

	eng, err := d.newEngine(d.languages...)
	if errors.Is(err, tesseract.ErrNotInstalled) {
		return notInstalled(out)
	}
	if err != nil {
		fmt.Fprintf(out, "Error during OCR processing: %v\n", err)
		return 1
	}
	defer eng.Close()

	report := ocr.NewPipeline(eng, d.logger).Run(src)
	for _, err := range report.Errors {
		d.logger.Debug("OCR pass failed", zap.Error(err))
	}
	ocr.WriteReport(out, report)
	return 0
}

func notInstalled(out io.Writer) int {
	fmt.Fprintln(out, "Error: Tesseract OCR not found!")
	fmt.Fprintln(out, tesseract.InstallHint)
	return 1
}
