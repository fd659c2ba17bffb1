package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"amount-detection/internal/config"
)

// RecognitionResult is the outcome of running OCR on one uploaded file.
// Confidence is the mean tesseract word confidence mapped to [0, 1], or 0
// when TSV confidence could not be computed.
type RecognitionResult struct {
	Text       string
	Confidence float64
	Duration   time.Duration
}

// RecognizerInterface extracts text from uploaded image bytes
type RecognizerInterface interface {
	Recognize(ctx context.Context, image []byte, ext string) (RecognitionResult, error)
	// Available reports whether the OCR binary can be invoked
	Available(ctx context.Context) bool
}

type recognizer struct {
	cfg    config.OCRConfig
	runner Runner
	logger *slog.Logger
}

// NewRecognizer creates a tesseract-backed RecognizerInterface
func NewRecognizer(cfg config.OCRConfig, logger *slog.Logger) RecognizerInterface {
	if logger == nil {
		logger = slog.Default()
	}
	return &recognizer{
		cfg:    cfg,
		runner: execRunner{logger: logger},
		logger: logger,
	}
}

// NewRecognizerWithRunner creates a RecognizerInterface with a custom command
// runner, for tests
func NewRecognizerWithRunner(cfg config.OCRConfig, runner Runner, logger *slog.Logger) RecognizerInterface {
	if logger == nil {
		logger = slog.Default()
	}
	return &recognizer{cfg: cfg, runner: runner, logger: logger}
}

// Recognize writes the image bytes to a temp file and runs tesseract over it
// twice: once for the text, once in TSV mode for the word confidences
func (r *recognizer) Recognize(ctx context.Context, image []byte, ext string) (RecognitionResult, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	path, cleanup, err := r.writeTempFile(image, ext)
	if err != nil {
		return RecognitionResult{}, err
	}
	defer cleanup()

	text, err := r.tesseractText(ctx, path)
	if err != nil {
		return RecognitionResult{}, err
	}

	confidence, err := r.tesseractTSVConfidence(ctx, path)
	if err != nil {
		// Confidence is best effort; the text run already succeeded
		r.logger.Warn("tsv confidence unavailable", "error", err)
		confidence = 0
	}

	duration := time.Since(start)
	r.logger.Info("ocr recognition completed",
		"duration_ms", duration.Milliseconds(),
		"text_bytes", len(text),
		"confidence", confidence,
	)

	return RecognitionResult{
		Text:       text,
		Confidence: confidence,
		Duration:   duration,
	}, nil
}

// Available probes the OCR binary with --version
func (r *recognizer) Available(ctx context.Context) bool {
	if !r.cfg.Enabled {
		return false
	}
	_, _, err := r.runner.Run(ctx, r.cfg.Binary, "--version")
	return err == nil
}

func (r *recognizer) writeTempFile(image []byte, ext string) (string, func(), error) {
	tmpDir, err := os.MkdirTemp("", "amount-detect-*")
	if err != nil {
		return "", nil, fmt.Errorf("create temp dir: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(tmpDir) }

	if ext == "" {
		ext = ".png"
	}
	path := filepath.Join(tmpDir, "upload"+ext)
	if err := os.WriteFile(path, image, 0o600); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("write temp file: %w", err)
	}
	return path, cleanup, nil
}

func (r *recognizer) tesseractText(ctx context.Context, path string) (string, error) {
	// tesseract <file> stdout -l <lang>
	out, _, err := r.runner.Run(ctx, r.cfg.Binary, path, "stdout", "-l", r.cfg.Lang)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return string(out), nil
}

// tesseractTSVConfidence runs tesseract in TSV mode and returns the mean
// word confidence mapped to 0..1
func (r *recognizer) tesseractTSVConfidence(ctx context.Context, path string) (float64, error) {
	out, _, err := r.runner.Run(ctx, r.cfg.Binary, path, "stdout", "-l", r.cfg.Lang, "tsv")
	if err != nil {
		return 0, fmt.Errorf("tesseract TSV: %w", err)
	}

	lines := strings.Split(string(out), "\n")
	// Word rows carry 12 columns; conf is the 11th, the recognized text is
	// last. The text column is often numeric on bills and must never be
	// read as a confidence.
	const confColumn = 10
	var sum, n float64
	for i, ln := range lines {
		if i == 0 || len(ln) == 0 {
			continue
		}
		cols := strings.Split(ln, "\t")
		if len(cols) < 12 {
			continue
		}
		confStr := cols[confColumn]
		if confStr == "" || confStr == "-1" {
			continue
		}
		if v, err := strconv.ParseFloat(confStr, 64); err == nil {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return (sum / n) / 100.0, nil
}
