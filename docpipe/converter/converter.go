package converter

import (
	"context"
	"os"
	"path/filepath"
)

// Converter turns a source document (PDF, image) into a markdown file. The
// OCR engine behind it is opaque: implementations only promise
// convert(file) -> markdown.
type Converter interface {
	Name() string
	IsAvailable(ctx context.Context) bool
	Convert(ctx context.Context, sourcePath, outMDPath string) error
}

// CacheEnv returns the environment entries that point the OCR models and
// caches at a writable location under the system temp dir. Without these
// the OCR backend tries to download models into a home directory that may
// not be writable at deploy time.
func CacheEnv() ([]string, error) {
	cache := filepath.Join(os.TempDir(), "docpipe_ocr_cache")
	if err := os.MkdirAll(filepath.Join(cache, "models"), 0o755); err != nil {
		return nil, err
	}

	return []string{
		"RAPIDOCR_HOME=" + cache,
		"RAPIDOCR_MODELS_DIR=" + filepath.Join(cache, "models"),
		"HF_HOME=" + filepath.Join(cache, "huggingface"),
	}, nil
}
