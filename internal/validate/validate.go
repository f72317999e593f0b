// Package validate enforces upload policy before any network call: media
// type whitelist, per-file size cap, and batch cardinality.
package validate

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"marklens/internal/config"
	"marklens/internal/domain"
)

// Validator checks selected files against the configured upload policy.
type Validator struct {
	cfg *config.UploadConfig
	log *zap.Logger
}

// NewValidator creates a Validator from upload policy settings.
func NewValidator(cfg *config.UploadConfig, log *zap.Logger) *Validator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Validator{cfg: cfg, log: log}
}

// File validates one file's declared media type and size. The returned error
// message is user-facing; callers branch on the wrapped sentinel only.
func (v *Validator) File(f domain.File) error {
	contentType := strings.ToLower(strings.TrimSpace(f.ContentType))
	if _, ok := domain.AllowedContentTypes[contentType]; !ok {
		return fmt.Errorf("%w: %q is not supported; allowed types: JPEG, PNG, WebP, PDF",
			domain.ErrUnsupportedFileType, f.ContentType)
	}
	if f.Size > v.cfg.MaxFileSizeBytes() {
		return fmt.Errorf("%w: maximum allowed size is %dMB",
			domain.ErrFileTooLarge, v.cfg.MaxFileSizeMB)
	}
	return nil
}

// Batch validates a batch's cardinality, then every file in order, failing
// on the first invalid one with that file's reason.
func (v *Validator) Batch(files []domain.File) error {
	if len(files) == 0 {
		return domain.ErrNoFileSelected
	}
	if len(files) > v.cfg.MaxBatchFiles {
		return fmt.Errorf("%w: maximum %d files allowed per batch",
			domain.ErrTooManyFiles, v.cfg.MaxBatchFiles)
	}
	for _, f := range files {
		if err := v.File(f); err != nil {
			return fmt.Errorf("%s: %w", f.Name, err)
		}
	}
	return nil
}

// Deep verifies that file content matches the declared media type: magic-byte
// sniffing for every format, plus a readability check for PDFs. A file with
// no content bytes passes; policy checks alone apply to metadata-only input.
func (v *Validator) Deep(f domain.File) error {
	if len(f.Data) == 0 {
		return nil
	}

	declared, ok := domain.AllowedContentTypes[strings.ToLower(strings.TrimSpace(f.ContentType))]
	if !ok {
		return fmt.Errorf("%w: %q is not supported; allowed types: JPEG, PNG, WebP, PDF",
			domain.ErrUnsupportedFileType, f.ContentType)
	}

	head := f.Data
	if len(head) > 512 {
		head = head[:512]
	}
	detected, sniffed := domain.AllowedContentTypes[http.DetectContentType(head)]
	if !sniffed || detected != declared {
		v.log.Warn("validate.Deep: content type mismatch",
			zap.String("file", f.Name),
			zap.String("declared", f.ContentType),
			zap.String("detected", http.DetectContentType(head)))
		return fmt.Errorf("%w: %s", domain.ErrCorruptFile, f.Name)
	}

	if declared == domain.FileTypePDF {
		if _, err := pdf.NewReader(bytes.NewReader(f.Data), int64(len(f.Data))); err != nil {
			return fmt.Errorf("%w: %s is not a readable PDF", domain.ErrCorruptFile, f.Name)
		}
	}
	return nil
}
