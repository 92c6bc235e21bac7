// Package ocr extracts text from receipt images.
package ocr

import (
	"context"

	"dukapos/internal/core/apperror"
)

// Engine extracts text from a stored receipt image.
type Engine interface {
	ExtractText(ctx context.Context, imagePath string) (string, error)
}

// Disabled is the engine used when no OCR provider is configured. Every
// extraction fails with OCR_NOT_CONFIGURED, which the import pipeline
// treats as the signal to fall back to a placeholder draft.
type Disabled struct {
	Provider string
}

// NewDisabled creates the always-failing engine.
func NewDisabled(provider string) *Disabled {
	if provider == "" {
		provider = "none"
	}
	return &Disabled{Provider: provider}
}

// ExtractText always reports the missing configuration.
func (d *Disabled) ExtractText(ctx context.Context, imagePath string) (string, error) {
	return "", apperror.NewOCRNotConfigured(d.Provider)
}
