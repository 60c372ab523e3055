package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Ошибки, которые возвращают use cases. Адаптеры сопоставляют их через errors.Is/As.
var (
	ErrValidation        = errors.New("validation failed")
	ErrStepUnavailable   = errors.New("step transition unavailable")
	ErrImportFailed      = errors.New("property import failed")
	ErrUploadFailed      = errors.New("image upload failed")
	ErrSubmitFailed      = errors.New("property submission failed")
	ErrRemoteCall        = errors.New("remote call failed")
	ErrInvalidIdentifier = errors.New("invalid identifier")
	ErrSessionNotFound   = errors.New("wizard session not found")
	ErrBucketUnknown     = errors.New("unknown board bucket")
	ErrCardNotFound      = errors.New("card not found on board")
	ErrCacheMiss         = errors.New("cache miss")
)

// ValidationError перечисляет незаполненные обязательные поля шага.
type ValidationError struct {
	Step   Step
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("step %s: required fields missing: %s", e.Step, strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
