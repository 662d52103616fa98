package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrPatternMismatch signals a range or box string outside its bracketed grammar.
	ErrPatternMismatch = errors.New("pattern mismatch")
	// ErrNumberFormat signals a non-numeric coordinate or quantity.
	ErrNumberFormat = errors.New("number format")
	// ErrUnsupportedFormat signals a duration token outside the supported ISO-8601 subset.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrMissingCompanionParameter signals a facet parameter used without its required companion.
	ErrMissingCompanionParameter = errors.New("missing companion parameter")
	// ErrPagination signals a page number that is zero or negative.
	ErrPagination = errors.New("invalid pagination")
	// ErrUnsupportedSort signals a sort mode that is named but not implemented.
	ErrUnsupportedSort = errors.New("sort not supported")
	// ErrInvalidParameter signals a parameter that failed decoding or validation.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrInvalidDocument signals a document that does not match the layer schema.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrEngineUnreachable signals a network failure talking to the search engine.
	ErrEngineUnreachable = errors.New("search engine unreachable")
	// ErrEngineRejected signals a structured error returned by the search engine.
	ErrEngineRejected = errors.New("search engine rejected request")
	// ErrCatalogNotFound signals a missing catalog index.
	ErrCatalogNotFound = errors.New("catalog not found")
)

// MissingCompanionError names the parameter that requires a companion and the companion itself.
type MissingCompanionError struct {
	Param     string
	Companion string
}

func (e *MissingCompanionError) Error() string {
	return fmt.Sprintf("if you want to use %s, %s must be initialized", e.Param, e.Companion)
}

func (e *MissingCompanionError) Unwrap() error { return ErrMissingCompanionParameter }

// NewMissingCompanion creates a missing companion parameter error.
func NewMissingCompanion(param, companion string) error {
	return &MissingCompanionError{Param: param, Companion: companion}
}

// EngineError carries the engine's own error document so it can be passed through to clients.
type EngineError struct {
	Status int
	Body   []byte
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", ErrEngineRejected.Error(), e.Status, string(e.Body))
}

func (e *EngineError) Unwrap() error { return ErrEngineRejected }

// NewEngineError creates an engine rejection error.
func NewEngineError(status int, body []byte) error {
	return &EngineError{Status: status, Body: body}
}
