package registry

import "github.com/theduckylittle/registry/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrPatternMismatch           = domain.ErrPatternMismatch
	ErrNumberFormat              = domain.ErrNumberFormat
	ErrUnsupportedFormat         = domain.ErrUnsupportedFormat
	ErrMissingCompanionParameter = domain.ErrMissingCompanionParameter
	ErrPagination                = domain.ErrPagination
	ErrUnsupportedSort           = domain.ErrUnsupportedSort
	ErrInvalidParameter          = domain.ErrInvalidParameter
	ErrInvalidDocument           = domain.ErrInvalidDocument
	ErrEngineUnreachable         = domain.ErrEngineUnreachable
	ErrEngineRejected            = domain.ErrEngineRejected
	ErrCatalogNotFound           = domain.ErrCatalogNotFound
)
