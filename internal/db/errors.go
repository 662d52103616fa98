package db

// Op names the engine call for error context and metrics labels.
const (
	OpInfo        = "info"
	OpSearch      = "search"
	OpCreateIndex = "create_index"
	OpDeleteIndex = "delete_index"
	OpAliases     = "aliases"
	OpIndexDoc    = "index_document"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
