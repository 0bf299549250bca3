package core

// Error codes for domain errors.
const (
	ErrCodeStoreWrite   = "store_write_failed"
	ErrCodeStoreRead    = "store_read_failed"
	ErrCodeUserNotFound = "user_not_found"
	ErrCodeBadRequest   = "bad_request"
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
