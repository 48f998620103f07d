package billing

import "errors"

var (
	ErrValidation            = errors.New("validation error")
	ErrProviderUnavailable   = errors.New("payment provider unavailable")
	ErrProviderRejected      = errors.New("payment provider rejected the request")
	ErrNotFound              = errors.New("not found")
	ErrPersistence           = errors.New("persistence error")
	ErrPaymentCreationFailed = errors.New("payment creation failed")

	// ErrStaleRecord means the record changed between read and write.
	// Webhook callers should answer with a retryable status.
	ErrStaleRecord = errors.New("payment record changed concurrently")
)

// Retryable reports whether the provider should redeliver a webhook that
// failed with err.
func Retryable(err error) bool {
	return errors.Is(err, ErrProviderUnavailable) ||
		errors.Is(err, ErrProviderRejected) ||
		errors.Is(err, ErrPersistence) ||
		errors.Is(err, ErrStaleRecord)
}

// FieldError is a validation failure on a single input field. It matches
// ErrValidation under errors.Is.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return "invalid " + e.Field + ": " + e.Message
}

func (e *FieldError) Unwrap() error {
	return ErrValidation
}
