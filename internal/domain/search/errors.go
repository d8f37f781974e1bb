package search

import "errors"

const transportErrorPrefix = "Search request failed: "

// TransportError reports that the provider could not be reached or answered
// with a non-success status on the final attempt. Timeouts are transport errors too.
//
// Detail is returned to the caller verbatim. SafeDetail has the query scrubbed
// and is the only form that may be logged or recorded on spans.
type TransportError struct {
	Detail     string
	SafeDetail string
	Err        error
}

func (e *TransportError) Error() string {
	return transportErrorPrefix + e.Detail
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError wraps err, using its message as the failure detail.
func NewTransportError(err error) *TransportError {
	return NewRedactedTransportError(err, err)
}

// NewRedactedTransportError wraps err and keeps safe as its loggable form.
func NewRedactedTransportError(err, safe error) *TransportError {
	if err == nil {
		return nil
	}
	safeDetail := err.Error()
	if safe != nil {
		safeDetail = safe.Error()
	}
	return &TransportError{Detail: err.Error(), SafeDetail: safeDetail, Err: err}
}

// IsTransportError reports whether err is or wraps a TransportError.
func IsTransportError(err error) bool {
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}

// LogSafe returns the form of err that may be logged. A TransportError in the
// chain is replaced by its scrubbed detail; other errors pass through.
func LogSafe(err error) error {
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		return err
	}
	return errors.New(transportErrorPrefix + transportErr.SafeDetail)
}
