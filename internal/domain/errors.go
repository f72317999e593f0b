package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrTooManyFiles        = errors.New("too many files in batch")
	ErrNoFileSelected      = errors.New("no file selected")
	ErrCorruptFile         = errors.New("file content does not match declared type")
	ErrNoResult            = errors.New("no extraction result available")
)

// TransportError is a normalized extraction request failure. Message is the
// best available human-readable text: the server's detail field when the
// error body parses, otherwise a generic status-code message.
type TransportError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	return e.Message
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError builds a TransportError from a server-provided detail
// string, falling back to a status-code message when detail is empty.
func NewTransportError(status int, detail string, err error) *TransportError {
	msg := detail
	if msg == "" {
		if status > 0 {
			msg = fmt.Sprintf("request failed with status %d", status)
		} else {
			msg = "request failed"
		}
	}
	return &TransportError{
		StatusCode: status,
		Message:    "Extraction failed: " + msg,
		Err:        err,
	}
}
