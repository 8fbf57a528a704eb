package services

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a pipeline failure.
type ErrorKind string

const (
	KindMalformedEvent       ErrorKind = "malformed_event"
	KindFetch                ErrorKind = "fetch"
	KindTextExtraction       ErrorKind = "text_extraction"
	KindStructuredExtraction ErrorKind = "structured_extraction"
	KindPublish              ErrorKind = "publish"
)

// ErrNoText is returned when a readable document contains no recoverable text.
var ErrNoText = errors.New("no text content found in PDF")

// PipelineError is a stage failure with its kind and cause.
type PipelineError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Terminal reports whether the failure ends the invocation with a non-200 status.
func (e *PipelineError) Terminal() bool {
	switch e.Kind {
	case KindMalformedEvent, KindFetch, KindTextExtraction:
		return true
	}
	return false
}

// StatusCode is the invocation status implied by the failure.
func (e *PipelineError) StatusCode() int {
	switch e.Kind {
	case KindMalformedEvent:
		return http.StatusBadRequest
	case KindFetch, KindTextExtraction:
		return http.StatusInternalServerError
	}
	return http.StatusOK
}

func newPipelineError(kind ErrorKind, message string, err error) *PipelineError {
	return &PipelineError{Kind: kind, Message: message, Err: err}
}

func MalformedEventError(message string, err error) *PipelineError {
	return newPipelineError(KindMalformedEvent, message, err)
}

func FetchError(message string, err error) *PipelineError {
	return newPipelineError(KindFetch, message, err)
}

func TextExtractionError(message string, err error) *PipelineError {
	return newPipelineError(KindTextExtraction, message, err)
}

func StructuredExtractionError(message string, err error) *PipelineError {
	return newPipelineError(KindStructuredExtraction, message, err)
}

func PublishError(message string, err error) *PipelineError {
	return newPipelineError(KindPublish, message, err)
}

// IsKind reports whether err is a PipelineError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var perr *PipelineError
	return errors.As(err, &perr) && perr.Kind == kind
}
