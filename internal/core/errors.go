package core

// errors.go defines the typed failures of the ingestion pipeline.
//
// Every validator, parser and normalizer failure is an *IngestError carrying
// one ErrorKind. Callers branch on the kind with KindOf or errors.Is against
// the Err* sentinels; the wrapped cause is kept for logging.

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an ingestion failure.
type ErrorKind string

const (
	KindUnsupportedFormat ErrorKind = "UnsupportedFormat"
	KindFileTooLarge      ErrorKind = "FileTooLarge"
	KindParseFailure      ErrorKind = "ParseFailure"
	KindInvalidHeaders    ErrorKind = "InvalidHeaders"
	KindEmptyFile         ErrorKind = "EmptyFile"
	KindNoValidRows       ErrorKind = "NoValidRows"
)

// Sentinels for errors.Is matching. An *IngestError matches the sentinel of
// its kind.
var (
	ErrUnsupportedFormat = &IngestError{Kind: KindUnsupportedFormat}
	ErrFileTooLarge      = &IngestError{Kind: KindFileTooLarge}
	ErrParseFailure      = &IngestError{Kind: KindParseFailure}
	ErrInvalidHeaders    = &IngestError{Kind: KindInvalidHeaders}
	ErrEmptyFile         = &IngestError{Kind: KindEmptyFile}
	ErrNoValidRows       = &IngestError{Kind: KindNoValidRows}
)

// ErrNoFile is reported by the validator when no file was supplied.
var ErrNoFile = errors.New("no file provided")

// IngestError is a failure that aborts ingestion of a file.
type IngestError struct {
	Kind    ErrorKind
	Message string // human-readable reason
	Err     error  // underlying cause, may be nil
}

func (e *IngestError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *IngestError) Unwrap() error {
	return e.Err
}

// Is matches another *IngestError of the same kind.
func (e *IngestError) Is(target error) bool {
	t, ok := target.(*IngestError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// newIngestError builds an IngestError with a formatted message.
func newIngestError(kind ErrorKind, cause error, format string, args ...any) *IngestError {
	return &IngestError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Err:     cause,
	}
}

// KindOf returns the ErrorKind of err, or "" if err is not an ingestion failure.
func KindOf(err error) ErrorKind {
	var ie *IngestError
	if errors.As(err, &ie) {
		return ie.Kind
	}
	return ""
}
