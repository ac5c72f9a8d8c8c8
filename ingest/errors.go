package ingest

import (
	"errors"
	"fmt"
)

// Sentinel causes wrapped by *Error.
var (
	// ErrUnsupportedFormat is returned for file extensions the normalizer does not read.
	ErrUnsupportedFormat = errors.New("unsupported file type")

	// ErrCorrupt is returned when the content cannot be parsed as the declared format.
	ErrCorrupt = errors.New("corrupt or unparseable content")

	// ErrDecode is returned when text content is not valid UTF-8.
	ErrDecode = errors.New("text decoding failed")

	// ErrEmpty is returned when the file holds no header row.
	ErrEmpty = errors.New("file contains no columns")
)

// Error is an ingestion failure. No dataset is produced when it is returned.
type Error struct {
	// File is the uploaded file name.
	File string
	// Op names the step that failed, e.g. "read arff".
	Op string
	// Err is the underlying cause; it wraps one of the sentinel errors.
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("error loading file %s: %s: %v", e.File, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// fail builds an *Error whose cause wraps sentinel with detail.
func fail(file, op string, sentinel error, detail string, args ...interface{}) *Error {
	return &Error{
		File: file,
		Op:   op,
		Err:  fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(detail, args...)),
	}
}
