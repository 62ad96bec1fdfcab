package pdf

import (
	"errors"
	"fmt"
)

// Sentinel errors for PDF operations.
var (
	ErrDocumentLoad    = errors.New("pdf: document could not be loaded")
	ErrNotImplemented  = errors.New("pdf: not implemented")
	ErrNoInput         = errors.New("pdf: no input documents")
	ErrInvalidAngle    = errors.New("pdf: rotation angle must be 0, 90, 180 or 270")
	ErrPageOutOfRange  = errors.New("pdf: page out of range")
	ErrNoValidPages    = errors.New("pdf: no valid page numbers")
	ErrAllPagesRemoved = errors.New("pdf: cannot remove every page")
	ErrEmptyWatermark  = errors.New("pdf: watermark text is empty")
	ErrInvalidOpacity  = errors.New("pdf: opacity must be between 0 and 100")
	ErrInvalidPosition = errors.New("pdf: unknown watermark position")
	ErrInvalidQuality  = errors.New("pdf: quality must be between 10 and 100")
)

// DocumentLoadError reports bytes that could not be parsed as a PDF
// (corrupt, truncated, or encrypted without the right password).
type DocumentLoadError struct {
	Index int // position in a multi-document input, -1 for single documents
	Err   error
}

func (e *DocumentLoadError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("pdf: loading document %d: %v", e.Index+1, e.Err)
	}
	return fmt.Sprintf("pdf: loading document: %v", e.Err)
}

func (e *DocumentLoadError) Unwrap() []error {
	return []error{ErrDocumentLoad, e.Err}
}

// OpError wraps a failure of a named transform.
type OpError struct {
	Op  string // e.g. "rotate", "watermark"
	Err error
}

func (e *OpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("pdf.%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("pdf.%s: unknown error", e.Op)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

func newOpError(op string, err error) *OpError {
	return &OpError{Op: op, Err: err}
}

// NotImplementedError reports a request for a feature that is not supported.
type NotImplementedError struct {
	Feature string
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("pdf: %s is not implemented", e.Feature)
}

func (e *NotImplementedError) Unwrap() error {
	return ErrNotImplemented
}
