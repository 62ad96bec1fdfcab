package api

import (
	"errors"
	"fmt"
	"net/http"

	pdfPkg "pdf_toolkit/pdf"
)

// requestError is an input problem detected by a handler before any
// transform runs.
type requestError struct {
	status int
	msg    string
}

func (e *requestError) Error() string {
	return e.msg
}

func badRequest(format string, args ...any) error {
	return &requestError{status: http.StatusBadRequest, msg: fmt.Sprintf(format, args...)}
}

// userMessages maps sentinel errors to the text shown to the user.
var userMessages = []struct {
	err    error
	status int
	msg    string
}{
	{pdfPkg.ErrNoInput, http.StatusBadRequest, msgNoFile},
	{pdfPkg.ErrNoValidPages, http.StatusBadRequest, msgInvalidPages},
	{pdfPkg.ErrEmptyWatermark, http.StatusBadRequest, msgNoText},
	{pdfPkg.ErrAllPagesRemoved, http.StatusBadRequest, msgAllPages},
	{pdfPkg.ErrPageOutOfRange, http.StatusBadRequest, ""},
	{pdfPkg.ErrInvalidAngle, http.StatusBadRequest, ""},
	{pdfPkg.ErrInvalidOpacity, http.StatusBadRequest, ""},
	{pdfPkg.ErrInvalidPosition, http.StatusBadRequest, ""},
	{pdfPkg.ErrInvalidQuality, http.StatusBadRequest, ""},
}

// classifyError maps an operation error to a status code and a single
// descriptive message.
func classifyError(err error) (int, string) {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		return reqErr.status, reqErr.msg
	}

	if errors.Is(err, pdfPkg.ErrDocumentLoad) {
		return http.StatusUnprocessableEntity, msgLoadFailed
	}

	var notImpl *pdfPkg.NotImplementedError
	if errors.As(err, &notImpl) {
		return http.StatusNotImplemented, notImpl.Feature + " is not implemented yet."
	}

	for _, m := range userMessages {
		if errors.Is(err, m.err) {
			if m.msg == "" {
				return m.status, truncateMessage(err.Error())
			}
			return m.status, m.msg
		}
	}

	return http.StatusInternalServerError, truncateMessage(err.Error())
}

// truncateMessage keeps library error text short, falling back to a
// generic message when there is none.
func truncateMessage(msg string) string {
	if msg == "" {
		return msgGeneric
	}
	if len(msg) > MaxErrorMessageLength {
		return msg[:MaxErrorMessageLength] + "..."
	}
	return msg
}
