package api

import "time"

const (
	// DefaultReleaseDelay is how long a download reference survives after the response is sent
	DefaultReleaseDelay = 2 * time.Second

	// DefaultMaxFiles is the default number of files accepted by a merge request
	DefaultMaxFiles = 10

	// MaxErrorMessageLength truncates library error text returned to clients
	MaxErrorMessageLength = 200

	// DefaultOpacity is the watermark opacity used when the form omits it
	DefaultOpacity = 30

	// DefaultQuality is the compression quality used when the form omits it
	DefaultQuality = 70

	// ClientIDHeader identifies a browser tab for the processing-in-progress check
	ClientIDHeader = "X-Client-ID"

	// DownloadPath is the route prefix of transient download references
	DownloadPath = "/api/pdf/download/"
)

// User-facing messages.
const (
	msgLoadFailed   = "Could not read the PDF file. The file might be corrupted or password protected."
	msgGeneric      = "An error occurred while processing the PDF"
	msgBusy         = "Another operation is already in progress. Please wait for it to finish."
	msgNoFile       = "Please upload a PDF file first."
	msgInvalidPages = "Please enter valid page numbers."
	msgNoText       = "Please enter watermark text."
	msgAllPages     = "You cannot remove every page of the document."
	msgDownloadGone = "Download not found or expired"
)
