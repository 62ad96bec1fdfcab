package api

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	pdfPkg "pdf_toolkit/pdf"

	"github.com/gin-gonic/gin"
)

// upload is one validated PDF from the request.
type upload struct {
	Name string
	Data []byte
}

// readUpload reads the single "pdf" form file.
func (s *Service) readUpload(c *gin.Context) (*upload, error) {
	header, err := c.FormFile("pdf")
	if err != nil {
		return nil, badRequest(msgNoFile)
	}
	return readPDFFile(header, s.config.MaxFileSize)
}

// readUploads reads every "pdf" form file, in the order they were sent.
func (s *Service) readUploads(c *gin.Context) ([]*upload, error) {
	form, err := c.MultipartForm()
	if err != nil || len(form.File["pdf"]) == 0 {
		return nil, badRequest(msgNoFile)
	}

	headers := form.File["pdf"]
	if len(headers) > s.config.MaxFiles {
		return nil, badRequest("Too many files: %d (maximum %d)", len(headers), s.config.MaxFiles)
	}

	uploads := make([]*upload, 0, len(headers))
	for _, header := range headers {
		u, err := readPDFFile(header, s.config.MaxFileSize)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, u)
	}
	return uploads, nil
}

func readPDFFile(header *multipart.FileHeader, maxSize int64) (*upload, error) {
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("opening upload %s: %w", header.Filename, err)
	}
	defer file.Close()

	if err := validatePDFFile(file, header, maxSize); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading upload %s: %w", header.Filename, err)
	}
	if int64(len(data)) > maxSize {
		return nil, badRequest("file size exceeds maximum allowed %d bytes", maxSize)
	}
	return &upload{Name: header.Filename, Data: data}, nil
}

// validatePDFFile checks size, declared content type and the PDF header
func validatePDFFile(file multipart.File, header *multipart.FileHeader, maxSize int64) error {
	if header.Size > maxSize {
		return badRequest("file size %d exceeds maximum allowed %d bytes", header.Size, maxSize)
	}

	if ct := header.Header.Get("Content-Type"); ct != "" && !isPDFContentType(ct) {
		return badRequest("invalid file type %q: only PDF files are accepted", ct)
	}

	// Read first 4 bytes to check PDF header
	buffer := make([]byte, 4)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read file header: %w", err)
	}

	if n < 4 || !bytes.Equal(buffer[:4], []byte("%PDF")) {
		return &requestError{status: http.StatusUnprocessableEntity, msg: msgLoadFailed}
	}

	// Seek back to beginning for subsequent reads
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to reset file position: %w", err)
	}

	return nil
}

// isPDFContentType accepts application/pdf and the generic binary type
// some clients send for every upload.
func isPDFContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(strings.Split(ct, ";")[0]))
	return ct == pdfPkg.MimeType || ct == "application/octet-stream"
}
