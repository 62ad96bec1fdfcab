// Package download holds processed documents in memory until the client
// fetches them. Every stored buffer is reachable through a short-lived
// reference that must be released; unreleased references expire.
package download

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DefaultContentType is used when a resource is created without one.
const DefaultContentType = "application/pdf"

// Resource is a typed, downloadable byte buffer.
type Resource struct {
	ID          string
	Filename    string
	ContentType string
	Data        []byte
	CreatedAt   time.Time
}

// NewResource wraps data as a downloadable resource. An empty contentType
// defaults to application/pdf.
func NewResource(data []byte, filename, contentType string) *Resource {
	if contentType == "" {
		contentType = DefaultContentType
	}
	return &Resource{
		Filename:    SanitizeFilename(filename),
		ContentType: contentType,
		Data:        data,
		CreatedAt:   time.Now(),
	}
}

// Size returns the buffer length in bytes.
func (r *Resource) Size() int64 {
	return int64(len(r.Data))
}

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatSize renders a byte count with 1024-based units, e.g. "1.5 KB".
func FormatSize(n int64) string {
	if n <= 0 {
		return "0 Bytes"
	}
	i := int(math.Floor(math.Log(float64(n)) / math.Log(1024)))
	i = min(i, len(sizeUnits)-1)
	v := float64(n) / math.Pow(1024, float64(i))
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64) + " " + sizeUnits[i]
}

// OutputName derives a download name from the uploaded file name, e.g.
// "report.pdf" with suffix "rotated" becomes "report_rotated.pdf".
func OutputName(original, suffix string) string {
	base := SanitizeFilename(original)
	if strings.HasSuffix(strings.ToLower(base), ".pdf") {
		base = base[:len(base)-4]
	}
	if base == "" {
		base = "document"
	}
	if suffix == "" {
		return base + ".pdf"
	}
	return fmt.Sprintf("%s_%s.pdf", base, suffix)
}

// SanitizeFilename removes path traversal attempts and dangerous characters
func SanitizeFilename(filename string) string {
	// Remove directory separators and path traversal attempts
	filename = strings.ReplaceAll(filename, "..", "")
	filename = strings.ReplaceAll(filename, "/", "_")
	filename = strings.ReplaceAll(filename, "\\", "_")
	filename = strings.Map(func(r rune) rune {
		if r < 0x20 || r == '"' {
			return -1
		}
		return r
	}, filename)

	filename = filepath.Base(filename)
	filename = strings.TrimSpace(filename)

	if filename == "" || filename == "." {
		filename = "document.pdf"
	}

	return filename
}
