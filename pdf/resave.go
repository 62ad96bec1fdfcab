package pdf

import (
	"fmt"
)

// infoKeys are the document information entries dropped by Compress.
var infoKeys = []string{"Title", "Author", "Subject", "Keywords", "Creator", "Producer"}

// Compress rewrites doc without document metadata, using object and xref
// streams. The document was already optimized when it was loaded.
// Quality is validated and reported but does not change the output.
func Compress(doc *Document, quality int) ([]byte, error) {
	if quality < MinQuality || quality > MaxQuality {
		return nil, newOpError("compress", fmt.Errorf("%w, got %d", ErrInvalidQuality, quality))
	}

	ctx := doc.ctx
	ctx.Title, ctx.Author, ctx.Subject, ctx.Keywords, ctx.Creator, ctx.Producer = "", "", "", "", "", ""
	if ctx.Info != nil {
		info, err := ctx.DereferenceDict(*ctx.Info)
		if err != nil {
			return nil, newOpError("compress", fmt.Errorf("reading document info: %w", err))
		}
		for _, k := range infoKeys {
			info.Delete(k)
		}
	}

	ctx.WriteObjectStream = true
	ctx.WriteXRefStream = true

	out, err := doc.Bytes()
	if err != nil {
		return nil, newOpError("compress", err)
	}
	return out, nil
}

// QualityLabel describes a compression quality setting.
func QualityLabel(quality int) string {
	switch {
	case quality >= 90:
		return "Highest Quality (Minimal Compression)"
	case quality >= 70:
		return "High Quality"
	case quality >= 40:
		return "Medium Quality"
	case quality >= 20:
		return "Low Quality"
	default:
		return "Lowest Quality (Maximum Compression)"
	}
}
