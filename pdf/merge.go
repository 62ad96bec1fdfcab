package pdf

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Merge combines documents into one. Pages are added in order: all pages
// from the first input, then all from the second, and so on.
func Merge(inputs [][]byte, opts LoadOptions) ([]byte, error) {
	if len(inputs) == 0 {
		return nil, newOpError("merge", ErrNoInput)
	}

	// Every member is loaded first so a broken one is reported by position
	// before any output is produced.
	readers := make([]io.ReadSeeker, len(inputs))
	for i, data := range inputs {
		doc, err := load(data, opts, i)
		if err != nil {
			return nil, err
		}
		if len(inputs) == 1 {
			return doc.Bytes()
		}
		readers[i] = bytes.NewReader(data)
	}

	conf := newConfiguration()
	if opts.Password != "" {
		conf.UserPW = opts.Password
		conf.OwnerPW = opts.Password
	}

	var out bytes.Buffer
	if err := api.MergeRaw(readers, &out, false, conf); err != nil {
		return nil, newOpError("merge", fmt.Errorf("merging %d documents: %w", len(inputs), err))
	}
	return out.Bytes(), nil
}
