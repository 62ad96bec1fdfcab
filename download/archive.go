package download

import (
	"archive/zip"
	"bytes"
	"fmt"
)

// ZipContentType is the content type of archives built by Archive.
const ZipContentType = "application/zip"

// Archive bundles resources into a single zip resource named filename.
// Duplicate member names get the lowest numeric prefix not already taken.
func Archive(filename string, resources []*Resource) (*Resource, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	used := make(map[string]bool, len(resources))
	for _, res := range resources {
		name := res.Filename
		for n := 1; used[name]; n++ {
			name = fmt.Sprintf("%d_%s", n, res.Filename)
		}
		used[name] = true

		w, err := zw.Create(name)
		if err != nil {
			return nil, fmt.Errorf("adding %s to archive: %w", name, err)
		}
		if _, err := w.Write(res.Data); err != nil {
			return nil, fmt.Errorf("writing %s to archive: %w", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("closing archive: %w", err)
	}
	return NewResource(buf.Bytes(), filename, ZipContentType), nil
}
