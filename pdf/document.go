package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// MimeType is the content type of every document produced by this package.
const MimeType = "application/pdf"

var configOnce sync.Once

// newConfiguration returns a fresh pdfcpu configuration. The pdfcpu user
// config directory is never touched.
func newConfiguration() *model.Configuration {
	configOnce.Do(api.DisableConfigDir)
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// LoadOptions control how document bytes are parsed.
type LoadOptions struct {
	Password string
}

// Document is a parsed PDF. It belongs to the transform call that loaded
// it and must not be shared or kept after that call returns.
type Document struct {
	ctx  *model.Context
	size int
}

// PageInfo describes the geometry of one page.
type PageInfo struct {
	Number   int     `json:"number"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation int     `json:"rotation"`
}

// Load parses data as a PDF document.
func Load(data []byte, opts LoadOptions) (*Document, error) {
	return load(data, opts, -1)
}

func load(data []byte, opts LoadOptions, index int) (*Document, error) {
	if len(data) == 0 {
		return nil, &DocumentLoadError{Index: index, Err: errors.New("empty input")}
	}

	conf := newConfiguration()
	if opts.Password != "" {
		conf.UserPW = opts.Password
		conf.OwnerPW = opts.Password
	}

	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, &DocumentLoadError{Index: index, Err: err}
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, &DocumentLoadError{Index: index, Err: err}
	}

	return &Document{ctx: ctx, size: len(data)}, nil
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	return d.ctx.PageCount
}

// Size returns the length of the bytes the document was loaded from.
func (d *Document) Size() int {
	return d.size
}

// Pages returns geometry and rotation for every page.
func (d *Document) Pages() ([]PageInfo, error) {
	pages := make([]PageInfo, 0, d.ctx.PageCount)
	for i := 1; i <= d.ctx.PageCount; i++ {
		box, rotate, err := d.pageBox(i)
		if err != nil {
			return nil, err
		}
		pages = append(pages, PageInfo{
			Number:   i,
			Width:    box.Width(),
			Height:   box.Height(),
			Rotation: rotate,
		})
	}
	return pages, nil
}

// Bytes serializes the document.
func (d *Document) Bytes() ([]byte, error) {
	return writeContext(d.ctx)
}

// pageBox returns the visible box and effective rotation of page pageNr.
func (d *Document) pageBox(pageNr int) (*types.Rectangle, int, error) {
	_, _, inh, err := d.ctx.PageDict(pageNr, false)
	if err != nil {
		return nil, 0, fmt.Errorf("reading page %d: %w", pageNr, err)
	}
	if inh == nil {
		return nil, 0, fmt.Errorf("page %d has no attributes", pageNr)
	}

	box := inh.CropBox
	if box == nil {
		box = inh.MediaBox
	}
	if box == nil {
		return nil, 0, fmt.Errorf("page %d has no media box", pageNr)
	}
	return box, inh.Rotate, nil
}

func writeContext(ctx *model.Context) ([]byte, error) {
	var out bytes.Buffer
	if err := api.WriteContext(ctx, &out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
