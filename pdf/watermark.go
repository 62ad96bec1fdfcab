package pdf

import (
	"fmt"
	"math"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// WatermarkKind distinguishes text from image watermarks.
type WatermarkKind string

const (
	WatermarkText  WatermarkKind = "text"
	WatermarkImage WatermarkKind = "image"
)

// Position specifies where a watermark is drawn on each page.
type Position string

const (
	Center      Position = "center"
	TopLeft     Position = "top-left"
	TopRight    Position = "top-right"
	BottomLeft  Position = "bottom-left"
	BottomRight Position = "bottom-right"
	Tile        Position = "tile"
)

// ParsePosition validates a position name.
func ParsePosition(s string) (Position, error) {
	switch p := Position(strings.ToLower(strings.TrimSpace(s))); p {
	case Center, TopLeft, TopRight, BottomLeft, BottomRight, Tile:
		return p, nil
	case "":
		return Center, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPosition, s)
}

// WatermarkSpec describes a watermark request. Opacity is a percentage
// and applies to every position.
type WatermarkSpec struct {
	Kind     WatermarkKind
	Text     string
	Opacity  int
	Position Position
}

// Validate checks s without touching a document.
func (s WatermarkSpec) Validate() error {
	if s.Kind == WatermarkImage {
		return &NotImplementedError{Feature: "Image watermarking"}
	}
	if s.Kind != "" && s.Kind != WatermarkText {
		return &NotImplementedError{Feature: fmt.Sprintf("%q watermarking", s.Kind)}
	}
	if strings.TrimSpace(s.Text) == "" {
		return ErrEmptyWatermark
	}
	if s.Opacity < 0 || s.Opacity > 100 {
		return fmt.Errorf("%w, got %d", ErrInvalidOpacity, s.Opacity)
	}
	if _, err := ParsePosition(string(s.Position)); err != nil {
		return err
	}
	return nil
}

// placement is one text instance relative to a pdfcpu anchor.
type placement struct {
	anchor   string // pdfcpu position: c, tl, tr, bl, br
	dx, dy   float64
	points   int
	rotation float64
}

// placements computes where the watermark text goes on a page of the
// given size.
func placements(pos Position, pageW, pageH float64) []placement {
	shorter := math.Min(pageW, pageH)
	fontSize := shorter * WatermarkFontRatio
	points := fontPoints(fontSize)

	switch pos {
	case TopLeft:
		return []placement{{anchor: "tl", dx: WatermarkMargin, dy: -WatermarkMargin, points: points}}
	case TopRight:
		return []placement{{anchor: "tr", dx: -WatermarkMargin, dy: -WatermarkMargin, points: points}}
	case BottomLeft:
		return []placement{{anchor: "bl", dx: WatermarkMargin, dy: WatermarkMargin, points: points}}
	case BottomRight:
		return []placement{{anchor: "br", dx: -WatermarkMargin, dy: WatermarkMargin, points: points}}
	case Tile:
		step := tileStep(pageW, pageH, shorter*WatermarkTileRatio)
		if step <= 0 {
			return nil
		}
		tilePoints := fontPoints(fontSize / 2)
		cols := int(math.Ceil(pageW / step))
		rows := int(math.Ceil(pageH / step))
		out := make([]placement, 0, cols*rows)
		for i := 0; i < cols; i++ {
			for j := 0; j < rows; j++ {
				out = append(out, placement{
					anchor:   "bl",
					dx:       float64(i) * step,
					dy:       float64(j) * step,
					points:   tilePoints,
					rotation: WatermarkAngle,
				})
			}
		}
		return out
	default:
		return []placement{{anchor: "c", points: points, rotation: WatermarkAngle}}
	}
}

// tileStep widens step until the grid fits in WatermarkMaxTiles. Very
// elongated pages would otherwise produce tens of thousands of stamps.
func tileStep(pageW, pageH, step float64) float64 {
	if step <= 0 || pageW <= 0 || pageH <= 0 {
		return 0
	}
	for tileCount(pageW, pageH, step) > WatermarkMaxTiles {
		step *= 1.25
	}
	return step
}

// tileCount is the number of grid points in [0,pageW) x [0,pageH).
func tileCount(pageW, pageH, step float64) int {
	if step <= 0 {
		return 0
	}
	return int(math.Ceil(pageW/step)) * int(math.Ceil(pageH/step))
}

func fontPoints(size float64) int {
	return max(1, int(math.Round(size)))
}

func (p placement) description(opacity int) string {
	return fmt.Sprintf(
		"fontname:%s, points:%d, scalefactor:1 abs, rotation:%.0f, opacity:%.2f, position:%s, offset:%.2f %.2f, fillcolor:%s",
		WatermarkFont, p.points, p.rotation, float64(opacity)/100, p.anchor, p.dx, p.dy, WatermarkColor,
	)
}

// AddWatermark draws spec on every page of doc and returns the serialized
// result. Page count and page boxes are unchanged.
func AddWatermark(doc *Document, spec WatermarkSpec) ([]byte, error) {
	if err := spec.Validate(); err != nil {
		return nil, newOpError("watermark", err)
	}
	pos, _ := ParsePosition(string(spec.Position))

	type dims struct{ w, h float64 }
	built := make(map[dims][]*model.Watermark)
	m := make(map[int][]*model.Watermark, doc.PageCount())

	for i := 1; i <= doc.PageCount(); i++ {
		box, _, err := doc.pageBox(i)
		key := dims{DefaultPageWidth, DefaultPageHeight}
		if err == nil && box.Width() > 0 && box.Height() > 0 {
			key = dims{box.Width(), box.Height()}
		}

		wms, ok := built[key]
		if !ok {
			for _, p := range placements(pos, key.w, key.h) {
				wm, err := api.TextWatermark(spec.Text, p.description(spec.Opacity), true, false, types.POINTS)
				if err != nil {
					return nil, newOpError("watermark", err)
				}
				wms = append(wms, wm)
			}
			built[key] = wms
		}
		m[i] = wms
	}

	if err := pdfcpu.AddWatermarksSliceMap(doc.ctx, m); err != nil {
		return nil, newOpError("watermark", err)
	}

	out, err := doc.Bytes()
	if err != nil {
		return nil, newOpError("watermark", err)
	}
	return out, nil
}
