package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// fixtureHeight is shared by all fixture pages; widths identify pages.
const fixtureHeight = 800.0

// createTestPDF generates a PDF whose page i is firstWidth+10*(i-1) points wide.
func createTestPDF(t *testing.T, numPages int, firstWidth float64) []byte {
	t.Helper()
	doc := fpdf.New("P", "pt", "A4", "")
	doc.SetTitle("Fixture", false)
	doc.SetAuthor("Test Suite", false)
	doc.SetFont("Helvetica", "", 14)
	for i := 0; i < numPages; i++ {
		doc.AddPageFormat("P", fpdf.SizeType{Wd: firstWidth + float64(10*i), Ht: fixtureHeight})
		doc.Text(20, 30, fmt.Sprintf("Page %d of %d", i+1, numPages))
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		t.Fatalf("creating test PDF: %v", err)
	}
	return buf.Bytes()
}

func mustLoad(t *testing.T, data []byte) *Document {
	t.Helper()
	doc, err := Load(data, LoadOptions{})
	if err != nil {
		t.Fatalf("loading PDF: %v", err)
	}
	return doc
}

func mustPages(t *testing.T, data []byte) []PageInfo {
	t.Helper()
	pages, err := mustLoad(t, data).Pages()
	if err != nil {
		t.Fatalf("reading pages: %v", err)
	}
	return pages
}

// widths returns the rounded page widths of data, in page order.
func widths(t *testing.T, data []byte) []int {
	t.Helper()
	var out []int
	for _, p := range mustPages(t, data) {
		out = append(out, int(p.Width+0.5))
	}
	return out
}

func TestLoad(t *testing.T) {
	data := createTestPDF(t, 3, 300)
	doc := mustLoad(t, data)
	if doc.PageCount() != 3 {
		t.Errorf("expected 3 pages, got %d", doc.PageCount())
	}
	if doc.Size() != len(data) {
		t.Errorf("expected size %d, got %d", len(data), doc.Size())
	}
	if got := widths(t, data); !slices.Equal(got, []int{300, 310, 320}) {
		t.Errorf("unexpected widths %v", got)
	}
}

func TestLoadCorrupt(t *testing.T) {
	for name, data := range map[string][]byte{
		"empty":   nil,
		"garbage": []byte("this is not a pdf"),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(data, LoadOptions{})
			if !errors.Is(err, ErrDocumentLoad) {
				t.Fatalf("expected ErrDocumentLoad, got %v", err)
			}
			var loadErr *DocumentLoadError
			if !errors.As(err, &loadErr) || loadErr.Index != -1 {
				t.Errorf("expected single-document load error, got %#v", err)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	a := createTestPDF(t, 2, 300)
	b := createTestPDF(t, 3, 400)

	merged, err := Merge([][]byte{a, b}, LoadOptions{})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if got := widths(t, merged); !slices.Equal(got, []int{300, 310, 400, 410, 420}) {
		t.Errorf("merged pages out of order: %v", got)
	}
}

func TestMergeSingle(t *testing.T) {
	out, err := Merge([][]byte{createTestPDF(t, 2, 300)}, LoadOptions{})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if n := mustLoad(t, out).PageCount(); n != 2 {
		t.Errorf("expected 2 pages, got %d", n)
	}
}

func TestMergeErrors(t *testing.T) {
	if _, err := Merge(nil, LoadOptions{}); !errors.Is(err, ErrNoInput) {
		t.Errorf("expected ErrNoInput, got %v", err)
	}

	_, err := Merge([][]byte{createTestPDF(t, 1, 300), []byte("broken")}, LoadOptions{})
	var loadErr *DocumentLoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected DocumentLoadError, got %v", err)
	}
	if loadErr.Index != 1 {
		t.Errorf("expected failing index 1, got %d", loadErr.Index)
	}
}

func TestExtract(t *testing.T) {
	doc := mustLoad(t, createTestPDF(t, 5, 300))
	out, err := Extract(doc, []int{4, 2}, PolicyBestEffort)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if got := widths(t, out); !slices.Equal(got, []int{310, 330}) {
		t.Errorf("expected pages 2 and 4, got widths %v", got)
	}
}

func TestExtractPolicy(t *testing.T) {
	data := createTestPDF(t, 3, 300)

	out, err := Extract(mustLoad(t, data), []int{3, 7}, PolicyBestEffort)
	if err != nil {
		t.Fatalf("best-effort extract: %v", err)
	}
	if got := widths(t, out); !slices.Equal(got, []int{320}) {
		t.Errorf("expected page 3 only, got %v", got)
	}

	if _, err := Extract(mustLoad(t, data), []int{3, 7}, PolicyStrict); !errors.Is(err, ErrPageOutOfRange) {
		t.Errorf("strict extract: expected ErrPageOutOfRange, got %v", err)
	}
	if _, err := Extract(mustLoad(t, data), []int{9}, PolicyBestEffort); !errors.Is(err, ErrNoValidPages) {
		t.Errorf("expected ErrNoValidPages, got %v", err)
	}
}

func TestSplit(t *testing.T) {
	doc := mustLoad(t, createTestPDF(t, 5, 300))
	parts, err := Split(doc, []PageRange{{1, 3}, {2, 4}, {4, 9}, {7, 9}}, PolicyBestEffort)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if len(parts) != 3 {
		t.Fatalf("expected 3 parts, got %d", len(parts))
	}

	want := []struct {
		r      PageRange
		widths []int
	}{
		{PageRange{1, 3}, []int{300, 310, 320}},
		{PageRange{2, 4}, []int{310, 320, 330}},
		{PageRange{4, 5}, []int{330, 340}},
	}
	for i, w := range want {
		if parts[i].Range != w.r {
			t.Errorf("part %d: range %v, want %v", i, parts[i].Range, w.r)
		}
		if got := widths(t, parts[i].Data); !slices.Equal(got, w.widths) {
			t.Errorf("part %d: widths %v, want %v", i, got, w.widths)
		}
	}
}

func TestSplitStrict(t *testing.T) {
	data := createTestPDF(t, 3, 300)

	for _, ranges := range [][]PageRange{{{1, 2}, {8, 9}}, {{0, 2}}, {{2, 4}}} {
		if _, err := Split(mustLoad(t, data), ranges, PolicyStrict); !errors.Is(err, ErrPageOutOfRange) {
			t.Errorf("ranges %v: expected ErrPageOutOfRange, got %v", ranges, err)
		}
	}

	parts, err := Split(mustLoad(t, data), []PageRange{{1, 2}, {2, 3}}, PolicyStrict)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if len(parts) != 2 {
		t.Errorf("expected 2 parts, got %d", len(parts))
	}
}

func TestSplitEveryAndHalves(t *testing.T) {
	data := createTestPDF(t, 5, 300)

	every, err := SplitEvery(mustLoad(t, data))
	if err != nil {
		t.Fatalf("split every: %v", err)
	}
	if len(every) != 5 {
		t.Fatalf("expected 5 parts, got %d", len(every))
	}
	for i, p := range every {
		if got := widths(t, p.Data); !slices.Equal(got, []int{300 + 10*i}) {
			t.Errorf("part %d: widths %v", i, got)
		}
	}

	halves, err := SplitHalves(mustLoad(t, data))
	if err != nil {
		t.Fatalf("split halves: %v", err)
	}
	if len(halves) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(halves))
	}
	if halves[0].Range != (PageRange{1, 3}) || halves[1].Range != (PageRange{4, 5}) {
		t.Errorf("unexpected halves %v, %v", halves[0].Range, halves[1].Range)
	}
}

func rotations(t *testing.T, data []byte) []int {
	t.Helper()
	var out []int
	for _, p := range mustPages(t, data) {
		out = append(out, p.Rotation)
	}
	return out
}

func TestRotateAbsoluteRoundTrip(t *testing.T) {
	data := createTestPDF(t, 3, 300)

	for _, angle := range []int{90, 180, 270} {
		rotated, err := Rotate(mustLoad(t, data), RotationSpec{Angle: angle, All: true}, PolicyBestEffort)
		if err != nil {
			t.Fatalf("rotate %d: %v", angle, err)
		}
		if got := rotations(t, rotated); !slices.Equal(got, []int{angle, angle, angle}) {
			t.Errorf("rotate %d: rotations %v", angle, got)
		}

		restored, err := Rotate(mustLoad(t, rotated), RotationSpec{Angle: 0, All: true}, PolicyBestEffort)
		if err != nil {
			t.Fatalf("restore from %d: %v", angle, err)
		}
		if got := rotations(t, restored); !slices.Equal(got, []int{0, 0, 0}) {
			t.Errorf("restore from %d: rotations %v", angle, got)
		}
		if got := widths(t, restored); !slices.Equal(got, []int{300, 310, 320}) {
			t.Errorf("restore from %d: widths %v", angle, got)
		}
	}
}

func TestRotateRelativeRoundTrip(t *testing.T) {
	data := createTestPDF(t, 2, 300)

	for _, angle := range []int{90, 180, 270} {
		rotated, err := Rotate(mustLoad(t, data), RotationSpec{Angle: angle, All: true, Mode: RotateRelative}, PolicyBestEffort)
		if err != nil {
			t.Fatalf("rotate %d: %v", angle, err)
		}
		back, err := Rotate(mustLoad(t, rotated), RotationSpec{Angle: (360 - angle) % 360, All: true, Mode: RotateRelative}, PolicyBestEffort)
		if err != nil {
			t.Fatalf("rotate back %d: %v", angle, err)
		}
		if got := rotations(t, back); !slices.Equal(got, []int{0, 0}) {
			t.Errorf("angle %d: rotations after round trip %v", angle, got)
		}
	}
}

func TestRotateRelativeAccumulates(t *testing.T) {
	once, err := Rotate(mustLoad(t, createTestPDF(t, 1, 300)), RotationSpec{Angle: 270, All: true, Mode: RotateRelative}, PolicyBestEffort)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	twice, err := Rotate(mustLoad(t, once), RotationSpec{Angle: 180, All: true, Mode: RotateRelative}, PolicyBestEffort)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if got := rotations(t, twice); !slices.Equal(got, []int{90}) {
		t.Errorf("expected 90 after 270+180, got %v", got)
	}
}

func TestRotateSpecificPages(t *testing.T) {
	data := createTestPDF(t, 4, 300)

	out, err := Rotate(mustLoad(t, data), RotationSpec{Angle: 90, Pages: []int{2, 4, 9}}, PolicyBestEffort)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if got := rotations(t, out); !slices.Equal(got, []int{0, 90, 0, 90}) {
		t.Errorf("unexpected rotations %v", got)
	}

	if _, err := Rotate(mustLoad(t, data), RotationSpec{Angle: 90, Pages: []int{2, 9}}, PolicyStrict); !errors.Is(err, ErrPageOutOfRange) {
		t.Errorf("strict: expected ErrPageOutOfRange, got %v", err)
	}
	if _, err := Rotate(mustLoad(t, data), RotationSpec{Angle: 45, All: true}, PolicyBestEffort); !errors.Is(err, ErrInvalidAngle) {
		t.Errorf("expected ErrInvalidAngle, got %v", err)
	}
}

func TestPlacements(t *testing.T) {
	center := placements(Center, 300, 800)
	if len(center) != 1 || center[0].anchor != "c" || center[0].points != 15 || center[0].rotation != WatermarkAngle {
		t.Errorf("unexpected center placement %+v", center)
	}

	tl := placements(TopLeft, 300, 800)
	if len(tl) != 1 || tl[0].anchor != "tl" || tl[0].dx != WatermarkMargin || tl[0].dy != -WatermarkMargin {
		t.Errorf("unexpected top-left placement %+v", tl)
	}
	br := placements(BottomRight, 300, 800)
	if len(br) != 1 || br[0].anchor != "br" || br[0].dx != -WatermarkMargin || br[0].dy != WatermarkMargin {
		t.Errorf("unexpected bottom-right placement %+v", br)
	}

	// step 60 over 300x800: 5 columns, 14 rows.
	tile := placements(Tile, 300, 800)
	if len(tile) != 70 {
		t.Fatalf("expected 70 tiles, got %d", len(tile))
	}
	if tile[0].points != 8 || tile[0].rotation != WatermarkAngle {
		t.Errorf("unexpected tile %+v", tile[0])
	}
}

func TestPlacementDescriptionOpacity(t *testing.T) {
	for _, pos := range []Position{Center, TopLeft, Tile} {
		for _, p := range placements(pos, 300, 800) {
			if d := p.description(30); !strings.Contains(d, "opacity:0.30") {
				t.Errorf("%s: description %q lacks opacity", pos, d)
			}
		}
	}
}

func TestAddWatermark(t *testing.T) {
	data := createTestPDF(t, 2, 300)

	for _, pos := range []Position{Center, TopLeft, TopRight, BottomLeft, BottomRight, Tile} {
		t.Run(string(pos), func(t *testing.T) {
			out, err := AddWatermark(mustLoad(t, data), WatermarkSpec{Kind: WatermarkText, Text: "CONFIDENTIAL", Opacity: 30, Position: pos})
			if err != nil {
				t.Fatalf("watermark: %v", err)
			}
			if bytes.Equal(out, data) {
				t.Error("output identical to input")
			}
			if !hasWatermarks(t, out) {
				t.Error("no watermark found in output")
			}
			pages := mustPages(t, out)
			if len(pages) != 2 {
				t.Fatalf("expected 2 pages, got %d", len(pages))
			}
			for i, p := range pages {
				if int(p.Width+0.5) != 300+10*i || int(p.Height+0.5) != int(fixtureHeight) {
					t.Errorf("page %d: size changed to %.2fx%.2f", i+1, p.Width, p.Height)
				}
			}
		})
	}
}

func hasWatermarks(t *testing.T, data []byte) bool {
	t.Helper()
	ok, err := api.HasWatermarks(bytes.NewReader(data), newConfiguration())
	if err != nil {
		t.Fatalf("detecting watermarks: %v", err)
	}
	return ok
}

func TestFixtureHasNoWatermarks(t *testing.T) {
	if hasWatermarks(t, createTestPDF(t, 1, 300)) {
		t.Error("fixture already carries a watermark")
	}
}

func TestTilePlacementsBounded(t *testing.T) {
	if step := tileStep(300, 800, 300*WatermarkTileRatio); step != 60 {
		t.Errorf("regular page: step %.2f, want 60", step)
	}

	const w, h = 20.0, 14000.0
	step := tileStep(w, h, w*WatermarkTileRatio)
	tiles := placements(Tile, w, h)
	if len(tiles) == 0 || len(tiles) > WatermarkMaxTiles {
		t.Fatalf("expected 1..%d tiles, got %d", WatermarkMaxTiles, len(tiles))
	}

	var maxX, maxY float64
	for _, p := range tiles {
		maxX = max(maxX, p.dx)
		maxY = max(maxY, p.dy)
	}
	if maxX >= w || maxY >= h {
		t.Errorf("tile outside page: %.2f,%.2f", maxX, maxY)
	}
	if maxX+step < w || maxY+step < h {
		t.Errorf("grid does not reach the page edges: last tile %.2f,%.2f step %.2f", maxX, maxY, step)
	}
}

func TestAddWatermarkElongatedPage(t *testing.T) {
	doc := fpdf.New("P", "pt", "A4", "")
	doc.AddPageFormat("P", fpdf.SizeType{Wd: 20, Ht: 14000})
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		t.Fatalf("creating test PDF: %v", err)
	}

	start := time.Now()
	out, err := AddWatermark(mustLoad(t, buf.Bytes()), WatermarkSpec{Kind: WatermarkText, Text: "DRAFT", Opacity: 30, Position: Tile})
	if err != nil {
		t.Fatalf("watermark: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 20*time.Second {
		t.Errorf("tiling took %v", elapsed)
	}
	if len(out) > 2<<20 {
		t.Errorf("output too large: %d bytes", len(out))
	}
	if !hasWatermarks(t, out) {
		t.Error("no watermark found in output")
	}
}

func TestWatermarkValidate(t *testing.T) {
	tests := []struct {
		name string
		spec WatermarkSpec
		want error
	}{
		{"image", WatermarkSpec{Kind: WatermarkImage, Text: "x"}, ErrNotImplemented},
		{"empty text", WatermarkSpec{Kind: WatermarkText, Text: "  "}, ErrEmptyWatermark},
		{"opacity", WatermarkSpec{Kind: WatermarkText, Text: "x", Opacity: 120}, ErrInvalidOpacity},
		{"position", WatermarkSpec{Kind: WatermarkText, Text: "x", Position: "middle"}, ErrInvalidPosition},
		{"ok", WatermarkSpec{Kind: WatermarkText, Text: "x", Opacity: 50}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("unexpected error %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}

	_, err := AddWatermark(mustLoad(t, createTestPDF(t, 1, 300)), WatermarkSpec{Kind: WatermarkImage})
	var notImpl *NotImplementedError
	if !errors.As(err, &notImpl) || notImpl.Feature != "Image watermarking" {
		t.Errorf("expected image watermarking not implemented, got %v", err)
	}
}

func TestRemovePages(t *testing.T) {
	data := createTestPDF(t, 4, 300)

	out, err := RemovePages(mustLoad(t, data), []int{1, 3}, PolicyBestEffort)
	if err != nil {
		t.Fatalf("remove pages: %v", err)
	}
	if got := widths(t, out); !slices.Equal(got, []int{310, 330}) {
		t.Errorf("expected pages 2 and 4 to remain, got %v", got)
	}

	if _, err := RemovePages(mustLoad(t, data), []int{1, 2, 3, 4}, PolicyBestEffort); !errors.Is(err, ErrAllPagesRemoved) {
		t.Errorf("expected ErrAllPagesRemoved, got %v", err)
	}
	if _, err := RemovePages(mustLoad(t, data), []int{8}, PolicyBestEffort); !errors.Is(err, ErrNoValidPages) {
		t.Errorf("expected ErrNoValidPages, got %v", err)
	}
}

func TestCompress(t *testing.T) {
	data := createTestPDF(t, 3, 300)

	out, err := Compress(mustLoad(t, data), 70)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	doc := mustLoad(t, out)
	if doc.PageCount() != 3 {
		t.Errorf("expected 3 pages, got %d", doc.PageCount())
	}
	if doc.ctx.Title != "" || doc.ctx.Author != "" {
		t.Errorf("metadata survived compression: title %q, author %q", doc.ctx.Title, doc.ctx.Author)
	}

	for _, q := range []int{5, 101} {
		if _, err := Compress(mustLoad(t, data), q); !errors.Is(err, ErrInvalidQuality) {
			t.Errorf("quality %d: expected ErrInvalidQuality, got %v", q, err)
		}
	}
}

func TestQualityLabel(t *testing.T) {
	for q, want := range map[int]string{
		100: "Highest Quality (Minimal Compression)",
		70:  "High Quality",
		50:  "Medium Quality",
		20:  "Low Quality",
		10:  "Lowest Quality (Maximum Compression)",
	} {
		if got := QualityLabel(q); got != want {
			t.Errorf("QualityLabel(%d) = %q, want %q", q, got, want)
		}
	}
}
