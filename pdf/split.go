package pdf

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
)

// SplitPart is one output of Split: the clamped range and its document.
type SplitPart struct {
	Range PageRange
	Data  []byte
}

// Split copies each range into its own document. Ranges are processed
// independently, so overlapping ranges duplicate pages. With
// PolicyBestEffort ranges are clamped to the document and ranges that
// clamp to nothing produce no output; with PolicyStrict any range reaching
// outside the document fails with ErrPageOutOfRange.
func Split(doc *Document, ranges []PageRange, policy PagePolicy) ([]SplitPart, error) {
	total := doc.PageCount()
	if policy == PolicyStrict {
		for _, r := range ranges {
			if r.Start < 1 || r.End > total {
				return nil, newOpError("split", fmt.Errorf("%w: %s (document has %d pages)", ErrPageOutOfRange, r, total))
			}
		}
	}

	outputs := make([]SplitPart, 0, len(ranges))
	for _, r := range ranges {
		start := max(r.Start, 1)
		end := min(r.End, total)
		if start > end {
			continue
		}

		pages := make([]int, 0, end-start+1)
		for i := start; i <= end; i++ {
			pages = append(pages, i)
		}

		out, err := doc.extract(pages)
		if err != nil {
			return nil, newOpError("split", fmt.Errorf("range %s: %w", r, err))
		}
		outputs = append(outputs, SplitPart{Range: PageRange{Start: start, End: end}, Data: out})
	}

	return outputs, nil
}

// SplitEvery splits doc into one document per page.
func SplitEvery(doc *Document) ([]SplitPart, error) {
	ranges := make([]PageRange, doc.PageCount())
	for i := range ranges {
		ranges[i] = PageRange{Start: i + 1, End: i + 1}
	}
	return Split(doc, ranges, PolicyBestEffort)
}

// SplitHalves splits doc into a first half (rounded up) and the rest.
func SplitHalves(doc *Document) ([]SplitPart, error) {
	total := doc.PageCount()
	half := (total + 1) / 2
	return Split(doc, []PageRange{
		{Start: 1, End: half},
		{Start: half + 1, End: total},
	}, PolicyBestEffort)
}

// Extract copies the given pages, in ascending order, into a new document.
func Extract(doc *Document, pages []int, policy PagePolicy) ([]byte, error) {
	selected, err := ApplyPagePolicy(pages, doc.PageCount(), policy)
	if err != nil {
		return nil, newOpError("extract", err)
	}
	if len(selected) == 0 {
		return nil, newOpError("extract", ErrNoValidPages)
	}

	out, err := doc.extract(selected)
	if err != nil {
		return nil, newOpError("extract", err)
	}
	return out, nil
}

func (d *Document) extract(pages []int) ([]byte, error) {
	ctx, err := pdfcpu.ExtractPages(d.ctx, pages, false)
	if err != nil {
		return nil, err
	}
	return writeContext(ctx)
}
