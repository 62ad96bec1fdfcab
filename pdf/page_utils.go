package pdf

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// PageRange is an inclusive, 1-based page interval as typed by a user.
type PageRange struct {
	Start int
	End   int
}

// Valid reports whether the range is well ordered.
func (r PageRange) Valid() bool {
	return r.Start <= r.End
}

func (r PageRange) String() string {
	if r.Start == r.End {
		return strconv.Itoa(r.Start)
	}
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// PagePolicy selects how page indices outside the document are treated.
type PagePolicy int

const (
	// PolicyBestEffort drops out-of-range indices without reporting them.
	PolicyBestEffort PagePolicy = iota
	// PolicyStrict fails the operation on the first out-of-range index.
	PolicyStrict
)

func (p PagePolicy) String() string {
	if p == PolicyStrict {
		return "strict"
	}
	return "best-effort"
}

// ParsePagePolicy maps a configuration value to a PagePolicy.
func ParsePagePolicy(s string) (PagePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "best-effort", "besteffort", "lenient":
		return PolicyBestEffort, nil
	case "strict":
		return PolicyStrict, nil
	}
	return PolicyBestEffort, fmt.Errorf("unknown page policy %q (supported: best-effort, strict)", s)
}

// ParsePageRanges converts a page specification such as "1-3, 5, 7-9" into
// an ascending, duplicate-free list of page numbers within [1, totalPages].
//
// Tokens that do not parse are skipped. A dash token is kept only when
// start <= end; its end is clamped to totalPages but its start is not
// clamped, so values below 1 are walked and then discarded. Callers must
// treat an empty result from non-empty input as invalid input.
func ParsePageRanges(pages string, totalPages int) []int {
	pageList := []int{}
	if strings.TrimSpace(pages) == "" {
		return pageList
	}

	for _, part := range strings.Split(pages, ",") {
		part = strings.TrimSpace(part)

		if strings.Contains(part, "-") {
			r, ok := parseRangeToken(part)
			if !ok || !r.Valid() {
				continue
			}
			for i := r.Start; i <= min(r.End, totalPages); i++ {
				pageList = append(pageList, i)
			}
			continue
		}

		pageNum, err := strconv.Atoi(part)
		if err != nil {
			continue
		}
		if pageNum > 0 && pageNum <= totalPages {
			pageList = append(pageList, pageNum)
		}
	}

	return normalizePages(pageList)
}

// ParsePageRangeList returns the well-formed ranges of a page
// specification without clamping them. Single numbers become one-page
// ranges.
func ParsePageRangeList(pages string) []PageRange {
	var ranges []PageRange
	for _, part := range strings.Split(pages, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if strings.Contains(part, "-") {
			if r, ok := parseRangeToken(part); ok && r.Valid() {
				ranges = append(ranges, r)
			}
			continue
		}

		if n, err := strconv.Atoi(part); err == nil {
			ranges = append(ranges, PageRange{Start: n, End: n})
		}
	}
	return ranges
}

// SelectPages parses a page specification against a document of
// totalPages pages. With PolicyBestEffort it behaves like ParsePageRanges.
// With PolicyStrict any token reaching outside the document fails with
// ErrPageOutOfRange; malformed tokens are still skipped.
func SelectPages(pages string, totalPages int, policy PagePolicy) ([]int, error) {
	if policy != PolicyStrict {
		return ParsePageRanges(pages, totalPages), nil
	}

	var pageList []int
	for _, r := range ParsePageRangeList(pages) {
		if r.Start < 1 || r.End > totalPages {
			return nil, fmt.Errorf("%w: %s (document has %d pages)", ErrPageOutOfRange, r, totalPages)
		}
		for i := r.Start; i <= r.End; i++ {
			pageList = append(pageList, i)
		}
	}
	return normalizePages(pageList), nil
}

// ValidatePageNumbers checks if all page numbers are valid for a given total number of pages
func ValidatePageNumbers(pages []int, totalPages int) error {
	for _, page := range pages {
		if page < 1 || page > totalPages {
			return fmt.Errorf("%w: page %d (document has %d pages)", ErrPageOutOfRange, page, totalPages)
		}
	}
	return nil
}

// ApplyPagePolicy filters or rejects out-of-range pages according to policy.
// The result is sorted and deduplicated.
func ApplyPagePolicy(pages []int, totalPages int, policy PagePolicy) ([]int, error) {
	if policy == PolicyStrict {
		if err := ValidatePageNumbers(pages, totalPages); err != nil {
			return nil, err
		}
		return normalizePages(slices.Clone(pages)), nil
	}

	kept := make([]int, 0, len(pages))
	for _, p := range pages {
		if p >= 1 && p <= totalPages {
			kept = append(kept, p)
		}
	}
	return normalizePages(kept), nil
}

// parseRangeToken splits "start-end" and parses both sides.
func parseRangeToken(part string) (PageRange, bool) {
	startStr, endStr, _ := strings.Cut(part, "-")
	start, err := strconv.Atoi(strings.TrimSpace(startStr))
	if err != nil {
		return PageRange{}, false
	}
	end, err := strconv.Atoi(strings.TrimSpace(endStr))
	if err != nil {
		return PageRange{}, false
	}
	return PageRange{Start: start, End: end}, true
}

// normalizePages sorts, removes duplicates and drops non-positive entries.
func normalizePages(pageList []int) []int {
	slices.Sort(pageList)
	deduped := []int{}
	for i, page := range pageList {
		if page < 1 {
			continue
		}
		if i == 0 || page != pageList[i-1] {
			deduped = append(deduped, page)
		}
	}
	return deduped
}
