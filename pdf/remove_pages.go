package pdf

// RemovePages returns doc without the given pages.
func RemovePages(doc *Document, pages []int, policy PagePolicy) ([]byte, error) {
	selected, err := ApplyPagePolicy(pages, doc.PageCount(), policy)
	if err != nil {
		return nil, newOpError("remove-pages", err)
	}
	if len(selected) == 0 {
		return nil, newOpError("remove-pages", ErrNoValidPages)
	}

	remove := make(map[int]bool, len(selected))
	for _, p := range selected {
		remove[p] = true
	}
	keep := make([]int, 0, doc.PageCount()-len(selected))
	for i := 1; i <= doc.PageCount(); i++ {
		if !remove[i] {
			keep = append(keep, i)
		}
	}
	if len(keep) == 0 {
		return nil, newOpError("remove-pages", ErrAllPagesRemoved)
	}

	out, err := doc.extract(keep)
	if err != nil {
		return nil, newOpError("remove-pages", err)
	}
	return out, nil
}
