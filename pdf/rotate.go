package pdf

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// RotationMode selects how the angle combines with a page's current rotation.
type RotationMode int

const (
	// RotateAbsolute sets /Rotate to the angle.
	RotateAbsolute RotationMode = iota
	// RotateRelative adds the angle to the current rotation, modulo 360.
	RotateRelative
)

// ParseRotationMode maps "absolute"/"relative" to a RotationMode.
func ParseRotationMode(s string) (RotationMode, error) {
	switch s {
	case "", "absolute":
		return RotateAbsolute, nil
	case "relative":
		return RotateRelative, nil
	}
	return RotateAbsolute, fmt.Errorf("unknown rotation mode %q", s)
}

// RotationSpec describes one rotation request.
type RotationSpec struct {
	Angle int
	All   bool  // rotate every page, Pages is ignored
	Pages []int // 1-based page numbers when All is false
	Mode  RotationMode
}

// ValidAngle reports whether angle is a quarter turn accepted by Rotate.
func ValidAngle(angle int) bool {
	return angle == 0 || angle == 90 || angle == 180 || angle == 270
}

// Rotate applies spec to doc and returns the serialized result.
// Out-of-range pages are handled according to policy.
func Rotate(doc *Document, spec RotationSpec, policy PagePolicy) ([]byte, error) {
	if !ValidAngle(spec.Angle) {
		return nil, newOpError("rotate", fmt.Errorf("%w, got %d", ErrInvalidAngle, spec.Angle))
	}

	pages, err := targetPages(doc, spec.All, spec.Pages, policy)
	if err != nil {
		return nil, newOpError("rotate", err)
	}

	for _, p := range pages {
		if err := doc.setRotation(p, spec.Angle, spec.Mode); err != nil {
			return nil, newOpError("rotate", err)
		}
	}

	out, err := doc.Bytes()
	if err != nil {
		return nil, newOpError("rotate", err)
	}
	return out, nil
}

func (d *Document) setRotation(pageNr, angle int, mode RotationMode) error {
	pageDict, _, inh, err := d.ctx.PageDict(pageNr, false)
	if err != nil {
		return fmt.Errorf("reading page %d: %w", pageNr, err)
	}
	if pageDict == nil {
		return fmt.Errorf("page %d not found", pageNr)
	}

	rotate := angle
	if mode == RotateRelative {
		current := 0
		if inh != nil {
			current = inh.Rotate
		}
		rotate = ((current+angle)%360 + 360) % 360
	}

	pageDict["Rotate"] = types.Integer(rotate)
	return nil
}

// targetPages resolves an all/explicit page selection against doc.
func targetPages(doc *Document, all bool, pages []int, policy PagePolicy) ([]int, error) {
	total := doc.PageCount()
	if all {
		allPages := make([]int, total)
		for i := range allPages {
			allPages[i] = i + 1
		}
		return allPages, nil
	}
	return ApplyPagePolicy(pages, total, policy)
}
