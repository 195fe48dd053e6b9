// Package detector describes segmented area detectors: their physical
// specification, the ini backed detector database and the module mosaic
// built from a specification.
package detector

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownDetector = errors.New("unknown detector")
	ErrUnknownSize     = errors.New("unknown detector size")
	ErrInvalidSpec     = errors.New("invalid detector specification")
)

// Spec is the physical specification of a detector. Lengths are in mm,
// gaps in pixels.
type Spec struct {
	Name string `json:"name"`
	Size string `json:"size"`

	ModuleWidth  float64 `json:"hms"` // horizontal module size
	ModuleHeight float64 `json:"vms"` // vertical module size
	PixelSize    float64 `json:"pxs"`
	HGap         float64 `json:"hgp"`
	VGap         float64 `json:"vgp"`
	// Bore is the central beam hole diameter. Its sign selects the
	// direction the quadrants are offset in (positive: counter-clockwise).
	Bore float64 `json:"cbh"`

	Columns int `json:"hmn"`
	Rows    int `json:"vmn"`
}

// Validate rejects specifications that cannot describe a real detector.
func (s Spec) Validate() error {
	switch {
	case s.ModuleWidth <= 0 || s.ModuleHeight <= 0:
		return fmt.Errorf("%w: %s %s: module size %gx%g", ErrInvalidSpec, s.Name, s.Size, s.ModuleWidth, s.ModuleHeight)
	case s.PixelSize <= 0:
		return fmt.Errorf("%w: %s %s: pixel size %g", ErrInvalidSpec, s.Name, s.Size, s.PixelSize)
	case s.HGap < 0 || s.VGap < 0:
		return fmt.Errorf("%w: %s %s: negative module gap", ErrInvalidSpec, s.Name, s.Size)
	case s.Columns < 1 || s.Rows < 1:
		return fmt.Errorf("%w: %s %s: module grid %dx%d", ErrInvalidSpec, s.Name, s.Size, s.Columns, s.Rows)
	}
	return nil
}

// HGapMM returns the horizontal module gap in mm.
func (s Spec) HGapMM() float64 {
	return s.HGap * s.PixelSize
}

// VGapMM returns the vertical module gap in mm.
func (s Spec) VGapMM() float64 {
	return s.VGap * s.PixelSize
}
