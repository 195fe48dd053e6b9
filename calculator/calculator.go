package calculator

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"xrdplan/detector"
	"xrdplan/geometry"
	"xrdplan/reference"
)

// Calculator is the interactive session: it owns the current pose, detector,
// reference and display unit, and recomputes the contours synchronously on
// every change.
type Calculator interface {
	// pose
	SetPose(token string, value float64) error
	SetEnergy(energy float64) error
	SetDistance(distance float64) error
	SetRotation(rotation float64) error
	SetTilt(tilt float64) error
	SetYOffset(yoff float64) error
	SetXOffset(xoff float64) error
	Pose() Pose

	// detector and viewport
	SetDetector(name, size string) error
	SetViewport(view geometry.Extent)
	Detector() detector.Spec
	Modules() []geometry.Rect
	Viewport() geometry.Extent

	// overlays and labels
	SetReference(ref reference.Reference)
	SetUnit(unit Unit) error
	Reference() reference.Reference
	UnitLabel() string

	Contours() ContourSet
}

// DetectorSource looks up detector specifications by type and size.
type DetectorSource interface {
	Lookup(name, size string) (detector.Spec, error)
}

type calculator struct {
	cfg       Config
	detectors DetectorSource
	gen       *Generator

	pose      Pose
	spec      detector.Spec
	modules   []geometry.Rect
	view      geometry.Extent
	viewFixed bool
	ref       reference.Reference
	unit      Unit

	contours ContourSet
}

// NewCalculator starts a session from the configured pose and detector.
func NewCalculator(cfg Config, detectors DetectorSource) (Calculator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &calculator{
		cfg:       cfg,
		detectors: detectors,
		gen:       NewGenerator(cfg.Plot),
		pose:      cfg.Pose,
		unit:      cfg.Plot.Unit,
		ref:       reference.Reference{Name: reference.None},
	}
	if err := c.SetDetector(cfg.Detector.Type, cfg.Detector.Size); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *calculator) SetPose(token string, value float64) error {
	pose, err := c.pose.With(token, value)
	if err != nil {
		return err
	}
	c.pose = pose
	log.WithFields(log.Fields{
		"token": token,
		"value": value,
	}).Info("set pose")
	c.recompute()
	return nil
}

func (c *calculator) SetEnergy(energy float64) error     { return c.SetPose(TokenEnergy, energy) }
func (c *calculator) SetDistance(distance float64) error { return c.SetPose(TokenDistance, distance) }
func (c *calculator) SetRotation(rotation float64) error { return c.SetPose(TokenRotation, rotation) }
func (c *calculator) SetTilt(tilt float64) error         { return c.SetPose(TokenTilt, tilt) }
func (c *calculator) SetYOffset(yoff float64) error      { return c.SetPose(TokenYOffset, yoff) }
func (c *calculator) SetXOffset(xoff float64) error      { return c.SetPose(TokenXOffset, xoff) }

func (c *calculator) Pose() Pose {
	return c.pose
}

// SetDetector swaps the detector, rebuilding the module mosaic and, unless
// a viewport was set explicitly, the viewport.
func (c *calculator) SetDetector(name, size string) error {
	spec, err := c.detectors.Lookup(name, size)
	if err != nil {
		return fmt.Errorf("calculator: set detector: %w", err)
	}
	c.spec = spec
	c.modules = detector.Layout(spec)
	if !c.viewFixed {
		c.view = detector.Viewport(c.modules, c.cfg.Detector.Scale)
	}
	log.WithFields(log.Fields{
		"detector":    spec.Name,
		"size":        spec.Size,
		"modules":     len(c.modules),
		"half_width":  c.view.HalfWidth,
		"half_height": c.view.HalfHeight,
	}).Info("set detector")
	c.recompute()
	return nil
}

// SetViewport pins the viewport half extents. A zero extent returns to the
// extent derived from the module mosaic.
func (c *calculator) SetViewport(view geometry.Extent) {
	if view.HalfWidth <= 0 || view.HalfHeight <= 0 {
		c.viewFixed = false
		c.view = detector.Viewport(c.modules, c.cfg.Detector.Scale)
	} else {
		c.viewFixed = true
		c.view = view
	}
	log.WithFields(log.Fields{
		"half_width":  c.view.HalfWidth,
		"half_height": c.view.HalfHeight,
	}).Info("set viewport")
	c.recompute()
}

func (c *calculator) Detector() detector.Spec {
	return c.spec
}

func (c *calculator) Modules() []geometry.Rect {
	return c.modules
}

func (c *calculator) Viewport() geometry.Extent {
	return c.view
}

func (c *calculator) SetReference(ref reference.Reference) {
	if ref.IsNone() {
		ref = reference.Reference{Name: reference.None}
	}
	c.ref = ref
	log.WithFields(log.Fields{
		"reference": ref.Name,
		"entries":   len(ref.DSpacings),
	}).Info("set reference")
	c.contours.Reference = c.gen.Reference(c.pose, c.view, c.unit, c.ref)
}

func (c *calculator) Reference() reference.Reference {
	return c.ref
}

func (c *calculator) SetUnit(unit Unit) error {
	if _, err := ParseUnit(int(unit)); err != nil {
		return err
	}
	c.unit = unit
	log.WithField("unit", unit.Label()).Info("set unit")
	c.recompute()
	return nil
}

func (c *calculator) UnitLabel() string {
	return c.unit.Label()
}

func (c *calculator) Contours() ContourSet {
	return c.contours
}

func (c *calculator) recompute() {
	c.contours = ContourSet{
		Primary:   c.gen.Primary(c.pose, c.view, c.unit),
		Reference: c.gen.Reference(c.pose, c.view, c.unit, c.ref),
		UnitLabel: c.unit.Label(),
	}
}
