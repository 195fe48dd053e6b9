package calculator

import (
	"errors"
	"fmt"

	"gopkg.in/ini.v1"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the engine configuration read from the [plot], [geometry],
// [limits], [detector] and [reference] sections.
type Config struct {
	Plot      PlotConfig
	Pose      Pose
	Limits    map[string]Limit
	Detector  DetectorConfig
	Reference ReferenceConfig
}

type PlotConfig struct {
	TThMin  float64 // degrees
	TThMax  float64 // degrees
	TThNum  int     // primary contour count
	Steps   int     // samples per curve
	RefNum  int     // reference contour cap
	Unit    Unit
	Workers int
}

type DetectorConfig struct {
	Type     string
	Size     string
	Database string
	Scale    float64 // viewport size relative to the module mosaic
}

type ReferenceConfig struct {
	Name    string
	Library string
}

var defaultLimits = map[string]Limit{
	TokenEnergy:   {Min: 5, Max: 100, Step: 1},
	TokenDistance: {Min: 40, Max: 1000, Step: 1},
	TokenRotation: {Min: -45, Max: 75, Step: 1},
	TokenTilt:     {Min: -40, Max: 40, Step: 1},
	TokenYOffset:  {Min: 0, Max: 150, Step: 1},
	TokenXOffset:  {Min: -150, Max: 150, Step: 1},
}

// LoadConfig reads the engine configuration from file, falling back to the
// defaults for missing keys, and validates it.
func LoadConfig(file *ini.File) (Config, error) {
	plot := file.Section("plot")
	geo := file.Section("geometry")
	det := file.Section("detector")
	ref := file.Section("reference")

	cfg := Config{
		Plot: PlotConfig{
			TThMin:  plot.Key("conic_tth_min").MustFloat64(5),
			TThMax:  plot.Key("conic_tth_max").MustFloat64(100),
			TThNum:  plot.Key("conic_tth_num").MustInt(15),
			Steps:   plot.Key("conic_steps").MustInt(100),
			RefNum:  plot.Key("conic_ref_num").MustInt(250),
			Unit:    Unit(plot.Key("unit").MustInt(0)),
			Workers: plot.Key("workers").MustInt(1),
		},
		Pose: Pose{
			Energy:   geo.Key(TokenEnergy).MustFloat64(21),
			Distance: geo.Key(TokenDistance).MustFloat64(75),
			Rotation: geo.Key(TokenRotation).MustFloat64(25),
			Tilt:     geo.Key(TokenTilt).MustFloat64(0),
			YOffset:  geo.Key(TokenYOffset).MustFloat64(0),
			XOffset:  geo.Key(TokenXOffset).MustFloat64(0),
		},
		Limits: make(map[string]Limit, len(Tokens)),
		Detector: DetectorConfig{
			Type:     det.Key("type").MustString("EIGER2"),
			Size:     det.Key("size").MustString("4M"),
			Database: det.Key("database").MustString("conf/detectors.ini"),
			Scale:    det.Key("scale").MustFloat64(1),
		},
		Reference: ReferenceConfig{
			Name:    ref.Key("name").MustString("None"),
			Library: ref.Key("library").MustString("conf/calibrants.ini"),
		},
	}

	limits := file.Section("limits")
	for _, token := range Tokens {
		d := defaultLimits[token]
		cfg.Limits[token] = Limit{
			Min:  limits.Key(token + "_min").MustFloat64(d.Min),
			Max:  limits.Key(token + "_max").MustFloat64(d.Max),
			Step: limits.Key(token + "_stp").MustFloat64(d.Step),
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DefaultConfig returns the configuration of an empty ini file.
func DefaultConfig() Config {
	cfg, _ := LoadConfig(ini.Empty())
	return cfg
}

// Validate rejects configurations the engine cannot run with.
func (c Config) Validate() error {
	p := c.Plot
	switch {
	case p.TThMin <= 0 || p.TThMin >= p.TThMax:
		return fmt.Errorf("%w: conic_tth_min %g, conic_tth_max %g", ErrInvalidConfig, p.TThMin, p.TThMax)
	case p.TThNum < 1:
		return fmt.Errorf("%w: conic_tth_num %d", ErrInvalidConfig, p.TThNum)
	case p.Steps < 3:
		return fmt.Errorf("%w: conic_steps %d", ErrInvalidConfig, p.Steps)
	case p.RefNum < 0:
		return fmt.Errorf("%w: conic_ref_num %d", ErrInvalidConfig, p.RefNum)
	case c.Detector.Scale <= 0:
		return fmt.Errorf("%w: detector scale %g", ErrInvalidConfig, c.Detector.Scale)
	}
	if _, err := ParseUnit(int(p.Unit)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := c.Pose.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	for token, l := range c.Limits {
		if l.Min >= l.Max || l.Step < 0 {
			return fmt.Errorf("%w: limits of %s: min %g max %g step %g", ErrInvalidConfig, token, l.Min, l.Max, l.Step)
		}
	}
	return nil
}
