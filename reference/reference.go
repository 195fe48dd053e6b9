// Package reference holds the reference ring sets overlaid on the contours:
// named calibrant standards and reflection lists parsed from structure files.
package reference

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/ini.v1"
)

// None is the name of the empty reference.
const None = "None"

var ErrUnknownCalibrant = errors.New("unknown calibrant")

// Reflection is a single reflection of a parsed structure.
type Reflection struct {
	D         float64 `json:"d"`
	H         int     `json:"h"`
	K         int     `json:"k"`
	L         int     `json:"l"`
	Intensity float64 `json:"intensity"`
}

// Label returns the Miller index as "(h k l)".
func (r Reflection) Label() string {
	return fmt.Sprintf("(%d %d %d)", r.H, r.K, r.L)
}

// Reference is a list of d-spacings in descending relevance. Reflections is
// either empty or parallel to DSpacings.
type Reference struct {
	Name        string       `json:"name"`
	DSpacings   []float64    `json:"d_spacings"`
	Reflections []Reflection `json:"reflections,omitempty"`
}

// IsNone reports whether no reference is selected.
func (r Reference) IsNone() bool {
	return len(r.DSpacings) == 0
}

// Payload returns the reflection of entry i, if the reference carries one.
func (r Reference) Payload(i int) (Reflection, bool) {
	if i < 0 || i >= len(r.Reflections) {
		return Reflection{}, false
	}
	return r.Reflections[i], true
}

// FromReflections builds a reference from a parsed structure. Entries are
// ordered by descending intensity, ties by descending d-spacing.
func FromReflections(name string, reflections []Reflection) Reference {
	sorted := make([]Reflection, len(reflections))
	copy(sorted, reflections)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Intensity != sorted[j].Intensity {
			return sorted[i].Intensity > sorted[j].Intensity
		}
		return sorted[i].D > sorted[j].D
	})
	ref := Reference{Name: name, DSpacings: make([]float64, len(sorted)), Reflections: sorted}
	for i, r := range sorted {
		ref.DSpacings[i] = r.D
	}
	return ref
}

// Library is the calibrant library: one ini section per standard with its
// d-spacings in Å.
//
//	[LaB6]
//	d = 4.15689, 2.93937, 2.39998
type Library struct {
	file *ini.File
}

// LoadLibrary reads a calibrant library. source is a file name or raw bytes.
func LoadLibrary(source interface{}) (*Library, error) {
	file, err := ini.Load(source)
	if err != nil {
		return nil, fmt.Errorf("reference: load library: %w", err)
	}
	return &Library{file: file}, nil
}

// Names lists the known standards, sorted.
func (l *Library) Names() []string {
	var names []string
	for _, name := range l.file.SectionStrings() {
		if name == ini.DefaultSection {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the reference of a named standard. An empty name or None
// resolves to the empty reference.
func (l *Library) Resolve(name string) (Reference, error) {
	if name == "" || strings.EqualFold(name, None) {
		return Reference{Name: None}, nil
	}
	sec, err := l.file.GetSection(name)
	if err != nil {
		return Reference{}, fmt.Errorf("%w: %s", ErrUnknownCalibrant, name)
	}
	return Reference{Name: name, DSpacings: sec.Key("d").Float64s(",")}, nil
}
