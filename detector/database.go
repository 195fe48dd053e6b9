package detector

import (
	"fmt"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"
)

const sizeSuffix = ".size"

// Database is the detector library. Each detector type is an ini section
// holding the module geometry, with a child section "<type>.size" mapping
// size keys to "columns,rows".
//
//	[EIGER2]
//	hms = 77.1
//	vms = 38.4
//	pxs = 0.075
//	hgp = 38
//	vgp = 12
//	cbh = 0
//
//	[EIGER2.size]
//	4M = 2,4
type Database struct {
	file *ini.File
}

// LoadDatabase reads a detector database. source is a file name or raw bytes.
func LoadDatabase(source interface{}) (*Database, error) {
	file, err := ini.Load(source)
	if err != nil {
		return nil, fmt.Errorf("detector: load database: %w", err)
	}
	return &Database{file: file}, nil
}

// Types lists the detector types, sorted.
func (d *Database) Types() []string {
	var types []string
	for _, name := range d.file.SectionStrings() {
		if name == ini.DefaultSection || strings.HasSuffix(name, sizeSuffix) {
			continue
		}
		types = append(types, name)
	}
	sort.Strings(types)
	return types
}

// Sizes lists the size keys known for a detector type, sorted.
func (d *Database) Sizes(name string) ([]string, error) {
	sec, err := d.file.GetSection(name + sizeSuffix)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDetector, name)
	}
	sizes := sec.KeyStrings()
	sort.Strings(sizes)
	return sizes, nil
}

// Lookup returns the validated specification of a detector type in a given size.
func (d *Database) Lookup(name, size string) (Spec, error) {
	sec, err := d.file.GetSection(name)
	if err != nil {
		return Spec{}, fmt.Errorf("%w: %s", ErrUnknownDetector, name)
	}
	sizes, err := d.file.GetSection(name + sizeSuffix)
	if err != nil || !sizes.HasKey(size) {
		return Spec{}, fmt.Errorf("%w: %s %s", ErrUnknownSize, name, size)
	}
	grid := sizes.Key(size).Ints(",")
	if len(grid) != 2 {
		return Spec{}, fmt.Errorf("%w: %s %s: grid %q", ErrInvalidSpec, name, size, sizes.Key(size).String())
	}

	spec := Spec{
		Name:         name,
		Size:         size,
		ModuleWidth:  sec.Key("hms").MustFloat64(0),
		ModuleHeight: sec.Key("vms").MustFloat64(0),
		PixelSize:    sec.Key("pxs").MustFloat64(0),
		HGap:         sec.Key("hgp").MustFloat64(0),
		VGap:         sec.Key("vgp").MustFloat64(0),
		Bore:         sec.Key("cbh").MustFloat64(0),
		Columns:      grid[0],
		Rows:         grid[1],
	}
	if err := spec.Validate(); err != nil {
		return Spec{}, err
	}

	log.WithFields(log.Fields{
		"detector": name,
		"size":     size,
		"hmn":      spec.Columns,
		"vmn":      spec.Rows,
		"cbh":      spec.Bore,
	}).Debug("detector spec loaded")
	return spec, nil
}
