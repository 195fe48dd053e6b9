package reference

import (
	"errors"
	"testing"
)

func TestResolve(t *testing.T) {
	lib, err := LoadLibrary([]byte("[Si]\nd = 3.1357, 1.92022, 1.63757\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	ref, err := lib.Resolve("Si")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(ref.DSpacings) != 3 || ref.DSpacings[0] != 3.1357 {
		t.Fatalf("unexpected d-spacings %v", ref.DSpacings)
	}
	if _, ok := ref.Payload(0); ok {
		t.Fatalf("calibrant entries carry no payload")
	}
	for _, name := range []string{"", "None", "none"} {
		ref, err := lib.Resolve(name)
		if err != nil || !ref.IsNone() {
			t.Fatalf("Resolve(%q) = %+v, %v", name, ref, err)
		}
	}
	if _, err := lib.Resolve("Unobtainium"); !errors.Is(err, ErrUnknownCalibrant) {
		t.Fatalf("unknown calibrant: %v", err)
	}
}

func TestShippedLibrary(t *testing.T) {
	lib, err := LoadLibrary("../conf/calibrants.ini")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	names := lib.Names()
	if len(names) != 3 {
		t.Fatalf("names %v", names)
	}
	for _, name := range names {
		ref, err := lib.Resolve(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		for i := 1; i < len(ref.DSpacings); i++ {
			if ref.DSpacings[i] >= ref.DSpacings[i-1] {
				t.Fatalf("%s: d-spacings not descending at %d", name, i)
			}
		}
	}
}

func TestFromReflections(t *testing.T) {
	in := []Reflection{
		{D: 1.5, H: 2, K: 2, L: 0, Intensity: 10},
		{D: 3.1, H: 1, K: 1, L: 1, Intensity: 100},
		{D: 1.9, H: 2, K: 0, L: 0, Intensity: 10},
	}
	ref := FromReflections("structure", in)
	want := []float64{3.1, 1.9, 1.5}
	for i, d := range want {
		if ref.DSpacings[i] != d {
			t.Fatalf("entry %d: d=%g want %g", i, ref.DSpacings[i], d)
		}
	}
	p, ok := ref.Payload(0)
	if !ok || p.Label() != "(1 1 1)" {
		t.Fatalf("payload %+v %t", p, ok)
	}
	if in[0].D != 1.5 {
		t.Fatalf("input reordered")
	}
}
