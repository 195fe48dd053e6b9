package geometry

import (
	"math"
	"testing"
)

func TestRect(t *testing.T) {
	r := NewRect(-10, -5, 20, 10)
	if c := r.Center(); c != Pt(0, 0) {
		t.Fatalf("center %+v", c)
	}
	moved := r.Translate(20, 0)
	if moved.X != 10 || moved.Width != 20 {
		t.Fatalf("translate %+v", moved)
	}
}

func TestBoundingBox(t *testing.T) {
	if b := BoundingBox(nil); b != (Rect{}) {
		t.Fatalf("empty box %+v", b)
	}
	b := BoundingBox([]Rect{NewRect(-3, 1, 2, 2), NewRect(4, -6, 1, 1)})
	if b != NewRect(-3, -6, 8, 9) {
		t.Fatalf("box %+v", b)
	}
}

func TestExtent(t *testing.T) {
	e := Extent{HalfWidth: 3, HalfHeight: 4}
	if e.Diagonal() != 5 {
		t.Fatalf("diagonal %g", e.Diagonal())
	}
	if !e.Contains(Pt(-3, 4)) || e.Contains(Pt(0, -4.5)) {
		t.Fatal("contains")
	}
	grown := e.Inflate(0.5)
	if math.Abs(grown.HalfWidth-4.5) > 1e-12 || math.Abs(grown.HalfHeight-6) > 1e-12 {
		t.Fatalf("inflate %+v", grown)
	}
	if d := Pt(1, 1).Distance(Pt(4, 5)); d != 5 {
		t.Fatalf("distance %g", d)
	}
}
