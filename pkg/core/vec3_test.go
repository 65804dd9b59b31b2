package core

import (
	"math"
	"testing"
)

func TestSafeNormalize(t *testing.T) {
	tests := []struct {
		name       string
		input      Vec3
		expectOK   bool
		expectUnit Vec3
		expectLen  float32
	}{
		{"unit x", NewVec3(1, 0, 0), true, NewVec3(1, 0, 0), 1},
		{"scaled", NewVec3(0, 3, 4), true, NewVec3(0, 0.6, 0.8), 5},
		{"zero", NewVec3(0, 0, 0), false, Vec3{}, 0},
		{"underflow", NewVec3(1e-20, 0, 0), false, Vec3{}, 0},
		{"nan", NewVec3(float32(math.NaN()), 0, 0), false, Vec3{}, 0},
		{"inf", NewVec3(float32(math.Inf(1)), 0, 0), false, Vec3{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unit, length, ok := SafeNormalize(tt.input)
			if ok != tt.expectOK {
				t.Fatalf("Expected ok=%t, got %t", tt.expectOK, ok)
			}
			if !ok {
				return
			}
			if !unit.ApproxEqualThreshold(tt.expectUnit, 1e-6) {
				t.Errorf("Expected unit %v, got %v", tt.expectUnit, unit)
			}
			if math.Abs(float64(length-tt.expectLen)) > 1e-5 {
				t.Errorf("Expected length %f, got %f", tt.expectLen, length)
			}
		})
	}
}

func TestReflect(t *testing.T) {
	d := NewVec3(1, -1, 0)
	n := NewVec3(0, 1, 0)
	r := Reflect(d, n)
	if !r.ApproxEqual(NewVec3(1, 1, 0)) {
		t.Errorf("Expected (1,1,0), got %v", r)
	}
}

func TestOrthonormalBasis(t *testing.T) {
	for _, w := range []Vec3{NewVec3(0, 0, 1), NewVec3(1, 0, 0), NewVec3(0.6, 0.8, 0)} {
		u, v := OrthonormalBasis(w)
		if math.Abs(float64(u.Dot(w))) > 1e-6 || math.Abs(float64(v.Dot(w))) > 1e-6 || math.Abs(float64(u.Dot(v))) > 1e-6 {
			t.Errorf("Basis for %v is not orthogonal: u=%v v=%v", w, u, v)
		}
		if math.Abs(float64(u.Len()-1)) > 1e-6 || math.Abs(float64(v.Len()-1)) > 1e-6 {
			t.Errorf("Basis for %v is not unit length: u=%v v=%v", w, u, v)
		}
	}
}

func TestSRGBRoundTrip(t *testing.T) {
	for _, v := range []float32{0, 0.001, 0.02, 0.2, 0.5, 0.9, 1} {
		got := LinearFromSRGB(SRGBFromLinear(v))
		if math.Abs(float64(got-v)) > 1e-5 {
			t.Errorf("Round trip of %f gave %f", v, got)
		}
	}
}

func TestRGBAOver(t *testing.T) {
	front := Opaque(NewRGB(1, 0, 0))
	back := RGBA{RGB: NewRGB(0, 0, 1), A: 0}

	half := front.Over(back, 0.5)
	if half.R != 0.5 || half.B != 0.5 || half.A != 0.5 {
		t.Errorf("Expected half blend, got %+v", half)
	}
	if full := front.Over(back, 1); full != front {
		t.Errorf("Expected full coverage to return front, got %+v", full)
	}
	if none := front.Over(back, 0); none != back {
		t.Errorf("Expected zero coverage to return back, got %+v", none)
	}
}

func TestHitRecordAccepts(t *testing.T) {
	ray := NewRay(NewVec3(0, 0, 0), NewVec3(0, 0, -1))
	ray.TNear = 1
	ray.TFar = 10
	hit := NewHitRecord(ray)

	tests := []struct {
		t      float32
		expect bool
	}{
		{0.5, false},
		{1, false}, // strictly greater than TNear
		{5, true},
		{10, false}, // strictly less than TFar
		{11, false},
	}
	for _, tt := range tests {
		if got := hit.Accepts(ray, tt.t); got != tt.expect {
			t.Errorf("Accepts(%f) = %t, expected %t", tt.t, got, tt.expect)
		}
	}
	if hit.Hit() {
		t.Error("Fresh hit record should not report a hit")
	}
}

func TestRaySecondarySkipsSource(t *testing.T) {
	ray := NewRay(NewVec3(0, 0, 5), NewVec3(0, 0, -2))
	ray.Footprint = 0.1
	hit := HitRecord{T: 2, GeomID: 3, PrimID: 7}

	next := ray.Secondary(hit, NewVec3(0, 1, 0), 0.5)
	if !next.Origin.ApproxEqual(NewVec3(0, 0, 1)) {
		t.Errorf("Expected origin at hit point (0,0,1), got %v", next.Origin)
	}
	if next.Skip != (PrimRef{Geom: 3, Prim: 7}) {
		t.Errorf("Expected skip of source primitive, got %+v", next.Skip)
	}
	if next.Depth != 1 || next.Weight != 0.5 {
		t.Errorf("Expected depth 1 weight 0.5, got depth %d weight %f", next.Depth, next.Weight)
	}

	cont := ray.Continuation(hit)
	if cont.TNear != 2 || cont.Origin != ray.Origin || cont.Skip != hit.Ref() {
		t.Errorf("Unexpected continuation ray %+v", cont)
	}
}
