package types

import (
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	type spec struct {
		in       Vec3
		expected Vec3
	}
	specList := []spec{
		{Vec3{3, 0, 0}, Vec3{1, 0, 0}},
		{Vec3{0, -2, 0}, Vec3{0, -1, 0}},
		{Vec3{1, 1, 1}, Vec3{0.57735026, 0.57735026, 0.57735026}},
	}

	for idx, s := range specList {
		out := s.in.Normalize()
		for c := 0; c < 3; c++ {
			if math.Abs(float64(out[c]-s.expected[c])) > 1e-6 {
				t.Fatalf("[spec %d] expected normalized component %d to be %f; got %f", idx, c, s.expected[c], out[c])
			}
		}
		if l := out.Len(); math.Abs(float64(l)-1.0) > 1e-6 {
			t.Fatalf("[spec %d] expected unit length; got %f", idx, l)
		}
	}
}

func TestNormalizeZeroVector(t *testing.T) {
	for idx, in := range []Vec3{{}, {1e-8, 0, 0}, {0, -1e-9, 1e-9}} {
		out := in.Normalize()
		if out != (Vec3{}) {
			t.Fatalf("[spec %d] expected zero vector for near-zero input; got %v", idx, out)
		}
	}
}

func TestMinMaxVec3(t *testing.T) {
	v1 := Vec3{1, 5, -3}
	v2 := Vec3{2, 4, -4}

	if out := MinVec3(v1, v2); out != (Vec3{1, 4, -4}) {
		t.Fatalf("expected component-wise min to be (1, 4, -4); got %v", out)
	}
	if out := MaxVec3(v1, v2); out != (Vec3{2, 5, -3}) {
		t.Fatalf("expected component-wise max to be (2, 5, -3); got %v", out)
	}
}

func TestCross(t *testing.T) {
	out := XYZ(1, 0, 0).Cross(XYZ(0, 1, 0))
	if out != (Vec3{0, 0, 1}) {
		t.Fatalf("expected x cross y to be +z; got %v", out)
	}
}

func TestVec3Vec4RoundTrip(t *testing.T) {
	v := XYZ(1, 2, 3)
	v4 := v.Vec4(7)
	if v4 != (Vec4{1, 2, 3, 7}) {
		t.Fatalf("expected Vec4 expansion to be (1, 2, 3, 7); got %v", v4)
	}
	if out := v4.Vec3(); out != v {
		t.Fatalf("expected Vec3 reduction to be %v; got %v", v, out)
	}
}
