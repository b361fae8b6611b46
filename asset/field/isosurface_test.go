package field

import (
	"math"
	"testing"

	"github.com/achilleasa/isoray/types"
)

func TestPolygonizeSingleBall(t *testing.T) {
	f := Field{Balls: []Ball{{Center: types.Vec3{0, 0, 0}, Radius: 1}}}
	mesh := Polygonize(f, 24, 1.0)
	mesh.SetUniformColor(types.Vec3{1, 1, 1})

	if err := mesh.Validate(); err != nil {
		t.Fatalf("expected valid mesh; got %v", err)
	}
	if len(mesh.Triangles) == 0 {
		t.Fatal("expected surface triangles for a ball crossing the threshold")
	}

	// With threshold 1.0 the isosurface of a unit ball sits at distance
	// ~1 from its center. Smoothing reprojects vertices onto the surface
	// so they should stay close to that shell.
	for i, v := range mesh.Vertices {
		dist := float64(v.Len())
		if math.Abs(dist-1.0) > 0.1 {
			t.Fatalf("expected vertex %d to lie near the unit shell; got distance %f", i, dist)
		}
	}
}

func TestPolygonizeClosedSurface(t *testing.T) {
	f := Field{Balls: []Ball{{Center: types.Vec3{0, 0, 0}, Radius: 1}}}
	mesh := Polygonize(f, 24, 1.0)

	// A ball fully inside the grid produces a watertight surface: every
	// undirected edge is shared by exactly two triangles.
	edgeUse := make(map[[2]uint32]int)
	for _, tri := range mesh.Triangles {
		for e := 0; e < 3; e++ {
			a, b := tri[e], tri[(e+1)%3]
			if a > b {
				a, b = b, a
			}
			edgeUse[[2]uint32{a, b}]++
		}
	}
	for edge, count := range edgeUse {
		if count != 2 {
			t.Fatalf("expected edge %v to be shared by 2 triangles; got %d", edge, count)
		}
	}
}

func TestPolygonizeNormalsPointOutward(t *testing.T) {
	center := types.Vec3{0.5, -0.25, 1}
	f := Field{Balls: []Ball{{Center: center, Radius: 1}}}
	mesh := Polygonize(f, 24, 1.0)

	if len(mesh.VertexNormals) != len(mesh.Vertices) {
		t.Fatalf("expected %d vertex normals; got %d", len(mesh.Vertices), len(mesh.VertexNormals))
	}

	for i, v := range mesh.Vertices {
		n := mesh.VertexNormals[i]
		if math.Abs(float64(n.Len())-1.0) > 1e-3 {
			t.Fatalf("expected unit normal at vertex %d; got length %f", i, n.Len())
		}
		if n.Dot(v.Sub(center)) <= 0 {
			t.Fatalf("expected normal at vertex %d to point away from the ball center", i)
		}
	}
}

func TestPolygonizeVertexSharing(t *testing.T) {
	f := Field{Balls: []Ball{{Center: types.Vec3{0, 0, 0}, Radius: 1}}}
	mesh := Polygonize(f, 16, 1.0)

	// Adjacent cells must reuse the vertices on their shared edges
	// instead of duplicating them.
	if len(mesh.Vertices) >= 3*len(mesh.Triangles) {
		t.Fatalf("expected shared vertices; got %d vertices for %d triangles", len(mesh.Vertices), len(mesh.Triangles))
	}
}

func TestPolygonizeEmptyField(t *testing.T) {
	mesh := Polygonize(Field{}, 8, 1.0)

	if err := mesh.Validate(); err != nil {
		t.Fatalf("expected degenerate mesh to validate; got %v", err)
	}
	if len(mesh.Triangles) != 0 {
		t.Fatalf("expected no triangles for an empty field; got %d", len(mesh.Triangles))
	}
}

func TestPolygonizeNoCrossing(t *testing.T) {
	// A tiny ball whose field never reaches the threshold anywhere on
	// the sampling grid.
	f := Field{Balls: []Ball{{Center: types.Vec3{0, 0, 0}, Radius: 0.001}}}
	mesh := Polygonize(f, 4, 1e6)

	if err := mesh.Validate(); err != nil {
		t.Fatalf("expected degenerate mesh to validate; got %v", err)
	}
	if len(mesh.Triangles) != 0 {
		t.Fatalf("expected no triangles without a threshold crossing; got %d", len(mesh.Triangles))
	}
}

func TestFieldGradientMatchesNumeric(t *testing.T) {
	f := Field{Balls: []Ball{
		{Center: types.Vec3{0, 0, 0}, Radius: 1},
		{Center: types.Vec3{1.5, 0, 0}, Radius: 0.75},
	}}

	p := types.Vec3{0.7, 0.3, -0.2}
	grad := f.Gradient(p)

	const h = 1e-3
	for axis := 0; axis < 3; axis++ {
		lo, hi := p, p
		lo[axis] -= h
		hi[axis] += h
		numeric := (f.Eval(hi) - f.Eval(lo)) / (2 * h)

		if math.Abs(float64(grad[axis]-numeric)) > 1e-2 {
			t.Fatalf("expected gradient axis %d near %f; got %f", axis, numeric, grad[axis])
		}
	}
}

func TestFieldBoundsCubified(t *testing.T) {
	f := Field{Balls: []Ball{{Center: types.Vec3{2, 0, 0}, Radius: 1}}}
	box := f.Bounds()

	side := box.Max.Sub(box.Min)
	if math.Abs(float64(side[0]-side[1])) > 1e-5 || math.Abs(float64(side[1]-side[2])) > 1e-5 {
		t.Fatalf("expected cubified bounds; got side lengths %v", side)
	}
	if !box.Contains(types.Vec3{3, 0, 0}, 1e-5) || !box.Contains(types.Vec3{1, 0, 0}, 1e-5) {
		t.Fatal("expected bounds to cover the ball extents")
	}
}
