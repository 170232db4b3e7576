package board

import (
	"math"
	"testing"
)

func TestClosestPoint(t *testing.T) {
	box := Box{Min: Vector3{X: -1, Y: -1, Z: -1}, Max: Vector3{X: 1, Y: 1, Z: 1}}

	cases := []struct {
		name  string
		point Vector3
		want  Vector3
	}{
		{"outside on x", Vector3{X: 5}, Vector3{X: 1}},
		{"outside diagonal", Vector3{X: 3, Y: -4, Z: 2}, Vector3{X: 1, Y: -1, Z: 1}},
		{"inside", Vector3{X: 0.25, Y: 0.5, Z: -0.5}, Vector3{X: 0.25, Y: 0.5, Z: -0.5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := box.ClosestPoint(tc.point); got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestRayIntersect(t *testing.T) {
	box := Box{Min: Vector3{X: -1, Y: 0, Z: -3}, Max: Vector3{X: 1, Y: 2, Z: -2}}

	t.Run("straight ahead", func(t *testing.T) {
		dist, hit := box.RayIntersect(Vector3{}, Vector3{Z: -1})
		if !hit {
			t.Fatal("expected a hit")
		}
		if math.Abs(dist-2) > 1e-9 {
			t.Fatalf("distance %v, want 2", dist)
		}
	})

	t.Run("facing away", func(t *testing.T) {
		if _, hit := box.RayIntersect(Vector3{}, Vector3{Z: 1}); hit {
			t.Fatal("box behind the ray should not hit")
		}
	})

	t.Run("parallel miss", func(t *testing.T) {
		if _, hit := box.RayIntersect(Vector3{X: 5}, Vector3{Z: -1}); hit {
			t.Fatal("ray beside the box should not hit")
		}
	})

	t.Run("origin inside", func(t *testing.T) {
		dist, hit := box.RayIntersect(Vector3{Y: 1, Z: -2.5}, Vector3{Z: -1})
		if !hit || dist != 0 {
			t.Fatalf("inside origin should hit at distance 0, got %v %v", dist, hit)
		}
	})
}

func TestNormalized(t *testing.T) {
	v := Vector3{X: 3, Y: 4}.Normalized()
	if math.Abs(v.Length()-1) > 1e-9 {
		t.Fatalf("length %v, want 1", v.Length())
	}
	if (Vector3{}).Normalized() != (Vector3{}) {
		t.Fatal("zero vector should normalize to itself")
	}
}

func TestBoxAround(t *testing.T) {
	box := BoxAround(Vector3{X: 2, Y: 1, Z: -3}, 0.5)
	want := Box{
		Min: Vector3{X: 1.5, Y: 0.5, Z: -3.5},
		Max: Vector3{X: 2.5, Y: 1.5, Z: -2.5},
	}
	if box != want {
		t.Fatalf("got %+v, want %+v", box, want)
	}
}

func TestColorForWraps(t *testing.T) {
	if ColorFor(0) != CatalogColors[0] {
		t.Fatal("kind 0 should map to the first color")
	}
	if ColorFor(len(CatalogColors)) != CatalogColors[0] {
		t.Fatal("out-of-range kind should wrap")
	}
	if ColorFor(-3) != CatalogColors[0] {
		t.Fatal("negative kind should clamp")
	}
}
