package board

import "math"

// Add returns v + w.
func (v Vector3) Add(w Vector3) Vector3 {
	return Vector3{X: v.X + w.X, Y: v.Y + w.Y, Z: v.Z + w.Z}
}

// Sub returns v - w.
func (v Vector3) Sub(w Vector3) Vector3 {
	return Vector3{X: v.X - w.X, Y: v.Y - w.Y, Z: v.Z - w.Z}
}

// Scale returns v * s.
func (v Vector3) Scale(s float64) Vector3 {
	return Vector3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Length returns the euclidean norm of v.
func (v Vector3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalized returns v scaled to unit length, or the zero vector unchanged.
func (v Vector3) Normalized() Vector3 {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.Scale(1 / l)
}

// DistanceTo returns the euclidean distance between v and w.
func (v Vector3) DistanceTo(w Vector3) float64 {
	return v.Sub(w).Length()
}

// ClosestPoint returns the point inside b nearest to p.
func (b Box) ClosestPoint(p Vector3) Vector3 {
	return Vector3{
		X: clamp(p.X, b.Min.X, b.Max.X),
		Y: clamp(p.Y, b.Min.Y, b.Max.Y),
		Z: clamp(p.Z, b.Min.Z, b.Max.Z),
	}
}

// BoxAround builds an axis-aligned box centered on p with the given
// half-extent on every axis.
func BoxAround(p Vector3, half float64) Box {
	return Box{
		Min: Vector3{X: p.X - half, Y: p.Y - half, Z: p.Z - half},
		Max: Vector3{X: p.X + half, Y: p.Y + half, Z: p.Z + half},
	}
}

// RayIntersect reports whether a ray from origin along dir hits b, and the
// distance to the entry point when it does. Slab method; dir need not be
// unit length but distances scale with it.
func (b Box) RayIntersect(origin, dir Vector3) (float64, bool) {
	tMin := math.Inf(-1)
	tMax := math.Inf(1)

	for _, axis := range [3][3]float64{
		{origin.X, dir.X, 0},
		{origin.Y, dir.Y, 1},
		{origin.Z, dir.Z, 2},
	} {
		o, d := axis[0], axis[1]
		lo, hi := b.axisBounds(int(axis[2]))
		if d == 0 {
			if o < lo || o > hi {
				return 0, false
			}
			continue
		}
		t1 := (lo - o) / d
		t2 := (hi - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return 0, false
		}
	}

	if tMax < 0 {
		return 0, false
	}
	if tMin < 0 {
		// Origin is inside the box.
		return 0, true
	}
	return tMin, true
}

func (b Box) axisBounds(axis int) (float64, float64) {
	switch axis {
	case 0:
		return b.Min.X, b.Max.X
	case 1:
		return b.Min.Y, b.Max.Y
	default:
		return b.Min.Z, b.Max.Z
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
