// Package geom - deterministic predicates over rings and polygons.
//
// All predicates are O(n) or O(n·m) scans with no allocations beyond
// the result; they are the building blocks of the brush hole-matching
// algorithm in package anns.
package geom

import "math"

// eps is the structural tolerance for collinearity and on-edge tests.
const eps = 1e-9

// IsValid reports whether the ring has at least three distinct
// vertices, the minimum for a non-degenerate boundary.
func (r Ring) IsValid() bool {
	if len(r) < 3 {
		return false
	}
	distinct := 0
	seen := make(map[Point]struct{}, len(r))
	for _, pt := range r {
		if _, ok := seen[pt]; !ok {
			seen[pt] = struct{}{}
			distinct++
			if distinct >= 3 {
				return true
			}
		}
	}

	return false
}

// SignedArea returns the shoelace area of the ring: positive for
// counter-clockwise orientation, negative for clockwise.
func (r Ring) SignedArea() float64 {
	n := len(r)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += r[i].X*r[j].Y - r[j].X*r[i].Y
	}

	return sum / 2
}

// Area returns the absolute enclosed area of the ring.
func (r Ring) Area() float64 { return math.Abs(r.SignedArea()) }

// Area returns the exterior area minus the area of all holes,
// clamped at zero.
func (p Polygon) Area() float64 {
	a := p.Exterior.Area()
	for _, h := range p.Holes {
		a -= h.Area()
	}
	if a < 0 {
		return 0
	}

	return a
}

// cross returns the z-component of (b-a) x (c-a).
func cross(a, b, c Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// onSegment reports whether pt lies on the closed segment a-b,
// assuming a, b, pt are collinear within eps.
func onSegment(a, b, pt Point) bool {
	return pt.X >= math.Min(a.X, b.X)-eps && pt.X <= math.Max(a.X, b.X)+eps &&
		pt.Y >= math.Min(a.Y, b.Y)-eps && pt.Y <= math.Max(a.Y, b.Y)+eps
}

// segmentsCross reports whether segments a1-a2 and b1-b2 properly
// intersect: they cross at a single interior point of both. Shared
// endpoints and collinear touching do not count as a crossing.
func segmentsCross(a1, a2, b1, b2 Point) bool {
	d1 := cross(b1, b2, a1)
	d2 := cross(b1, b2, a2)
	d3 := cross(a1, a2, b1)
	d4 := cross(a1, a2, b2)

	return ((d1 > eps && d2 < -eps) || (d1 < -eps && d2 > eps)) &&
		((d3 > eps && d4 < -eps) || (d3 < -eps && d4 > eps))
}

// ContainsPoint reports whether pt lies inside the ring or on its
// boundary, using an even-odd ray cast with an explicit on-edge test.
func (r Ring) ContainsPoint(pt Point) bool {
	n := len(r)
	if n < 3 {
		return false
	}

	// Boundary counts as inside.
	for i := 0; i < n; i++ {
		a, b := r[i], r[(i+1)%n]
		if math.Abs(cross(a, b, pt)) <= eps && onSegment(a, b, pt) {
			return true
		}
	}

	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		ai, aj := r[i], r[j]
		if (ai.Y > pt.Y) != (aj.Y > pt.Y) {
			xCross := (aj.X-ai.X)*(pt.Y-ai.Y)/(aj.Y-ai.Y) + ai.X
			if pt.X < xCross {
				inside = !inside
			}
		}
	}

	return inside
}

// containsStrict reports whether pt lies strictly inside the ring,
// rejecting boundary points.
func (r Ring) containsStrict(pt Point) bool {
	n := len(r)
	if n < 3 {
		return false
	}
	for i := 0; i < n; i++ {
		a, b := r[i], r[(i+1)%n]
		if math.Abs(cross(a, b, pt)) <= eps && onSegment(a, b, pt) {
			return false
		}
	}

	return r.ContainsPoint(pt)
}

// Within reports whether ring r lies within the region bounded by
// outer: every vertex of r is inside or on outer, at least one vertex
// is strictly inside, and no edge of r properly crosses an edge of
// outer. Boundary contact is allowed, matching the usual geometric
// "within" predicate.
func (r Ring) Within(outer Ring) bool {
	if len(r) < 3 || len(outer) < 3 {
		return false
	}

	interior := false
	for _, pt := range r {
		if !outer.ContainsPoint(pt) {
			return false
		}
		if !interior && outer.containsStrict(pt) {
			interior = true
		}
	}
	if !interior {
		return false
	}

	n, m := len(r), len(outer)
	for i := 0; i < n; i++ {
		a1, a2 := r[i], r[(i+1)%n]
		for j := 0; j < m; j++ {
			if segmentsCross(a1, a2, outer[j], outer[(j+1)%m]) {
				return false
			}
		}
	}

	return true
}

// SelfIntersects reports whether any two non-adjacent edges of the
// ring properly cross. Adjacent edges sharing a vertex are skipped.
func (r Ring) SelfIntersects() bool {
	n := len(r)
	if n < 4 {
		return false
	}
	for i := 0; i < n; i++ {
		a1, a2 := r[i], r[(i+1)%n]
		for j := i + 1; j < n; j++ {
			// Skip the edge itself and the two adjacent edges.
			if j == i || (j+1)%n == i || (i+1)%n == j {
				continue
			}
			if segmentsCross(a1, a2, r[j], r[(j+1)%n]) {
				return true
			}
		}
	}

	return false
}
