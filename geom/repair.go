// Package geom - repair of invalid rings.
//
// Brush exports routinely contain self-intersecting negative strokes.
// Rejecting them outright would lose hole information, so they are
// nudged to the nearest simple geometry before containment testing.
//
// Repair strategy, in order:
//  1. Drop consecutive duplicate vertices (and a duplicated closing
//     vertex, which some exporters emit).
//  2. If the cleaned ring is already simple, return it as-is.
//  3. Otherwise replace the ring by the convex hull of its vertices:
//     the smallest simple ring covering every stroke sample. This is
//     a deliberate over-approximation; it keeps every vertex of the
//     stroke inside the repaired boundary so containment testing can
//     still match it against its positive polygon.
package geom

import "sort"

// Repair returns a simple (non-self-intersecting) version of the
// ring. Rings that cannot be made valid (fewer than three distinct
// vertices after cleaning) are returned cleaned but unrepaired; the
// caller decides whether to skip them.
func (r Ring) Repair() Ring {
	cleaned := r.dedup()
	if !cleaned.IsValid() {
		return cleaned
	}
	if !cleaned.SelfIntersects() {
		return cleaned
	}

	return convexHull(cleaned)
}

// dedup removes consecutive duplicate vertices and a repeated
// closing vertex.
func (r Ring) dedup() Ring {
	if len(r) == 0 {
		return r
	}
	out := make(Ring, 0, len(r))
	for i, pt := range r {
		if i > 0 && pt == out[len(out)-1] {
			continue
		}
		out = append(out, pt)
	}
	// Open the ring if the exporter closed it explicitly.
	if len(out) > 1 && out[0] == out[len(out)-1] {
		out = out[:len(out)-1]
	}

	return out
}

// convexHull computes the convex hull of the ring's vertices using
// Andrew's monotone chain, returned in counter-clockwise order.
//
// Complexity: O(n log n) time, O(n) space.
func convexHull(r Ring) Ring {
	pts := make([]Point, len(r))
	copy(pts, r)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}

		return pts[i].Y < pts[j].Y
	})

	n := len(pts)
	if n < 3 {
		return Ring(pts)
	}

	hull := make([]Point, 0, 2*n)
	// Lower chain.
	for _, pt := range pts {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], pt) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, pt)
	}
	// Upper chain.
	lower := len(hull) + 1
	for i := n - 2; i >= 0; i-- {
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], pts[i]) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, pts[i])
	}

	// Last point repeats the first; keep the ring open.
	return Ring(hull[:len(hull)-1])
}
