// Package anns - brush reconstruction.
//
// A brush annotation arrives as two independently-submitted lists of
// freehand polygons: positive strokes (inclusion) and negative
// strokes (exclusion). The exporter records no pairing between them,
// so the hole topology has to be reconstructed geometrically.
//
// Algorithm (single pass, deterministic):
//  1. Index both lists by submission order. A stroke with fewer than
//     three points is invalid: it is warned about and withheld from
//     containment testing, but negatives stay in the accounting so
//     the unmatched report still names them.
//  2. Self-intersecting negative strokes are repaired to the nearest
//     simple ring (geom.Ring.Repair) before containment testing -
//     a negative is never rejected outright at this stage.
//  3. For each positive polygon in submission order, scan the
//     not-yet-used negatives in submission order; a negative that
//     lies within the positive becomes one of its holes and is
//     marked used. First eligible positive wins: a negative is never
//     reconsidered for a later positive. This preserves the
//     historical order-dependent behavior; it is not an optimal
//     assignment.
//  4. Negatives left unused after the pass produce one non-fatal
//     warning enumerating their indices, coordinates and areas.
//
// Complexity: O(P·N·V²) worst case for P positives, N negatives and
// V vertices per ring, dominated by the edge-crossing tests.
package anns

import (
	"fmt"
	"strings"

	"github.com/pathomics/annio/geom"
)

// ReconstructBrush assembles positive and negative strokes into a
// polygon collection with holes. The collection has one element per
// valid positive polygon; with zero positive polygons it is empty and
// every negative is reported unmatched.
func ReconstructBrush(positives, negatives []geom.Ring) (geom.MultiPolygon, []string) {
	var warns []string

	// Stage 1: validity screening by submission order.
	validPos := make([]geom.Ring, 0, len(positives))
	for i, p := range positives {
		if !p.IsValid() {
			warns = append(warns, fmt.Sprintf("invalid positive brush polygon %d: %d point(s)", i, len(p)))
			continue
		}
		validPos = append(validPos, p)
	}

	// Stage 2: repair negatives; invalid ones never match but stay counted.
	type negative struct {
		ring geom.Ring
		ok   bool
	}
	negs := make([]negative, len(negatives))
	for i, n := range negatives {
		if !n.IsValid() {
			warns = append(warns, fmt.Sprintf("invalid negative brush polygon %d: %d point(s)", i, len(n)))
			negs[i] = negative{ring: n}
			continue
		}
		negs[i] = negative{ring: n.Repair(), ok: true}
	}

	// Stage 3: first-eligible-wins hole assignment.
	used := make([]bool, len(negs))
	polygons := make(geom.MultiPolygon, 0, len(validPos))
	for _, p := range validPos {
		poly := geom.Polygon{Exterior: p}
		for idx, n := range negs {
			if used[idx] || !n.ok {
				continue
			}
			if n.ring.Within(p) {
				poly.Holes = append(poly.Holes, n.ring)
				used[idx] = true
			}
		}
		polygons = append(polygons, poly)
	}

	// Stage 4: account for every negative.
	matched := 0
	for _, u := range used {
		if u {
			matched++
		}
	}
	if matched != len(negs) {
		warns = append(warns, unmatchedReport(negatives, used, matched))
	}

	return polygons, warns
}

// unmatchedReport renders the diagnostic for negatives that found no
// containing positive: their indices, coordinates and areas.
func unmatchedReport(negatives []geom.Ring, used []bool, matched int) string {
	var idxs []int
	for i, u := range used {
		if !u {
			idxs = append(idxs, i)
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "not all negative polygons accounted for: %d / %d. indices: %v. polygons: [",
		matched, len(negatives), idxs)
	for i, idx := range idxs {
		if i > 0 {
			sb.WriteString("; ")
		}
		fmt.Fprintf(&sb, "%d=%v", idx, coordList(negatives[idx]))
	}
	sb.WriteString("]. areas: [")
	for i, idx := range idxs {
		if i > 0 {
			sb.WriteString("; ")
		}
		fmt.Fprintf(&sb, "%d=%g", idx, negatives[idx].Area())
	}
	sb.WriteString("]")

	return sb.String()
}

// coordList renders a ring's vertices as (x,y) pairs.
func coordList(r geom.Ring) string {
	parts := make([]string, len(r))
	for i, pt := range r {
		parts[i] = fmt.Sprintf("(%g,%g)", pt.X, pt.Y)
	}

	return "[" + strings.Join(parts, " ") + "]"
}
