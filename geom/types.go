// Package geom - core value types and sentinel errors.
package geom

import (
	"errors"
	"math"
)

// Sentinel errors for geometry operations.
var (
	// ErrDegenerateRing indicates a ring with fewer than three distinct vertices.
	ErrDegenerateRing = errors.New("geom: ring must have at least three distinct vertices")
	// ErrEmptyGeometry indicates an operation on a geometry with no coordinates.
	ErrEmptyGeometry = errors.New("geom: empty geometry")
)

// Point is a single planar coordinate.
type Point struct {
	X, Y float64
}

// IsFinite reports whether both coordinates are finite numbers
// (neither NaN nor ±Inf).
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Ring is an open sequence of vertices describing a closed boundary.
// The closing edge from the last vertex back to the first is implied;
// the first vertex is never repeated at the end.
type Ring []Point

// Polygon is a single polygon: one exterior ring and zero or more
// interior rings (holes). A Polygon with a nil Exterior is the
// explicit "empty/invalid" polygon used as a decoder fallback.
type Polygon struct {
	Exterior Ring
	Holes    []Ring
}

// IsEmpty reports whether the polygon carries no exterior boundary.
func (p Polygon) IsEmpty() bool { return len(p.Exterior) == 0 }

// MultiPolygon is an ordered collection of polygons.
type MultiPolygon []Polygon

// IsEmpty reports whether the collection holds no non-empty polygon.
func (mp MultiPolygon) IsEmpty() bool {
	for _, p := range mp {
		if !p.IsEmpty() {
			return false
		}
	}

	return true
}

// Area returns the summed absolute area of all member polygons,
// each reduced by the area of its holes.
func (mp MultiPolygon) Area() float64 {
	var total float64
	for _, p := range mp {
		total += p.Area()
	}

	return total
}

// MultiPoint is an ordered set of coordinates. An empty MultiPoint is
// a valid "no detections" result, never an error.
type MultiPoint []Point

// Bounds is an axis-aligned bounding box (min corner, max corner).
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// Width returns MaxX-MinX.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns MaxY-MinY.
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// Center returns the midpoint of the box.
func (b Bounds) Center() Point {
	return Point{X: (b.MinX + b.MaxX) / 2, Y: (b.MinY + b.MaxY) / 2}
}

// extend grows the box to cover pt.
func (b *Bounds) extend(pt Point) {
	b.MinX = math.Min(b.MinX, pt.X)
	b.MinY = math.Min(b.MinY, pt.Y)
	b.MaxX = math.Max(b.MaxX, pt.X)
	b.MaxY = math.Max(b.MaxY, pt.Y)
}

// boundsOf computes the bounding box of a non-empty point sequence.
func boundsOf(pts []Point) (Bounds, error) {
	if len(pts) == 0 {
		return Bounds{}, ErrEmptyGeometry
	}
	b := Bounds{MinX: pts[0].X, MinY: pts[0].Y, MaxX: pts[0].X, MaxY: pts[0].Y}
	for _, pt := range pts[1:] {
		b.extend(pt)
	}

	return b, nil
}

// Bounds returns the bounding box of the ring.
func (r Ring) Bounds() (Bounds, error) { return boundsOf(r) }

// Bounds returns the bounding box of the point set.
func (mp MultiPoint) Bounds() (Bounds, error) { return boundsOf(mp) }

// Bounds returns the combined bounding box over all exterior rings.
func (mp MultiPolygon) Bounds() (Bounds, error) {
	var (
		out   Bounds
		found bool
	)
	for _, p := range mp {
		if p.IsEmpty() {
			continue
		}
		b, err := p.Exterior.Bounds()
		if err != nil {
			return Bounds{}, err
		}
		if !found {
			out, found = b, true
			continue
		}
		out.extend(Point{X: b.MinX, Y: b.MinY})
		out.extend(Point{X: b.MaxX, Y: b.MaxY})
	}
	if !found {
		return Bounds{}, ErrEmptyGeometry
	}

	return out, nil
}
