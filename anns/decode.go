// Package anns - per-shape-type decoders.
//
// Each decoder is a pure function from a raw JSON shape object to a
// Shape variant. Decoders never abort on degenerate geometry: they
// emit the documented fallback value and a warning string, so one bad
// shape can never cost the row (contract table in the package docs).
// Structural JSON failures are the only error path.
package anns

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/pathomics/annio/geom"
)

// rawCoord is a vendor {x, y} pair. Coordinates are pointers because
// the exporter emits null for absent values (seen on ellipses).
type rawCoord struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

// point converts the pair, mapping absent coordinates to NaN so the
// finiteness checks downstream treat them as invalid.
func (c rawCoord) point() geom.Point {
	pt := geom.Point{X: math.NaN(), Y: math.NaN()}
	if c.X != nil {
		pt.X = *c.X
	}
	if c.Y != nil {
		pt.Y = *c.Y
	}

	return pt
}

// ring converts a vendor point list to an open ring.
func ring(coords []rawCoord) geom.Ring {
	r := make(geom.Ring, len(coords))
	for i, c := range coords {
		r[i] = c.point()
	}

	return r
}

// DecodeShape dispatches a segmentation element to the decoder
// registered for its type tag. Unknown tags return
// ErrUnknownShapeType; the caller decides whether to skip the row,
// but must account for it.
func DecodeShape(typ string, raw []byte) (Shape, []string, error) {
	dec, ok := decoders[typ]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownShapeType, typ)
	}

	return dec(raw)
}

// decoders maps the vendor's "type" tags to decoder functions.
// The comment fallback is not listed: it is a row-level concern,
// not a shape tag.
var decoders = map[string]func([]byte) (Shape, []string, error){
	"polygon": DecodePolygon,
	"rect":    DecodeRect,
	"ellipse": DecodeEllipse,
	"brush":   DecodeBrush,
	"points":  decodePointsObject,
}

// DecodePolygon decodes {"type":"polygon","points":[{x,y},...]}.
// Fewer than three points yields the explicit empty polygon and a
// warning, never an error.
func DecodePolygon(raw []byte) (Shape, []string, error) {
	var obj struct {
		Points []rawCoord `json:"points"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, nil, fmt.Errorf("%w: polygon: %v", ErrShapeDecode, err)
	}

	if len(obj.Points) < 3 {
		warn := fmt.Sprintf("invalid polygon: %d point(s), need at least 3", len(obj.Points))

		return PolygonShape{}, []string{warn}, nil
	}

	return PolygonShape{Polygon: geom.Polygon{Exterior: ring(obj.Points)}}, nil, nil
}

// DecodeRect decodes {"type":"rect","corner":{x,y},"size":{x,y}} into
// the axis-aligned CCW rectangle from corner to corner+size, modeled
// as a one-element polygon collection. Non-finite coordinates yield
// an empty collection and a warning.
func DecodeRect(raw []byte) (Shape, []string, error) {
	var obj struct {
		Corner rawCoord `json:"corner"`
		Size   rawCoord `json:"size"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, nil, fmt.Errorf("%w: rect: %v", ErrShapeDecode, err)
	}

	corner, size := obj.Corner.point(), obj.Size.point()
	shape := RectShape{Corner: corner, Size: size}
	if !corner.IsFinite() || !size.IsFinite() {
		warn := fmt.Sprintf("invalid rect: corner=(%v,%v) size=(%v,%v)",
			corner.X, corner.Y, size.X, size.Y)

		return shape, []string{warn}, nil
	}

	x0, x1 := corner.X, corner.X+size.X
	y0, y1 := corner.Y, corner.Y+size.Y
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	shape.Polygons = geom.MultiPolygon{{
		Exterior: geom.Ring{
			{X: x0, Y: y0},
			{X: x1, Y: y0},
			{X: x1, Y: y1},
			{X: x0, Y: y1},
		},
	}}

	return shape, nil, nil
}

// DecodeEllipse decodes {"type":"ellipse","center":{x,y},"size":{x,y}}.
// An absent center or size coordinate substitutes the sentinel
// (-1,-1) for both fields with a warning - an ellipse is never
// partially populated.
func DecodeEllipse(raw []byte) (Shape, []string, error) {
	var obj struct {
		Center rawCoord `json:"center"`
		Size   rawCoord `json:"size"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, nil, fmt.Errorf("%w: ellipse: %v", ErrShapeDecode, err)
	}

	if obj.Center.X == nil || obj.Center.Y == nil || obj.Size.X == nil || obj.Size.Y == nil {
		warn := "invalid ellipse: missing center or size coordinate, adding as -1"
		sentinel := geom.Point{X: -1, Y: -1}

		return EllipseShape{Center: sentinel, Size: sentinel}, []string{warn}, nil
	}

	return EllipseShape{
		Center: obj.Center.point(),
		Size:   obj.Size.point(),
	}, nil, nil
}

// DecodePoints decodes a bare coordinate list [{x,y},...] into a
// point set. There is no validity rule: an empty list is a valid
// "no detections" result.
func DecodePoints(raw []byte) (Shape, []string, error) {
	var coords []rawCoord
	if err := json.Unmarshal(raw, &coords); err != nil {
		return nil, nil, fmt.Errorf("%w: points: %v", ErrShapeDecode, err)
	}

	pts := make(geom.MultiPoint, len(coords))
	for i, c := range coords {
		pts[i] = c.point()
	}

	return PointsShape{Points: pts}, nil, nil
}

// decodePointsObject handles the rare typed form
// {"type":"points","points":[{x,y},...]} seen in segmentation rows.
func decodePointsObject(raw []byte) (Shape, []string, error) {
	var obj struct {
		Points []rawCoord `json:"points"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, nil, fmt.Errorf("%w: points: %v", ErrShapeDecode, err)
	}

	pts := make(geom.MultiPoint, len(obj.Points))
	for i, c := range obj.Points {
		pts[i] = c.point()
	}

	return PointsShape{Points: pts}, nil, nil
}

// DecodeBrush decodes {"type":"brush","positivePolygons":[...],
// "negativePolygons":[...]} and reconstructs the polygon-with-holes
// topology via ReconstructBrush.
func DecodeBrush(raw []byte) (Shape, []string, error) {
	var obj struct {
		PositivePolygons [][]rawCoord `json:"positivePolygons"`
		NegativePolygons [][]rawCoord `json:"negativePolygons"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, nil, fmt.Errorf("%w: brush: %v", ErrShapeDecode, err)
	}

	pos := make([]geom.Ring, len(obj.PositivePolygons))
	for i, pl := range obj.PositivePolygons {
		pos[i] = ring(pl)
	}
	neg := make([]geom.Ring, len(obj.NegativePolygons))
	for i, pl := range obj.NegativePolygons {
		neg[i] = ring(pl)
	}

	polygons, warns := ReconstructBrush(pos, neg)

	return BrushShape{Polygons: polygons}, warns, nil
}
