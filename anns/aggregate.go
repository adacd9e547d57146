// Package anns - grouping of accepted records for output.
package anns

import "fmt"

// GroupKey identifies one output document: all shapes by one author
// for one image under one label. Author is part of the key so that
// two annotators of the same slide never share a document.
type GroupKey struct {
	ImageID string
	Author  string
	Label   string
}

// Bundle is the flattened content of one (imageID, author, label) group,
// ready for serialization. Shape order preserves row order and, within
// a row, answer-array order. Comment shapes have no spatial
// representation and are surfaced through Comments instead of Shapes.
type Bundle struct {
	ImageID        string
	SlideName      string
	Author         string
	Label          string
	LastModifiedOn string
	Shapes         []Shape
	Comments       []string
}

// Group buckets accepted records by (imageID, author, label), in first-seen
// key order. Shapes with empty polygon geometry (degenerate polygons,
// non-finite rects, zero-area brushes) are discarded with a warning;
// point sets are always kept - zero points is a valid "no detections"
// result. Grouping is commutative across rows of the same key, so the
// relative order of records only affects shape ordering, never
// membership.
func Group(records []Record) ([]Bundle, []Warning) {
	var (
		order   []GroupKey
		bundles = map[GroupKey]*Bundle{}
		warns   []Warning
	)

	for _, rec := range records {
		key := GroupKey{ImageID: rec.ImageID, Author: rec.Author, Label: rec.Label}
		b, ok := bundles[key]
		if !ok {
			b = &Bundle{
				ImageID:        rec.ImageID,
				SlideName:      rec.SlideName,
				Author:         rec.Author,
				Label:          rec.Label,
				LastModifiedOn: rec.LastModifiedOn,
			}
			bundles[key] = b
			order = append(order, key)
		}
		// The export carries one timestamp per row; the group keeps
		// the latest non-empty one seen.
		if rec.LastModifiedOn != "" {
			b.LastModifiedOn = rec.LastModifiedOn
		}

		for _, idx := range rec.Indices() {
			shape := rec.Shapes[idx]
			keep, msg := keepShape(shape)
			if !keep {
				warns = append(warns, Warning{Shape: idx,
					Msg: fmt.Sprintf("dismissed %s for %s on %s: %s", shape.Kind(), rec.Author, rec.SlideName, msg)})
				continue
			}
			if c, isComment := shape.(CommentShape); isComment {
				b.Comments = append(b.Comments, c.Text)
				continue
			}
			b.Shapes = append(b.Shapes, shape)
		}
	}

	out := make([]Bundle, len(order))
	for i, key := range order {
		out[i] = *bundles[key]
	}

	return out, warns
}

// keepShape decides whether a shape survives aggregation. Polygonal
// shapes must enclose area; everything else always passes.
func keepShape(s Shape) (bool, string) {
	switch v := s.(type) {
	case PolygonShape:
		if v.Polygon.IsEmpty() || v.Polygon.Area() == 0 {
			return false, "area = 0"
		}
	case RectShape:
		if v.Polygons.IsEmpty() || v.Polygons.Area() == 0 {
			return false, "area = 0"
		}
	case BrushShape:
		if v.Polygons.IsEmpty() || v.Polygons.Area() == 0 {
			return false, "area = 0"
		}
	}

	return true, ""
}
