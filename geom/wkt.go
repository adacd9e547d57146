// Package geom - WKT (well-known text) rendering for database export.
package geom

import (
	"strconv"
	"strings"
)

// WKT renders the polygon as POLYGON ((exterior), (hole), ...).
// The closing vertex is repeated, as WKT requires. Empty polygons
// render as POLYGON EMPTY.
func (p Polygon) WKT() string {
	if p.IsEmpty() {
		return "POLYGON EMPTY"
	}
	var sb strings.Builder
	sb.WriteString("POLYGON ")
	writePolygonBody(&sb, p)

	return sb.String()
}

// WKT renders the collection as MULTIPOLYGON (((...)), ...), or
// MULTIPOLYGON EMPTY when no member has an exterior.
func (mp MultiPolygon) WKT() string {
	if mp.IsEmpty() {
		return "MULTIPOLYGON EMPTY"
	}
	var sb strings.Builder
	sb.WriteString("MULTIPOLYGON (")
	first := true
	for _, p := range mp {
		if p.IsEmpty() {
			continue
		}
		if !first {
			sb.WriteString(", ")
		}
		first = false
		writePolygonBody(&sb, p)
	}
	sb.WriteByte(')')

	return sb.String()
}

// WKT renders the point set as MULTIPOINT (x y, x y, ...), or
// MULTIPOINT EMPTY for the zero-detection case.
func (mp MultiPoint) WKT() string {
	if len(mp) == 0 {
		return "MULTIPOINT EMPTY"
	}
	var sb strings.Builder
	sb.WriteString("MULTIPOINT (")
	for i, pt := range mp {
		if i > 0 {
			sb.WriteString(", ")
		}
		writeCoord(&sb, pt)
	}
	sb.WriteByte(')')

	return sb.String()
}

// writePolygonBody writes "((exterior), (hole), ...)".
func writePolygonBody(sb *strings.Builder, p Polygon) {
	sb.WriteByte('(')
	writeRing(sb, p.Exterior)
	for _, h := range p.Holes {
		sb.WriteString(", ")
		writeRing(sb, h)
	}
	sb.WriteByte(')')
}

// writeRing writes "(x y, x y, ..., x0 y0)" with the closing vertex.
func writeRing(sb *strings.Builder, r Ring) {
	sb.WriteByte('(')
	for i, pt := range r {
		if i > 0 {
			sb.WriteString(", ")
		}
		writeCoord(sb, pt)
	}
	if len(r) > 0 {
		sb.WriteString(", ")
		writeCoord(sb, r[0])
	}
	sb.WriteByte(')')
}

func writeCoord(sb *strings.Builder, pt Point) {
	sb.WriteString(strconv.FormatFloat(pt.X, 'f', -1, 64))
	sb.WriteByte(' ')
	sb.WriteString(strconv.FormatFloat(pt.Y, 'f', -1, 64))
}
