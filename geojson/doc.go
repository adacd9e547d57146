// Package geojson renders grouped annotation bundles into the
// GeoJSON-compatible feature-collection documents consumed by
// pathology viewers.
//
// One document covers one (imageID, author, label) group:
//
//	{ "type": "FeatureCollection",
//	  "lastModifiedOn": "...",
//	  "features": [
//	    { "id": "0", "type": "Feature",
//	      "properties": { "object_type": "annotation",
//	                      "classification": { "name": "<label>" } },
//	      "geometry": { "type": "Polygon", "coordinates": [...] } },
//	    ... ] }
//
// Geometry mapping per shape kind:
//   - polygon            → Polygon
//   - rect               → MultiPolygon (rects are modeled as polygons)
//   - brush, 1 positive  → Polygon (with hole rings)
//   - brush, n positives → MultiPolygon
//   - points             → MultiPoint (empty coordinates are valid)
//   - ellipse            → Point at the ellipse center
//   - comment            → no geometry; surfaced via Bundle.Comments
//
// Rings are emitted closed (first vertex repeated last) per RFC 7946,
// matching what downstream viewers expect.
package geojson
