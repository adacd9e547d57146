// Package annio turns SlideScore pathology annotation exports into a
// normalized geometric model and standard interchange formats.
//
// 🚀 What is annio?
//
//	A library + CLI for working with whole-slide annotation results:
//		• Parsing: tab-separated export rows with JSON answer payloads
//		• Geometry: polygons, rects, ellipses, point sets, freehand brushes
//		• Brush reconstruction: positive/negative strokes → polygons with holes
//		• Output: GeoJSON feature collections per (author, image, label)
//		• API: download and upload study results over the SlideScore API
//		• Storage: flat WKT rows in Postgres for tile samplers & QA queries
//
// ✨ Why choose annio?
//
//   - Accountable parsing – every row lands in exactly one counter
//     (total = empty + filtered + accepted), enforced each session
//   - Recoverable diagnostics – malformed shapes degrade to warnings,
//     never silent loss
//   - Deterministic output – shape order follows row and answer-array
//     order, byte-stable across runs
//
// Everything is organized under focused subpackages:
//
//	geom/       — points, rings, polygons, predicates, hull repair, WKT
//	anns/       — row parser, shape decoders, brush reconstruction, grouping
//	geojson/    — feature-collection assembly and encoding
//	slidescore/ — API client, result rows, token resolution
//	store/      — denormalized Postgres sink (pgx)
//	cmd/annio/  — download-labels, upload-labels, parse
//
// Quick ASCII example:
//
//	    ┌─────────┐
//	    │  ┌───┐  │    a brush stroke with one matched negative
//	    │  └───┘  │    becomes a polygon with one hole.
//	    └─────────┘
//
//	go get github.com/pathomics/annio
package annio
