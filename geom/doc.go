// Package geom provides the small set of planar geometry primitives
// needed to normalize pathology annotations: points, polygon rings,
// polygons with holes, multi-polygons and multi-points.
//
// What lives here:
//   - Value types: Point, Ring, Polygon, MultiPolygon, MultiPoint.
//   - Predicates: ring validity, signed/absolute area, point-in-ring
//     and ring-in-ring containment, self-intersection detection.
//   - Repair: Ring.Repair() nudges a self-intersecting ring to the
//     nearest simple geometry (dedup + orientation + hull fallback).
//   - Interchange: WKT rendering for database export.
//
// Design principles:
//   - Deterministic, side-effect free functions; no hidden state.
//   - No panics on user input - only sentinel errors from types.go.
//   - Containment follows the "within" convention: every vertex of
//     the candidate lies inside or on the container and no edge of
//     the candidate properly crosses the container boundary.
//
// Coordinates are float64 in slide pixel space; callers that need a
// physical unit apply their own microns-per-pixel scaling.
package geom
