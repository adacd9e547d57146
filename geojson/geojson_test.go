package geojson_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pathomics/annio/anns"
	"github.com/pathomics/annio/geojson"
	"github.com/pathomics/annio/geom"
)

// bundle builds a single-label bundle around the given shapes.
func bundle(shapes ...anns.Shape) anns.Bundle {
	return anns.Bundle{
		ImageID:        "42",
		SlideName:      "slide_a.svs",
		Author:         "ann@lab.org",
		Label:          "tumor",
		LastModifiedOn: "2023-05-11T08:00:00",
		Shapes:         shapes,
	}
}

// TestBuild_Document verifies the document skeleton: type, timestamp,
// sequential string ids, and the shared properties block.
func TestBuild_Document(t *testing.T) {
	tri := geom.Polygon{Exterior: geom.Ring{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 0, Y: 4}}}
	fc, err := geojson.Build(bundle(
		anns.PolygonShape{Polygon: tri},
		anns.PointsShape{Points: geom.MultiPoint{{X: 1, Y: 2}}},
	))
	require.NoError(t, err)

	assert.Equal(t, "FeatureCollection", fc.Type)
	assert.Equal(t, "2023-05-11T08:00:00", fc.LastModifiedOn)
	require.Len(t, fc.Features, 2)
	assert.Equal(t, "0", fc.Features[0].ID, "ids are emitted positions")
	assert.Equal(t, "1", fc.Features[1].ID)
	for _, f := range fc.Features {
		assert.Equal(t, "Feature", f.Type)
		assert.Equal(t, "annotation", f.Properties.ObjectType)
		assert.Equal(t, "tumor", f.Properties.Classification.Name)
	}
}

// TestBuild_GeometryMapping checks the structural encoding per shape
// kind, including closed rings.
func TestBuild_GeometryMapping(t *testing.T) {
	sq := geom.Ring{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2}}
	hole := geom.Ring{{X: 0.5, Y: 0.5}, {X: 1, Y: 0.5}, {X: 1, Y: 1}, {X: 0.5, Y: 1}}

	fc, err := geojson.Build(bundle(
		anns.PolygonShape{Polygon: geom.Polygon{Exterior: sq}},
		anns.RectShape{Polygons: geom.MultiPolygon{{Exterior: sq}}},
		anns.BrushShape{Polygons: geom.MultiPolygon{{Exterior: sq, Holes: []geom.Ring{hole}}}},
		anns.BrushShape{Polygons: geom.MultiPolygon{{Exterior: sq}, {Exterior: hole}}},
		anns.PointsShape{},
		anns.EllipseShape{Center: geom.Point{X: 3, Y: 4}, Size: geom.Point{X: 1, Y: 1}},
	))
	require.NoError(t, err)
	require.Len(t, fc.Features, 6)

	assert.Equal(t, "Polygon", fc.Features[0].Geometry.Type)
	ringsOfPolygon := fc.Features[0].Geometry.Coordinates.([][][2]float64)
	require.Len(t, ringsOfPolygon, 1)
	assert.Len(t, ringsOfPolygon[0], 5, "ring is closed: 4 vertices + repeat")
	assert.Equal(t, ringsOfPolygon[0][0], ringsOfPolygon[0][4], "first vertex repeats last")

	assert.Equal(t, "MultiPolygon", fc.Features[1].Geometry.Type, "rects map to MultiPolygon")

	assert.Equal(t, "Polygon", fc.Features[2].Geometry.Type, "single-positive brush maps to Polygon")
	brushRings := fc.Features[2].Geometry.Coordinates.([][][2]float64)
	assert.Len(t, brushRings, 2, "hole ring follows the exterior")

	assert.Equal(t, "MultiPolygon", fc.Features[3].Geometry.Type, "multi-positive brush maps to MultiPolygon")

	assert.Equal(t, "MultiPoint", fc.Features[4].Geometry.Type)
	assert.Len(t, fc.Features[4].Geometry.Coordinates.([][2]float64), 0,
		"zero detections encode as an empty coordinate list")

	assert.Equal(t, "Point", fc.Features[5].Geometry.Type, "ellipses encode their center")
	assert.Equal(t, [2]float64{3, 4}, fc.Features[5].Geometry.Coordinates.([2]float64))
}

// TestEncode_RoundTrip verifies the emitted JSON carries the expected
// field names and nesting.
func TestEncode_RoundTrip(t *testing.T) {
	sq := geom.Ring{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2}}

	var buf bytes.Buffer
	err := geojson.Encode(&buf, bundle(anns.PolygonShape{Polygon: geom.Polygon{Exterior: sq}}))
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc), "output must be valid JSON")
	assert.Equal(t, "FeatureCollection", doc["type"])
	assert.Equal(t, "2023-05-11T08:00:00", doc["lastModifiedOn"])

	features := doc["features"].([]any)
	require.Len(t, features, 1)
	feature := features[0].(map[string]any)
	props := feature["properties"].(map[string]any)
	assert.Equal(t, "annotation", props["object_type"])
	assert.Equal(t, "tumor", props["classification"].(map[string]any)["name"])

	geometry := feature["geometry"].(map[string]any)
	assert.Equal(t, "Polygon", geometry["type"])
}

// TestBuild_EmptyBundle yields a collection with an empty feature
// list, not null.
func TestBuild_EmptyBundle(t *testing.T) {
	fc, err := geojson.Build(bundle())
	require.NoError(t, err)
	assert.NotNil(t, fc.Features)
	assert.Empty(t, fc.Features)
}
