package geojson

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/pathomics/annio/anns"
	"github.com/pathomics/annio/geom"
)

// objectType is the fixed object_type property of every feature.
const objectType = "annotation"

// FeatureCollection is the top-level output document.
type FeatureCollection struct {
	Type           string    `json:"type"`
	LastModifiedOn string    `json:"lastModifiedOn"`
	Features       []Feature `json:"features"`
}

// Feature is one annotated shape.
type Feature struct {
	ID         string     `json:"id"`
	Type       string     `json:"type"`
	Properties Properties `json:"properties"`
	Geometry   Geometry   `json:"geometry"`
}

// Properties carries the annotation metadata shared by all features
// of a collection.
type Properties struct {
	ObjectType     string         `json:"object_type"`
	Classification Classification `json:"classification"`
}

// Classification names the annotation label.
type Classification struct {
	Name string `json:"name"`
}

// Geometry is a structural GeoJSON geometry. Coordinates nesting
// depends on Type: Point [2]float64, MultiPoint [][2]float64,
// Polygon [][][2]float64, MultiPolygon [][][][2]float64.
type Geometry struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"`
}

// Build assembles the feature collection for one bundle. Feature ids
// are the string positions within the emitted feature list.
func Build(b anns.Bundle) (FeatureCollection, error) {
	fc := FeatureCollection{
		Type:           "FeatureCollection",
		LastModifiedOn: b.LastModifiedOn,
		Features:       []Feature{},
	}
	props := Properties{
		ObjectType:     objectType,
		Classification: Classification{Name: b.Label},
	}

	for _, shape := range b.Shapes {
		g, err := shapeGeometry(shape)
		if err != nil {
			return FeatureCollection{}, err
		}
		fc.Features = append(fc.Features, Feature{
			ID:         strconv.Itoa(len(fc.Features)),
			Type:       "Feature",
			Properties: props,
			Geometry:   g,
		})
	}

	return fc, nil
}

// Encode writes the bundle's feature collection to w as indented JSON.
func Encode(w io.Writer, b anns.Bundle) error {
	fc, err := Build(b)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(fc)
}

// shapeGeometry maps one shape variant to its structural geometry.
func shapeGeometry(s anns.Shape) (Geometry, error) {
	switch v := s.(type) {
	case anns.PolygonShape:
		return Geometry{Type: "Polygon", Coordinates: polygonCoords(v.Polygon)}, nil
	case anns.RectShape:
		return Geometry{Type: "MultiPolygon", Coordinates: multiPolygonCoords(v.Polygons)}, nil
	case anns.BrushShape:
		if len(v.Polygons) == 1 {
			return Geometry{Type: "Polygon", Coordinates: polygonCoords(v.Polygons[0])}, nil
		}

		return Geometry{Type: "MultiPolygon", Coordinates: multiPolygonCoords(v.Polygons)}, nil
	case anns.PointsShape:
		return Geometry{Type: "MultiPoint", Coordinates: multiPointCoords(v.Points)}, nil
	case anns.EllipseShape:
		return Geometry{Type: "Point", Coordinates: [2]float64{v.Center.X, v.Center.Y}}, nil
	default:
		return Geometry{}, fmt.Errorf("geojson: shape kind %s has no geometry mapping", s.Kind())
	}
}

// ringCoords renders a ring closed: the first vertex repeats last.
func ringCoords(r geom.Ring) [][2]float64 {
	out := make([][2]float64, 0, len(r)+1)
	for _, pt := range r {
		out = append(out, [2]float64{pt.X, pt.Y})
	}
	if len(r) > 0 {
		out = append(out, [2]float64{r[0].X, r[0].Y})
	}

	return out
}

func polygonCoords(p geom.Polygon) [][][2]float64 {
	out := make([][][2]float64, 0, 1+len(p.Holes))
	if len(p.Exterior) > 0 {
		out = append(out, ringCoords(p.Exterior))
	}
	for _, h := range p.Holes {
		out = append(out, ringCoords(h))
	}

	return out
}

func multiPolygonCoords(mp geom.MultiPolygon) [][][][2]float64 {
	out := make([][][][2]float64, 0, len(mp))
	for _, p := range mp {
		out = append(out, polygonCoords(p))
	}

	return out
}

func multiPointCoords(mp geom.MultiPoint) [][2]float64 {
	out := make([][2]float64, 0, len(mp))
	for _, pt := range mp {
		out = append(out, [2]float64{pt.X, pt.Y})
	}

	return out
}
