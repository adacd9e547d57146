package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pathomics/annio/anns"
	"github.com/pathomics/annio/geom"
)

// Geometry type tags stored in the gtype column.
const (
	GTypeMultiPolygon = "MULTIPOLYGON"
	GTypeMultiPoint   = "MULTIPOINT"
	GTypeComment      = "COMMENT"
)

// Execer is the slice of pgx the store needs; *pgxpool.Pool satisfies
// it, and tests substitute a recorder.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store writes annotation rows through an Execer.
type Store struct {
	db Execer
}

// New builds a Store over a pgx pool.
func New(pool *pgxpool.Pool) *Store { return &Store{db: pool} }

// NewWithExecer builds a Store over any Execer; used by tests.
func NewWithExecer(db Execer) *Store { return &Store{db: db} }

// Row is one denormalized annotation row. Nullable columns are
// pointers.
type Row struct {
	Author    string
	Source    string
	SlideName string
	Label     string
	GType     string
	Geom      *string
	CenterX   *float64
	CenterY   *float64
	CornerX   *float64
	CornerY   *float64
	SizeX     *float64
	SizeY     *float64
	Area      *float64
	Comment   *string
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS annotations (
	id         BIGSERIAL PRIMARY KEY,
	author     TEXT NOT NULL,
	source     TEXT NOT NULL,
	slide_name TEXT NOT NULL,
	label      TEXT NOT NULL,
	gtype      TEXT NOT NULL,
	geom       TEXT,
	center_x   DOUBLE PRECISION,
	center_y   DOUBLE PRECISION,
	corner_x   DOUBLE PRECISION,
	corner_y   DOUBLE PRECISION,
	size_x     DOUBLE PRECISION,
	size_y     DOUBLE PRECISION,
	area       DOUBLE PRECISION,
	comment    TEXT
)`

const insertSQL = `
INSERT INTO annotations
	(author, source, slide_name, label, gtype, geom,
	 center_x, center_y, corner_x, corner_y, size_x, size_y, area, comment)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

// Init creates the annotations table when missing.
func (s *Store) Init(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("store: creating annotations table: %w", err)
	}

	return nil
}

// Insert writes the rows one statement at a time.
func (s *Store) Insert(ctx context.Context, rows []Row) error {
	for i, r := range rows {
		_, err := s.db.Exec(ctx, insertSQL,
			r.Author, r.Source, r.SlideName, r.Label, r.GType, r.Geom,
			r.CenterX, r.CenterY, r.CornerX, r.CornerY, r.SizeX, r.SizeY, r.Area, r.Comment)
		if err != nil {
			return fmt.Errorf("store: inserting row %d: %w", i, err)
		}
	}

	return nil
}

// SaveRecord derives and inserts the rows for one accepted record.
func (s *Store) SaveRecord(ctx context.Context, rec anns.Record, source string) error {
	return s.Insert(ctx, RowsFromRecord(rec, source))
}

// RowsFromRecord flattens one record into database rows, one per
// shape, in answer-array order. Shapes with empty polygonal geometry
// are skipped, matching the aggregation rule; empty point sets are
// kept as MULTIPOINT EMPTY rows.
func RowsFromRecord(rec anns.Record, source string) []Row {
	base := Row{
		Author:    rec.Author,
		Source:    source,
		SlideName: rec.SlideName,
		Label:     rec.Label,
	}

	var out []Row
	for _, idx := range rec.Indices() {
		row, ok := shapeRow(base, rec.Shapes[idx])
		if ok {
			out = append(out, row)
		}
	}

	return out
}

// shapeRow fills the geometry columns for one shape.
func shapeRow(base Row, shape anns.Shape) (Row, bool) {
	switch v := shape.(type) {
	case anns.PolygonShape:
		if v.Polygon.IsEmpty() {
			return Row{}, false
		}

		return polygonRow(base, geom.MultiPolygon{v.Polygon}), true
	case anns.BrushShape:
		if v.Polygons.IsEmpty() {
			return Row{}, false
		}

		return polygonRow(base, v.Polygons), true
	case anns.RectShape:
		if v.Polygons.IsEmpty() {
			return Row{}, false
		}

		return polygonRow(base, v.Polygons), true
	case anns.EllipseShape:
		// Ellipses are stored via their bounding box.
		half := geom.Point{X: v.Size.X / 2, Y: v.Size.Y / 2}
		box := geom.MultiPolygon{{Exterior: geom.Ring{
			{X: v.Center.X - half.X, Y: v.Center.Y - half.Y},
			{X: v.Center.X + half.X, Y: v.Center.Y - half.Y},
			{X: v.Center.X + half.X, Y: v.Center.Y + half.Y},
			{X: v.Center.X - half.X, Y: v.Center.Y + half.Y},
		}}}

		return polygonRow(base, box), true
	case anns.PointsShape:
		row := base
		row.GType = GTypeMultiPoint
		row.Geom = ptr(v.Points.WKT())
		row.Area = ptr(float64(len(v.Points)))
		if b, err := v.Points.Bounds(); err == nil {
			fillBounds(&row, b)
		}

		return row, true
	case anns.CommentShape:
		row := base
		row.GType = GTypeComment
		row.Comment = ptr(v.Text)

		return row, true
	default:
		return Row{}, false
	}
}

// polygonRow fills the shared MULTIPOLYGON columns.
func polygonRow(base Row, mp geom.MultiPolygon) Row {
	row := base
	row.GType = GTypeMultiPolygon
	row.Geom = ptr(mp.WKT())
	row.Area = ptr(mp.Area())
	if b, err := mp.Bounds(); err == nil {
		fillBounds(&row, b)
	}

	return row
}

func fillBounds(row *Row, b geom.Bounds) {
	c := b.Center()
	row.CenterX, row.CenterY = ptr(c.X), ptr(c.Y)
	row.CornerX, row.CornerY = ptr(b.MinX), ptr(b.MinY)
	row.SizeX, row.SizeY = ptr(b.Width()), ptr(b.Height())
}

func ptr[T any](v T) *T { return &v }
