// Package anns - core types, options, and sentinel errors.
package anns

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/pathomics/annio/geom"
)

// Sentinel errors for parsing sessions.
var (
	// ErrHeaderMismatch indicates the first line does not match the export header contract.
	ErrHeaderMismatch = errors.New("anns: header mismatch")
	// ErrRowArity indicates a data row with fewer fields than the header defines.
	ErrRowArity = errors.New("anns: row has fewer fields than the header")
	// ErrUnknownShapeType indicates a segmentation element whose type tag has no decoder.
	ErrUnknownShapeType = errors.New("anns: unknown shape type")
	// ErrShapeDecode indicates a shape object whose JSON structure cannot be decoded.
	ErrShapeDecode = errors.New("anns: malformed shape object")
	// ErrCounterMismatch indicates the session counters do not account for every row.
	ErrCounterMismatch = errors.New("anns: row counters do not add up")
)

// Kind enumerates the shape variants of the annotation model.
type Kind int

const (
	// KindPolygon is a single closed outline.
	KindPolygon Kind = iota
	// KindRect is an axis-aligned rectangle, modeled downstream as a polygon.
	KindRect
	// KindEllipse is a center+size ellipse.
	KindEllipse
	// KindBrush is a freehand region reconstructed into polygons with holes.
	KindBrush
	// KindPoints is an ordered point set (detection result).
	KindPoints
	// KindComment is a free-text answer with no spatial representation.
	KindComment
)

// String returns the wire name of the kind, matching the vendor's
// "type" tags where one exists.
func (k Kind) String() string {
	switch k {
	case KindPolygon:
		return "polygon"
	case KindRect:
		return "rect"
	case KindEllipse:
		return "ellipse"
	case KindBrush:
		return "brush"
	case KindPoints:
		return "points"
	case KindComment:
		return "comment"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Shape is the tagged union over all decoded annotation variants.
type Shape interface {
	// Kind identifies the concrete variant.
	Kind() Kind
}

// PolygonShape is a single outline. An empty Polygon is the explicit
// invalid/degenerate fallback (fewer than three vertices on input).
type PolygonShape struct {
	Polygon geom.Polygon
}

// Kind returns KindPolygon.
func (PolygonShape) Kind() Kind { return KindPolygon }

// RectShape is an axis-aligned rectangle. Polygons holds the
// one-element polygon collection used downstream; it is empty when
// the input coordinates were non-finite.
type RectShape struct {
	Corner   geom.Point
	Size     geom.Point
	Polygons geom.MultiPolygon
}

// Kind returns KindRect.
func (RectShape) Kind() Kind { return KindRect }

// EllipseShape is a center+size ellipse. A missing center decodes to
// the sentinel (-1,-1) for both fields, never a partial value.
type EllipseShape struct {
	Center geom.Point
	Size   geom.Point
}

// Kind returns KindEllipse.
func (EllipseShape) Kind() Kind { return KindEllipse }

// BrushShape is the reconstructed brush region: one polygon per
// positive stroke, each carrying the negative strokes matched as
// holes. The collection has exactly one element when the submission
// had exactly one positive polygon.
type BrushShape struct {
	Polygons geom.MultiPolygon
}

// Kind returns KindBrush.
func (BrushShape) Kind() Kind { return KindBrush }

// PointsShape is a detection point set. Zero points is a valid
// "nothing detected" result and is always kept.
type PointsShape struct {
	Points geom.MultiPoint
}

// Kind returns KindPoints.
func (PointsShape) Kind() Kind { return KindPoints }

// CommentShape carries a free-text answer verbatim.
type CommentShape struct {
	Text string
}

// Kind returns KindComment.
func (CommentShape) Kind() Kind { return KindComment }

// Record is one accepted annotation row: identity fields plus the
// decoded shapes keyed by their 0-based position in the answer array.
// Indices are contiguous within one record but carry no meaning
// across records. A Record is immutable once produced.
type Record struct {
	ImageID        string
	SlideName      string
	Author         string
	Label          string
	LastModifiedOn string
	Answer         string // raw Answer field, kept for passthrough output
	Shapes         map[int]Shape
}

// Indices returns the shape keys in ascending order, preserving the
// answer-array ordering for output.
func (r Record) Indices() []int {
	out := make([]int, 0, len(r.Shapes))
	for idx := range r.Shapes {
		out = append(out, idx)
	}
	sort.Ints(out)

	return out
}

// RawRow renders the flat tab-separated passthrough form of the row:
// imageID, image name, author, label, answer.
func (r Record) RawRow() string {
	return strings.Join([]string{r.ImageID, r.SlideName, r.Author, r.Label, r.Answer}, "\t")
}

// Counters accounts for every row seen during one parsing session.
type Counters struct {
	Total    int // rows read
	Empty    int // rows dropped as empty (DropEmpty)
	Filtered int // rows dropped by author/label filters or row-scoped decode errors
	Accepted int // rows yielded as Records
}

// Validate enforces the session invariant
// Total == Empty + Filtered + Accepted. A violation means rows were
// lost or double-counted and the whole pass is untrustworthy.
func (c Counters) Validate() error {
	if c.Total != c.Empty+c.Filtered+c.Accepted {
		return fmt.Errorf("%w: total=%d empty=%d filtered=%d accepted=%d",
			ErrCounterMismatch, c.Total, c.Empty, c.Filtered, c.Accepted)
	}

	return nil
}

// Warning is one recoverable diagnostic scoped to a row and,
// when applicable, a shape index within that row's answer array.
type Warning struct {
	Row   int    // 1-based data row number; 0 when row-independent
	Shape int    // answer-array index; -1 for row-level warnings
	Msg   string
}

// String renders the warning with its row/shape scope.
func (w Warning) String() string {
	switch {
	case w.Row == 0:
		return w.Msg
	case w.Shape < 0:
		return fmt.Sprintf("row %d: %s", w.Row, w.Msg)
	default:
		return fmt.Sprintf("row %d, shape %d: %s", w.Row, w.Shape, w.Msg)
	}
}

// Outcome classifies how the parser disposed of one row.
type Outcome int

const (
	// OutcomeAccepted means the row produced a Record.
	OutcomeAccepted Outcome = iota
	// OutcomeEmpty means the row had an empty answer and DropEmpty is set.
	OutcomeEmpty
	// OutcomeFiltered means the row was rejected by the author/label filters.
	OutcomeFiltered
)

// Options configures a parsing session.
//
// Fields:
//   - FilterAuthor — keep only rows by this author (empty keeps all).
//   - FilterLabel  — keep only rows with this label (empty keeps all).
//   - DropEmpty    — count rows with an empty answer as Empty instead
//     of yielding zero-shape records.
type Options struct {
	FilterAuthor string
	FilterLabel  string
	DropEmpty    bool
}

// DefaultOptions returns the historical export behavior:
// empty rows are dropped, no author/label filtering.
func DefaultOptions() Options {
	return Options{DropEmpty: true}
}

// Result is the complete outcome of one parsing session: the accepted
// records in input order, the validated counters, and every
// recoverable diagnostic raised along the way.
type Result struct {
	Records  []Record
	Counters Counters
	Warnings []Warning
}
