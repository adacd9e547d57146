package anns_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pathomics/annio/anns"
	"github.com/pathomics/annio/geom"
)

const header = "ImageID\tImage Name\tBy\tQuestion\tAnswer"

// row joins the five export fields with tabs.
func row(imageID, name, author, label, answer string) string {
	return strings.Join([]string{imageID, name, author, label, answer}, "\t")
}

// TestCheckHeader accepts both header arities and rejects deviations.
func TestCheckHeader(t *testing.T) {
	hasMod, err := anns.CheckHeader(header)
	require.NoError(t, err, "5-column header is the base contract")
	assert.False(t, hasMod)

	hasMod, err = anns.CheckHeader(header + "\tlastModifiedOn")
	require.NoError(t, err, "optional lastModifiedOn column")
	assert.True(t, hasMod)

	_, err = anns.CheckHeader("ImageID\tName\tBy\tQuestion\tAnswer")
	assert.ErrorIs(t, err, anns.ErrHeaderMismatch, "renamed column is fatal")

	_, err = anns.CheckHeader("ImageID,Image Name,By,Question,Answer")
	assert.ErrorIs(t, err, anns.ErrHeaderMismatch, "comma separation is fatal")
}

// TestParse_HeaderMismatchAborts verifies a bad header fails the
// whole session before any row is read.
func TestParse_HeaderMismatchAborts(t *testing.T) {
	in := "wrong\theader\n" + row("1", "s.svs", "a@b.org", "tumor", "[]")

	p := anns.NewParser(anns.DefaultOptions())
	_, err := p.Parse(strings.NewReader(in))
	assert.ErrorIs(t, err, anns.ErrHeaderMismatch)
}

// TestParse_DetectionClassification pins the grammar rule: an answer of
// bare {x,y} pairs classifies as detection and produces one Points
// shape with 2 points at index 0.
func TestParse_DetectionClassification(t *testing.T) {
	in := header + "\n" + row("7", "s.svs", "a@b.org", "lymphocytes", `[{"x":1,"y":2},{"x":3,"y":4}]`)

	res, err := anns.NewParser(anns.DefaultOptions()).Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, res.Records, 1)

	rec := res.Records[0]
	require.Len(t, rec.Shapes, 1, "detection rows hold a single shape")
	pts, ok := rec.Shapes[0].(anns.PointsShape)
	require.True(t, ok, "detection decodes at index 0 as a point set")
	assert.Equal(t, geom.MultiPoint{{X: 1, Y: 2}, {X: 3, Y: 4}}, pts.Points)
}

// TestParse_SegmentationDispatch verifies per-element dispatch by
// type tag with answer-array indices preserved.
func TestParse_SegmentationDispatch(t *testing.T) {
	answer := `[{"type":"polygon","points":[{"x":0,"y":0},{"x":4,"y":0},{"x":0,"y":4}]},` +
		`{"type":"ellipse","center":{"x":1,"y":1},"size":{"x":2,"y":2}}]`
	in := header + "\n" + row("7", "s.svs", "a@b.org", "tumor", answer)

	res, err := anns.NewParser(anns.DefaultOptions()).Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, res.Records, 1)

	rec := res.Records[0]
	require.Len(t, rec.Shapes, 2)
	assert.IsType(t, anns.PolygonShape{}, rec.Shapes[0], "index 0 keeps its array position")
	assert.IsType(t, anns.EllipseShape{}, rec.Shapes[1], "index 1 keeps its array position")
	assert.Equal(t, []int{0, 1}, rec.Indices())
}

// TestParse_CommentFallback pins the fallback rule: a non-JSON answer
// becomes a single Comment shape and the row counts as accepted.
func TestParse_CommentFallback(t *testing.T) {
	in := header + "\n" + row("7", "s.svs", "a@b.org", "notes", "looks good")

	res, err := anns.NewParser(anns.DefaultOptions()).Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, res.Records, 1)

	c, ok := res.Records[0].Shapes[0].(anns.CommentShape)
	require.True(t, ok, "free text becomes a Comment shape")
	assert.Equal(t, "looks good", c.Text, "text carried verbatim")
	assert.Equal(t, anns.Counters{Total: 1, Accepted: 1}, res.Counters,
		"comment rows are accepted, not empty or filtered")
}

// TestParse_EmptyAnswer covers both DropEmpty settings.
func TestParse_EmptyAnswer(t *testing.T) {
	in := header + "\n" + row("7", "s.svs", "a@b.org", "tumor", "[]")

	res, err := anns.NewParser(anns.DefaultOptions()).Parse(strings.NewReader(in))
	require.NoError(t, err)
	assert.Empty(t, res.Records, "DropEmpty drops the row")
	assert.Equal(t, anns.Counters{Total: 1, Empty: 1}, res.Counters)

	keep := anns.Options{DropEmpty: false}
	res, err = anns.NewParser(keep).Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, res.Records, 1, "without DropEmpty the row is kept")
	assert.Empty(t, res.Records[0].Shapes, "with zero shapes")
	assert.Equal(t, anns.Counters{Total: 1, Accepted: 1}, res.Counters)
}

// TestParse_UnknownShapeType verifies the row-scoped decode error:
// the row is skipped but counted as filtered, never silently lost.
func TestParse_UnknownShapeType(t *testing.T) {
	in := header + "\n" +
		row("7", "s.svs", "a@b.org", "tumor", `[{"type":"heatmap","data":[1,2]}]`) + "\n" +
		row("8", "t.svs", "a@b.org", "tumor", `[{"type":"polygon","points":[{"x":0,"y":0},{"x":4,"y":0},{"x":0,"y":4}]}]`)

	res, err := anns.NewParser(anns.DefaultOptions()).Parse(strings.NewReader(in))
	require.NoError(t, err, "unknown shape type must not abort the session")
	assert.Equal(t, anns.Counters{Total: 2, Filtered: 1, Accepted: 1}, res.Counters)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0].Msg, "heatmap", "warning names the unknown tag")
	assert.Equal(t, 1, res.Warnings[0].Row, "warning is scoped to the offending row")
}

// TestParse_EndToEndCounters pins the accounting: 4 rows → 1
// polygon accepted, 1 rect accepted, 1 empty dropped, 1 foreign
// author filtered; counters must add up.
func TestParse_EndToEndCounters(t *testing.T) {
	in := strings.Join([]string{
		header,
		row("1", "a.svs", "ann@lab.org", "tumor", `[{"type":"polygon","points":[{"x":0,"y":0},{"x":4,"y":0},{"x":0,"y":4}]}]`),
		row("2", "b.svs", "ann@lab.org", "tumor", `[{"type":"rect","corner":{"x":0,"y":0},"size":{"x":2,"y":2}}]`),
		row("3", "c.svs", "ann@lab.org", "tumor", "[]"),
		row("4", "d.svs", "someone@else.org", "tumor", `[{"x":1,"y":1}]`),
	}, "\n")

	opts := anns.DefaultOptions()
	opts.FilterAuthor = "ann@lab.org"
	res, err := anns.NewParser(opts).Parse(strings.NewReader(in))
	require.NoError(t, err)

	want := anns.Counters{Total: 4, Empty: 1, Filtered: 1, Accepted: 2}
	assert.Equal(t, want, res.Counters, "every row accounted for exactly once")
	assert.NoError(t, res.Counters.Validate(), "invariant holds after a full pass")
	assert.Len(t, res.Records, 2)
}

// TestParse_LabelFilter verifies that a set label predicate must
// match while the unset author predicate matches everything.
func TestParse_LabelFilter(t *testing.T) {
	in := strings.Join([]string{
		header,
		row("1", "a.svs", "x@lab.org", "tumor", `[{"x":1,"y":1}]`),
		row("2", "a.svs", "y@lab.org", "stroma", `[{"x":1,"y":1}]`),
	}, "\n")

	opts := anns.DefaultOptions()
	opts.FilterLabel = "tumor"
	res, err := anns.NewParser(opts).Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "tumor", res.Records[0].Label)
	assert.Equal(t, anns.Counters{Total: 2, Filtered: 1, Accepted: 1}, res.Counters)
}

// TestParse_LastModifiedOn verifies the 6-column form populates the
// record timestamp.
func TestParse_LastModifiedOn(t *testing.T) {
	in := header + "\tlastModifiedOn\n" +
		row("1", "a.svs", "x@lab.org", "tumor", `[{"x":1,"y":1}]`) + "\t2023-05-11T08:00:00"

	res, err := anns.NewParser(anns.DefaultOptions()).Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "2023-05-11T08:00:00", res.Records[0].LastModifiedOn)
}

// TestParse_TrailingFieldWithoutHeaderColumn verifies a sixth field is
// only read as the timestamp when the header declared the column; under
// the 5-column header it is ignored, never misread as lastModifiedOn.
func TestParse_TrailingFieldWithoutHeaderColumn(t *testing.T) {
	in := header + "\n" +
		row("1", "a.svs", "x@lab.org", "tumor", `[{"x":1,"y":1}]`) + "\t2023-05-11T08:00:00"

	res, err := anns.NewParser(anns.DefaultOptions()).Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Empty(t, res.Records[0].LastModifiedOn, "5-column header has no timestamp column")

	line := row("1", "a.svs", "x@lab.org", "tumor", `[{"x":1,"y":1}]`) + "\t2023-05-11T08:00:00"
	rec, _, _, err := anns.NewParser(anns.DefaultOptions()).ParseRow(line, true)
	require.NoError(t, err)
	assert.Equal(t, "2023-05-11T08:00:00", rec.LastModifiedOn, "6-column header reads the timestamp")
}

// TestParse_RowArity verifies a short row is fatal.
func TestParse_RowArity(t *testing.T) {
	in := header + "\n" + "1\tonly\tthree"

	_, err := anns.NewParser(anns.DefaultOptions()).Parse(strings.NewReader(in))
	assert.ErrorIs(t, err, anns.ErrRowArity)
}

// TestParseRow_Isolation verifies ParseRow is pure: the same line
// parses to identical records on repeated calls.
func TestParseRow_Isolation(t *testing.T) {
	p := anns.NewParser(anns.DefaultOptions())
	line := row("7", "s.svs", "a@b.org", "tumor",
		`[{"type":"polygon","points":[{"x":0,"y":0},{"x":4,"y":0},{"x":0,"y":4}]}]`)

	rec1, out1, _, err1 := p.ParseRow(line, false)
	rec2, out2, _, err2 := p.ParseRow(line, false)
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, anns.OutcomeAccepted, out1)
	assert.Equal(t, out1, out2)
	assert.Equal(t, rec1, rec2, "row parsing has no hidden state")
}

// TestRecord_RawRow verifies the flat passthrough form.
func TestRecord_RawRow(t *testing.T) {
	line := row("7", "s.svs", "a@b.org", "tumor", "looks good")
	rec, _, _, err := anns.NewParser(anns.DefaultOptions()).ParseRow(line, false)
	require.NoError(t, err)
	assert.Equal(t, line, rec.RawRow(), "raw output round-trips the input fields")
}

// TestCounters_Validate pins the fatal counter invariant.
func TestCounters_Validate(t *testing.T) {
	ok := anns.Counters{Total: 4, Empty: 1, Filtered: 1, Accepted: 2}
	assert.NoError(t, ok.Validate())

	bad := anns.Counters{Total: 4, Empty: 1, Accepted: 2}
	err := bad.Validate()
	require.ErrorIs(t, err, anns.ErrCounterMismatch)
	assert.Contains(t, err.Error(), "total=4", "message carries the actual numbers")
}
