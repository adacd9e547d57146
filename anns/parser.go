// Package anns - row tokenization and session parsing.
//
// A session consumes an ordered sequence of UTF-8 lines. The first
// line must match the header contract exactly; every later line is a
// data row. Each row transitions fully (decode → filter → count)
// before the next begins, so a caller may stop consuming at any point
// without leaving inconsistent state.
package anns

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Header is the fixed export header contract. A sixth column,
// lastModifiedOn, is optional.
var Header = []string{"ImageID", "Image Name", "By", "Question", "Answer"}

// lastModifiedColumn is the optional trailing header field.
const lastModifiedColumn = "lastModifiedOn"

// maxRowSize bounds a single export row; brush answers can run to
// megabytes of coordinates.
const maxRowSize = 64 << 20

// CheckHeader validates the header line against the contract and
// reports whether the optional lastModifiedOn column is present.
// Any deviation is fatal: the remaining rows cannot be interpreted.
func CheckHeader(line string) (hasModified bool, err error) {
	fields := strings.Split(strings.TrimRight(line, "\r\n"), "\t")
	switch {
	case len(fields) == len(Header):
		hasModified = false
	case len(fields) == len(Header)+1 && fields[len(Header)] == lastModifiedColumn:
		hasModified = true
	default:
		return false, fmt.Errorf("%w: got %q, want %q (optionally + %q)",
			ErrHeaderMismatch, fields, Header, lastModifiedColumn)
	}
	for i, want := range Header {
		if fields[i] != want {
			return false, fmt.Errorf("%w: column %d is %q, want %q",
				ErrHeaderMismatch, i, fields[i], want)
		}
	}

	return hasModified, nil
}

// Parser runs annotation parsing sessions. It is stateless across
// sessions: counters and warnings live on the per-call Result, so a
// single Parser may be reused or invoked concurrently.
type Parser struct {
	opts Options
}

// NewParser returns a Parser with the given options.
func NewParser(opts Options) *Parser {
	return &Parser{opts: opts}
}

// Parse consumes a whole export: header line first, then one data row
// per line. Blank lines are skipped without counting. Recoverable
// problems accumulate as Result.Warnings; rows rejected by a
// row-scoped decode error (unknown shape type) are counted as
// filtered, never silently dropped. Header mismatch and counter
// violations are fatal.
func (p *Parser) Parse(r io.Reader) (*Result, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64<<10), maxRowSize)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("anns: reading header: %w", err)
		}

		return nil, fmt.Errorf("%w: empty input", ErrHeaderMismatch)
	}
	hasModified, err := CheckHeader(sc.Text())
	if err != nil {
		return nil, err
	}

	res := &Result{}
	row := 0
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r\n")
		if line == "" {
			continue
		}
		row++
		res.Counters.Total++

		rec, outcome, warns, err := p.ParseRow(line, hasModified)
		for _, w := range warns {
			w.Row = row
			res.Warnings = append(res.Warnings, w)
		}
		if err != nil {
			if errors.Is(err, ErrUnknownShapeType) || errors.Is(err, ErrShapeDecode) {
				// Row-scoped decode failure: skip with accounting.
				res.Counters.Filtered++
				res.Warnings = append(res.Warnings, Warning{Row: row, Shape: -1, Msg: err.Error()})
				continue
			}

			return nil, fmt.Errorf("anns: row %d: %w", row, err)
		}

		switch outcome {
		case OutcomeEmpty:
			res.Counters.Empty++
		case OutcomeFiltered:
			res.Counters.Filtered++
		case OutcomeAccepted:
			res.Counters.Accepted++
			res.Records = append(res.Records, *rec)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("anns: reading rows: %w", err)
	}

	if err := res.Counters.Validate(); err != nil {
		return nil, err
	}

	return res, nil
}

// ParseRow parses a single data row in isolation. The caller is
// responsible for counting the outcome; Parse does this per session.
// hasModified mirrors the validated header: only when the header
// declared the lastModifiedOn column is a sixth field read as the
// timestamp, otherwise trailing fields are ignored. Warnings come
// back with shape scope set but no row number.
func (p *Parser) ParseRow(line string, hasModified bool) (*Record, Outcome, []Warning, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < len(Header) {
		return nil, 0, nil, fmt.Errorf("%w: %d field(s), want %d", ErrRowArity, len(fields), len(Header))
	}

	rec := &Record{
		ImageID:   fields[0],
		SlideName: fields[1],
		Author:    fields[2],
		Label:     fields[3],
		Answer:    fields[4],
		Shapes:    map[int]Shape{},
	}
	if hasModified && len(fields) > len(Header) {
		rec.LastModifiedOn = fields[len(Header)]
	}

	empty, warns, err := p.decodeAnswer(rec)
	if err != nil {
		return nil, 0, warns, err
	}
	if empty && p.opts.DropEmpty {
		return nil, OutcomeEmpty, warns, nil
	}

	if !p.matches(rec) {
		return nil, OutcomeFiltered, warns, nil
	}

	return rec, OutcomeAccepted, warns, nil
}

// decodeAnswer fills rec.Shapes from the Answer field and reports
// whether the answer was empty. Three grammars apply, in order:
// a typed shape array (segmentation), a bare coordinate array
// (detection), and - when JSON decoding fails on non-empty text -
// a single Comment shape carrying the answer verbatim. Free-text
// answers are legal annotation content, not an error.
func (p *Parser) decodeAnswer(rec *Record) (empty bool, warns []Warning, err error) {
	var elems []json.RawMessage
	if jsonErr := json.Unmarshal([]byte(rec.Answer), &elems); jsonErr != nil {
		if len(rec.Answer) > 0 {
			rec.Shapes[0] = CommentShape{Text: rec.Answer}

			return false, nil, nil
		}

		return true, nil, nil
	}

	if len(elems) == 0 {
		return true, nil, nil
	}

	if isSegmentation(elems[0]) {
		for idx, elem := range elems {
			var tag struct {
				Type string `json:"type"`
			}
			if jsonErr := json.Unmarshal(elem, &tag); jsonErr != nil {
				return false, warns, fmt.Errorf("%w: element %d: %v", ErrShapeDecode, idx, jsonErr)
			}
			shape, shapeWarns, decErr := DecodeShape(tag.Type, elem)
			if decErr != nil {
				return false, warns, fmt.Errorf("element %d: %w", idx, decErr)
			}
			for _, msg := range shapeWarns {
				warns = append(warns, Warning{Shape: idx, Msg: msg})
			}
			rec.Shapes[idx] = shape
		}

		return false, warns, nil
	}

	// Detection: the whole array is one point set at index 0.
	shape, shapeWarns, decErr := DecodePoints([]byte(rec.Answer))
	if decErr != nil {
		return false, warns, decErr
	}
	for _, msg := range shapeWarns {
		warns = append(warns, Warning{Shape: 0, Msg: msg})
	}
	rec.Shapes[0] = shape

	return false, warns, nil
}

// isSegmentation reports whether the first answer element carries a
// "type" key. Detection points carry only x and y, which is what
// distinguishes the two row grammars.
func isSegmentation(first json.RawMessage) bool {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(first, &probe); err != nil {
		return false
	}
	_, ok := probe["type"]

	return ok
}

// matches applies the author/label predicates: an unset predicate
// matches everything, a set one must match exactly, and both must
// hold for the row to be kept.
func (p *Parser) matches(rec *Record) bool {
	if p.opts.FilterAuthor != "" && rec.Author != p.opts.FilterAuthor {
		return false
	}
	if p.opts.FilterLabel != "" && rec.Label != p.opts.FilterLabel {
		return false
	}

	return true
}
