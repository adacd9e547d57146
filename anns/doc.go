// Package anns converts SlideScore annotation exports - tab-separated
// rows whose Answer field carries a JSON-encoded shape list - into a
// normalized geometric annotation model.
//
// 🚀 What it does:
//   - Tokenizes rows against the fixed export header contract
//     (ImageID, Image Name, By, Question, Answer[, lastModifiedOn]).
//   - Decodes each typed shape object (polygon, rect, ellipse, brush,
//     points) into a Shape variant; untyped coordinate lists classify
//     as detection point sets; non-JSON answers fall back to Comment.
//   - Reconstructs brush strokes into polygons with holes by matching
//     negative polygons to the positive polygons that contain them.
//   - Accounts for every input row through per-session Counters with
//     the invariant Total == Empty + Filtered + Accepted.
//   - Groups accepted records by (imageID, author, label) for serialization.
//
// ⚙️ Usage:
//
//	p := anns.NewParser(anns.DefaultOptions())
//	res, err := p.Parse(file)
//	if err != nil {
//	  // header mismatch or counter violation - the session is unusable
//	}
//	bundles, warns := anns.Group(res.Records)
//
// Design principles:
//   - Decoders are pure functions: same bytes in, same Shape out.
//   - Recoverable problems (degenerate polygons, sentinel ellipses,
//     unmatched brush holes) become Warnings on the Result, never a
//     global log sink and never an abort.
//   - Fatal problems (header mismatch, counter violation) return
//     sentinel errors and abort the session.
package anns
