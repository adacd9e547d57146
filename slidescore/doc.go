// Package slidescore is a client for the SlideScore HTTP API,
// covering the surface the annotation pipeline needs: downloading
// study scores (annotation rows), listing study images, reading study
// configuration and image metadata, and uploading results.
//
// ⚙️ Usage:
//
//	token, err := slidescore.LoadToken(tokenPath)
//	cl, err := slidescore.NewClient("https://slidescore.example.org/", token, logger)
//	results, err := cl.Scores(ctx, 538, slidescore.ScoreQuery{Email: "ann@lab.org"})
//	res, err := anns.NewParser(anns.DefaultOptions()).Parse(slidescore.RowSource(results))
//
// The client authenticates with a bearer token, speaks JSON, and
// never retries: transient-failure policy belongs to the caller.
// All methods take a context and honor its cancellation.
package slidescore
