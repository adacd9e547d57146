// Package store persists parsed annotations to Postgres, one flat row
// per shape: classification label, geometry type, WKT geometry,
// bounds-derived center/corner/size, area, and the comment text for
// non-spatial answers.
//
// The schema is deliberately denormalized - it feeds tile samplers
// and QA queries that filter on label, author and bounding box
// without parsing geometry.
//
// ⚙️ Usage:
//
//	pool, err := pgxpool.New(ctx, dsn)
//	st := store.New(pool)
//	if err := st.Init(ctx); err != nil { ... }
//	rows := store.RowsFromRecord(rec, "TCGA-BRCA")
//	if err := st.Insert(ctx, rows); err != nil { ... }
package store
