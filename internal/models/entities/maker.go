package entities

// Maker is a canonical vehicle manufacturer. Name keeps the casing of
// the first occurrence seen during catalog ingestion; uniqueness is
// enforced case-insensitively.
type Maker struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}
