package domain

// Taxonomy selects one of the two parallel topic tables.
type Taxonomy string

const (
	TaxonomyReview   Taxonomy = "review"
	TaxonomyQuestion Taxonomy = "question"
)

// Topic is a read-only taxonomy label, seeded out-of-band.
type Topic struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}
