package entities

// Model is a canonical vehicle model scoped to a maker. GenmodelID is
// the externally supplied stable key; (maker_id, genmodel_id) is unique.
type Model struct {
	ID         int64  `db:"id"`
	MakerID    int64  `db:"maker_id"`
	Name       string `db:"name"`
	GenmodelID string `db:"genmodel_id"`
}
