package domain

// Actor is the authenticated user on whose behalf a pipeline stage runs.
type Actor struct {
	ID           int64
	Role         string
	ActiveShopID *int64
}

const RoleAdmin = "admin"

// Shop is a seller's tenant context holding the marketplace API key.
// At most one shop per owner is active at a time.
type Shop struct {
	ID       int64  `db:"id"`
	OwnerID  int64  `db:"owner_id"`
	Name     string `db:"name"`
	APIKey   string `db:"api_key"`
	IsActive bool   `db:"is_active"`
}
