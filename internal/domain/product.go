package domain

import "time"

// Product mirrors a marketplace card. Created with minimal fields on first
// sighting during import, filled in by enrichment.
type Product struct {
	ID              int64     `db:"id"`
	ShopID          int64     `db:"shop_id"`
	NmID            int64     `db:"nm_id"` // marketplace item id, unique per shop
	Name            string    `db:"name"`
	Category        *string   `db:"category"`
	Characteristics *string   `db:"characteristics"` // raw JSON attribute list
	Description     *string   `db:"description"`
	Color           *string   `db:"color"`
	Country         *string   `db:"country"`
	ImageURL        *string   `db:"image_url"`
	CreatedAt       time.Time `db:"created_at"`
}
