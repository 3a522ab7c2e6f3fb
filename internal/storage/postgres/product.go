package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"feedback_responder/internal/domain"
)

type ProductStore struct {
	db *sqlx.DB
}

func NewProductStore(db *sqlx.DB) *ProductStore {
	return &ProductStore{db: db}
}

// FirstOrCreate inserts the product if its item id is unseen for the shop,
// otherwise returns the existing row's id. Existing rows are not modified;
// only enrichment mutates them.
func (s *ProductStore) FirstOrCreate(ctx context.Context, product *domain.Product) (int64, error) {
	query := `
		INSERT INTO products (shop_id, nm_id, name, category)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (shop_id, nm_id) DO NOTHING
		RETURNING id`

	ext := GetExecutor(ctx, s.db)

	var id int64
	err := ext.QueryRowxContext(ctx, query,
		product.ShopID,
		product.NmID,
		product.Name,
		product.Category,
	).Scan(&id)

	if errors.Is(err, sql.ErrNoRows) {
		err = ext.QueryRowxContext(ctx,
			`SELECT id FROM products WHERE shop_id = $1 AND nm_id = $2`,
			product.ShopID, product.NmID,
		).Scan(&id)
	}
	if err != nil {
		return 0, err
	}

	product.ID = id
	return id, nil
}

// GetByNmID returns the shop's product for the marketplace item id, or nil
// when the card has no local counterpart.
func (s *ProductStore) GetByNmID(ctx context.Context, shopID, nmID int64) (*domain.Product, error) {
	var product domain.Product
	query := `
		SELECT id, shop_id, nm_id, name, category, characteristics,
		       description, color, country, image_url, created_at
		FROM products
		WHERE shop_id = $1 AND nm_id = $2`

	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &product, query, shopID, nmID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// UpdateCard persists the enrichment fields.
func (s *ProductStore) UpdateCard(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products SET
			name = $2,
			category = $3,
			characteristics = $4,
			description = $5,
			color = $6,
			country = $7,
			image_url = $8
		WHERE id = $1`

	_, err := GetExecutor(ctx, s.db).ExecContext(ctx, query,
		product.ID,
		product.Name,
		product.Category,
		product.Characteristics,
		product.Description,
		product.Color,
		product.Country,
		product.ImageURL,
	)
	return err
}
