package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"feedback_responder/internal/domain"
)

type ShopStore struct {
	db *sqlx.DB
}

func NewShopStore(db *sqlx.DB) *ShopStore {
	return &ShopStore{db: db}
}

func (s *ShopStore) Create(ctx context.Context, shop *domain.Shop) (int64, error) {
	query := `
		INSERT INTO shops (owner_id, name, api_key, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	var id int64
	err := GetExecutor(ctx, s.db).QueryRowxContext(ctx, query,
		shop.OwnerID,
		shop.Name,
		shop.APIKey,
		shop.IsActive,
	).Scan(&id)
	if err != nil {
		return 0, err
	}

	shop.ID = id
	return id, nil
}

func (s *ShopStore) GetByID(ctx context.Context, id int64) (*domain.Shop, error) {
	var shop domain.Shop
	query := `SELECT id, owner_id, name, api_key, is_active FROM shops WHERE id = $1`

	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &shop, query, id)
	if err != nil {
		return nil, err
	}
	return &shop, nil
}

// GetActiveByOwner returns the owner's active shop, or nil when none is
// active.
func (s *ShopStore) GetActiveByOwner(ctx context.Context, ownerID int64) (*domain.Shop, error) {
	var shop domain.Shop
	query := `SELECT id, owner_id, name, api_key, is_active FROM shops WHERE owner_id = $1 AND is_active`

	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &shop, query, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &shop, nil
}

func (s *ShopStore) DeactivateByOwner(ctx context.Context, ownerID int64) error {
	_, err := GetExecutor(ctx, s.db).ExecContext(ctx,
		`UPDATE shops SET is_active = FALSE WHERE owner_id = $1`,
		ownerID,
	)
	return err
}

func (s *ShopStore) Activate(ctx context.Context, id int64) error {
	_, err := GetExecutor(ctx, s.db).ExecContext(ctx,
		`UPDATE shops SET is_active = TRUE WHERE id = $1`,
		id,
	)
	return err
}
