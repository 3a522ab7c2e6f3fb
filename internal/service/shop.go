package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"feedback_responder/internal/domain"
	"feedback_responder/internal/marketplace"
)

var (
	// ErrInvalidAPIKey means the marketplace rejected the shop credential.
	ErrInvalidAPIKey = errors.New("invalid marketplace API key")
	// ErrForbidden means the actor may not manage the shop.
	ErrForbidden = errors.New("actor may not manage this shop")
	// ErrNoActiveShop means the actor has no active shop to run against.
	ErrNoActiveShop = errors.New("no active shop for actor")
)

// ShopService resolves the tenant context for pipeline stages and manages
// shop records.
type ShopService struct {
	shops     ShopStore
	market    Marketplace
	txManager TransactionManager
	access    Access
	logger    *slog.Logger
}

func NewShopService(
	shops ShopStore,
	market Marketplace,
	txManager TransactionManager,
	access Access,
	logger *slog.Logger,
) *ShopService {
	return &ShopService{
		shops:     shops,
		market:    market,
		txManager: txManager,
		access:    access,
		logger:    logger.With("component", "shops"),
	}
}

// Create validates the shop's API key against the marketplace before
// persisting. An invalid key is rejected without touching the database.
func (s *ShopService) Create(ctx context.Context, actor *domain.Actor, shop *domain.Shop) (int64, error) {
	shop.OwnerID = actor.ID

	if _, err := s.market.CountFeedbacks(ctx, shop.APIKey); err != nil {
		var statusErr *marketplace.StatusError
		if errors.As(err, &statusErr) {
			s.logger.Warn("rejected shop credential",
				"owner_id", actor.ID,
				"status", statusErr.Status,
			)
			return 0, ErrInvalidAPIKey
		}
		return 0, fmt.Errorf("validate api key: %w", err)
	}

	id, err := s.shops.Create(ctx, shop)
	if err != nil {
		return 0, fmt.Errorf("create shop: %w", err)
	}

	s.logger.Info("shop created", "shop_id", id, "owner_id", actor.ID)
	return id, nil
}

// SetActive makes the given shop the actor's single active shop. The
// deactivate-all plus activate-one pair runs in one transaction so two
// shops of the same owner are never active together.
func (s *ShopService) SetActive(ctx context.Context, actor *domain.Actor, shopID int64) error {
	shop, err := s.shops.GetByID(ctx, shopID)
	if err != nil {
		return fmt.Errorf("get shop: %w", err)
	}
	if !s.access.CanManageShop(actor, shop) {
		return ErrForbidden
	}

	return s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.shops.DeactivateByOwner(txCtx, shop.OwnerID); err != nil {
			return fmt.Errorf("deactivate shops: %w", err)
		}
		if err := s.shops.Activate(txCtx, shop.ID); err != nil {
			return fmt.Errorf("activate shop: %w", err)
		}
		return nil
	})
}

// ActiveShop resolves the shop every pipeline stage runs against: the
// actor's explicitly selected shop if set, otherwise the owner's active one.
func (s *ShopService) ActiveShop(ctx context.Context, actor *domain.Actor) (*domain.Shop, error) {
	if actor.ActiveShopID != nil {
		shop, err := s.shops.GetByID(ctx, *actor.ActiveShopID)
		if err != nil {
			return nil, fmt.Errorf("get shop: %w", err)
		}
		if !s.access.CanManageShop(actor, shop) {
			return nil, ErrForbidden
		}
		return shop, nil
	}

	shop, err := s.shops.GetActiveByOwner(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("get active shop: %w", err)
	}
	if shop == nil {
		return nil, ErrNoActiveShop
	}
	return shop, nil
}
