package service

import "feedback_responder/internal/domain"

// Access decides what an actor may do. The actor is always passed in
// explicitly; there is no ambient current-user lookup.
type Access interface {
	CanManageShop(actor *domain.Actor, shop *domain.Shop) bool
}

// OwnerAccess grants shop management to the owner and to admins.
type OwnerAccess struct{}

func (OwnerAccess) CanManageShop(actor *domain.Actor, shop *domain.Shop) bool {
	if actor == nil || shop == nil {
		return false
	}
	return actor.Role == domain.RoleAdmin || shop.OwnerID == actor.ID
}
