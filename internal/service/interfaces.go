package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"feedback_responder/internal/domain"
	"feedback_responder/internal/marketplace"
)

type ShopStore interface {
	Create(ctx context.Context, shop *domain.Shop) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Shop, error)
	GetActiveByOwner(ctx context.Context, ownerID int64) (*domain.Shop, error)
	DeactivateByOwner(ctx context.Context, ownerID int64) error
	Activate(ctx context.Context, id int64) error
}

type ProductStore interface {
	FirstOrCreate(ctx context.Context, product *domain.Product) (int64, error)
	GetByNmID(ctx context.Context, shopID, nmID int64) (*domain.Product, error)
	UpdateCard(ctx context.Context, product *domain.Product) error
}

type ReviewStore interface {
	ExistsByExternalID(ctx context.Context, externalID string) (bool, error)
	Create(ctx context.Context, review *domain.Review) (int64, error)
	ListByStatus(ctx context.Context, shopID int64, status domain.Status) ([]domain.Review, error)
	UpdateAnalysis(ctx context.Context, review *domain.Review) error
	MarkPublished(ctx context.Context, id int64) error
}

type QuestionStore interface {
	ExistsByExternalID(ctx context.Context, externalID string) (bool, error)
	Create(ctx context.Context, question *domain.Question) (int64, error)
	ListByStatus(ctx context.Context, shopID int64, status domain.Status) ([]domain.Question, error)
	UpdateAnalysis(ctx context.Context, question *domain.Question) error
	MarkPublished(ctx context.Context, id int64) error
}

type TopicStore interface {
	TopicsByName(ctx context.Context, taxonomy domain.Taxonomy) (map[string]int64, error)
}

type Marketplace interface {
	CountFeedbacks(ctx context.Context, apiKey string) (int, error)
	CountQuestions(ctx context.Context, apiKey string) (int, error)
	ListFeedbacks(ctx context.Context, apiKey string, take, skip int) ([]marketplace.Feedback, error)
	ListQuestions(ctx context.Context, apiKey string, take, skip int) ([]marketplace.Question, error)
	FetchCards(ctx context.Context, apiKey string, nmIDs []int64, limit int) ([]marketplace.Card, error)
	AnswerFeedback(ctx context.Context, apiKey, id, text string) error
	AnswerQuestion(ctx context.Context, apiKey, id, text string) error
}

type Assistant interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

type Enricher interface {
	EnrichProducts(ctx context.Context, shop *domain.Shop, nmIDs []int64) *domain.EnrichStats
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Publisher interface {
	PublishReply(ctx context.Context, event *domain.ReplyEvent) error
	Close() error
}
