package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"feedback_responder/internal/domain"
)

var (
	// ErrMissingExternalID means the item has no marketplace id to answer.
	ErrMissingExternalID = errors.New("missing external id")
	// ErrEmptyResponse means there is no drafted reply to publish.
	ErrEmptyResponse = errors.New("empty response text")
	// ErrNotGenerated means the item has not reached the generated status.
	ErrNotGenerated = errors.New("reply is not in generated status")
)

// PublishService submits drafted replies back to the marketplace and
// advances items to the terminal status.
type PublishService struct {
	market    Marketplace
	reviews   ReviewStore
	questions QuestionStore
	publisher Publisher
	logger    *slog.Logger
}

func NewPublishService(
	market Marketplace,
	reviews ReviewStore,
	questions QuestionStore,
	publisher Publisher,
	logger *slog.Logger,
) *PublishService {
	return &PublishService{
		market:    market,
		reviews:   reviews,
		questions: questions,
		publisher: publisher,
		logger:    logger.With("component", "publish"),
	}
}

// PublishReview submits one drafted review reply. Preconditions are checked
// before any external call; the status advance is conditional on the row
// still being in the generated status.
func (s *PublishService) PublishReview(ctx context.Context, shop *domain.Shop, review *domain.Review) error {
	if review.ExternalID == "" {
		return ErrMissingExternalID
	}
	if review.Response == nil || *review.Response == "" {
		return ErrEmptyResponse
	}

	if err := s.market.AnswerFeedback(ctx, shop.APIKey, review.ExternalID, *review.Response); err != nil {
		return fmt.Errorf("answer feedback: %w", err)
	}

	if err := s.reviews.MarkPublished(ctx, review.ID); err != nil {
		return fmt.Errorf("mark review published: %w", err)
	}
	review.Status = domain.StatusPublished

	s.emit(ctx, "review", shop, review.ExternalID, review.TopicID, *review.Response)
	return nil
}

// PublishQuestion submits one drafted question reply. Questions must have
// reached the generated status before publication.
func (s *PublishService) PublishQuestion(ctx context.Context, shop *domain.Shop, question *domain.Question) error {
	if question.ExternalID == "" {
		return ErrMissingExternalID
	}
	if question.Response == nil || *question.Response == "" {
		return ErrEmptyResponse
	}
	if !question.Status.Next(domain.StatusPublished) {
		return ErrNotGenerated
	}

	if err := s.market.AnswerQuestion(ctx, shop.APIKey, question.ExternalID, *question.Response); err != nil {
		return fmt.Errorf("answer question: %w", err)
	}

	if err := s.questions.MarkPublished(ctx, question.ID); err != nil {
		return fmt.Errorf("mark question published: %w", err)
	}
	question.Status = domain.StatusPublished

	s.emit(ctx, "question", shop, question.ExternalID, question.TopicID, *question.Response)
	return nil
}

// PublishReviews submits every generated review reply for the shop,
// isolating per-item failures.
func (s *PublishService) PublishReviews(ctx context.Context, shop *domain.Shop) (*domain.PublishStats, error) {
	items, err := s.reviews.ListByStatus(ctx, shop.ID, domain.StatusGenerated)
	if err != nil {
		return nil, fmt.Errorf("list generated reviews: %w", err)
	}

	stats := &domain.PublishStats{Selected: len(items)}
	for i := range items {
		if err := s.PublishReview(ctx, shop, &items[i]); err != nil {
			s.logger.Error("review publication failed",
				"review_id", items[i].ID,
				"external_id", items[i].ExternalID,
				"error", err,
			)
			stats.Failed++
			continue
		}
		stats.Published++
	}

	s.logger.Info("review publication completed",
		"shop_id", shop.ID,
		"selected", stats.Selected,
		"published", stats.Published,
		"failed", stats.Failed,
	)
	return stats, nil
}

// PublishQuestions submits every generated question reply for the shop.
func (s *PublishService) PublishQuestions(ctx context.Context, shop *domain.Shop) (*domain.PublishStats, error) {
	items, err := s.questions.ListByStatus(ctx, shop.ID, domain.StatusGenerated)
	if err != nil {
		return nil, fmt.Errorf("list generated questions: %w", err)
	}

	stats := &domain.PublishStats{Selected: len(items)}
	for i := range items {
		if err := s.PublishQuestion(ctx, shop, &items[i]); err != nil {
			s.logger.Error("question publication failed",
				"question_id", items[i].ID,
				"external_id", items[i].ExternalID,
				"error", err,
			)
			stats.Failed++
			continue
		}
		stats.Published++
	}

	s.logger.Info("question publication completed",
		"shop_id", shop.ID,
		"selected", stats.Selected,
		"published", stats.Published,
		"failed", stats.Failed,
	)
	return stats, nil
}

func (s *PublishService) emit(ctx context.Context, kind string, shop *domain.Shop, externalID string, topicID *int64, response string) {
	if s.publisher == nil {
		return
	}

	event := &domain.ReplyEvent{
		Kind:        kind,
		ExternalID:  externalID,
		ShopID:      shop.ID,
		TopicID:     topicID,
		Response:    response,
		PublishedAt: time.Now().UTC(),
	}
	if err := s.publisher.PublishReply(ctx, event); err != nil {
		s.logger.Warn("reply event publish failed",
			"kind", kind,
			"external_id", externalID,
			"error", err,
		)
	}
}
