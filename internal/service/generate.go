package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"feedback_responder/internal/assistant"
	"feedback_responder/internal/config"
	"feedback_responder/internal/domain"
)

// ErrAlreadyGenerated means the single-item entry point was called on an
// item past the new status while regeneration is disabled.
var ErrAlreadyGenerated = errors.New("item already has a generated reply")

// GenerateService drafts replies for imported items with the language
// model. Bulk runs select status-new items only; the single-item entry
// point carries a configurable status guard.
type GenerateService struct {
	reviews   ReviewStore
	questions QuestionStore
	topics    TopicStore
	assistant Assistant
	logger    *slog.Logger
	cfg       config.GenerationConfig
}

func NewGenerateService(
	reviews ReviewStore,
	questions QuestionStore,
	topics TopicStore,
	llm Assistant,
	logger *slog.Logger,
	cfg config.GenerationConfig,
) *GenerateService {
	return &GenerateService{
		reviews:   reviews,
		questions: questions,
		topics:    topics,
		assistant: llm,
		logger:    logger.With("component", "generate"),
		cfg:       cfg,
	}
}

// GenerateReviews drafts a reply for every status-new review of the shop.
// Per-item failures are logged and the loop continues.
func (s *GenerateService) GenerateReviews(ctx context.Context, shop *domain.Shop) (*domain.GenerationStats, error) {
	start := time.Now()

	topics, err := s.topics.TopicsByName(ctx, domain.TaxonomyReview)
	if err != nil {
		return nil, fmt.Errorf("load review topics: %w", err)
	}

	items, err := s.reviews.ListByStatus(ctx, shop.ID, domain.StatusNew)
	if err != nil {
		return nil, fmt.Errorf("list new reviews: %w", err)
	}

	stats := &domain.GenerationStats{Selected: len(items)}
	for i := range items {
		if err := s.generateReview(ctx, &items[i], topics); err != nil {
			s.logger.Error("review generation failed",
				"review_id", items[i].ID,
				"external_id", items[i].ExternalID,
				"error", err,
			)
			stats.Failed++
			continue
		}
		stats.Generated++
	}

	stats.Duration = time.Since(start)
	s.logger.Info("review generation completed",
		"shop_id", shop.ID,
		"selected", stats.Selected,
		"generated", stats.Generated,
		"failed", stats.Failed,
		"duration", stats.Duration,
	)

	return stats, nil
}

// GenerateQuestions drafts a reply for every status-new question of the
// shop.
func (s *GenerateService) GenerateQuestions(ctx context.Context, shop *domain.Shop) (*domain.GenerationStats, error) {
	start := time.Now()

	topics, err := s.topics.TopicsByName(ctx, domain.TaxonomyQuestion)
	if err != nil {
		return nil, fmt.Errorf("load question topics: %w", err)
	}

	items, err := s.questions.ListByStatus(ctx, shop.ID, domain.StatusNew)
	if err != nil {
		return nil, fmt.Errorf("list new questions: %w", err)
	}

	stats := &domain.GenerationStats{Selected: len(items)}
	for i := range items {
		if err := s.generateQuestion(ctx, &items[i], topics); err != nil {
			s.logger.Error("question generation failed",
				"question_id", items[i].ID,
				"external_id", items[i].ExternalID,
				"error", err,
			)
			stats.Failed++
			continue
		}
		stats.Generated++
	}

	stats.Duration = time.Since(start)
	s.logger.Info("question generation completed",
		"shop_id", shop.ID,
		"selected", stats.Selected,
		"generated", stats.Generated,
		"failed", stats.Failed,
		"duration", stats.Duration,
	)

	return stats, nil
}

// GenerateReview drafts a reply for a single review regardless of bulk
// selection. Unless regeneration is allowed, items past the new status are
// rejected.
func (s *GenerateService) GenerateReview(ctx context.Context, review *domain.Review) error {
	if !s.cfg.AllowRegenerate && !review.Status.Next(domain.StatusGenerated) {
		return ErrAlreadyGenerated
	}

	topics, err := s.topics.TopicsByName(ctx, domain.TaxonomyReview)
	if err != nil {
		return fmt.Errorf("load review topics: %w", err)
	}
	return s.generateReview(ctx, review, topics)
}

// GenerateQuestion is the question analog of GenerateReview.
func (s *GenerateService) GenerateQuestion(ctx context.Context, question *domain.Question) error {
	if !s.cfg.AllowRegenerate && !question.Status.Next(domain.StatusGenerated) {
		return ErrAlreadyGenerated
	}

	topics, err := s.topics.TopicsByName(ctx, domain.TaxonomyQuestion)
	if err != nil {
		return fmt.Errorf("load question topics: %w", err)
	}
	return s.generateQuestion(ctx, question, topics)
}

func (s *GenerateService) generateReview(ctx context.Context, review *domain.Review, topics map[string]int64) error {
	prompt := assistant.BuildReviewPrompt(review, sortedNames(topics))

	content, err := s.assistant.Complete(ctx, assistant.ReviewSystemPrompt, prompt)
	if err != nil {
		return fmt.Errorf("complete: %w", err)
	}

	analysis, err := assistant.ParseReviewAnalysis(content)
	if err != nil {
		return fmt.Errorf("parse completion: %w", err)
	}

	// Unknown topic names leave the reference unset; no fuzzy matching.
	if id, ok := topics[analysis.Topic]; ok {
		review.TopicID = &id
	}
	review.Sentiment = optional(analysis.Tone)
	review.Response = optional(analysis.Reply)
	review.Status = domain.StatusGenerated

	if err := s.reviews.UpdateAnalysis(ctx, review); err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	return nil
}

func (s *GenerateService) generateQuestion(ctx context.Context, question *domain.Question, topics map[string]int64) error {
	prompt := assistant.BuildQuestionPrompt(question, sortedNames(topics))

	content, err := s.assistant.Complete(ctx, assistant.QuestionSystemPrompt, prompt)
	if err != nil {
		return fmt.Errorf("complete: %w", err)
	}

	analysis, err := assistant.ParseQuestionAnalysis(content)
	if err != nil {
		return fmt.Errorf("parse completion: %w", err)
	}

	if id, ok := topics[analysis.Topic]; ok {
		question.TopicID = &id
	}
	question.Sentiment = optional(analysis.Sentiment)
	question.Response = optional(analysis.Reply)
	question.Status = domain.StatusGenerated

	if err := s.questions.UpdateAnalysis(ctx, question); err != nil {
		return fmt.Errorf("update question: %w", err)
	}
	return nil
}

func sortedNames(topics map[string]int64) []string {
	names := make([]string, 0, len(topics))
	for name := range topics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
