package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"feedback_responder/internal/config"
	"feedback_responder/internal/domain"
	"feedback_responder/internal/marketplace"
)

const fallbackProductTitle = "Untitled"

// ImportService pulls unanswered reviews and questions from the marketplace
// into local storage. Items are deduplicated by external id; products are
// created on first sighting and enriched after the page loop.
type ImportService struct {
	market    Marketplace
	products  ProductStore
	reviews   ReviewStore
	questions QuestionStore
	enricher  Enricher
	txManager TransactionManager
	logger    *slog.Logger
	cfg       config.ImportConfig
}

func NewImportService(
	market Marketplace,
	products ProductStore,
	reviews ReviewStore,
	questions QuestionStore,
	enricher Enricher,
	txManager TransactionManager,
	logger *slog.Logger,
	cfg config.ImportConfig,
) *ImportService {
	return &ImportService{
		market:    market,
		products:  products,
		reviews:   reviews,
		questions: questions,
		enricher:  enricher,
		txManager: txManager,
		logger:    logger.With("component", "import"),
		cfg:       cfg,
	}
}

// ImportReviews imports up to requested unanswered reviews for the shop,
// most recent first. When requested <= 0 the count endpoint decides the
// total. A failed page aborts the remaining pagination but keeps rows from
// prior pages; the underlying error is returned alongside the stats.
func (s *ImportService) ImportReviews(ctx context.Context, shop *domain.Shop, requested int) (*domain.ImportStats, error) {
	start := time.Now()

	total := requested
	if total <= 0 {
		var err error
		total, err = s.market.CountFeedbacks(ctx, shop.APIKey)
		if err != nil {
			return nil, err
		}
	}

	s.logger.Info("starting review import", "shop_id", shop.ID, "total", total)

	stats := &domain.ImportStats{Total: total}
	touched := make(map[int64]struct{})
	var pageErr error

	for skip := 0; skip < total; {
		take := min(s.cfg.BatchSize, total-skip)

		items, err := s.market.ListFeedbacks(ctx, shop.APIKey, take, skip)
		if err != nil {
			pageErr = err
			break
		}
		if len(items) == 0 {
			break
		}

		for i := range items {
			imported, err := s.importFeedback(ctx, shop, &items[i])
			if err != nil {
				s.logger.Error("review import failed",
					"external_id", items[i].ID,
					"error", err,
				)
				stats.Skipped++
				continue
			}
			if !imported {
				stats.Skipped++
				continue
			}
			stats.Imported++
			touched[items[i].ProductDetails.NmID] = struct{}{}
		}

		skip += take
	}

	s.enrichTouched(ctx, shop, touched)

	stats.Duration = time.Since(start)
	s.logger.Info("review import completed",
		"shop_id", shop.ID,
		"total", stats.Total,
		"imported", stats.Imported,
		"skipped", stats.Skipped,
		"duration", stats.Duration,
	)

	return stats, pageErr
}

// ImportQuestions is the question analog of ImportReviews.
func (s *ImportService) ImportQuestions(ctx context.Context, shop *domain.Shop, requested int) (*domain.ImportStats, error) {
	start := time.Now()

	total := requested
	if total <= 0 {
		var err error
		total, err = s.market.CountQuestions(ctx, shop.APIKey)
		if err != nil {
			return nil, err
		}
	}

	s.logger.Info("starting question import", "shop_id", shop.ID, "total", total)

	stats := &domain.ImportStats{Total: total}
	touched := make(map[int64]struct{})
	var pageErr error

	for skip := 0; skip < total; {
		take := min(s.cfg.BatchSize, total-skip)

		items, err := s.market.ListQuestions(ctx, shop.APIKey, take, skip)
		if err != nil {
			pageErr = err
			break
		}
		if len(items) == 0 {
			break
		}

		for i := range items {
			imported, err := s.importQuestion(ctx, shop, &items[i])
			if err != nil {
				s.logger.Error("question import failed",
					"external_id", items[i].ID,
					"error", err,
				)
				stats.Skipped++
				continue
			}
			if !imported {
				stats.Skipped++
				continue
			}
			stats.Imported++
			touched[items[i].ProductDetails.NmID] = struct{}{}
		}

		skip += take
	}

	s.enrichTouched(ctx, shop, touched)

	stats.Duration = time.Since(start)
	s.logger.Info("question import completed",
		"shop_id", shop.ID,
		"total", stats.Total,
		"imported", stats.Imported,
		"skipped", stats.Skipped,
		"duration", stats.Duration,
	)

	return stats, pageErr
}

func (s *ImportService) importFeedback(ctx context.Context, shop *domain.Shop, fb *marketplace.Feedback) (bool, error) {
	if fb.ProductDetails.NmID == 0 {
		return false, nil
	}

	exists, err := s.reviews.ExistsByExternalID(ctx, fb.ID)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	review := &domain.Review{
		ExternalID:  fb.ID,
		Evaluation:  fb.ProductValuation,
		UserName:    optional(fb.UserName),
		Photos:      flattenPhotos(fb.PhotoLinks),
		Videos:      fb.Video,
		Pros:        optional(fb.Pros),
		Cons:        optional(fb.Cons),
		Text:        optional(fb.Text),
		Status:      domain.StatusNew,
		CreatedDate: parseCreatedDate(fb.CreatedDate, fb.ID, s.logger),
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		productID, err := s.products.FirstOrCreate(txCtx, &domain.Product{
			ShopID:   shop.ID,
			NmID:     fb.ProductDetails.NmID,
			Name:     productName(fb.ProductDetails.ProductName),
			Category: optional(fb.SubjectName),
		})
		if err != nil {
			return err
		}

		review.ProductID = productID
		_, err = s.reviews.Create(txCtx, review)
		return err
	})
	if err != nil {
		return false, err
	}

	return true, nil
}

func (s *ImportService) importQuestion(ctx context.Context, shop *domain.Shop, q *marketplace.Question) (bool, error) {
	if q.ProductDetails.NmID == 0 {
		return false, nil
	}

	exists, err := s.questions.ExistsByExternalID(ctx, q.ID)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	question := &domain.Question{
		ExternalID:  q.ID,
		UserName:    optional(q.UserName),
		Text:        optional(q.Text),
		Status:      domain.StatusNew,
		CreatedDate: parseCreatedDate(q.CreatedDate, q.ID, s.logger),
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		productID, err := s.products.FirstOrCreate(txCtx, &domain.Product{
			ShopID: shop.ID,
			NmID:   q.ProductDetails.NmID,
			Name:   productName(q.ProductDetails.ProductName),
		})
		if err != nil {
			return err
		}

		question.ProductID = productID
		_, err = s.questions.Create(txCtx, question)
		return err
	})
	if err != nil {
		return false, err
	}

	return true, nil
}

func (s *ImportService) enrichTouched(ctx context.Context, shop *domain.Shop, touched map[int64]struct{}) {
	if len(touched) == 0 {
		return
	}

	nmIDs := make([]int64, 0, len(touched))
	for id := range touched {
		nmIDs = append(nmIDs, id)
	}

	enrichStats := s.enricher.EnrichProducts(ctx, shop, nmIDs)
	s.logger.Info("products enriched",
		"shop_id", shop.ID,
		"requested", enrichStats.Requested,
		"updated", enrichStats.Updated,
		"missing", enrichStats.Missing,
		"failed_chunks", enrichStats.FailedChunks,
	)
}

// flattenPhotos keeps only the non-empty full-size URLs, serialized as a
// JSON list.
func flattenPhotos(links []marketplace.PhotoLink) *string {
	if len(links) == 0 {
		return nil
	}

	urls := make([]string, 0, len(links))
	for _, link := range links {
		if link.FullSize != "" {
			urls = append(urls, link.FullSize)
		}
	}
	if len(urls) == 0 {
		return nil
	}

	data, err := json.Marshal(urls)
	if err != nil {
		return nil
	}
	s := string(data)
	return &s
}

func parseCreatedDate(raw, externalID string, logger *slog.Logger) time.Time {
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		logger.Warn("failed to parse created date",
			"external_id", externalID,
			"date", raw,
		)
		return time.Time{}
	}
	return t
}

func productName(name string) string {
	if name == "" {
		return fallbackProductTitle
	}
	return name
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
