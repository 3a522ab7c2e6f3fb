package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"feedback_responder/internal/domain"
)

type ReviewStore struct {
	db *sqlx.DB
}

func NewReviewStore(db *sqlx.DB) *ReviewStore {
	return &ReviewStore{db: db}
}

func (s *ReviewStore) ExistsByExternalID(ctx context.Context, externalID string) (bool, error) {
	var exists bool
	err := GetExecutor(ctx, s.db).QueryRowxContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM reviews WHERE external_id = $1)`,
		externalID,
	).Scan(&exists)
	return exists, err
}

func (s *ReviewStore) Create(ctx context.Context, review *domain.Review) (int64, error) {
	query := `
		INSERT INTO reviews (
			external_id, product_id, evaluation, user_name, photos, videos,
			pros, cons, text, sentiment, topic_id, response, status, created_date
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		)
		RETURNING id`

	var id int64
	err := GetExecutor(ctx, s.db).QueryRowxContext(ctx, query,
		review.ExternalID,
		review.ProductID,
		review.Evaluation,
		review.UserName,
		review.Photos,
		review.Videos,
		review.Pros,
		review.Cons,
		review.Text,
		review.Sentiment,
		review.TopicID,
		review.Response,
		review.Status,
		review.CreatedDate,
	).Scan(&id)
	if err != nil {
		return 0, err
	}

	review.ID = id
	return id, nil
}

// ListByStatus returns the shop's reviews in the given status, oldest
// first, with the product name joined in for prompt building.
func (s *ReviewStore) ListByStatus(ctx context.Context, shopID int64, status domain.Status) ([]domain.Review, error) {
	query := `
		SELECT r.id, r.external_id, r.product_id, p.name AS product_name,
		       r.evaluation, r.user_name, r.photos, r.videos, r.pros, r.cons,
		       r.text, r.sentiment, r.topic_id, r.response, r.status, r.created_date
		FROM reviews r
		INNER JOIN products p ON p.id = r.product_id
		WHERE p.shop_id = $1 AND r.status = $2
		ORDER BY r.created_date`

	var reviews []domain.Review
	err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &reviews, query, shopID, status)
	return reviews, err
}

// UpdateAnalysis persists the generation outcome.
func (s *ReviewStore) UpdateAnalysis(ctx context.Context, review *domain.Review) error {
	query := `
		UPDATE reviews SET
			sentiment = $2,
			topic_id = $3,
			response = $4,
			status = $5
		WHERE id = $1`

	_, err := GetExecutor(ctx, s.db).ExecContext(ctx, query,
		review.ID,
		review.Sentiment,
		review.TopicID,
		review.Response,
		review.Status,
	)
	return err
}

// MarkPublished advances the review to the terminal status, conditional on
// it still being generated. Zero rows affected is a conflict.
func (s *ReviewStore) MarkPublished(ctx context.Context, id int64) error {
	result, err := GetExecutor(ctx, s.db).ExecContext(ctx,
		`UPDATE reviews SET status = $2 WHERE id = $1 AND status = $3`,
		id, domain.StatusPublished, domain.StatusGenerated,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrStatusConflict
	}
	return nil
}
