package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"feedback_responder/internal/domain"
)

type QuestionStore struct {
	db *sqlx.DB
}

func NewQuestionStore(db *sqlx.DB) *QuestionStore {
	return &QuestionStore{db: db}
}

func (s *QuestionStore) ExistsByExternalID(ctx context.Context, externalID string) (bool, error) {
	var exists bool
	err := GetExecutor(ctx, s.db).QueryRowxContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM questions WHERE external_id = $1)`,
		externalID,
	).Scan(&exists)
	return exists, err
}

func (s *QuestionStore) Create(ctx context.Context, question *domain.Question) (int64, error) {
	query := `
		INSERT INTO questions (
			external_id, product_id, user_name, text,
			sentiment, topic_id, response, status, created_date
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
		RETURNING id`

	var id int64
	err := GetExecutor(ctx, s.db).QueryRowxContext(ctx, query,
		question.ExternalID,
		question.ProductID,
		question.UserName,
		question.Text,
		question.Sentiment,
		question.TopicID,
		question.Response,
		question.Status,
		question.CreatedDate,
	).Scan(&id)
	if err != nil {
		return 0, err
	}

	question.ID = id
	return id, nil
}

func (s *QuestionStore) ListByStatus(ctx context.Context, shopID int64, status domain.Status) ([]domain.Question, error) {
	query := `
		SELECT q.id, q.external_id, q.product_id, p.name AS product_name,
		       q.user_name, q.text, q.sentiment, q.topic_id, q.response,
		       q.status, q.created_date
		FROM questions q
		INNER JOIN products p ON p.id = q.product_id
		WHERE p.shop_id = $1 AND q.status = $2
		ORDER BY q.created_date`

	var questions []domain.Question
	err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &questions, query, shopID, status)
	return questions, err
}

func (s *QuestionStore) UpdateAnalysis(ctx context.Context, question *domain.Question) error {
	query := `
		UPDATE questions SET
			sentiment = $2,
			topic_id = $3,
			response = $4,
			status = $5
		WHERE id = $1`

	_, err := GetExecutor(ctx, s.db).ExecContext(ctx, query,
		question.ID,
		question.Sentiment,
		question.TopicID,
		question.Response,
		question.Status,
	)
	return err
}

func (s *QuestionStore) MarkPublished(ctx context.Context, id int64) error {
	result, err := GetExecutor(ctx, s.db).ExecContext(ctx,
		`UPDATE questions SET status = $2 WHERE id = $1 AND status = $3`,
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
