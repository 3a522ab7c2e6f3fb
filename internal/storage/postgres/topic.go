package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"feedback_responder/internal/domain"
)

type TopicStore struct {
	db *sqlx.DB
}

func NewTopicStore(db *sqlx.DB) *TopicStore {
	return &TopicStore{db: db}
}

// TopicsByName returns the taxonomy's full name-to-id dictionary. Topics
// are a read-only lookup seeded by migration.
func (s *TopicStore) TopicsByName(ctx context.Context, taxonomy domain.Taxonomy) (map[string]int64, error) {
	table := "review_topics"
	if taxonomy == domain.TaxonomyQuestion {
		table = "question_topics"
	}

	var topics []domain.Topic
	err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &topics,
		`SELECT id, name FROM `+table,
	)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]int64, len(topics))
	for _, t := range topics {
		byName[t.Name] = t.ID
	}
	return byName, nil
}
