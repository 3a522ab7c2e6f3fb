package domain

import "time"

// ImportStats holds statistics about one import run.
type ImportStats struct {
	Total    int
	Imported int
	Skipped  int
	Duration time.Duration
}

// EnrichStats holds statistics about one enrichment run.
type EnrichStats struct {
	Requested    int
	Updated      int
	Missing      int
	FailedChunks int
}

// GenerationStats holds statistics about one bulk generation run.
type GenerationStats struct {
	Selected  int
	Generated int
	Failed    int
	Duration  time.Duration
}

// PublishStats holds statistics about one bulk publication run.
type PublishStats struct {
	Selected  int
	Published int
	Failed    int
}

// ReplyEvent is emitted after a reply is accepted by the marketplace.
type ReplyEvent struct {
	Kind        string    `json:"kind"` // "review" or "question"
	ExternalID  string    `json:"external_id"`
	ShopID      int64     `json:"shop_id"`
	TopicID     *int64    `json:"topic_id,omitempty"`
	Response    string    `json:"response"`
	PublishedAt time.Time `json:"published_at"`
}
