package domain

import (
	"errors"
	"time"
)

// ErrStatusConflict means a conditional status advance matched no row: the
// item was not in the expected prior status, likely due to a concurrent
// writer.
var ErrStatusConflict = errors.New("status changed concurrently")

// Status is the lifecycle stage of a review or question. Transitions are
// monotonic: new -> generated -> published, nothing moves backward.
type Status string

const (
	StatusNew       Status = "new"
	StatusGenerated Status = "generated"
	StatusPublished Status = "published"
)

// Next reports whether advancing to the given status is a legal transition.
func (s Status) Next(to Status) bool {
	switch s {
	case StatusNew:
		return to == StatusGenerated
	case StatusGenerated:
		return to == StatusPublished
	default:
		return false
	}
}

// Review is an imported customer review awaiting a drafted reply.
type Review struct {
	ID          int64     `db:"id"`
	ExternalID  string    `db:"external_id"`
	ProductID   int64     `db:"product_id"`
	ProductName string    `db:"product_name"` // joined, not a column
	Evaluation  int       `db:"evaluation"`
	UserName    *string   `db:"user_name"`
	Photos      *string   `db:"photos"` // JSON list of full-size URLs
	Videos      *string   `db:"videos"`
	Pros        *string   `db:"pros"`
	Cons        *string   `db:"cons"`
	Text        *string   `db:"text"`
	Sentiment   *string   `db:"sentiment"`
	TopicID     *int64    `db:"topic_id"`
	Response    *string   `db:"response"`
	Status      Status    `db:"status"`
	CreatedDate time.Time `db:"created_date"`
}

// Question is an imported customer question. The sentiment column carries
// the typicality tag (Typical / Atypical) instead of a tone.
type Question struct {
	ID          int64     `db:"id"`
	ExternalID  string    `db:"external_id"`
	ProductID   int64     `db:"product_id"`
	ProductName string    `db:"product_name"` // joined, not a column
	UserName    *string   `db:"user_name"`
	Text        *string   `db:"text"`
	Sentiment   *string   `db:"sentiment"`
	TopicID     *int64    `db:"topic_id"`
	Response    *string   `db:"response"`
	Status      Status    `db:"status"`
	CreatedDate time.Time `db:"created_date"`
}
