package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// StatusError is a non-2xx reply from the marketplace. Callers surface the
// status to the actor and abort the current stage; there is no retry.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("marketplace: unexpected status %d", e.Status)
}

// Config holds marketplace client configuration.
type Config struct {
	FeedbackBaseURL string
	ContentBaseURL  string
	Timeout         time.Duration
}

// Client is a thin synchronous client for the marketplace feedback and
// content APIs. The per-shop bearer key is passed on every call.
type Client struct {
	httpClient      *http.Client
	feedbackBaseURL string
	contentBaseURL  string
	logger          *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		feedbackBaseURL: cfg.FeedbackBaseURL,
		contentBaseURL:  cfg.ContentBaseURL,
		logger:          logger.With("component", "marketplace"),
	}
}

// CountFeedbacks returns the number of unanswered reviews for the all-time
// window.
func (c *Client) CountFeedbacks(ctx context.Context, apiKey string) (int, error) {
	return c.count(ctx, apiKey, "/feedbacks/count")
}

// CountQuestions returns the number of unanswered questions for the all-time
// window.
func (c *Client) CountQuestions(ctx context.Context, apiKey string) (int, error) {
	return c.count(ctx, apiKey, "/questions/count")
}

func (c *Client) count(ctx context.Context, apiKey, path string) (int, error) {
	params := url.Values{}
	params.Set("dateFrom", "0")
	params.Set("dateTo", strconv.FormatInt(time.Now().Unix(), 10))
	params.Set("isAnswered", "false")

	var resp countResponse
	if err := c.get(ctx, apiKey, c.feedbackBaseURL+path, params, &resp); err != nil {
		return 0, err
	}
	return resp.Data, nil
}

// ListFeedbacks fetches one page of unanswered reviews, most recent first.
func (c *Client) ListFeedbacks(ctx context.Context, apiKey string, take, skip int) ([]Feedback, error) {
	var resp feedbackListResponse
	if err := c.get(ctx, apiKey, c.feedbackBaseURL+"/feedbacks", listParams(take, skip), &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("marketplace: malformed feedback list payload")
	}
	return resp.Data.Feedbacks, nil
}

// ListQuestions fetches one page of unanswered questions, most recent first.
func (c *Client) ListQuestions(ctx context.Context, apiKey string, take, skip int) ([]Question, error) {
	var resp questionListResponse
	if err := c.get(ctx, apiKey, c.feedbackBaseURL+"/questions", listParams(take, skip), &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("marketplace: malformed question list payload")
	}
	return resp.Data.Questions, nil
}

func listParams(take, skip int) url.Values {
	params := url.Values{}
	params.Set("isAnswered", "false")
	params.Set("take", strconv.Itoa(take))
	params.Set("skip", strconv.Itoa(skip))
	params.Set("order", "dateDesc")
	return params
}

// FetchCards fetches the product cards for the given item ids. Results that
// the upstream paginates are drained by following the returned cursor until
// a page comes back smaller than the limit.
func (c *Client) FetchCards(ctx context.Context, apiKey string, nmIDs []int64, limit int) ([]Card, error) {
	var all []Card
	cursor := cardsCursor{Limit: limit}

	for {
		body := cardsRequest{
			Settings: cardsSettings{
				Filter: cardsFilter{WithPhoto: -1},
				Cursor: cursor,
			},
			NmIDs: nmIDs,
		}

		var resp cardsResponse
		if err := c.post(ctx, apiKey, http.MethodPost, c.contentBaseURL+"/get/cards/list", body, &resp); err != nil {
			return nil, err
		}

		all = append(all, resp.Cards...)

		if len(resp.Cards) < limit || resp.Cursor == nil || resp.Cursor.UpdatedAt == "" {
			break
		}
		cursor = cardsCursor{
			Limit:     limit,
			UpdatedAt: resp.Cursor.UpdatedAt,
			NmID:      resp.Cursor.NmID,
		}
	}

	return all, nil
}

// AnswerFeedback submits a drafted reply to a review.
func (c *Client) AnswerFeedback(ctx context.Context, apiKey, id, text string) error {
	body := answerFeedbackRequest{ID: id, Text: text}
	return c.post(ctx, apiKey, http.MethodPost, c.feedbackBaseURL+"/feedbacks/answer", body, nil)
}

// AnswerQuestion submits a drafted reply to a question and marks it viewed.
func (c *Client) AnswerQuestion(ctx context.Context, apiKey, id, text string) error {
	body := answerQuestionRequest{ID: id, Text: text, WasViewed: true}
	return c.post(ctx, apiKey, http.MethodPatch, c.feedbackBaseURL+"/questions", body, nil)
}

func (c *Client) get(ctx context.Context, apiKey, rawURL string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, apiKey, method, rawURL string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Error("marketplace request failed",
			"method", req.Method,
			"url", req.URL.Path,
			"status", resp.StatusCode,
			"body", string(body),
		)
		return &StatusError{Status: resp.StatusCode, Body: string(body)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
