package marketplace

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	client := New(Config{
		FeedbackBaseURL: server.URL,
		ContentBaseURL:  server.URL,
		Timeout:         5 * time.Second,
	}, logger)

	return client, server
}

func TestCountFeedbacks(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/feedbacks/count", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		q := r.URL.Query()
		assert.Equal(t, "0", q.Get("dateFrom"))
		assert.Equal(t, "false", q.Get("isAnswered"))
		assert.NotEmpty(t, q.Get("dateTo"))

		_ = json.NewEncoder(w).Encode(map[string]any{"data": 17})
	}))

	count, err := client.CountFeedbacks(context.Background(), "test-key")

	require.NoError(t, err)
	assert.Equal(t, 17, count)
}

func TestListFeedbacks(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/feedbacks", r.URL.Path)

		q := r.URL.Query()
		assert.Equal(t, "30", q.Get("take"))
		assert.Equal(t, "60", q.Get("skip"))
		assert.Equal(t, "dateDesc", q.Get("order"))
		assert.Equal(t, "false", q.Get("isAnswered"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"feedbacks": []map[string]any{
					{
						"id":               "fb-1",
						"userName":         "Anna",
						"text":             "Great mug",
						"productValuation": 5,
						"productDetails":   map[string]any{"nmId": 42, "productName": "Mug"},
					},
				},
			},
		})
	}))

	items, err := client.ListFeedbacks(context.Background(), "test-key", 30, 60)

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "fb-1", items[0].ID)
	assert.Equal(t, int64(42), items[0].ProductDetails.NmID)
	assert.Equal(t, 5, items[0].ProductValuation)
}

func TestListFeedbacks_MalformedPayload(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": nil})
	}))

	_, err := client.ListFeedbacks(context.Background(), "test-key", 30, 0)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed feedback list payload")
}

func TestListQuestions_StatusError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":["bad token"]}`))
	}))

	_, err := client.ListQuestions(context.Background(), "bad-key", 30, 0)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.Status)
	assert.Contains(t, statusErr.Body, "bad token")
}

func TestFetchCards_FollowsCursor(t *testing.T) {
	var requests []cardsRequest

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/get/cards/list", r.URL.Path)

		var req cardsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		requests = append(requests, req)

		assert.Equal(t, -1, req.Settings.Filter.WithPhoto)
		assert.Equal(t, []int64{1, 2, 3}, req.NmIDs)

		if len(requests) == 1 {
			// Full first page, cursor points at the next one.
			_ = json.NewEncoder(w).Encode(map[string]any{
				"cards": []map[string]any{
					{"nmID": 1, "subjectName": "Mugs"},
					{"nmID": 2, "subjectName": "Mugs"},
				},
				"cursor": map[string]any{"updatedAt": "2025-06-01T00:00:00Z", "nmID": 2, "total": 3},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"cards":  []map[string]any{{"nmID": 3, "subjectName": "Plates"}},
			"cursor": map[string]any{"updatedAt": "2025-06-02T00:00:00Z", "nmID": 3, "total": 3},
		})
	}))

	cards, err := client.FetchCards(context.Background(), "test-key", []int64{1, 2, 3}, 2)

	require.NoError(t, err)
	require.Len(t, cards, 3)
	require.Len(t, requests, 2)
	assert.Empty(t, requests[0].Settings.Cursor.UpdatedAt)
	assert.Equal(t, "2025-06-01T00:00:00Z", requests[1].Settings.Cursor.UpdatedAt)
	assert.Equal(t, int64(2), requests[1].Settings.Cursor.NmID)
}

func TestAnswerFeedback(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/feedbacks/answer", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "fb-1", body["id"])
		assert.Equal(t, "Thank you!", body["text"])

		w.WriteHeader(http.StatusNoContent)
	}))

	err := client.AnswerFeedback(context.Background(), "test-key", "fb-1", "Thank you!")
	assert.NoError(t, err)
}

func TestAnswerQuestion(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/questions", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "q-1", body["id"])
		assert.Equal(t, "Yes, it is.", body["text"])
		assert.Equal(t, true, body["wasViewed"])

		w.WriteHeader(http.StatusOK)
	}))

	err := client.AnswerQuestion(context.Background(), "test-key", "q-1", "Yes, it is.")
	assert.NoError(t, err)
}
