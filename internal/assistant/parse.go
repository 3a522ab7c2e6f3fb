package assistant

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ReviewAnalysis is the model's structured verdict on a review.
type ReviewAnalysis struct {
	Topic string `json:"topic"`
	Tone  string `json:"tone"`
	Reply string `json:"reply"`
}

// QuestionAnalysis is the model's structured verdict on a question. The
// Sentiment field carries the Typical/Atypical tag.
type QuestionAnalysis struct {
	Topic     string `json:"topic"`
	Reply     string `json:"reply"`
	Sentiment string `json:"sentiment"`
}

// ParseReviewAnalysis decodes a completion into a ReviewAnalysis,
// tolerating an optional markdown code fence around the JSON.
func ParseReviewAnalysis(content string) (*ReviewAnalysis, error) {
	var analysis ReviewAnalysis
	if err := decodeFenced(content, &analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}

// ParseQuestionAnalysis decodes a completion into a QuestionAnalysis,
// tolerating an optional markdown code fence around the JSON.
func ParseQuestionAnalysis(content string) (*QuestionAnalysis, error) {
	var analysis QuestionAnalysis
	if err := decodeFenced(content, &analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}

func decodeFenced(content string, out any) error {
	clean := StripFence(content)
	if clean == "" {
		return fmt.Errorf("empty completion")
	}
	if err := json.Unmarshal([]byte(clean), out); err != nil {
		return fmt.Errorf("decode completion: %w", err)
	}
	return nil
}

// StripFence removes a leading ``` or ```json fence and a trailing ```
// from a completion, if present.
func StripFence(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if rest, ok := strings.CutPrefix(s, "json"); ok {
			s = rest
		} else if rest, ok := strings.CutPrefix(s, "JSON"); ok {
			s = rest
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")

	return strings.TrimSpace(s)
}
