package assistant

import (
	"fmt"
	"strings"

	"feedback_responder/internal/domain"
)

const (
	ReviewSystemPrompt   = "You are an expert in analyzing marketplace customer reviews."
	QuestionSystemPrompt = "You are an expert in analyzing marketplace customer questions."

	fallbackClientName  = "Dear customer"
	fallbackProductName = "Not specified"
	noneValue           = "none"
)

// BuildReviewPrompt assembles the generation prompt for one review. The
// topic list is a closed choice set; the model must answer with a JSON
// object carrying topic, tone and reply.
func BuildReviewPrompt(review *domain.Review, topicNames []string) string {
	productName := review.ProductName
	if productName == "" {
		productName = fallbackProductName
	}
	clientName := fallbackClientName
	if review.UserName != nil && *review.UserName != "" {
		clientName = *review.UserName
	}
	evaluation := "not specified"
	if review.Evaluation > 0 {
		evaluation = fmt.Sprintf("%d", review.Evaluation)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Available topics: %s.\n\n", strings.Join(topicNames, ", "))
	b.WriteString("Imagine you are the best marketplace review specialist. Analyze the following review, which contains the product, pros, cons, a comment and a rating. ")
	fmt.Fprintf(&b, "Client name: %q. If a name is given, you must use it in the greeting.\n\n", clientName)
	fmt.Fprintf(&b, "Review rating: %s.\n\n", evaluation)
	b.WriteString("Determine:\n")
	b.WriteString("- the one topic that best characterizes the review;\n")
	b.WriteString("- the tone of the review (positive, negative, neutral);\n")
	fmt.Fprintf(&b, "- and compose a personalized, human reply, always starting with \"Hello, %s!\" (or an equivalent greeting).\n\n", clientName)
	b.WriteString("What the reply must include:\n")
	b.WriteString("Keep in mind:\n")
	b.WriteString("- If the rating is 1 or 2 but the review text is positive, add a note that the client may have made a mistake with the rating and should consider raising it.\n")
	b.WriteString("- If the numeric rating contradicts the emotional tone of the text, rely on the content of the text first.\n\n")
	b.WriteString("- If the review is positive:\n")
	b.WriteString("    * Thank the client;\n")
	b.WriteString("    * Say you are pleased;\n")
	b.WriteString("    * Invite them back or wish them a good day.\n")
	fmt.Fprintf(&b, "    * If the rating is 1 or 2 but the tone is positive, add a note that the client may have made a mistake with the rating and should consider raising it.\n")
	b.WriteString("- If the review is neutral:\n")
	b.WriteString("    * Thank the client;\n")
	b.WriteString("    * Show that you value the opinion;\n")
	b.WriteString("    * Say you will take everything into account.\n")
	b.WriteString("- If the review is negative:\n")
	b.WriteString("    * Apologize;\n")
	b.WriteString("    * Express sympathy;\n")
	b.WriteString("    * Promise to look into it;\n")
	b.WriteString("    * Offer to contact support.\n\n")
	b.WriteString("Here is the review:\n")
	fmt.Fprintf(&b, "Product: %s\n", productName)
	fmt.Fprintf(&b, "Pros: %s\n", orNone(review.Pros))
	fmt.Fprintf(&b, "Cons: %s\n", orNone(review.Cons))
	fmt.Fprintf(&b, "Comment: %s\n\n", orNone(review.Text))
	b.WriteString("Return JSON:\n")
	b.WriteString("{\n")
	b.WriteString("  \"topic\": \"the selected topic\",\n")
	b.WriteString("  \"tone\": \"the tone\",\n")
	b.WriteString("  \"reply\": \"the reply to the review\"\n")
	b.WriteString("}")

	return b.String()
}

// BuildQuestionPrompt assembles the generation prompt for one question.
// Besides topic and reply the model classifies the question as Typical or
// Atypical in the sentiment field.
func BuildQuestionPrompt(question *domain.Question, topicNames []string) string {
	productName := question.ProductName
	if productName == "" {
		productName = fallbackProductName
	}
	clientName := fallbackClientName
	if question.UserName != nil && *question.UserName != "" {
		clientName = *question.UserName
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Available topics: %s.\n\n", strings.Join(topicNames, ", "))
	b.WriteString("Imagine you are the best marketplace question specialist.\n")
	b.WriteString("Analyze the following question, taking the product name and the client name into account.\n")
	fmt.Fprintf(&b, "If a name is given, you must use it in the greeting (for example, \"Hello, %s!\").\n", clientName)
	b.WriteString("Pick the one topic that best characterizes the question and compose a personalized, human reply.\n\n")
	b.WriteString("Also rate how typical the question is:\n")
	b.WriteString("- If a confident, clear answer is possible without extra information, mark it \"Typical\".\n")
	b.WriteString("- If an employee needs to step in to clarify, mark it \"Atypical\".\n\n")
	b.WriteString("Question:\n")
	fmt.Fprintf(&b, "Product: %s\n", productName)
	fmt.Fprintf(&b, "Question: %s\n\n", orNone(question.Text))
	b.WriteString("Return JSON with the keys:\n")
	b.WriteString(" - topic: the selected topic (string)\n")
	b.WriteString(" - reply: the composed reply\n")
	b.WriteString(" - sentiment: \"Typical\" or \"Atypical\"")

	return b.String()
}

func orNone(s *string) string {
	if s == nil || *s == "" {
		return noneValue
	}
	return *s
}
