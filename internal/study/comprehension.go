package study

import (
	"context"
	"fmt"
	"strings"

	"holamundo/internal/domain"
)

// DefaultTiers is the order in which one question per difficulty is picked.
var DefaultTiers = []string{"beginner", "intermediate", "advanced"}

// ComprehensionFeedbacker generates feedback on a learner answer.
type ComprehensionFeedbacker interface {
	ComprehensionFeedback(ctx context.Context, question, studentAnswer, expectedAnswer, level string, testMode bool) (string, error)
}

// SelectQuestions picks the first question of each tier, in tier order.
// Tiers without a question are skipped.
func SelectQuestions(questions []domain.Question, tiers []string) []domain.Question {
	var out []domain.Question
	for _, tier := range tiers {
		for _, q := range questions {
			if strings.EqualFold(strings.TrimSpace(q.Difficulty), tier) {
				out = append(out, q)
				break
			}
		}
	}
	return out
}

// Comprehension holds answers and feedback keyed by selected question index.
type Comprehension struct {
	Questions []domain.Question
	answers   map[int]string
	feedback  map[int]string
}

func NewComprehension(selected []domain.Question) Comprehension {
	return Comprehension{
		Questions: selected,
		answers:   map[int]string{},
		feedback:  map[int]string{},
	}
}

func (c Comprehension) Answer(i int) (string, bool) {
	a, ok := c.answers[i]
	return a, ok
}

func (c Comprehension) Feedback(i int) (string, bool) {
	f, ok := c.feedback[i]
	return f, ok
}

// Answered returns how many questions have an answer.
func (c Comprehension) Answered() int { return len(c.answers) }

// Record stores answer and feedback for question i, replacing earlier ones.
func (c Comprehension) Record(i int, answer, feedback string) Comprehension {
	answers := make(map[int]string, len(c.answers)+1)
	for k, v := range c.answers {
		answers[k] = v
	}
	fb := make(map[int]string, len(c.feedback)+1)
	for k, v := range c.feedback {
		fb[k] = v
	}
	answers[i] = answer
	fb[i] = feedback
	c.answers = answers
	c.feedback = fb
	return c
}

// Submit requests feedback exactly once for answer and records the result.
// On error the state is returned unchanged.
func (c Comprehension) Submit(ctx context.Context, fb ComprehensionFeedbacker, i int, answer, level string, testMode bool) (Comprehension, error) {
	if i < 0 || i >= len(c.Questions) {
		return c, fmt.Errorf("question %d out of range", i)
	}
	if strings.TrimSpace(answer) == "" {
		return c, fmt.Errorf("answer is empty")
	}
	q := c.Questions[i]
	text, err := fb.ComprehensionFeedback(ctx, q.Question, answer, q.Answer, level, testMode)
	if err != nil {
		return c, err
	}
	return c.Record(i, answer, text), nil
}
