package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"holamundo/internal/domain"
	"holamundo/internal/llm"
	"holamundo/internal/prompt"
)

// ContextSeparator joins retrieved chunks into the shared context block.
const ContextSeparator = "\n\n---\n\n"

const DefaultParallelism = 4

// Orchestrator renders every prompt template against the retrieved context
// and collects the backend responses by template name.
type Orchestrator struct {
	templates   []domain.PromptTemplate
	gen         domain.Generator
	model       string
	parallelism int
	logger      *zap.Logger
}

func NewOrchestrator(templates []domain.PromptTemplate, gen domain.Generator, model string, parallelism int, logger *zap.Logger) *Orchestrator {
	if parallelism <= 0 {
		parallelism = DefaultParallelism
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		templates:   templates,
		gen:         gen,
		model:       model,
		parallelism: parallelism,
		logger:      logger,
	}
}

// Templates returns the loaded template names in load order.
func (o *Orchestrator) Templates() []string {
	names := make([]string, len(o.templates))
	for i, t := range o.templates {
		names[i] = t.Name
	}
	return names
}

// JoinContext builds the context block shared by all templates of a run.
func JoinContext(chunks []domain.Chunk) string {
	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	return strings.Join(texts, ContextSeparator)
}

// BuildPrompt frames a rendered template body with the level and the article
// excerpts it refers to.
func BuildPrompt(level, contextBlock, body string) string {
	var b strings.Builder
	b.WriteString("Student level: ")
	b.WriteString(level)
	b.WriteString("\n\nArticle excerpts:\n")
	b.WriteString(contextBlock)
	b.WriteString("\n")
	b.WriteString(llm.ExcerptEnd)
	b.WriteString("\n\n")
	b.WriteString(strings.TrimSpace(body))
	return b.String()
}

// RunAll sends one prompt per template and returns the responses keyed by
// template name. The first backend failure cancels the remaining calls and
// no partial result is returned.
func (o *Orchestrator) RunAll(ctx context.Context, chunks []domain.Chunk, level string, testMode bool) (domain.GenerationResult, error) {
	if len(o.templates) == 0 {
		return nil, fmt.Errorf("no prompt templates loaded")
	}
	contextBlock := JoinContext(chunks)
	prompts := make([]string, len(o.templates))
	for i, t := range o.templates {
		body, err := prompt.Render(t, prompt.Vars{Level: level, Context: contextBlock})
		if err != nil {
			return nil, err
		}
		prompts[i] = BuildPrompt(level, contextBlock, body)
	}

	outputs := make([]string, len(o.templates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.parallelism)
	for i := range o.templates {
		g.Go(func() error {
			start := time.Now()
			out, err := o.gen.Call(gctx, prompts[i], o.model, testMode)
			if err != nil {
				return fmt.Errorf("template %s: %w", o.templates[i].Name, err)
			}
			o.logger.Debug("template generated",
				zap.String("template", o.templates[i].Name),
				zap.Int("chars", len(out)),
				zap.Duration("elapsed", time.Since(start)))
			outputs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := make(domain.GenerationResult, len(o.templates))
	for i, t := range o.templates {
		res[t.Name] = outputs[i]
	}
	return res, nil
}

// SentenceFeedback asks the backend to review a practice sentence built
// around targetWord.
func (o *Orchestrator) SentenceFeedback(ctx context.Context, sentence, targetWord, level string, testMode bool) (string, error) {
	p := fmt.Sprintf(`A %s Spanish student practised the target word in their own sentence.

Target word: %s
Student sentence: %s

Reply in at most four short sentences:
1. Say whether the sentence is grammatically correct and fix any mistakes.
2. Suggest a more natural way to say it.
3. End with a short encouragement.`, level, targetWord, sentence)
	return o.feedback(ctx, "sentence", p, testMode)
}

// ComprehensionFeedback asks the backend to assess a reading answer against
// the expected answer.
func (o *Orchestrator) ComprehensionFeedback(ctx context.Context, question, studentAnswer, expectedAnswer, level string, testMode bool) (string, error) {
	p := fmt.Sprintf(`A %s Spanish student answered a reading comprehension item.

Question: %s
Expected answer: %s
Student answer: %s

Reply in at most four short sentences:
1. Assess how accurate the answer is compared with the expected answer.
2. Comment on the quality of the Spanish used.
3. End with a short encouragement.`, level, question, expectedAnswer, studentAnswer)
	return o.feedback(ctx, "comprehension", p, testMode)
}

func (o *Orchestrator) feedback(ctx context.Context, kind, p string, testMode bool) (string, error) {
	start := time.Now()
	out, err := o.gen.Call(ctx, p, o.model, testMode)
	if err != nil {
		return "", fmt.Errorf("%s feedback: %w", kind, err)
	}
	o.logger.Debug("feedback generated", zap.String("kind", kind), zap.Duration("elapsed", time.Since(start)))
	return strings.TrimSpace(out), nil
}
