package domain

import "context"

// Chunk is a contiguous word window of the source text, the unit of retrieval.
// ID is the 0-based position in chunker output order.
type Chunk struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// SearchHit is one similarity index match.
type SearchHit struct {
	ChunkID int
	Score   float32
}

// PromptTemplate is a named generation template.
type PromptTemplate struct {
	Name string
	Body string
}

// GenerationResult maps template name to the raw generated output.
// Values are usually JSON but must be treated as opaque text until decoded.
type GenerationResult map[string]string

// VocabularyItem is one generated flashcard entry.
type VocabularyItem struct {
	Spanish string `json:"spanish"`
	English string `json:"english"`
	POS     string `json:"pos"`
	Example string `json:"example,omitempty"`
}

// Question is one generated comprehension question.
type Question struct {
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Difficulty string `json:"difficulty"`
}

// Chunker splits raw text into overlapping word windows.
type Chunker interface {
	Chunk(text string) []Chunk
}

// Embedder converts texts into L2-normalized vectors, one per input, same order.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Index stores chunk vectors and answers top-k inner product queries.
// Insertion order defines the chunk id of each vector.
type Index interface {
	Init(ctx context.Context, dimension int) error
	Add(ctx context.Context, vectors [][]float32) error
	Search(ctx context.Context, query []float32, k int) ([]SearchHit, error)
	Len() int
	Close(ctx context.Context) error
}

// TextSource turns a URL or pasted text into plain text.
type TextSource interface {
	Fetch(ctx context.Context, input string) (string, error)
}

// TemplateSource loads the full template collection for one run.
type TemplateSource interface {
	Load() ([]PromptTemplate, error)
}

// Generator sends one prompt to the generative backend.
type Generator interface {
	Call(ctx context.Context, prompt, model string, testMode bool) (string, error)
}

// Summarizer produces a brief extractive summary of the provided text,
// favouring sentences that share vocabulary with the focus passages.
type Summarizer interface {
	Summarize(text string, focus []string, maxSentences int) (string, error)
}
