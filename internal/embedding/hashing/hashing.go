package hashing

import (
	"context"
	"hash/fnv"
	"regexp"
	"strings"

	"holamundo/internal/embedding"
)

const DefaultDimension = 384

// blankFeature is hashed for text with no characters besides whitespace.
const blankFeature = "\x00blank"

// Embedder is a deterministic local sentence embedder based on signed feature
// hashing of word unigrams and bigrams. It needs no corpus preparation, so a
// single instance serves every document and query in the process.
type Embedder struct {
	dimension    int
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

// NewEmbedder creates a hashing embedder producing vectors of the given dimension.
func NewEmbedder(dimension int) *Embedder {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	return &Embedder{
		dimension:    dimension,
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`),
		stopwords:    defaultStopwords(),
	}
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return "hashing" }

// Dimension returns the dimensionality of the produced embedding vectors.
func (e *Embedder) Dimension() int { return e.dimension }

// Embed returns one unit-length vector per text. Blank text maps to one fixed
// direction shared by all blank inputs.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = e.embedOne(text)
	}
	return out, nil
}

func (e *Embedder) embedOne(text string) []float32 {
	vec := make([]float32, e.dimension)
	tokens := e.tokenize(text)
	if len(tokens) == 0 {
		feature := strings.TrimSpace(text)
		if feature == "" {
			feature = blankFeature
		}
		e.add(vec, feature, 1)
		embedding.Normalize(vec)
		return vec
	}
	for i, tok := range tokens {
		e.add(vec, tok, 1)
		if i > 0 {
			e.add(vec, tokens[i-1]+" "+tok, 0.5)
		}
	}
	embedding.Normalize(vec)
	return vec
}

func (e *Embedder) add(vec []float32, feature string, weight float32) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(feature))
	sum := h.Sum64()
	idx := int(sum % uint64(e.dimension))
	if (sum>>63)&1 == 1 {
		weight = -weight
	}
	vec[idx] += weight
}

func (e *Embedder) tokenize(text string) []string {
	lower := strings.ToLower(text)
	raw := e.tokenPattern.FindAllString(lower, -1)
	if len(raw) == 0 {
		return nil
	}
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := e.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		// Spanish
		"el", "la", "los", "las", "un", "una", "unos", "unas", "de", "del", "al", "a", "en", "y", "o", "que", "se", "por", "con", "para", "su", "sus", "es", "lo", "le", "les", "como", "más", "pero", "ya", "muy", "sin", "sobre", "este", "esta", "esto", "ese", "esa", "entre", "cuando", "también", "fue", "ha", "han", "hay", "son", "me", "mi", "te", "tu", "nos",
		// English
		"the", "an", "and", "or", "but", "if", "then", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "it", "this", "that", "these", "those", "from",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
