package summarizer

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// focusBoost scales the weight of words that also occur in the retrieved context.
const focusBoost = 1.0

// FrequencySummarizer ranks sentences by word frequency (stopwords filtered).
// Words found in the focus passages weigh more, so the summary leans toward
// what the study materials were generated from.
type FrequencySummarizer struct {
	tokenPattern  *regexp.Regexp
	stopwords     map[string]struct{}
	abbreviations map[string]struct{}
}

// NewFrequencySummarizer creates a frequency-based sentence ranker summarizer.
func NewFrequencySummarizer() *FrequencySummarizer {
	return &FrequencySummarizer{
		tokenPattern:  regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
		stopwords:     defaultStopwords(),
		abbreviations: defaultAbbreviations(),
	}
}

// Summarize returns the highest scoring sentences in their original order.
func (s *FrequencySummarizer) Summarize(text string, focus []string, maxSentences int) (string, error) {
	if maxSentences <= 0 {
		maxSentences = 3
	}
	sentences := s.Sentences(text)
	if len(sentences) == 0 {
		return strings.TrimSpace(text), nil
	}
	freq := map[string]float64{}
	for _, sent := range sentences {
		for _, tok := range s.tokens(sent) {
			freq[tok]++
		}
	}
	maxF := 0.0
	for _, v := range freq {
		maxF = math.Max(maxF, v)
	}
	if maxF > 0 {
		for k, v := range freq {
			freq[k] = v / maxF
		}
	}
	focused := map[string]struct{}{}
	for _, passage := range focus {
		for _, tok := range s.tokens(passage) {
			focused[tok] = struct{}{}
		}
	}
	type pair struct {
		idx   int
		score float64
	}
	scores := make([]pair, len(sentences))
	for i, sent := range sentences {
		toks := s.tokens(sent)
		sscore := 0.0
		for _, tok := range toks {
			w := freq[tok]
			if _, ok := focused[tok]; ok {
				w *= 1 + focusBoost
			}
			sscore += w
		}
		// Normalize by sentence length to avoid bias toward long sentences.
		if l := float64(len(toks)); l > 0 {
			sscore /= math.Sqrt(l)
		}
		scores[i] = pair{i, sscore}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	maxSentences = min(maxSentences, len(scores))
	selected := make([]int, maxSentences)
	for i := 0; i < maxSentences; i++ {
		selected[i] = scores[i].idx
	}
	sort.Ints(selected)
	out := make([]string, 0, len(selected))
	for _, idx := range selected {
		out = append(out, sentences[idx])
	}
	return strings.Join(out, " "), nil
}

// Sentences splits Spanish prose into trimmed sentences.
//
// A sentence ends at '.', '!', '?' or '…' (runs such as "?!" or "..." count
// once) plus any closing quotes or brackets. Text inside a '¿' or '¡' pair is
// never split, so "¡Ay… qué pena!" stays whole, and an inverted mark right
// after a terminator opens a new sentence even without a space. A '.' after a
// known abbreviation, an initial or a dotted acronym does not end a sentence.
// A newline closes any unbalanced inverted mark.
func (s *FrequencySummarizer) Sentences(text string) []string {
	runes := []rune(text)
	var out []string
	start, depth := 0, 0
	emit := func(end int) {
		if sent := strings.TrimSpace(string(runes[start:end])); sent != "" {
			out = append(out, sent)
		}
		start = end
	}
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '\n':
			depth = 0
		case r == '¿' || r == '¡':
			if depth == 0 && s.endsSentence(runes[start:i]) {
				emit(i)
			}
			depth++
		case isTerminator(r):
			if r == '.' && s.isAbbreviation(runes[start:i]) {
				continue
			}
			j := i
			for ; j < len(runes) && isTerminator(runes[j]); j++ {
				if depth > 0 && (runes[j] == '?' || runes[j] == '!') {
					depth--
				}
			}
			for j < len(runes) && isCloser(runes[j]) {
				j++
			}
			i = j - 1
			if depth > 0 {
				continue
			}
			// "¡Qué bien!, dijo ella." continues the same sentence.
			if j < len(runes) && (runes[j] == ',' || runes[j] == ';') {
				continue
			}
			// Decimals and a missing space before an inverted mark.
			if j < len(runes) && !unicode.IsSpace(runes[j]) {
				continue
			}
			emit(j)
		}
	}
	emit(len(runes))
	return out
}

// endsSentence reports whether pending text already finishes with a sentence
// terminator, as in "fin.¿Y ahora?", rather than lead-in such as "Preguntó:".
func (s *FrequencySummarizer) endsSentence(pending []rune) bool {
	i := len(pending)
	for i > 0 && (unicode.IsSpace(pending[i-1]) || isCloser(pending[i-1])) {
		i--
	}
	if i == 0 || !isTerminator(pending[i-1]) {
		return false
	}
	return pending[i-1] != '.' || !s.isAbbreviation(pending[:i-1])
}

func (s *FrequencySummarizer) isAbbreviation(before []rune) bool {
	i := len(before)
	for i > 0 && unicode.IsLetter(before[i-1]) {
		i--
	}
	word := before[i:]
	switch {
	case len(word) == 0:
		return false
	case i > 0 && before[i-1] == '.':
		// Dotted acronyms such as "EE.UU.".
		return true
	case len(word) == 1 && unicode.IsUpper(word[0]):
		return true
	}
	_, ok := s.abbreviations[strings.ToLower(string(word))]
	return ok
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?' || r == '…'
}

func isCloser(r rune) bool {
	switch r {
	case '"', '\'', '”', '’', '»', ')', ']':
		return true
	}
	return false
}

func (s *FrequencySummarizer) tokens(text string) []string {
	raw := s.tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, t := range raw {
		if _, stop := s.stopwords[t]; !stop {
			out = append(out, t)
		}
	}
	return out
}

func defaultAbbreviations() map[string]struct{} {
	words := []string{"sr", "sra", "srta", "dr", "dra", "d", "dña", "ud", "uds", "vd", "etc", "pág", "núm", "art", "aprox", "av", "avda", "prof", "lic", "ing", "gral"}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"el", "la", "los", "las", "un", "una", "unos", "unas", "de", "del", "al", "a", "en", "y", "e", "o", "u", "que", "se", "por", "con", "para", "su", "sus", "es", "lo", "le", "les", "como", "más", "pero", "ya", "muy", "sin", "sobre", "este", "esta", "esto", "ese", "esa", "entre", "cuando", "también", "fue", "ha", "han", "hay", "son", "me", "mi", "te", "tu", "nos", "no", "si",
		"qué", "cómo", "cuándo", "dónde", "quién", "cuál", "está", "están", "era", "ser", "estar", "hasta", "desde", "porque", "donde", "todo", "todos", "otro", "otra",
		"the", "an", "and", "or", "but", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "it", "this", "that",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
