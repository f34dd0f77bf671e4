package result

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"holamundo/internal/domain"
)

// Kind tags a generation result by category.
type Kind int

const (
	KindUnknown Kind = iota
	KindVocabulary
	KindQuestions
	KindDialogue
	KindStudyPlan
)

func (k Kind) String() string {
	switch k {
	case KindVocabulary:
		return "vocabulary"
	case KindQuestions:
		return "questions"
	case KindDialogue:
		return "dialogue"
	case KindStudyPlan:
		return "studyplan"
	default:
		return "unknown"
	}
}

// KindOf maps a template name to its category.
func KindOf(name string) Kind {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "vocabulary":
		return KindVocabulary
	case "questions":
		return KindQuestions
	case "dialogue":
		return KindDialogue
	case "studyplan", "study_plan":
		return KindStudyPlan
	default:
		return KindUnknown
	}
}

type Vocabulary struct {
	Vocabulary []domain.VocabularyItem `json:"vocabulary"`
}

type Questions struct {
	Questions []domain.Question `json:"questions"`
}

type DialogueLine struct {
	Speaker string `json:"speaker"`
	ES      string `json:"es"`
}

type GlossaryEntry struct {
	Spanish string `json:"spanish"`
	English string `json:"english"`
}

type Dialogue struct {
	Title    string          `json:"title"`
	Lines    []DialogueLine  `json:"lines"`
	Glossary []GlossaryEntry `json:"glossary"`
}

type StudyPlan struct {
	Plan struct {
		Vocabulary []string `json:"vocabulary"`
		Grammar    []string `json:"grammar"`
		Activities []string `json:"activities"`
		Timeline   string   `json:"timeline"`
	} `json:"plan"`
}

// Entry is one decoded result. Exactly one payload field is set when Err is
// nil and Kind is known; otherwise Raw is the text to show verbatim.
type Entry struct {
	Name       string
	Kind       Kind
	Raw        string
	Vocabulary *Vocabulary
	Questions  *Questions
	Dialogue   *Dialogue
	StudyPlan  *StudyPlan
	Err        error
}

// Opaque reports whether the entry must be displayed as raw text.
func (e Entry) Opaque() bool {
	return e.Err != nil || e.Kind == KindUnknown
}

// Decode parses raw according to the category of name. Failures are
// recorded on the entry and wrap domain.ErrMalformedOutput.
func Decode(name, raw string) Entry {
	e := Entry{Name: name, Kind: KindOf(name), Raw: raw}
	body := StripFences(raw)
	var err error
	switch e.Kind {
	case KindVocabulary:
		var v Vocabulary
		if err = decodeStrict(body, &v); err == nil && len(v.Vocabulary) == 0 {
			err = fmt.Errorf("no vocabulary items")
		}
		if err == nil {
			e.Vocabulary = &v
		}
	case KindQuestions:
		var q Questions
		if err = decodeStrict(body, &q); err == nil && len(q.Questions) == 0 {
			err = fmt.Errorf("no questions")
		}
		if err == nil {
			e.Questions = &q
		}
	case KindDialogue:
		var d Dialogue
		if err = decodeStrict(body, &d); err == nil && len(d.Lines) == 0 {
			err = fmt.Errorf("no dialogue lines")
		}
		if err == nil {
			e.Dialogue = &d
		}
	case KindStudyPlan:
		var s StudyPlan
		if err = decodeStrict(body, &s); err == nil {
			e.StudyPlan = &s
		}
	}
	if err != nil {
		e.Err = fmt.Errorf("%w: %s: %v", domain.ErrMalformedOutput, name, err)
	}
	return e
}

// DecodeAll decodes every result, sorted by template name. A malformed entry
// never affects its siblings.
func DecodeAll(res domain.GenerationResult) []Entry {
	names := make([]string, 0, len(res))
	for name := range res {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]Entry, 0, len(names))
	for _, name := range names {
		out = append(out, Decode(name, res[name]))
	}
	return out
}

// Find returns the first entry of the given kind.
func Find(entries []Entry, kind Kind) (Entry, bool) {
	for _, e := range entries {
		if e.Kind == kind {
			return e, true
		}
	}
	return Entry{}, false
}

// StripFences removes a surrounding markdown code fence such as ```json.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = ""
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func decodeStrict(body string, v any) error {
	if body == "" {
		return fmt.Errorf("empty output")
	}
	return json.Unmarshal([]byte(body), v)
}
