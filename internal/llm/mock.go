package llm

import "strings"

// MockKind is the canned response category picked for a prompt.
type MockKind int

const (
	MockGeneric MockKind = iota
	MockVocabulary
	MockQuestions
	MockDialogue
	MockStudyPlan
	MockSentenceFeedback
	MockComprehensionFeedback
)

func (k MockKind) String() string {
	switch k {
	case MockVocabulary:
		return "vocabulary"
	case MockQuestions:
		return "questions"
	case MockDialogue:
		return "dialogue"
	case MockStudyPlan:
		return "studyplan"
	case MockSentenceFeedback:
		return "sentence_feedback"
	case MockComprehensionFeedback:
		return "comprehension_feedback"
	default:
		return "generic"
	}
}

// ExcerptEnd closes the article block of a generation prompt. Classify only
// reads the text after it, so article words never pick the category.
const ExcerptEnd = "=== end of excerpts ==="

// Mock answers prompts with fixed responses chosen by keyword, so the whole
// pipeline can run without network access.
type Mock struct{}

func NewMock() *Mock { return &Mock{} }

// Classify picks the response category. Feedback prompts are checked first
// because they also mention questions and words.
func (m *Mock) Classify(prompt string) MockKind {
	if i := strings.LastIndex(prompt, ExcerptEnd); i >= 0 {
		prompt = prompt[i+len(ExcerptEnd):]
	}
	p := strings.ToLower(prompt)
	switch {
	case strings.Contains(p, "student sentence"):
		return MockSentenceFeedback
	case strings.Contains(p, "student answer"):
		return MockComprehensionFeedback
	case strings.Contains(p, "study plan"):
		return MockStudyPlan
	case strings.Contains(p, "dialogue"):
		return MockDialogue
	case strings.Contains(p, "question"):
		return MockQuestions
	case strings.Contains(p, "vocabulary"):
		return MockVocabulary
	default:
		return MockGeneric
	}
}

func (m *Mock) Respond(prompt string) string {
	switch m.Classify(prompt) {
	case MockSentenceFeedback:
		return mockSentenceFeedback
	case MockComprehensionFeedback:
		return mockComprehensionFeedback
	case MockStudyPlan:
		return mockStudyPlan
	case MockDialogue:
		return mockDialogue
	case MockQuestions:
		return mockQuestions
	case MockVocabulary:
		return mockVocabulary
	default:
		return mockGeneric
	}
}

const mockVocabulary = `{"vocabulary": [
  {"spanish": "correr", "english": "to run", "pos": "verb", "example": "Me gusta correr por la mañana."},
  {"spanish": "el parque", "english": "the park", "pos": "noun", "example": "Corro en el parque cerca de mi casa."},
  {"spanish": "la carrera", "english": "the race", "pos": "noun", "example": "La carrera empieza a las ocho."},
  {"spanish": "cansado", "english": "tired", "pos": "adjective", "example": "Después de correr estoy cansado."},
  {"spanish": "a menudo", "english": "often", "pos": "adverb", "example": "Salgo a correr a menudo."}
]}`

const mockQuestions = `{"questions": [
  {"question": "¿Qué le gusta hacer al autor?", "answer": "Le gusta correr.", "difficulty": "beginner"},
  {"question": "¿Dónde corre normalmente?", "answer": "En el parque.", "difficulty": "beginner"},
  {"question": "¿Por qué crees que corre por la mañana?", "answer": "Porque hace menos calor y tiene más energía.", "difficulty": "intermediate"},
  {"question": "¿Qué beneficios del deporte se pueden deducir del texto?", "answer": "Mejora la salud y reduce el estrés.", "difficulty": "advanced"}
]}`

const mockDialogue = `{"title": "En el parque",
  "lines": [
    {"speaker": "Ana", "es": "¡Hola, Luis! ¿Vienes a correr conmigo?"},
    {"speaker": "Luis", "es": "Sí, pero hoy estoy un poco cansado."},
    {"speaker": "Ana", "es": "Podemos correr despacio por el parque."},
    {"speaker": "Luis", "es": "Vale, ¡vamos!"}
  ],
  "glossary": [
    {"spanish": "despacio", "english": "slowly"},
    {"spanish": "vale", "english": "okay"}
  ]}`

const mockStudyPlan = `{"plan": {
  "vocabulary": ["correr", "el parque", "la carrera", "cansado", "a menudo"],
  "grammar": ["Gustar + infinitivo", "Presente de indicativo"],
  "activities": ["Repasa las tarjetas cada día", "Escribe tres frases sobre tu deporte favorito", "Lee el diálogo en voz alta"],
  "timeline": "Días 1-2 vocabulario, días 3-4 gramática, días 5-7 práctica oral y escrita."
}}`

const mockSentenceFeedback = "Grammar: your sentence is correct. More natural: \"Me encanta correr por el parque.\" ¡Muy bien, sigue practicando!"

const mockComprehensionFeedback = "Accuracy: your answer matches the text. Language: clear and correct Spanish. ¡Excelente trabajo!"

const mockGeneric = "¡Hola! This is a test mode response."
