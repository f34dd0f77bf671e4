package summarizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize_PicksFrequentSentencesInOrder(t *testing.T) {
	text := "El turismo crece en España. Ayer llovió un poco. " +
		"El turismo rural y el turismo de playa atraen visitantes. Mi gato duerme."
	out, err := NewFrequencySummarizer().Summarize(text, nil, 2)
	require.NoError(t, err)
	assert.Equal(t, "El turismo crece en España. El turismo rural y el turismo de playa atraen visitantes.", out)
}

func TestSummarize_NoSentencePunctuation(t *testing.T) {
	out, err := NewFrequencySummarizer().Summarize("  texto sin puntos  ", nil, 3)
	require.NoError(t, err)
	assert.Equal(t, "texto sin puntos", out)
}

func TestSummarize_FewerSentencesThanMax(t *testing.T) {
	out, err := NewFrequencySummarizer().Summarize("Hola. Adiós.", nil, 0)
	require.NoError(t, err)
	assert.Equal(t, "Hola. Adiós.", out)
}

func TestSummarize_FocusFavoursRetrievedVocabulary(t *testing.T) {
	text := "Madrid tiene museos famosos. Barcelona tiene playas bonitas."
	s := NewFrequencySummarizer()

	out, err := s.Summarize(text, []string{"Las playas de Barcelona atraen turistas."}, 1)
	require.NoError(t, err)
	assert.Equal(t, "Barcelona tiene playas bonitas.", out)

	out, err = s.Summarize(text, []string{"El Prado es uno de los museos de Madrid."}, 1)
	require.NoError(t, err)
	assert.Equal(t, "Madrid tiene museos famosos.", out)
}

func TestSummarize_KeepsInvertedMarks(t *testing.T) {
	text := "¿Qué es la paella? ¡La paella es un plato de Valencia! La paella lleva arroz."
	out, err := NewFrequencySummarizer().Summarize(text, nil, 3)
	require.NoError(t, err)
	assert.Equal(t, text, out)
}

func TestSentences_Spanish(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"inverted marks", "¿Qué pasa? ¡Vamos!", []string{"¿Qué pasa?", "¡Vamos!"}},
		{"missing space before opener", "Llegamos tarde.¿Y ahora?", []string{"Llegamos tarde.", "¿Y ahora?"}},
		{"lead-in before question", "Ella preguntó: ¿vienes? Sí.", []string{"Ella preguntó: ¿vienes?", "Sí."}},
		{"ellipsis inside exclamation", "¡Ay… qué pena! Otro día será.", []string{"¡Ay… qué pena!", "Otro día será."}},
		{"ellipsis ends sentence", "No sé… Tal vez mañana.", []string{"No sé…", "Tal vez mañana."}},
		{"repeated marks", "¿¡En serio?! Sí.", []string{"¿¡En serio?!", "Sí."}},
		{"exclamation continues with comma", "«¡Basta!», gritó él. Todos callaron.", []string{"«¡Basta!», gritó él.", "Todos callaron."}},
		{"abbreviations", "El Sr. García vive en EE.UU. desde 2010. Trabaja allí.", []string{"El Sr. García vive en EE.UU. desde 2010.", "Trabaja allí."}},
		{"decimal", "Cuesta 3.5 euros. Vale.", []string{"Cuesta 3.5 euros.", "Vale."}},
		{"closing quote", `Dijo "adiós." Luego salió.`, []string{`Dijo "adiós."`, "Luego salió."}},
		{"trailing fragment", "Hola. Sin punto", []string{"Hola.", "Sin punto"}},
		{"blank", "  \n ", nil},
	}
	s := NewFrequencySummarizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Sentences(tt.text))
		})
	}
}
