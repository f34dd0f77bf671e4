package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"holamundo/internal/result"
	"holamundo/internal/service"
)

// JSON writes the run as indented JSON.
func JSON(w io.Writer, run *service.Run) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(run)
}

// Markdown renders a printable study guide. Entries that failed to decode
// are shown verbatim in a code block.
func Markdown(run *service.Run, entries []result.Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Study guide (%s)\n\n", run.Level)
	if run.Summary != "" {
		fmt.Fprintf(&b, "> %s\n\n", run.Summary)
	}
	for _, e := range entries {
		fmt.Fprintf(&b, "## %s\n\n", heading(e))
		if e.Opaque() {
			fmt.Fprintf(&b, "```\n%s\n```\n\n", strings.TrimSpace(e.Raw))
			continue
		}
		switch e.Kind {
		case result.KindVocabulary:
			writeVocabulary(&b, e.Vocabulary)
		case result.KindQuestions:
			writeQuestions(&b, e.Questions)
		case result.KindDialogue:
			writeDialogue(&b, e.Dialogue)
		case result.KindStudyPlan:
			writeStudyPlan(&b, e.StudyPlan)
		}
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func heading(e result.Entry) string {
	switch e.Kind {
	case result.KindVocabulary:
		return "Vocabulary"
	case result.KindQuestions:
		return "Comprehension questions"
	case result.KindDialogue:
		return "Dialogue"
	case result.KindStudyPlan:
		return "Study plan"
	default:
		return e.Name
	}
}

func writeVocabulary(b *strings.Builder, v *result.Vocabulary) {
	b.WriteString("| Spanish | English | Part of speech | Example |\n|---|---|---|---|\n")
	for _, it := range v.Vocabulary {
		fmt.Fprintf(b, "| %s | %s | %s | %s |\n", cell(it.Spanish), cell(it.English), cell(it.POS), cell(it.Example))
	}
	b.WriteString("\n")
}

func writeQuestions(b *strings.Builder, q *result.Questions) {
	for i, it := range q.Questions {
		fmt.Fprintf(b, "%d. **%s** _(%s)_\n   - %s\n", i+1, it.Question, it.Difficulty, it.Answer)
	}
	b.WriteString("\n")
}

func writeDialogue(b *strings.Builder, d *result.Dialogue) {
	if d.Title != "" {
		fmt.Fprintf(b, "### %s\n\n", d.Title)
	}
	for _, l := range d.Lines {
		fmt.Fprintf(b, "**%s:** %s  \n", l.Speaker, l.ES)
	}
	b.WriteString("\n")
	if len(d.Glossary) > 0 {
		b.WriteString("Glossary:\n\n")
		for _, g := range d.Glossary {
			fmt.Fprintf(b, "- *%s*: %s\n", g.Spanish, g.English)
		}
		b.WriteString("\n")
	}
}

func writeStudyPlan(b *strings.Builder, s *result.StudyPlan) {
	list := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(b, "### %s\n\n", title)
		for _, it := range items {
			fmt.Fprintf(b, "- %s\n", it)
		}
		b.WriteString("\n")
	}
	list("Vocabulary", s.Plan.Vocabulary)
	list("Grammar", s.Plan.Grammar)
	list("Activities", s.Plan.Activities)
	if s.Plan.Timeline != "" {
		fmt.Fprintf(b, "### Timeline\n\n%s\n\n", s.Plan.Timeline)
	}
}

func cell(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "|", `\|`), "\n", " ")
}
