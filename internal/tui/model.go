package tui

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"holamundo/internal/study"
)

// Feedbacker is the TUI-facing subset of the orchestrator.
type Feedbacker interface {
	study.SentenceFeedbacker
	study.ComprehensionFeedbacker
}

type tab int

const (
	tabFlashcards tab = iota
	tabComprehension
	tabMaterials
	tabCount
)

func (t tab) String() string {
	switch t {
	case tabFlashcards:
		return "Flashcards"
	case tabComprehension:
		return "Comprehension"
	default:
		return "Materials"
	}
}

// sessionMsg carries the session produced by a finished feedback call.
type sessionMsg struct {
	session study.Session
	err     error
}

// Model is the Bubble Tea model for the study session.
type Model struct {
	ctx       context.Context
	fb        Feedbacker
	session   study.Session
	materials string
	summary   string

	tab      tab
	input    textinput.Model
	editing  bool
	busy     bool
	question int
	viewport viewport.Model
	status   string
	ready    bool
}

// New creates a TUI over session. materials is the rendered study guide
// shown on the materials tab.
func New(ctx context.Context, fb Feedbacker, session study.Session, summary, materials string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	vp.SetContent(materials)
	return Model{
		ctx:       ctx,
		fb:        fb,
		session:   session,
		summary:   summary,
		materials: materials,
		input:     ti,
		viewport:  vp,
		status:    "tab: switch view · ctrl+c: quit",
	}
}

// Session returns the current learner state.
func (m Model) Session() study.Session { return m.session }

func (m Model) Init() tea.Cmd { return nil }

// Update handles key, window and feedback events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, bh := boxStyle.GetFrameSize()
		m.viewport.Width = max(20, msg.Width-4)
		m.viewport.Height = max(3, msg.Height-bh-4)
		return m, nil
	case sessionMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			return m, nil
		}
		m.session = msg.session
		m.status = "Feedback received."
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.busy {
			return m, nil
		}
		if m.editing {
			return m.updateEditing(msg)
		}
		if msg.String() == "tab" {
			m.tab = (m.tab + 1) % tabCount
			return m, nil
		}
		switch m.tab {
		case tabFlashcards:
			return m.updateFlashcards(msg)
		case tabComprehension:
			return m.updateComprehension(msg)
		default:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m Model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.editing = false
		m.input.Blur()
		m.input.Reset()
		return m, nil
	case tea.KeyEnter:
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		m.editing = false
		m.input.Blur()
		m.input.Reset()
		m.busy = true
		m.status = "Waiting for feedback..."
		return m, m.submit(text)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit runs the feedback call off the UI loop.
func (m Model) submit(text string) tea.Cmd {
	ctx, fb, s := m.ctx, m.fb, m.session
	if m.tab == tabFlashcards {
		return func() tea.Msg {
			next, err := s.PracticeSentence(ctx, fb, text)
			return sessionMsg{session: next, err: err}
		}
	}
	q := m.question
	return func() tea.Msg {
		next, err := s.AnswerQuestion(ctx, fb, q, text)
		return sessionMsg{session: next, err: err}
	}
}

func (m Model) startEditing(placeholder string) (tea.Model, tea.Cmd) {
	m.editing = true
	m.input.Placeholder = placeholder
	return m, m.input.Focus()
}

func (m Model) updateFlashcards(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d := m.session.Deck
	switch msg.String() {
	case " ":
		m.session = m.session.WithDeck(d.Flip())
	case "right", "l":
		m.session = m.session.WithDeck(d.Next())
	case "left", "h":
		m.session = m.session.WithDeck(d.Previous())
	case "k":
		m.session = m.session.WithDeck(d.MarkKnown())
		if m.session.Deck.State() == study.DeckAllMastered {
			m.status = "All words mastered. ¡Enhorabuena!"
		}
	case "p":
		if card, _, ok := d.Current(); ok {
			return m.startEditing(fmt.Sprintf("Write a sentence using %q", card.Spanish))
		}
	}
	return m, nil
}

func (m Model) updateComprehension(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(m.session.Comprehension.Questions)
	if n == 0 {
		return m, nil
	}
	switch msg.String() {
	case "down", "j":
		m.question = (m.question + 1) % n
	case "up":
		m.question = (m.question - 1 + n) % n
	case "enter":
		return m.startEditing("Answer in Spanish")
	}
	return m, nil
}

// View renders the active tab.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	var tabs []string
	for t := tab(0); t < tabCount; t++ {
		style := tabStyle
		if t == m.tab {
			style = activeTabStyle
		}
		tabs = append(tabs, style.Render(t.String()))
	}
	header := lipgloss.NewStyle().Bold(true).Render("¡Hola Mundo! · "+m.session.Level) + "  " + strings.Join(tabs, " ")
	summary := dimStyle.Render(m.summary)

	var body string
	switch m.tab {
	case tabFlashcards:
		body = renderFlashcards(m.session)
	case tabComprehension:
		body = renderComprehension(m.session.Comprehension, m.question)
	default:
		body = m.viewport.View()
	}
	out := header + "\n" + summary + "\n" + boxStyle.Render(body)
	if m.editing {
		out += "\n" + boxStyle.Render(m.input.View())
	}
	return out + "\n" + statusStyle.Render(m.status)
}

func renderFlashcards(s study.Session) string {
	d := s.Deck
	switch d.State() {
	case study.DeckEmpty:
		return "No vocabulary was generated for this text."
	case study.DeckAllMastered:
		return fmt.Sprintf("All %d words mastered.", d.Total())
	}
	card, _, _ := d.Current()
	var b strings.Builder
	fmt.Fprintf(&b, "Card %d/%d · mastered %d/%d\n\n", d.Position()+1, len(d.Active()), d.MasteredCount(), d.Total())
	b.WriteString(highlightStyle.Render(card.Spanish))
	b.WriteString("\n")
	if d.Revealed() {
		fmt.Fprintf(&b, "\n%s (%s)\n", card.English, card.POS)
		if card.Example != "" {
			b.WriteString(dimStyle.Render(highlightWord(card.Example, card.Spanish)))
			b.WriteString("\n")
		}
	}
	if p := s.Practice; p.LastSentence != "" {
		fmt.Fprintf(&b, "\nYou wrote: %s\n%s\n", p.LastSentence, p.LastFeedback.OrEmpty())
	}
	b.WriteString(dimStyle.Render("\nspace: flip · ←/→: move · k: known · p: practise"))
	return b.String()
}

func renderComprehension(c study.Comprehension, selected int) string {
	if len(c.Questions) == 0 {
		return "No comprehension questions were generated for this text."
	}
	var b strings.Builder
	for i, q := range c.Questions {
		cursor := "  "
		if i == selected {
			cursor = "> "
		}
		fmt.Fprintf(&b, "%s[%s] %s\n", cursor, q.Difficulty, q.Question)
		if a, ok := c.Answer(i); ok {
			fmt.Fprintf(&b, "    Your answer: %s\n", a)
		}
		if f, ok := c.Feedback(i); ok {
			fmt.Fprintf(&b, "    %s\n", dimStyle.Render(f))
		}
	}
	b.WriteString(dimStyle.Render("\n↑/↓: select · enter: answer"))
	return b.String()
}

var (
	boxStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	tabStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Padding(0, 1)
	activeTabStyle = lipgloss.NewStyle().Bold(true).Underline(true).Padding(0, 1)
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	unicodeWordRe  = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
)

// highlightWord emphasises the words of the card inside an example sentence.
func highlightWord(text, word string) string {
	targets := toTokenSet(word)
	if len(targets) == 0 {
		return text
	}
	return unicodeWordRe.ReplaceAllStringFunc(text, func(tok string) string {
		if _, ok := targets[strings.ToLower(tok)]; ok {
			return highlightStyle.Render(tok)
		}
		return tok
	})
}

func toTokenSet(s string) map[string]struct{} {
	tokens := unicodeWordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}
