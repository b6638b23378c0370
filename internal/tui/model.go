package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pdfrag/internal/domain"
)

// Answer is one grounded response plus the retrieval metadata that
// produced it.
type Answer struct {
	Text    string
	Context domain.Context
}

// Asker is the TUI-facing subset of the application: ask a question
// about the loaded document, get a grounded answer.
type Asker interface {
	Ask(ctx context.Context, question string) (Answer, error)
}

type exchange struct {
	question string
	answer   Answer
	err      error
}

type answerMsg exchange

// Model is the Bubble Tea model for the chat loop over one document.
type Model struct {
	ctx      context.Context
	asker    Asker
	input    textinput.Model
	viewport viewport.Model
	history  []exchange
	docName  string
	summary  string
	status   string
	waiting  bool
	ready    bool
}

// New creates a chat model for the given document. ctx bounds every
// ask issued from the chat loop.
func New(ctx context.Context, asker Asker, docName, summary string) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question about the document and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		ctx:      ctx,
		asker:    asker,
		input:    ti,
		viewport: vp,
		docName:  docName,
		summary:  summary,
		status:   "Ready. Type a question.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and answer events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := chatBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header+summary, status, input frame, spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderHistory())
		return m, nil
	case answerMsg:
		m.waiting = false
		m.history = append(m.history, exchange(msg))
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
		} else {
			m.status = renderProvenance(msg.answer.Context)
		}
		m.viewport.SetContent(m.renderHistory())
		m.viewport.GotoBottom()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" && !m.waiting {
				m.waiting = true
				m.status = "Thinking..."
				m.input.SetValue("")
				return m, askCmd(m.ctx, m.asker, q)
			}
		case "up":
			m.viewport.LineUp(1)
			return m, nil
		case "down":
			m.viewport.LineDown(1)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func askCmd(ctx context.Context, asker Asker, question string) tea.Cmd {
	return func() tea.Msg {
		answer, err := asker.Ask(ctx, question)
		return answerMsg{question: question, answer: answer, err: err}
	}
}

// View renders the chat layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Chat with " + m.docName)
	summary := summaryStyle.Render(m.summary)
	chat := chatBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + summary + "\n" + chat + "\n" + input + "\n" + status
}

func (m Model) renderHistory() string {
	if len(m.history) == 0 {
		return "No questions asked yet."
	}
	var b strings.Builder
	for i, ex := range m.history {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(questionStyle.Render("You: " + ex.question))
		b.WriteString("\n")
		if ex.err != nil {
			b.WriteString("Error: " + ex.err.Error())
			continue
		}
		b.WriteString(ex.answer.Text)
	}
	return b.String()
}

func renderProvenance(c domain.Context) string {
	if !c.Found {
		return "No content was retrieved from the document."
	}
	return fmt.Sprintf("Grounded in %d chunk(s), scores %.3f..%.3f", c.Matches, c.MinScore, c.MaxScore)
}

var (
	chatBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	questionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	summaryStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
