package askcmder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/wanderwise/cmd/wanderwise/apiclient"
	"github.com/papercomputeco/wanderwise/pkg/config"
	"github.com/papercomputeco/wanderwise/pkg/flow"
)

const chatLongDesc string = `Chat with a running wanderwise server.

Each answer continues the same journaled conversation. On exit the head
hash is printed so the chat can be resumed with --conversation or
followed up with "wanderwise ask --conversation".

Enter sends a question, Esc or Ctrl+C quits.`

const chatShortDesc string = "Chat interactively about a trip"

var (
	youStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	agentStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
)

// askFunc answers one question of a conversation.
type askFunc func(ctx context.Context, input flow.QuestionInput) (*flow.QuestionOutput, error)

type chatCommander struct {
	serverURL    string
	conversation string
	timeout      time.Duration
}

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:          "chat",
		Short:        chatShortDesc,
		Long:         chatLongDesc,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}

	cmd.Flags().StringVar(&cmder.serverURL, "server", "", "wanderwise server URL (default: $WANDERWISE_SERVER_URL)")
	cmd.Flags().StringVarP(&cmder.conversation, "conversation", "c", "", "Journal hash of the answer to resume from")
	cmd.Flags().DurationVar(&cmder.timeout, "timeout", 2*time.Minute, "Per question timeout")

	return cmd
}

func (c *chatCommander) run(ctx context.Context, cmd *cobra.Command) error {
	serverURL := c.serverURL
	if serverURL == "" {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("could not load config: %w", err)
		}
		serverURL = cfg.ServerURL
	}

	model := newChatModel(ctx, serverAsker(apiclient.New(serverURL, c.timeout)), c.conversation, newChatRenderer())

	program := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
		tea.WithAltScreen(),
	)

	final, err := program.Run()
	if err != nil {
		return fmt.Errorf("chat: %w", err)
	}

	if m, ok := final.(chatModel); ok && m.conversation != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), hintStyle.Render("conversation: "+m.conversation))
	}
	return nil
}

// serverAsker sends questions to the answer-question flow of client.
func serverAsker(client *apiclient.Client) askFunc {
	return func(ctx context.Context, input flow.QuestionInput) (*flow.QuestionOutput, error) {
		var out flow.QuestionOutput
		if err := client.RunFlow(ctx, flow.AnswerQuestion, input, &out); err != nil {
			return nil, err
		}
		return &out, nil
	}
}

func newChatRenderer() *glamour.TermRenderer {
	style := "light"
	if termenv.HasDarkBackground() {
		style = "dark"
	}

	renderer, err := glamour.NewTermRenderer(glamour.WithStandardStyle(style), glamour.WithWordWrap(80))
	if err != nil {
		return nil
	}
	return renderer
}

type chatTurn struct {
	role    string
	content string
}

type (
	answerMsg    struct{ out *flow.QuestionOutput }
	answerErrMsg struct{ err error }
)

// chatModel is the bubbletea model of an interactive conversation.
type chatModel struct {
	ctx      context.Context
	ask      askFunc
	renderer *glamour.TermRenderer

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	turns        []chatTurn
	conversation string
	waiting      bool
	err          error
}

func newChatModel(ctx context.Context, ask askFunc, conversation string, renderer *glamour.TermRenderer) chatModel {
	ti := textinput.New()
	ti.Placeholder = "Ask about your trip..."
	ti.Prompt = "│ "
	ti.CharLimit = 2000
	ti.Width = 76
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return chatModel{
		ctx:          ctx,
		ask:          ask,
		renderer:     renderer,
		input:        ti,
		viewport:     viewport.New(80, 20),
		spinner:      sp,
		conversation: conversation,
	}
}

func (m chatModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-3, 1)
		m.input.Width = max(msg.Width-4, 10)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		}

	case answerMsg:
		m.waiting = false
		m.err = nil
		m.turns = append(m.turns, chatTurn{role: "wanderwise", content: msg.out.Answer})
		if msg.out.Journal != "" {
			m.conversation = msg.out.Journal
		}
		m.refresh()
		return m, nil

	case answerErrMsg:
		m.waiting = false
		m.err = msg.err
		m.turns = append(m.turns, chatTurn{role: "wanderwise", content: fallbackMessage})
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var inputCmd, viewportCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	m.viewport, viewportCmd = m.viewport.Update(msg)
	return m, tea.Batch(inputCmd, viewportCmd)
}

func (m chatModel) submit() (tea.Model, tea.Cmd) {
	question := strings.TrimSpace(m.input.Value())
	if m.waiting || question == "" {
		return m, nil
	}

	m.input.Reset()
	m.turns = append(m.turns, chatTurn{role: "you", content: question})
	m.waiting = true
	m.refresh()

	return m, tea.Batch(m.spinner.Tick, m.send(flow.QuestionInput{
		Question:     question,
		Conversation: m.conversation,
	}))
}

func (m chatModel) send(input flow.QuestionInput) tea.Cmd {
	return func() tea.Msg {
		out, err := m.ask(m.ctx, input)
		if err != nil {
			return answerErrMsg{err: err}
		}
		return answerMsg{out: out}
	}
}

func (m *chatModel) refresh() {
	var b strings.Builder
	for _, t := range m.turns {
		style := agentStyle
		if t.role == "you" {
			style = youStyle
		}
		b.WriteString(style.Render(t.role))
		b.WriteString("\n")
		b.WriteString(m.render(t.content))
		b.WriteString("\n")
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

func (m chatModel) render(text string) string {
	if m.renderer == nil {
		return text + "\n"
	}
	out, err := m.renderer.Render(text)
	if err != nil {
		return text + "\n"
	}
	return out
}

func (m chatModel) View() string {
	status := hintStyle.Render("Enter to send, Esc to quit")
	switch {
	case m.waiting:
		status = m.spinner.View() + " thinking..."
	case m.conversation != "":
		status = hintStyle.Render("conversation: " + m.conversation)
	}
	return m.viewport.View() + "\n" + status + "\n" + m.input.View()
}
