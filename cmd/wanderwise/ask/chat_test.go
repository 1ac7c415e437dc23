package askcmder

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/wanderwise/cmd/wanderwise/apiclient"
	"github.com/papercomputeco/wanderwise/internal/testserver"
	"github.com/papercomputeco/wanderwise/pkg/flow"
	"github.com/papercomputeco/wanderwise/pkg/merkle"
)

// runCmd executes cmd and every command it batches, returning the messages.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, c := range batch {
			msgs = append(msgs, runCmd(c)...)
		}
		return msgs
	}
	return []tea.Msg{msg}
}

var _ = Describe("Chat", func() {
	var (
		ctx    context.Context
		inputs []flow.QuestionInput
		answer func(flow.QuestionInput) (*flow.QuestionOutput, error)
		model  chatModel
	)

	BeforeEach(func() {
		ctx = context.Background()
		inputs = nil
		answer = func(in flow.QuestionInput) (*flow.QuestionOutput, error) {
			return &flow.QuestionOutput{Answer: "Answer to " + in.Question, Journal: "hash-" + in.Question}, nil
		}

		ask := func(_ context.Context, in flow.QuestionInput) (*flow.QuestionOutput, error) {
			inputs = append(inputs, in)
			return answer(in)
		}
		model = newChatModel(ctx, ask, "", nil)
	})

	update := func(msg tea.Msg) tea.Cmd {
		next, cmd := model.Update(msg)
		model = next.(chatModel)
		return cmd
	}

	// send types question, presses enter and delivers the reply.
	send := func(question string) {
		model.input.SetValue(question)
		cmd := update(tea.KeyMsg{Type: tea.KeyEnter})
		Expect(model.waiting).To(BeTrue())

		for _, msg := range runCmd(cmd) {
			switch msg.(type) {
			case answerMsg, answerErrMsg:
				update(msg)
			}
		}
		Expect(model.waiting).To(BeFalse())
	}

	It("continues the conversation with each answer", func() {
		send("kyoto")
		send("osaka")

		Expect(inputs).To(HaveLen(2))
		Expect(inputs[0]).To(Equal(flow.QuestionInput{Question: "kyoto"}))
		Expect(inputs[1]).To(Equal(flow.QuestionInput{Question: "osaka", Conversation: "hash-kyoto"}))
		Expect(model.conversation).To(Equal("hash-osaka"))
		Expect(model.turns).To(Equal([]chatTurn{
			{role: "you", content: "kyoto"},
			{role: "wanderwise", content: "Answer to kyoto"},
			{role: "you", content: "osaka"},
			{role: "wanderwise", content: "Answer to osaka"},
		}))
		Expect(model.input.Value()).To(BeEmpty())
	})

	It("resumes from a given conversation", func() {
		model.conversation = "earlier"
		send("lisbon")
		Expect(inputs[0].Conversation).To(Equal("earlier"))
	})

	It("shows the fallback message when the server fails", func() {
		answer = func(flow.QuestionInput) (*flow.QuestionOutput, error) {
			return nil, errors.New("server returned 502")
		}

		send("rome")

		Expect(model.turns[len(model.turns)-1].content).To(Equal(fallbackMessage))
		Expect(model.err).To(MatchError("server returned 502"))
		Expect(model.conversation).To(BeEmpty())
	})

	It("ignores blank questions", func() {
		model.input.SetValue("   ")
		Expect(update(tea.KeyMsg{Type: tea.KeyEnter})).To(BeNil())
		Expect(model.waiting).To(BeFalse())
		Expect(inputs).To(BeEmpty())
	})

	It("quits on escape", func() {
		cmd := update(tea.KeyMsg{Type: tea.KeyEsc})
		Expect(cmd).NotTo(BeNil())
		Expect(cmd()).To(Equal(tea.QuitMsg{}))
	})

	It("renders the transcript", func() {
		update(tea.WindowSizeMsg{Width: 80, Height: 24})
		send("goa")

		view := model.View()
		Expect(view).To(ContainSubstring("Answer to goa"))
		Expect(view).To(ContainSubstring("conversation: hash-goa"))
	})

	It("asks the server's answer-question flow", func() {
		generator := testserver.NewGenerator(`{"answer":"Take the night train."}`)
		srv, err := testserver.Start(generator, nil, merkle.NewMemoryStorer())
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(srv.Stop)

		out, err := serverAsker(apiclient.New(srv.URL, 5*time.Second))(ctx, flow.QuestionInput{Question: "Vienna to Venice?"})
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Answer).To(Equal("Take the night train."))
		Expect(out.Journal).To(MatchRegexp("^[a-f0-9]{64}$"))
	})
})
