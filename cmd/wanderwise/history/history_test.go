package historycmder

import (
	"bytes"
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/wanderwise/cmd/wanderwise/apiclient"
	"github.com/papercomputeco/wanderwise/internal/testserver"
	"github.com/papercomputeco/wanderwise/pkg/merkle"
	"github.com/papercomputeco/wanderwise/server"
)

var _ = Describe("History Command", func() {
	var (
		ctx    context.Context
		storer *merkle.MemoryStorer
		srv    *testserver.Server
		stdout *bytes.Buffer
	)

	BeforeEach(func() {
		ctx = context.Background()
		storer = merkle.NewMemoryStorer()

		var err error
		srv, err = testserver.Start(testserver.NewGenerator(), nil, storer)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(srv.Stop)

		stdout = &bytes.Buffer{}
	})

	history := func(args ...string) error {
		cmd := NewHistoryCmd()
		cmd.SetOut(stdout)
		cmd.SetArgs(append([]string{"--server", srv.URL}, args...))
		return cmd.ExecuteContext(ctx)
	}

	seed := func(flowName, question, answer string) *merkle.Node {
		in := merkle.NewNode(merkle.Bucket{Type: merkle.TypeInput, Flow: flowName, Role: "user", Text: question}, nil)
		out := merkle.NewNode(merkle.Bucket{Type: merkle.TypeOutput, Flow: flowName, Role: "assistant", Text: answer, Model: "test-model"}, in)
		Expect(storer.Put(ctx, in)).To(Succeed())
		Expect(storer.Put(ctx, out)).To(Succeed())
		return out
	}

	It("reports an empty journal", func() {
		Expect(history()).To(Succeed())
		Expect(stdout.String()).To(Equal("No journaled conversations.\n"))
	})

	It("lists conversations", func() {
		head := seed("answer-question", "When to visit Kyoto?", "Spring.")
		seed("travel-safety", "Is Lisbon safe?", "Yes.")

		Expect(history()).To(Succeed())

		Expect(stdout.String()).To(ContainSubstring(head.Hash[:12]))
		Expect(stdout.String()).To(ContainSubstring("When to visit Kyoto?"))
		Expect(stdout.String()).To(ContainSubstring("Is Lisbon safe?"))
	})

	It("filters by flow", func() {
		seed("answer-question", "When to visit Kyoto?", "Spring.")
		seed("travel-safety", "Is Lisbon safe?", "Yes.")

		Expect(history("--flow", "travel-safety")).To(Succeed())

		Expect(stdout.String()).To(ContainSubstring("Is Lisbon safe?"))
		Expect(stdout.String()).NotTo(ContainSubstring("Kyoto"))
	})

	It("prints one conversation", func() {
		head := seed("answer-question", "When to visit Kyoto?", "Spring.")

		Expect(history(head.Hash)).To(Succeed())

		Expect(stdout.String()).To(ContainSubstring("user\nWhen to visit Kyoto?"))
		Expect(stdout.String()).To(ContainSubstring("assistant (test-model)\nSpring."))
	})

	It("fails for unknown hashes", func() {
		Expect(history("deadbeef")).To(MatchError(ContainSubstring("server returned 404: node not found")))
	})

	It("lists histories without messages", func() {
		printHistories(stdout, &apiclient.HistoryList{
			Count:     1,
			Histories: []server.HistoryResponse{{HeadHash: "abc123", Depth: 0}},
		})
		Expect(stdout.String()).To(ContainSubstring("abc123"))
	})

	It("truncates to the display width without splitting characters", func() {
		Expect(truncate("東京から京都まで", 9)).To(Equal("東京か..."))
		Expect(truncate("Day 1\nDay 2", 20)).To(Equal("Day 1 Day 2"))
	})
})
