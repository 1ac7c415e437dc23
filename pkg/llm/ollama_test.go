package llm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/wanderwise/pkg/llm"
)

var _ = Describe("OllamaGenerator", func() {
	var (
		ctx      context.Context
		upstream *httptest.Server
		received llm.ChatRequest
		reply    string
		status   int
	)

	BeforeEach(func() {
		ctx = context.Background()
		reply = "Pack light."
		status = http.StatusOK
		received = llm.ChatRequest{}

		upstream = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()
			Expect(r.URL.Path).To(Equal("/api/chat"))
			Expect(json.NewDecoder(r.Body).Decode(&received)).To(Succeed())

			if status != http.StatusOK {
				w.WriteHeader(status)
				w.Write([]byte("model not loaded"))
				return
			}

			json.NewEncoder(w).Encode(llm.ChatResponse{
				Model:   received.Model,
				Message: llm.Message{Role: llm.RoleAssistant, Content: reply},
				Done:    true,
			})
		}))
	})

	AfterEach(func() {
		upstream.Close()
	})

	newGenerator := func() *llm.OllamaGenerator {
		return llm.NewOllamaGenerator(upstream.URL+"/", "llama3", time.Second, zap.NewNop())
	}

	It("returns the assistant content for a free text prompt", func() {
		text, err := newGenerator().Generate(ctx, &llm.Prompt{
			Name:   "answer",
			System: "You are a travel assistant.",
			Text:   "Best time to visit Kyoto?",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("Pack light."))

		Expect(received.Model).To(Equal("llama3"))
		Expect(received.Stream).NotTo(BeNil())
		Expect(*received.Stream).To(BeFalse())
		Expect(received.Format).To(BeEmpty())
		Expect(received.Options).To(BeNil())
		Expect(received.Messages).To(HaveLen(2))
		Expect(received.Messages[0].Role).To(Equal(llm.RoleSystem))
		Expect(received.Messages[1].Content).To(Equal("Best time to visit Kyoto?"))
	})

	It("requests JSON mode when the prompt has an output schema", func() {
		reply = `{"suggestions":["passport","adapter"]}`

		text, err := newGenerator().Generate(ctx, &llm.Prompt{
			Text:   "Itinerary: Day 1: Rome",
			Output: []llm.Field{{Name: "suggestions", Description: "items", List: true}},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(received.Format).To(Equal("json"))
		Expect(received.Messages[0].Content).To(ContainSubstring(`"suggestions" (array of strings)`))

		var out struct {
			Suggestions []string `json:"suggestions"`
		}
		Expect(llm.DecodeOutput(text, &out)).To(Succeed())
		Expect(out.Suggestions).To(ConsistOf("passport", "adapter"))
	})

	It("replays history between the system and user turns", func() {
		_, err := newGenerator().Generate(ctx, &llm.Prompt{
			Text: "And in winter?",
			History: []llm.Message{
				{Role: llm.RoleUser, Content: "Is Oslo cold?"},
				{Role: llm.RoleAssistant, Content: "Mild in summer."},
			},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(received.Messages).To(HaveLen(3))
		Expect(received.Messages[1].Content).To(Equal("Mild in summer."))
		Expect(received.Messages[2].Content).To(Equal("And in winter?"))
	})

	It("passes sampling options through", func() {
		temperature, numPredict := 0.2, 512

		_, err := newGenerator().Generate(ctx, &llm.Prompt{
			Text:    "Is Lisbon safe?",
			Options: &llm.Options{Temperature: &temperature, NumPredict: &numPredict},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(received.Options).NotTo(BeNil())
		Expect(*received.Options.Temperature).To(Equal(0.2))
		Expect(*received.Options.NumPredict).To(Equal(512))
	})

	It("surfaces upstream failures with the status and body", func() {
		status = http.StatusServiceUnavailable

		_, err := newGenerator().Generate(ctx, &llm.Prompt{Text: "hi"})
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("503"))
		Expect(err.Error()).To(ContainSubstring("model not loaded"))
	})
})

var _ = Describe("DecodeOutput", func() {
	It("strips a markdown code fence", func() {
		var out map[string]string
		err := llm.DecodeOutput("```json\n{\"answer\":\"yes\"}\n```", &out)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(HaveKeyWithValue("answer", "yes"))
	})

	It("fails on text that is not JSON", func() {
		var out map[string]string
		Expect(llm.DecodeOutput("sure thing!", &out)).To(MatchError(ContainSubstring("decode model output")))
	})
})
