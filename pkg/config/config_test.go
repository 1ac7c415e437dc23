package config_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/wanderwise/pkg/config"
)

var _ = Describe("Load", func() {
	var dir string

	// Dotenv files write to the process environment; undo that per test.
	unsetAfter := func(keys ...string) {
		DeferCleanup(func() {
			for _, k := range keys {
				_ = os.Unsetenv(k)
			}
		})
	}

	writeEnv := func(name, content string) string {
		path := filepath.Join(dir, name)
		Expect(os.WriteFile(path, []byte(content), 0o600)).To(Succeed())
		return path
	}

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("uses defaults when the dotenv file is missing", func() {
		cfg, err := config.Load(filepath.Join(dir, "missing.env"))
		Expect(err).NotTo(HaveOccurred())

		Expect(cfg.ListenAddr).To(Equal(":9002"))
		Expect(cfg.BackendURL).To(Equal("http://127.0.0.1:8000"))
		Expect(cfg.DefaultSource).To(Equal("delhi"))
		Expect(cfg.ItinerarySource).To(Equal("backend"))
		Expect(cfg.Provider).To(Equal("gemini"))
		Expect(cfg.ModelName()).To(Equal(config.DefaultGeminiModel))
		Expect(cfg.UpstreamTimeout).To(Equal(2 * time.Minute))
		Expect(cfg.DBPath).To(BeEmpty())
	})

	It("reads settings from a dotenv file", func() {
		unsetAfter("WANDERWISE_LLM_PROVIDER", "WANDERWISE_MODEL", "WANDERWISE_UPSTREAM_TIMEOUT", "WANDERWISE_DEBUG")
		path := writeEnv("test.env", `WANDERWISE_LLM_PROVIDER=ollama
WANDERWISE_MODEL=llama3.2
WANDERWISE_UPSTREAM_TIMEOUT=30s
WANDERWISE_DEBUG=true
`)

		cfg, err := config.Load(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Provider).To(Equal("ollama"))
		Expect(cfg.Model).To(Equal("llama3.2"))
		Expect(cfg.UpstreamTimeout).To(Equal(30 * time.Second))
		Expect(cfg.Debug).To(BeTrue())
	})

	It("prefers the environment over the dotenv file", func() {
		unsetAfter("WANDERWISE_DEFAULT_SOURCE")
		Expect(os.Setenv("WANDERWISE_DEFAULT_SOURCE", "mumbai")).To(Succeed())
		path := writeEnv("test.env", "WANDERWISE_DEFAULT_SOURCE=chennai\n")

		cfg, err := config.Load(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.DefaultSource).To(Equal("mumbai"))
	})

	It("defaults the model to the provider's", func() {
		unsetAfter("WANDERWISE_LLM_PROVIDER")
		Expect(os.Setenv("WANDERWISE_LLM_PROVIDER", "ollama")).To(Succeed())

		cfg, err := config.Load(filepath.Join(dir, "missing.env"))
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Model).To(BeEmpty())
		Expect(cfg.ModelName()).To(Equal(config.DefaultOllamaModel))

		cfg.Model = "mistral"
		Expect(cfg.ModelName()).To(Equal("mistral"))
	})

	It("rejects an unknown provider", func() {
		unsetAfter("WANDERWISE_LLM_PROVIDER")
		path := writeEnv("test.env", "WANDERWISE_LLM_PROVIDER=openai\n")

		_, err := config.Load(path)
		Expect(err).To(MatchError(ContainSubstring(`unknown LLM provider "openai"`)))
	})

	It("rejects an unparsable duration", func() {
		unsetAfter("WANDERWISE_UPSTREAM_TIMEOUT")
		path := writeEnv("test.env", "WANDERWISE_UPSTREAM_TIMEOUT=soon\n")

		_, err := config.Load(path)
		Expect(err).To(MatchError(ContainSubstring("parse env")))
	})
})

var _ = DescribeTable("Validate",
	func(mutate func(*config.Config), message string) {
		cfg := config.Config{Provider: "gemini", ItinerarySource: "backend", UpstreamTimeout: time.Minute}
		mutate(&cfg)

		err := cfg.Validate()
		if message == "" {
			Expect(err).NotTo(HaveOccurred())
		} else {
			Expect(err).To(MatchError(ContainSubstring(message)))
		}
	},
	Entry("valid", func(*config.Config) {}, ""),
	Entry("model itineraries", func(c *config.Config) { c.ItinerarySource = "model" }, ""),
	Entry("unknown source", func(c *config.Config) { c.ItinerarySource = "scraper" }, "unknown itinerary source"),
	Entry("zero timeout", func(c *config.Config) { c.UpstreamTimeout = 0 }, "upstream timeout must be positive"),
)
