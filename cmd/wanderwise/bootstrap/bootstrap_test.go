package bootstrap_test

import (
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/wanderwise/cmd/wanderwise/bootstrap"
	"github.com/papercomputeco/wanderwise/pkg/config"
	"github.com/papercomputeco/wanderwise/pkg/merkle"
)

var _ = Describe("Bootstrap", func() {
	var (
		ctx context.Context
		dir string
		cfg config.Config
	)

	BeforeEach(func() {
		ctx = context.Background()
		dir = GinkgoT().TempDir()
		cfg = config.Config{
			Provider:        "ollama",
			Model:           "llama3.2",
			OllamaURL:       "http://127.0.0.1:1",
			BackendURL:      "http://127.0.0.1:1",
			ItinerarySource: "backend",
			DefaultSource:   "delhi",
			UpstreamTimeout: time.Second,
		}
	})

	It("builds a runtime with a SQLite journal", func() {
		cfg.DBPath = filepath.Join(dir, "journal.db")

		rt, err := bootstrap.New(ctx, cfg, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())
		defer rt.Close()

		Expect(rt.Service).NotTo(BeNil())
		Expect(rt.Storer).To(BeAssignableToTypeOf(&merkle.SQLiteStorer{}))
		Expect(cfg.DBPath).To(BeAnExistingFile())
	})

	It("keeps the journal in memory without a database path", func() {
		rt, err := bootstrap.New(ctx, cfg, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())
		defer rt.Close()

		Expect(rt.Storer).To(BeAssignableToTypeOf(&merkle.MemoryStorer{}))
	})

	It("applies a prompt override file", func() {
		cfg.PromptsPath = filepath.Join(dir, "prompts.toml")
		Expect(os.WriteFile(cfg.PromptsPath, []byte(`
[[prompt]]
name = "travel-safety"
system = "You are terse."
text = "Safety: {{.Request}}"
`), 0o600)).To(Succeed())

		rt, err := bootstrap.New(ctx, cfg, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())
		defer rt.Close()

		p, err := rt.Prompts.Render("travel-safety", map[string]string{"Request": "Lisbon"})
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Text).To(Equal("Safety: Lisbon"))
	})

	It("fails on an unreadable prompt file", func() {
		cfg.PromptsPath = filepath.Join(dir, "missing.toml")

		_, err := bootstrap.New(ctx, cfg, zap.NewNop())
		Expect(err).To(MatchError(ContainSubstring("read prompts")))
	})

	It("requires a Gemini API key", func() {
		cfg.Provider = "gemini"

		_, err := bootstrap.New(ctx, cfg, zap.NewNop())
		Expect(err).To(MatchError(ContainSubstring("gemini API key is required")))
	})
})
