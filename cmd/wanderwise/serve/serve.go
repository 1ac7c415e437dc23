package servecmder

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/papercomputeco/wanderwise/cmd/wanderwise/bootstrap"
	"github.com/papercomputeco/wanderwise/pkg/config"
	"github.com/papercomputeco/wanderwise/pkg/logger"
	"github.com/papercomputeco/wanderwise/server"
)

const serveLongDesc string = `Run the wanderwise HTTP server.

Settings come from the environment and an optional .env file; flags
override them. When a prompts file is configured it is watched and
reloaded on change.

Examples:
  wanderwise serve
  wanderwise serve --listen :8080 --provider ollama --model llama3.2
  wanderwise serve --db ~/.wanderwise/journal.db --itinerary-source model`

const serveShortDesc string = "Run the wanderwise HTTP server"

const shutdownTimeout = 10 * time.Second

type serveCommander struct {
	listen          string
	dbPath          string
	backendURL      string
	provider        string
	model           string
	promptsPath     string
	itinerarySource string
	logFile         string
	debug           bool
}

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}

	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", "", "Address to listen on")
	cmd.Flags().StringVar(&cmder.dbPath, "db", "", "Path to the SQLite journal (default: in-memory)")
	cmd.Flags().StringVar(&cmder.backendURL, "backend", "", "Itinerary backend URL")
	cmd.Flags().StringVar(&cmder.provider, "provider", "", "LLM provider (gemini or ollama)")
	cmd.Flags().StringVar(&cmder.model, "model", "", "Model name")
	cmd.Flags().StringVar(&cmder.promptsPath, "prompts", "", "Prompt catalog override file")
	cmd.Flags().StringVar(&cmder.itinerarySource, "itinerary-source", "", "Who writes itineraries (backend or model)")
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also write JSON logs to this rotating file")
	cmd.Flags().BoolVar(&cmder.debug, "debug", false, "Enable debug logging")

	return cmd
}

// apply copies explicitly set flags over cfg.
func (c *serveCommander) apply(flags *pflag.FlagSet, cfg *config.Config) {
	overrides := map[string]func(){
		"listen":           func() { cfg.ListenAddr = c.listen },
		"db":               func() { cfg.DBPath = c.dbPath },
		"backend":          func() { cfg.BackendURL = c.backendURL },
		"provider":         func() { cfg.Provider = c.provider },
		"model":            func() { cfg.Model = c.model },
		"prompts":          func() { cfg.PromptsPath = c.promptsPath },
		"itinerary-source": func() { cfg.ItinerarySource = c.itinerarySource },
		"log-file":         func() { cfg.LogFile = c.logFile },
		"debug":            func() { cfg.Debug = c.debug },
	}

	flags.Visit(func(f *pflag.Flag) {
		if set, ok := overrides[f.Name]; ok {
			set()
		}
	})
}

func (c *serveCommander) run(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}
	c.apply(cmd.Flags(), &cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logger.New(logger.Options{Debug: cfg.Debug, FilePath: cfg.LogFile})
	defer func() { _ = log.Sync() }()

	rt, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer rt.Close()

	listener, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("could not listen on %s: %w", cfg.ListenAddr, err)
	}

	srv := server.New(server.Config{
		ListenAddr: cfg.ListenAddr,
		Version:    bootstrap.Version,
	}, rt.Service, rt.Storer, log)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serve(ctx, srv, listener, rt, log)
}

// serve runs the server, and the prompt watcher when configured, until ctx is
// done or one of them fails.
func serve(ctx context.Context, srv *server.Server, listener net.Listener, rt *bootstrap.Runtime, log *zap.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.RunWithListener(listener)
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if path := rt.Config.PromptsPath; path != "" {
		g.Go(func() error {
			return rt.Prompts.Watch(gctx, path, log)
		})
	}

	return g.Wait()
}
