package mcpcmder

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/wanderwise/cmd/wanderwise/bootstrap"
	"github.com/papercomputeco/wanderwise/pkg/config"
	"github.com/papercomputeco/wanderwise/pkg/logger"
	"github.com/papercomputeco/wanderwise/pkg/mcptools"
)

const mcpLongDesc string = `Serve the wanderwise flows as MCP tools over stdio.

Configure an MCP client to launch this command. Logs go to stderr and,
with WANDERWISE_LOG_FILE, to a rotating file.

Examples:
  wanderwise mcp
  wanderwise mcp --db ~/.wanderwise/journal.db`

const mcpShortDesc string = "Serve flows as MCP tools over stdio"

type mcpCommander struct {
	dbPath string
	debug  bool
}

func NewMCPCmd() *cobra.Command {
	cmder := &mcpCommander{}

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: mcpShortDesc,
		Long:  mcpLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}

	cmd.Flags().StringVar(&cmder.dbPath, "db", "", "Path to the SQLite journal (default: $WANDERWISE_DB or in-memory)")
	cmd.Flags().BoolVar(&cmder.debug, "debug", false, "Enable debug logging")

	return cmd
}

func (c *mcpCommander) run(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}
	if cmd.Flags().Changed("db") {
		cfg.DBPath = c.dbPath
	}
	if c.debug {
		cfg.Debug = true
	}

	log := logger.New(logger.Options{Debug: cfg.Debug, FilePath: cfg.LogFile, Stderr: true})
	defer func() { _ = log.Sync() }()

	rt, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer rt.Close()

	server := mcptools.NewServer(rt.Service, bootstrap.Version)
	return server.Run(ctx, &mcp.StdioTransport{})
}
