package pushcmder

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/wanderwise/cmd/wanderwise/apiclient"
	"github.com/papercomputeco/wanderwise/cmd/wanderwise/bootstrap"
	"github.com/papercomputeco/wanderwise/pkg/merkle"
)

const pushLongDesc string = `Push a local journal to a remote wanderwise server.

Reads all nodes from the local journal database and POSTs them to the
remote server's /journal/nodes endpoint. Content-addressing ensures
duplicates are skipped on the server side.

Examples:
  wanderwise push http://192.168.1.42:9002
  wanderwise push --db ~/.wanderwise/journal.db http://localhost:9002`

const pushShortDesc string = "Push a local journal to a remote server"

type pushCommander struct {
	dbPath    string
	batchSize int
	timeout   time.Duration
}

func NewPushCmd() *cobra.Command {
	cmder := &pushCommander{}

	cmd := &cobra.Command{
		Use:   "push <server-url>",
		Short: pushShortDesc,
		Long:  pushLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&cmder.dbPath, "db", "", "Path to the local journal (default: $WANDERWISE_DB)")
	cmd.Flags().IntVar(&cmder.batchSize, "batch-size", 500, "Nodes per HTTP request")
	cmd.Flags().DurationVar(&cmder.timeout, "timeout", time.Minute, "Per batch request timeout")

	return cmd
}

func (c *pushCommander) run(ctx context.Context, cmd *cobra.Command, serverURL string) error {
	if c.batchSize < 1 {
		return fmt.Errorf("batch size must be positive, got %d", c.batchSize)
	}

	dbPath, err := bootstrap.ResolveDBPath(c.dbPath)
	if err != nil {
		return fmt.Errorf("could not resolve local database: %w", err)
	}

	storer, err := merkle.NewSQLiteStorer(dbPath)
	if err != nil {
		return fmt.Errorf("could not open local database %s: %w", dbPath, err)
	}
	defer storer.Close()

	// List is in insertion order, so parents are pushed before children.
	nodes, err := storer.List(ctx)
	if err != nil {
		return fmt.Errorf("could not list local nodes: %w", err)
	}

	if len(nodes) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No local nodes to push.")
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Pushing %d nodes from %s to %s\n", len(nodes), dbPath, serverURL)

	client := apiclient.New(serverURL, c.timeout)
	var totalNew, totalDup, totalErr int

	for i := 0; i < len(nodes); i += c.batchSize {
		end := min(i+c.batchSize, len(nodes))

		resp, err := client.PushNodes(ctx, nodes[i:end])
		if err != nil {
			return fmt.Errorf("push failed on batch %d-%d: %w", i, end-1, err)
		}

		totalNew += resp.New
		totalDup += resp.Duplicate
		totalErr += resp.Errors
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Pushed %d new nodes (%d already existed, %d errors)\n",
		totalNew, totalDup, totalErr)

	return nil
}
