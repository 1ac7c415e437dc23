package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	askcmder "github.com/papercomputeco/wanderwise/cmd/wanderwise/ask"
	"github.com/papercomputeco/wanderwise/cmd/wanderwise/bootstrap"
	historycmder "github.com/papercomputeco/wanderwise/cmd/wanderwise/history"
	mcpcmder "github.com/papercomputeco/wanderwise/cmd/wanderwise/mcp"
	mergecmder "github.com/papercomputeco/wanderwise/cmd/wanderwise/merge"
	plancmder "github.com/papercomputeco/wanderwise/cmd/wanderwise/plan"
	pushcmder "github.com/papercomputeco/wanderwise/cmd/wanderwise/push"
	servecmder "github.com/papercomputeco/wanderwise/cmd/wanderwise/serve"
)

const rootLongDesc string = `wanderwise is an AI travel planner.

It answers travel questions, generates and improves itineraries and
suggests what to pack, over HTTP, MCP or from the command line. Every
flow run is written to a content-addressed journal.`

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "wanderwise",
		Short:        "AI travel planner",
		Long:         rootLongDesc,
		Version:      bootstrap.Version,
		SilenceUsage: true,
	}

	cmd.AddCommand(
		servecmder.NewServeCmd(),
		mcpcmder.NewMCPCmd(),
		askcmder.NewAskCmd(),
		askcmder.NewChatCmd(),
		plancmder.NewPlanCmd(),
		historycmder.NewHistoryCmd(),
		mergecmder.NewMergeCmd(),
		pushcmder.NewPushCmd(),
	)

	return cmd
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
