package historycmder

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/wanderwise/cmd/wanderwise/apiclient"
	"github.com/papercomputeco/wanderwise/pkg/config"
	"github.com/papercomputeco/wanderwise/server"
)

const historyLongDesc string = `Show journaled flow runs from a running wanderwise server.

Without arguments every conversation is listed with its head hash.
With a hash the conversation ending at that node is printed in full.

Examples:
  wanderwise history
  wanderwise history --flow answer-question
  wanderwise history 3f2a9c...`

const historyShortDesc string = "Show journaled conversations"

var (
	hashStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	roleStyle = lipgloss.NewStyle().Bold(true)
)

type historyCommander struct {
	serverURL string
	flowName  string
	timeout   time.Duration
}

func NewHistoryCmd() *cobra.Command {
	cmder := &historyCommander{}

	cmd := &cobra.Command{
		Use:          "history [hash]",
		Short:        historyShortDesc,
		Long:         historyLongDesc,
		SilenceUsage: true,
		Args:         cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash := ""
			if len(args) == 1 {
				hash = args[0]
			}
			return cmder.run(cmd.Context(), cmd, hash)
		},
	}

	cmd.Flags().StringVar(&cmder.serverURL, "server", "", "wanderwise server URL (default: $WANDERWISE_SERVER_URL)")
	cmd.Flags().StringVar(&cmder.flowName, "flow", "", "Only list conversations of this flow")
	cmd.Flags().DurationVar(&cmder.timeout, "timeout", 30*time.Second, "Request timeout")

	return cmd
}

func (c *historyCommander) run(ctx context.Context, cmd *cobra.Command, hash string) error {
	serverURL := c.serverURL
	if serverURL == "" {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("could not load config: %w", err)
		}
		serverURL = cfg.ServerURL
	}

	client := apiclient.New(serverURL, c.timeout)
	out := cmd.OutOrStdout()

	if hash != "" {
		history, err := client.History(ctx, hash)
		if err != nil {
			return fmt.Errorf("could not load history %s: %w", hash, err)
		}
		printHistory(out, history)
		return nil
	}

	list, err := client.Histories(ctx, c.flowName)
	if err != nil {
		return fmt.Errorf("could not list histories: %w", err)
	}

	if list.Count == 0 {
		fmt.Fprintln(out, "No journaled conversations.")
		return nil
	}

	printHistories(out, list)
	return nil
}

func printHistories(w io.Writer, list *apiclient.HistoryList) {
	for _, h := range list.Histories {
		var first server.HistoryMessage
		if len(h.Messages) > 0 {
			first = h.Messages[0]
		}
		fmt.Fprintf(w, "%s  %-20s %2d  %s\n",
			hashStyle.Render(shortHash(h.HeadHash)), first.Flow, h.Depth, truncate(first.Content, 60))
	}
}

func printHistory(w io.Writer, history *server.HistoryResponse) {
	for _, m := range history.Messages {
		label := m.Role
		if m.Model != "" {
			label += " (" + m.Model + ")"
		}
		fmt.Fprintf(w, "%s %s\n%s\n\n", hashStyle.Render(shortHash(m.Hash)), roleStyle.Render(label), m.Content)
	}
}

func shortHash(hash string) string {
	if len(hash) <= 12 {
		return hash
	}
	return hash[:12]
}

// truncate fits s on one line of at most width terminal cells.
func truncate(s string, width int) string {
	return ansi.Truncate(strings.ReplaceAll(s, "\n", " "), width, "...")
}
