package askcmder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/wanderwise/cmd/wanderwise/apiclient"
	"github.com/papercomputeco/wanderwise/pkg/config"
	"github.com/papercomputeco/wanderwise/pkg/flow"
)

const askLongDesc string = `Ask a running wanderwise server a travel question.

Every answer is journaled. Pass the printed journal hash back with
--conversation to ask a follow-up in the same chat.

Examples:
  wanderwise ask "When is the best time to visit Kyoto?"
  wanderwise ask --conversation 3f2a... "And how many days should I stay?"
  wanderwise ask --flow travel-safety "Is Lisbon safe at night?"`

const askShortDesc string = "Ask a travel question"

// fallbackMessage is shown instead of an answer when the server cannot help.
const fallbackMessage = "Sorry, I'm having trouble connecting. Please try again later."

var hintStyle = lipgloss.NewStyle().Faint(true)

type askCommander struct {
	serverURL    string
	conversation string
	flowName     string
	timeout      time.Duration
}

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:          "ask <question>",
		Short:        askShortDesc,
		Long:         askLongDesc,
		SilenceUsage: true,
		Args:         cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd, strings.Join(args, " "))
		},
	}

	cmd.Flags().StringVar(&cmder.serverURL, "server", "", "wanderwise server URL (default: $WANDERWISE_SERVER_URL)")
	cmd.Flags().StringVarP(&cmder.conversation, "conversation", "c", "", "Journal hash of the answer to follow up on")
	cmd.Flags().StringVar(&cmder.flowName, "flow", flow.AnswerQuestion,
		"Flow to ask: answer-question, dynamic-updates, language-assistance or travel-safety")
	cmd.Flags().DurationVar(&cmder.timeout, "timeout", 2*time.Minute, "Request timeout")

	return cmd
}

func (c *askCommander) run(ctx context.Context, cmd *cobra.Command, question string) error {
	serverURL := c.serverURL
	if serverURL == "" {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("could not load config: %w", err)
		}
		serverURL = cfg.ServerURL
	}

	client := apiclient.New(serverURL, c.timeout)

	answer, journal, err := c.ask(ctx, client, question)
	if err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), fallbackMessage)
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), answer)
	if journal != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), hintStyle.Render("conversation: "+journal))
	}
	return nil
}

func (c *askCommander) ask(ctx context.Context, client *apiclient.Client, question string) (string, string, error) {
	switch c.flowName {
	case flow.AnswerQuestion:
		var out flow.QuestionOutput
		err := client.RunFlow(ctx, c.flowName, flow.QuestionInput{Question: question, Conversation: c.conversation}, &out)
		return out.Answer, out.Journal, err

	case flow.DynamicUpdates, flow.LanguageAssistance, flow.TravelSafety:
		if c.conversation != "" {
			return "", "", fmt.Errorf("--conversation only applies to %s", flow.AnswerQuestion)
		}
		var out flow.RequestOutput
		err := client.RunFlow(ctx, c.flowName, flow.RequestInput{Request: question}, &out)
		return out.Response, out.Journal, err

	default:
		return "", "", fmt.Errorf("flow %q does not take a question", c.flowName)
	}
}
