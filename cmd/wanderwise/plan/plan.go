package plancmder

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/papercomputeco/wanderwise/cmd/wanderwise/apiclient"
	"github.com/papercomputeco/wanderwise/pkg/config"
	"github.com/papercomputeco/wanderwise/pkg/flow"
	"github.com/papercomputeco/wanderwise/pkg/itinerary"
)

const planLongDesc string = `Generate a personalized itinerary on a running wanderwise server.

The itinerary is printed one day per section, rendered as markdown
when stdout is a terminal. With --feedback the generated itinerary is
reworked once more; with --csv it is also written as a day,activity
spreadsheet.

Examples:
  wanderwise plan --to goa --duration 5d --trip-type "Leisure, Family"
  wanderwise plan --to kyoto --from tokyo --interests temples --csv kyoto.csv
  wanderwise plan --to paris --feedback "fewer museums, more food"`

const planShortDesc string = "Generate a travel itinerary"

var titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))

type planCommander struct {
	serverURL string
	input     flow.ItineraryInput
	feedback  string
	csvPath   string
	timeout   time.Duration
}

func NewPlanCmd() *cobra.Command {
	cmder := &planCommander{}

	cmd := &cobra.Command{
		Use:          "plan --to <destination>",
		Short:        planShortDesc,
		Long:         planLongDesc,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cmder.serverURL, "server", "", "wanderwise server URL (default: $WANDERWISE_SERVER_URL)")
	flags.StringVar(&cmder.input.Destination, "to", "", "Destination")
	flags.StringVar(&cmder.input.Source, "from", "", "Departure city")
	flags.StringVar(&cmder.input.Duration, "duration", "3d", "Trip duration, e.g. 5d")
	flags.StringVar(&cmder.input.TripType, "trip-type", "Leisure", "Comma separated trip types")
	flags.StringVar(&cmder.input.Budget, "budget", "", "Budget")
	flags.StringVar(&cmder.input.FlightOptions, "flights", "", "Flight preferences")
	flags.StringVar(&cmder.input.Description, "description", "", "What the trip should be like")
	flags.StringVar(&cmder.input.FoodPreferences, "food", "", "Food preferences")
	flags.StringVar(&cmder.input.Interests, "interests", "", "Interests and activities")
	flags.StringVar(&cmder.input.Language, "language", "", "Preferred language")
	flags.StringVar(&cmder.feedback, "feedback", "", "Rework the itinerary with this feedback")
	flags.StringVar(&cmder.csvPath, "csv", "", "Also write the itinerary to this CSV file")
	flags.DurationVar(&cmder.timeout, "timeout", 3*time.Minute, "Request timeout")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func (c *planCommander) run(ctx context.Context, cmd *cobra.Command) error {
	serverURL := c.serverURL
	if serverURL == "" {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("could not load config: %w", err)
		}
		serverURL = cfg.ServerURL
	}

	client := apiclient.New(serverURL, c.timeout)

	var plan flow.ItineraryOutput
	if err := client.RunFlow(ctx, flow.GenerateItinerary, c.input, &plan); err != nil {
		return fmt.Errorf("could not generate itinerary: %w", err)
	}
	text, sections := plan.Itinerary, plan.Sections

	if c.feedback != "" {
		var improved flow.ImproveItineraryOutput
		err := client.RunFlow(ctx, flow.ImproveItinerary, flow.ImproveItineraryInput{
			Itinerary: text,
			Feedback:  c.feedback,
		}, &improved)
		if err != nil {
			return fmt.Errorf("could not improve itinerary: %w", err)
		}
		text, sections = improved.ImprovedItinerary, improved.Sections
	}

	if len(sections) == 0 {
		sections = itinerary.Parse(text)
	}

	if err := render(cmd.OutOrStdout(), c.input.Destination, sections); err != nil {
		return err
	}

	if c.csvPath != "" {
		if err := writeCSV(c.csvPath, sections); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", c.csvPath)
	}

	return nil
}

// render prints the sections as markdown, styled when w is a terminal.
func render(w io.Writer, destination string, sections []itinerary.Section) error {
	var md strings.Builder
	for _, s := range sections {
		fmt.Fprintf(&md, "## %s\n\n%s\n\n", s.Title, s.Content)
	}

	if !isTerminal(w) {
		fmt.Fprintf(w, "Trip to %s\n\n%s", destination, md.String())
		return nil
	}

	renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(80))
	if err != nil {
		return fmt.Errorf("could not create renderer: %w", err)
	}
	out, err := renderer.Render(md.String())
	if err != nil {
		return fmt.Errorf("could not render itinerary: %w", err)
	}

	fmt.Fprintln(w, titleStyle.Render("Trip to "+destination))
	fmt.Fprint(w, out)
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func writeCSV(path string, sections []itinerary.Section) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create %s: %w", path, err)
	}
	defer f.Close()

	if err := itinerary.ExportCSV(f, sections); err != nil {
		return fmt.Errorf("could not write %s: %w", path, err)
	}
	return f.Close()
}
