// Package mcptools exposes the wanderwise flows as MCP tools.
package mcptools

import (
	"context"
	"errors"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/wanderwise/pkg/flow"
)

// NewServer returns an MCP server with every flow registered as a tool.
func NewServer(svc *flow.Service, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "wanderwise", Version: version}, nil)
	Register(server, svc)
	return server
}

// NewHTTPHandler serves the tools over the streamable HTTP transport. Every
// request is answered with a single JSON body and no session is kept, so the
// handler never holds a response open.
func NewHTTPHandler(svc *flow.Service, version string) http.Handler {
	server := NewServer(svc, version)
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, &mcp.StreamableHTTPOptions{
		Stateless:    true,
		JSONResponse: true,
	})
}

// Register adds the flow tools to server.
func Register(server *mcp.Server, svc *flow.Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        flow.AnswerQuestion,
		Description: "Answer a travel question. Pass the journal hash of a previous answer as conversation to continue a chat.",
	}, handler(svc, (*flow.Service).AnswerTravelQuestion))

	mcp.AddTool(server, &mcp.Tool{
		Name:        flow.DynamicUpdates,
		Description: "Real-time travel updates such as flight status and weather.",
	}, handler(svc, (*flow.Service).GetDynamicUpdates))

	mcp.AddTool(server, &mcp.Tool{
		Name:        flow.LanguageAssistance,
		Description: "Translations, phrases and cultural etiquette for a destination.",
	}, handler(svc, (*flow.Service).GetLanguageAssistance))

	mcp.AddTool(server, &mcp.Tool{
		Name:        flow.TravelSafety,
		Description: "Safety information, alerts and emergency contacts for a destination.",
	}, handler(svc, (*flow.Service).GetTravelSafetyInfo))

	mcp.AddTool(server, &mcp.Tool{
		Name:        flow.PackingList,
		Description: "Suggest a packing list for an itinerary.",
	}, handler(svc, (*flow.Service).GetPackingListSuggestions))

	mcp.AddTool(server, &mcp.Tool{
		Name:        flow.ImproveItinerary,
		Description: "Rework an itinerary according to traveller feedback.",
	}, handler(svc, (*flow.Service).ImproveItineraryWithFeedback))

	mcp.AddTool(server, &mcp.Tool{
		Name:        flow.GenerateItinerary,
		Description: "Generate a day-by-day itinerary for a destination.",
	}, handler(svc, (*flow.Service).GeneratePersonalizedItinerary))
}

func handler[I, O any](svc *flow.Service, run func(*flow.Service, context.Context, I) (*O, error)) mcp.ToolHandlerFor[I, O] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input I) (*mcp.CallToolResult, O, error) {
		var zero O
		out, err := run(svc, ctx, input)
		if err != nil {
			return nil, zero, toolError(err)
		}
		return nil, *out, nil
	}
}

// toolError hides upstream details from MCP clients.
func toolError(err error) error {
	var upstreamErr *flow.UpstreamError
	if errors.As(err, &upstreamErr) {
		return errors.New(upstreamErr.Message())
	}
	return err
}
