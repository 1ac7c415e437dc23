// Package server exposes the wanderwise flows, itinerary helpers and the
// flow journal over HTTP.
package server

import (
	"context"
	"net"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/papercomputeco/wanderwise/pkg/flow"
	"github.com/papercomputeco/wanderwise/pkg/mcptools"
	"github.com/papercomputeco/wanderwise/pkg/merkle"
)

// Server is the wanderwise HTTP API. The storer is the one the flow service
// journals into; the server only reads from it.
type Server struct {
	config  Config
	service *flow.Service
	storer  merkle.Storer
	logger  *zap.Logger
	server  *fiber.App
}

// New creates a Server and registers its routes.
func New(config Config, service *flow.Service, storer merkle.Storer, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config:  config,
		service: service,
		storer:  storer,
		logger:  logger,
		server:  app,
	}

	app.Use(s.requestLogger)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(map[string]string{"status": "ok", "version": s.config.Version})
	})

	// Flows
	app.Get("/api/flows", s.handleListFlows)
	app.Post("/api/flows/:name", s.handleRunFlow)

	// Itinerary helpers
	app.Post("/api/itinerary/sections", s.handleSections)
	app.Post("/api/itinerary/export", s.handleExport)

	// Journal inspection endpoints
	app.Get("/journal/stats", s.handleJournalStats)
	app.Get("/journal/node/:hash", s.handleGetNode)
	app.Get("/journal/history", s.handleListHistories)
	app.Get("/journal/history/:hash", s.handleGetHistory)
	app.Post("/journal/nodes", s.handlePushNodes)

	app.All("/mcp", adaptor.HTTPHandler(mcptools.NewHTTPHandler(service, config.Version)))

	return s
}

// Run starts the server on the configured listening address.
func (s *Server) Run() error {
	s.logger.Info("starting wanderwise server", zap.String("listen", s.config.ListenAddr))
	return s.server.Listen(s.config.ListenAddr)
}

// RunWithListener serves on an existing listener.
func (s *Server) RunWithListener(ln net.Listener) error {
	s.logger.Info("starting wanderwise server", zap.String("listen", ln.Addr().String()))
	return s.server.Listener(ln)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.ShutdownWithContext(ctx)
}
