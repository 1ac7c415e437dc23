package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/papercomputeco/wanderwise/pkg/flow"
	"github.com/papercomputeco/wanderwise/pkg/llm"
)

// handleListFlows returns the names of the flows that can be run.
func (s *Server) handleListFlows(c *fiber.Ctx) error {
	return c.JSON(map[string]any{"flows": flow.Names})
}

// handleRunFlow runs the flow named in the path with the request body as its
// input and returns the flow output.
func (s *Server) handleRunFlow(c *fiber.Ctx) error {
	name := c.Params("name")

	out, err := s.service.Invoke(c.Context(), name, c.Body())
	if err != nil {
		return s.flowError(c, name, err)
	}
	return c.JSON(out)
}

// flowError maps a flow error to a status code. Upstream details are logged,
// never returned.
func (s *Server) flowError(c *fiber.Ctx, name string, err error) error {
	var (
		validationErr *flow.ValidationError
		upstreamErr   *flow.UpstreamError
		unknownErr    flow.ErrUnknownFlow
	)

	switch {
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{
			Error:   validationErr.Error(),
			Details: validationErr.Fields,
		})
	case errors.As(err, &unknownErr):
		return c.Status(fiber.StatusNotFound).JSON(llm.ErrorResponse{Error: unknownErr.Error()})
	case errors.As(err, &upstreamErr):
		s.logger.Warn("flow upstream failure",
			zap.String("request_id", requestID(c)),
			zap.String("flow", name),
			zap.Error(err),
		)
		return c.Status(fiber.StatusBadGateway).JSON(llm.ErrorResponse{Error: upstreamErr.Message()})
	default:
		s.logger.Error("flow failed",
			zap.String("request_id", requestID(c)),
			zap.String("flow", name),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "internal error"})
	}
}
