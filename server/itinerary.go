package server

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/papercomputeco/wanderwise/pkg/itinerary"
	"github.com/papercomputeco/wanderwise/pkg/llm"
)

// ItineraryRequest carries itinerary text to split or export.
type ItineraryRequest struct {
	Itinerary string `json:"itinerary"`
}

// SectionsResponse is the parsed form of an itinerary.
type SectionsResponse struct {
	Sections []itinerary.Section `json:"sections"`
}

// itineraryText reads the itinerary text from the request body, or describes
// why it could not.
func itineraryText(c *fiber.Ctx) (string, *llm.ErrorResponse) {
	var req ItineraryRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return "", &llm.ErrorResponse{Error: "invalid request body"}
	}
	if strings.TrimSpace(req.Itinerary) == "" {
		return "", &llm.ErrorResponse{
			Error:   "itinerary is required",
			Details: map[string]string{"itinerary": "required"},
		}
	}
	return req.Itinerary, nil
}

// handleSections splits itinerary text into day sections.
func (s *Server) handleSections(c *fiber.Ctx) error {
	text, errResp := itineraryText(c)
	if errResp != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errResp)
	}
	return c.JSON(SectionsResponse{Sections: itinerary.Parse(text)})
}

// handleExport returns itinerary text as a day,activity CSV download.
func (s *Server) handleExport(c *fiber.Ctx) error {
	text, errResp := itineraryText(c)
	if errResp != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errResp)
	}

	var buf bytes.Buffer
	if err := itinerary.ExportCSV(&buf, itinerary.Parse(text)); err != nil {
		s.logger.Error("failed to export itinerary", zap.String("request_id", requestID(c)), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "internal error"})
	}

	c.Attachment("itinerary.csv")
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	return c.Send(buf.Bytes())
}
