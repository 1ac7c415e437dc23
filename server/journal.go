package server

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/papercomputeco/wanderwise/pkg/llm"
	"github.com/papercomputeco/wanderwise/pkg/merkle"
)

// HistoryResponse contains the journal history for a given node.
type HistoryResponse struct {
	// Messages in chronological order (oldest first, up to and including the requested node)
	Messages []HistoryMessage `json:"messages"`
	// HeadHash is the hash of the node that was requested
	HeadHash string `json:"head_hash"`
	// Depth is the number of messages in the history
	Depth int `json:"depth"`
}

// HistoryMessage represents a single journaled flow input or output.
type HistoryMessage struct {
	Hash       string  `json:"hash"`
	ParentHash *string `json:"parent_hash,omitempty"`
	Type       string  `json:"type"`
	Flow       string  `json:"flow"`
	Role       string  `json:"role"`
	Content    string  `json:"content"`
	Model      string  `json:"model,omitempty"`
}

// PushResponse summarises a node upload.
type PushResponse struct {
	New       int `json:"new"`
	Duplicate int `json:"duplicate"`
	Errors    int `json:"errors"`
}

// handlePushNodes stores nodes uploaded from another journal. Nodes whose hash
// does not match their content are counted as errors and skipped.
func (s *Server) handlePushNodes(c *fiber.Ctx) error {
	ctx := c.Context()

	var nodes []*merkle.Node
	if err := json.Unmarshal(c.Body(), &nodes); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "invalid request body"})
	}

	var resp PushResponse
	for _, node := range nodes {
		if node == nil || !node.Valid() {
			resp.Errors++
			continue
		}

		exists, err := s.storer.Has(ctx, node.Hash)
		if err != nil {
			return s.journalError(c, "failed to check node", err)
		}
		if exists {
			resp.Duplicate++
			continue
		}

		if err := s.storer.Put(ctx, node); err != nil {
			return s.journalError(c, "failed to store node", err)
		}
		resp.New++
	}

	s.logger.Info("journal nodes pushed",
		zap.String("request_id", requestID(c)),
		zap.Int("new", resp.New),
		zap.Int("duplicate", resp.Duplicate),
		zap.Int("errors", resp.Errors),
	)
	return c.JSON(resp)
}

// handleJournalStats returns statistics about the journal.
func (s *Server) handleJournalStats(c *fiber.Ctx) error {
	ctx := c.Context()

	nodes, err := s.storer.List(ctx)
	if err != nil {
		return s.journalError(c, "failed to list nodes", err)
	}

	roots, err := s.storer.Roots(ctx)
	if err != nil {
		return s.journalError(c, "failed to get roots", err)
	}

	leaves, err := s.storer.Leaves(ctx)
	if err != nil {
		return s.journalError(c, "failed to get leaves", err)
	}

	flows := make(map[string]int)
	for _, node := range nodes {
		if node.Bucket.Type == merkle.TypeOutput {
			flows[node.Bucket.Flow]++
		}
	}

	return c.JSON(map[string]any{
		"total_nodes": len(nodes),
		"root_count":  len(roots),
		"leaf_count":  len(leaves),
		"flow_runs":   flows,
	})
}

// handleGetNode returns a single node by its hash.
func (s *Server) handleGetNode(c *fiber.Ctx) error {
	hash := c.Params("hash")
	if hash == "" {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "hash parameter required"})
	}

	node, err := s.storer.Get(c.Context(), hash)
	if err != nil {
		return s.journalError(c, "failed to get node", err)
	}

	return c.JSON(node)
}

// handleListHistories returns every journaled conversation, one per leaf node.
// A flow filter query parameter restricts the list to one flow.
func (s *Server) handleListHistories(c *fiber.Ctx) error {
	ctx := c.Context()
	flowName := c.Query("flow")

	leaves, err := s.storer.Leaves(ctx)
	if err != nil {
		return s.journalError(c, "failed to get leaves", err)
	}

	histories := make([]HistoryResponse, 0, len(leaves))
	for _, leaf := range leaves {
		if flowName != "" && leaf.Bucket.Flow != flowName {
			continue
		}

		history, err := s.buildHistory(ctx, leaf.Hash)
		if err != nil {
			s.logger.Warn("failed to build history for leaf", zap.String("hash", leaf.Hash), zap.Error(err))
			continue
		}
		histories = append(histories, *history)
	}

	return c.JSON(map[string]any{
		"count":     len(histories),
		"histories": histories,
	})
}

// handleGetHistory returns the journal history leading up to a given node,
// oldest first.
func (s *Server) handleGetHistory(c *fiber.Ctx) error {
	hash := c.Params("hash")
	if hash == "" {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "hash parameter required"})
	}

	history, err := s.buildHistory(c.Context(), hash)
	if err != nil {
		return s.journalError(c, "failed to build history", err)
	}

	return c.JSON(history)
}

// buildHistory constructs a HistoryResponse for the given node hash.
func (s *Server) buildHistory(ctx context.Context, hash string) (*HistoryResponse, error) {
	// Ancestry is newest first
	ancestry, err := s.storer.Ancestry(ctx, hash)
	if err != nil {
		return nil, err
	}

	messages := make([]HistoryMessage, len(ancestry))
	for i, node := range ancestry {
		messages[len(ancestry)-1-i] = HistoryMessage{
			Hash:       node.Hash,
			ParentHash: node.ParentHash,
			Type:       node.Bucket.Type,
			Flow:       node.Bucket.Flow,
			Role:       node.Bucket.Role,
			Content:    node.Bucket.Text,
			Model:      node.Bucket.Model,
		}
	}

	return &HistoryResponse{
		Messages: messages,
		HeadHash: hash,
		Depth:    len(messages),
	}, nil
}

// journalError answers 404 for unknown hashes and 500 for storage failures.
func (s *Server) journalError(c *fiber.Ctx, msg string, err error) error {
	var notFound merkle.ErrNotFound
	if errors.As(err, &notFound) {
		return c.Status(fiber.StatusNotFound).JSON(llm.ErrorResponse{Error: "node not found"})
	}

	s.logger.Error(msg, zap.String("request_id", requestID(c)), zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: msg})
}
