package flow

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/papercomputeco/wanderwise/pkg/llm"
	"github.com/papercomputeco/wanderwise/pkg/merkle"
)

// entry is one side of a flow run as it is written to the journal.
type entry struct {
	Text    string
	Payload any
	Model   string
}

// Journal records flow runs as merkle nodes: the input node first, the
// output node as its child.
type Journal struct {
	storer merkle.Storer
	logger *zap.Logger
}

// NewJournal wraps a storer.
func NewJournal(storer merkle.Storer, logger *zap.Logger) *Journal {
	return &Journal{storer: storer, logger: logger}
}

// Record stores a flow run and returns the output node hash. The input node
// links to parent when it is set. Storage failures are logged and yield an
// empty hash; they never fail the flow.
func (j *Journal) Record(ctx context.Context, flow, parent string, in, out entry) string {
	hash, err := j.record(ctx, flow, parent, in, out)
	if err != nil {
		j.logger.Error("failed to journal flow run", zap.String("flow", flow), zap.Error(err))
		return ""
	}

	j.logger.Debug("flow run journaled", zap.String("flow", flow), zap.String("hash", truncate(hash, 16)))
	return hash
}

func (j *Journal) record(ctx context.Context, flow, parent string, in, out entry) (string, error) {
	var parentNode *merkle.Node
	if parent != "" {
		var err error
		parentNode, err = j.storer.Get(ctx, parent)
		if err != nil {
			return "", fmt.Errorf("load parent %s: %w", parent, err)
		}
	}

	inNode, err := newNode(merkle.TypeInput, flow, llm.RoleUser, in, parentNode)
	if err != nil {
		return "", err
	}
	if err := j.storer.Put(ctx, inNode); err != nil {
		return "", fmt.Errorf("storing input node: %w", err)
	}

	outNode, err := newNode(merkle.TypeOutput, flow, llm.RoleAssistant, out, inNode)
	if err != nil {
		return "", err
	}
	if err := j.storer.Put(ctx, outNode); err != nil {
		return "", fmt.Errorf("storing output node: %w", err)
	}

	return outNode.Hash, nil
}

// History returns the conversation ending at hash as chat messages, oldest
// first. An unknown hash returns merkle.ErrNotFound.
func (j *Journal) History(ctx context.Context, hash string) ([]llm.Message, error) {
	ancestry, err := j.storer.Ancestry(ctx, hash)
	if err != nil {
		return nil, err
	}

	messages := make([]llm.Message, len(ancestry))
	for i, node := range ancestry {
		messages[len(ancestry)-1-i] = llm.Message{
			Role:    node.Bucket.Role,
			Content: node.Bucket.Text,
		}
	}
	return messages, nil
}

func newNode(typ, flow, role string, e entry, parent *merkle.Node) (*merkle.Node, error) {
	var payload json.RawMessage
	if e.Payload != nil {
		data, err := json.Marshal(e.Payload)
		if err != nil {
			return nil, fmt.Errorf("marshal %s payload: %w", typ, err)
		}
		payload = data
	}

	return merkle.NewNode(merkle.Bucket{
		Type:    typ,
		Flow:    flow,
		Role:    role,
		Text:    e.Text,
		Payload: payload,
		Model:   e.Model,
	}, parent), nil
}

// truncate cuts s to at most maxLen runes.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
