// Package testserver runs a wanderwise server on a loopback port for command
// tests.
package testserver

import (
	"context"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/wanderwise/pkg/flow"
	"github.com/papercomputeco/wanderwise/pkg/llm"
	"github.com/papercomputeco/wanderwise/pkg/merkle"
	"github.com/papercomputeco/wanderwise/pkg/prompt"
	"github.com/papercomputeco/wanderwise/server"
)

// Generator replays canned model replies in order.
type Generator struct {
	mu      sync.Mutex
	replies []string
	err     error
	prompts []*llm.Prompt
}

// NewGenerator returns a Generator that answers with replies, then with the
// last reply again.
func NewGenerator(replies ...string) *Generator {
	return &Generator{replies: replies}
}

// Fail makes every further call return err.
func (g *Generator) Fail(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.err = err
}

// Prompts returns the prompts seen so far.
func (g *Generator) Prompts() []*llm.Prompt {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]*llm.Prompt(nil), g.prompts...)
}

func (g *Generator) Generate(_ context.Context, p *llm.Prompt) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.prompts = append(g.prompts, p)
	if g.err != nil {
		return "", g.err
	}
	if len(g.replies) == 0 {
		return "{}", nil
	}

	reply := g.replies[0]
	if len(g.replies) > 1 {
		g.replies = g.replies[1:]
	}
	return reply, nil
}

func (g *Generator) Model() string {
	return "test-model"
}

// Server is a running wanderwise server.
type Server struct {
	URL    string
	Storer merkle.Storer

	srv *server.Server
}

// Start serves flows answered by generator, with itineraries from backend
// (nil for model itineraries), journaled into storer.
func Start(generator llm.Generator, backend flow.Backend, storer merkle.Storer) (*Server, error) {
	catalog, err := prompt.NewCatalog()
	if err != nil {
		return nil, err
	}

	logger := zap.NewNop()
	service := flow.New(generator, catalog, backend, storer, flow.Config{DefaultSource: "delhi"}, logger)
	srv := server.New(server.Config{Version: "test"}, service, storer, logger)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}

	go func() {
		_ = srv.RunWithListener(listener)
	}()

	return &Server{
		URL:    "http://" + listener.Addr().String(),
		Storer: storer,
		srv:    srv,
	}, nil
}

// Stop shuts the server down.
func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.srv.Shutdown(ctx)
}
