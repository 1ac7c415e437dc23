package flow_test

import (
	"context"
	"sync"

	"github.com/papercomputeco/wanderwise/pkg/itinerary"
	"github.com/papercomputeco/wanderwise/pkg/llm"
)

type fakeGenerator struct {
	mu      sync.Mutex
	prompts []*llm.Prompt
	replies []string
	err     error
}

func (f *fakeGenerator) Generate(_ context.Context, p *llm.Prompt) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.prompts = append(f.prompts, p)
	if f.err != nil {
		return "", f.err
	}
	reply := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	return reply, nil
}

func (f *fakeGenerator) Model() string {
	return "fake-model"
}

func (f *fakeGenerator) last() *llm.Prompt {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.prompts[len(f.prompts)-1]
}

type fakeBackend struct {
	requests []itinerary.Request
	plan     *itinerary.Plan
	err      error
}

func (f *fakeBackend) Generate(_ context.Context, req itinerary.Request) (*itinerary.Plan, error) {
	f.requests = append(f.requests, req)
	return f.plan, f.err
}

func (f *fakeBackend) Name() string {
	return "fake-backend"
}
