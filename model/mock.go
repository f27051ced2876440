package model

import (
	"context"
	"fmt"
)

// MockHandle is a lightweight in-memory Handle useful for tests & examples.
type MockHandle struct {
	info      Info
	responses map[string]string
	err       error
}

// NewMockHandle constructs a MockHandle for the given identity.
func NewMockHandle(name, provider string) *MockHandle {
	return &MockHandle{
		info:      Info{Name: name, Provider: provider},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for a prompt.
func (m *MockHandle) AddResponse(prompt, response string) { m.responses[prompt] = response }

// FailWith makes every Generate call surface err instead of a response.
func (m *MockHandle) FailWith(err error) { m.err = err }

// Generate implements Handle; emits optional streaming rune chunks then the
// final response.
func (m *MockHandle) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 16)
	errCh := make(chan error, 1)

	go func() {
		defer close(respCh)
		defer close(errCh)

		if m.err != nil {
			errCh <- m.err
			return
		}
		full := m.responses[req.Prompt]
		if full == "" {
			full = fmt.Sprintf("Mock response to: %s", req.Prompt)
		}
		if req.Stream {
			for _, r := range full {
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case respCh <- Response{Text: string(r), Partial: true}:
				}
			}
		}
		respCh <- Response{Text: full, FinishReason: "stop"}
	}()

	return respCh, errCh
}

// Info implements Handle.
func (m *MockHandle) Info() Info { return m.info }
