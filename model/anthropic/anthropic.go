// Package anthropic provides a model.Handle implementation backed by the
// Anthropic Messages API.
package anthropic

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/hupe1980/agentbridge/model"
)

// Options configure the Anthropic handle.
type Options struct {
	Model      anthropic.Model
	APIKey     string
	BaseURL    string
	MaxTokens  int64
	HTTPClient *http.Client
}

// Handle wraps the Anthropic Messages API behind model.Handle.
type Handle struct {
	client *anthropic.Client
	opts   Options
}

// NewHandle creates a new Anthropic handle using the official client.
func NewHandle(optFns ...func(o *Options)) *Handle {
	opts := Options{
		Model:     anthropic.ModelClaude3_5Sonnet20241022,
		MaxTokens: 32768,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.HTTPClient != nil {
		clientOpts = append(clientOpts, option.WithHTTPClient(opts.HTTPClient))
	}

	client := anthropic.NewClient(clientOpts...)

	return &Handle{client: &client, opts: opts}
}

// Generate implements unified streaming / non-streaming generation.
func (h *Handle) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response, 32)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		params := anthropic.MessageNewParams{
			Model:     h.opts.Model,
			MaxTokens: h.opts.MaxTokens,
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
			},
		}
		if req.Instructions != "" {
			params.System = []anthropic.TextBlockParam{{Text: req.Instructions}}
		}

		if req.Stream {
			h.handleStreaming(ctx, params, out, errCh)
			return
		}
		h.handleNonStreaming(ctx, params, out, errCh)
	}()

	return out, errCh
}

func (h *Handle) handleStreaming(
	ctx context.Context,
	params anthropic.MessageNewParams,
	out chan<- model.Response,
	errCh chan<- error,
) {
	stream := h.client.Messages.NewStreaming(ctx, params)
	var builder strings.Builder
	for stream.Next() {
		switch ev := stream.Current().AsAny().(type) {
		case anthropic.ContentBlockDeltaEvent:
			if delta, ok := ev.Delta.AsAny().(anthropic.TextDelta); ok && delta.Text != "" {
				builder.WriteString(delta.Text)
				out <- model.Response{Text: delta.Text, Partial: true}
			}
		case anthropic.MessageStopEvent:
			out <- model.Response{Text: builder.String(), FinishReason: "stop"}
		}
	}
	if err := stream.Err(); err != nil {
		errCh <- fmt.Errorf("anthropic streaming error: %w", err)
	}
}

func (h *Handle) handleNonStreaming(
	ctx context.Context,
	params anthropic.MessageNewParams,
	out chan<- model.Response,
	errCh chan<- error,
) {
	resp, err := h.client.Messages.New(ctx, params)
	if err != nil {
		errCh <- fmt.Errorf("anthropic api error: %w", err)
		return
	}
	var builder strings.Builder
	for _, block := range resp.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			builder.WriteString(tb.Text)
		}
	}
	out <- model.Response{Text: builder.String(), FinishReason: string(resp.StopReason)}
}

// Info returns metadata describing this Anthropic handle.
func (h *Handle) Info() model.Info {
	return model.Info{Name: string(h.opts.Model), Provider: "anthropic"}
}
