// Package openai provides a model.Handle implementation backed by the OpenAI
// Chat Completions API (streaming and non-streaming). It adapts agentbridge's
// normalized Request/Response structures into the SDK's message format and
// back.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/hupe1980/agentbridge/model"
)

// Options configure the OpenAI handle.
type Options struct {
	Model      string
	APIKey     string
	BaseURL    string
	MaxTokens  int64
	HTTPClient *http.Client
}

// Handle wraps the OpenAI Chat Completions API behind model.Handle.
type Handle struct {
	client *openai.Client
	opts   Options
}

// NewHandle creates a new OpenAI handle using the official client.
func NewHandle(optFns ...func(o *Options)) *Handle {
	opts := Options{
		Model:     openai.ChatModelGPT4oMini,
		MaxTokens: 4096,
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

	client := openai.NewClient(clientOpts...)

	return &Handle{client: &client, opts: opts}
}

// Generate implements unified streaming / non-streaming generation.
func (h *Handle) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response, 32)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		params := h.buildParams(req)
		if req.Stream {
			h.handleStreaming(ctx, params, out, errCh)
			return
		}
		h.handleNonStreaming(ctx, params, out, errCh)
	}()

	return out, errCh
}

func (h *Handle) buildParams(req model.Request) openai.ChatCompletionNewParams {
	var messages []openai.ChatCompletionMessageParamUnion
	if req.Instructions != "" {
		messages = append(messages, openai.SystemMessage(req.Instructions))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	return openai.ChatCompletionNewParams{
		Messages:            messages,
		Model:               h.opts.Model,
		MaxCompletionTokens: openai.Int(h.opts.MaxTokens),
	}
}

func (h *Handle) handleStreaming(
	ctx context.Context,
	params openai.ChatCompletionNewParams,
	out chan<- model.Response,
	errCh chan<- error,
) {
	stream := h.client.Chat.Completions.NewStreaming(ctx, params)
	var builder strings.Builder
	for stream.Next() {
		ck := stream.Current()
		for _, ch := range ck.Choices {
			if ch.Delta.Content != "" {
				builder.WriteString(ch.Delta.Content)
				out <- model.Response{Text: ch.Delta.Content, Partial: true}
			}
			if ch.FinishReason != "" {
				out <- model.Response{Text: builder.String(), FinishReason: ch.FinishReason}
			}
		}
	}
	if err := stream.Err(); err != nil {
		errCh <- fmt.Errorf("openai streaming error: %w", err)
	}
}

func (h *Handle) handleNonStreaming(
	ctx context.Context,
	params openai.ChatCompletionNewParams,
	out chan<- model.Response,
	errCh chan<- error,
) {
	resp, err := h.client.Chat.Completions.New(ctx, params)
	if err != nil {
		errCh <- fmt.Errorf("openai api error: %w", err)
		return
	}
	if len(resp.Choices) == 0 {
		errCh <- fmt.Errorf("no choices returned")
		return
	}
	ch0 := resp.Choices[0]
	out <- model.Response{Text: ch0.Message.Content, FinishReason: ch0.FinishReason}
}

// Info returns metadata describing this OpenAI handle.
func (h *Handle) Info() model.Info {
	return model.Info{Name: h.opts.Model, Provider: "openai"}
}
