// Package gemini provides a model.Handle implementation backed by the Google
// Gemini API via the google.golang.org/genai client.
package gemini

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/hupe1980/agentbridge/model"
)

// Options configure the Gemini handle.
type Options struct {
	Model      string
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// Handle wraps the Gemini API behind model.Handle.
type Handle struct {
	client *genai.Client
	opts   Options
}

// SplitBaseURL infers the API version from a custom base URL. A "/v1beta"
// path segment selects v1beta and is stripped from the base, a "/v1" segment
// selects v1, otherwise v1beta is assumed.
func SplitBaseURL(baseURL string) (base, apiVersion string) {
	base = strings.TrimRight(baseURL, "/")
	switch {
	case strings.Contains(base, "/v1beta"):
		return strings.Replace(base, "/v1beta", "", 1), "v1beta"
	case strings.Contains(base, "/v1"):
		return strings.Replace(base, "/v1", "", 1), "v1"
	}
	return base, "v1beta"
}

// NewHandle creates a new Gemini handle using the official genai client.
func NewHandle(ctx context.Context, optFns ...func(o *Options)) (*Handle, error) {
	opts := Options{Model: "gemini-2.0-flash"}
	for _, fn := range optFns {
		fn(&opts)
	}

	cfg := &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if opts.BaseURL != "" {
		base, apiVersion := SplitBaseURL(opts.BaseURL)
		headers := http.Header{}
		if opts.APIKey != "" {
			headers.Set("x-goog-api-key", opts.APIKey)
		}
		cfg.HTTPOptions = genai.HTTPOptions{
			BaseURL:    base,
			APIVersion: apiVersion,
			Headers:    headers,
		}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}

	return &Handle{client: client, opts: opts}, nil
}

// Generate implements unified streaming / non-streaming generation.
func (h *Handle) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response, 32)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		cfg := &genai.GenerateContentConfig{}
		if req.Instructions != "" {
			cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.Instructions}}}
		}
		contents := genai.Text(req.Prompt)

		if req.Stream {
			var builder strings.Builder
			for resp, err := range h.client.Models.GenerateContentStream(ctx, h.opts.Model, contents, cfg) {
				if err != nil {
					errCh <- fmt.Errorf("gemini streaming error: %w", err)
					return
				}
				if text := resp.Text(); text != "" {
					builder.WriteString(text)
					out <- model.Response{Text: text, Partial: true}
				}
			}
			out <- model.Response{Text: builder.String(), FinishReason: "stop"}
			return
		}

		resp, err := h.client.Models.GenerateContent(ctx, h.opts.Model, contents, cfg)
		if err != nil {
			errCh <- fmt.Errorf("gemini api error: %w", err)
			return
		}
		out <- model.Response{Text: resp.Text(), FinishReason: "stop"}
	}()

	return out, errCh
}

// Info returns metadata describing this Gemini handle.
func (h *Handle) Info() model.Info {
	return model.Info{Name: h.opts.Model, Provider: "gemini"}
}
