// Package model defines the normalized interface over chat-completion
// providers and the configuration shared by the concrete adapters in its
// subpackages. Construction from a provider identifier lives in
// model/factory.
package model

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"
)

// ErrUnsupportedProvider is returned when a config names a provider no
// adapter exists for.
var ErrUnsupportedProvider = errors.New("unsupported model provider")

// Config selects a provider and model plus optional credentials/endpoint.
type Config struct {
	Provider string `json:"provider"`
	ModelID  string `json:"model_id"`
	APIKey   string `json:"api_key,omitempty"`
	BaseURL  string `json:"base_url,omitempty"`
}

// Request is the normalized generation input.
type Request struct {
	Instructions string
	Prompt       string
	Stream       bool
}

// Response is a (partial or final) chunk emitted by a handle. For streaming
// requests text arrives in partial chunks followed by a final response
// carrying the full accumulated text.
type Response struct {
	Text         string
	Partial      bool
	FinishReason string
}

// Info contains metadata about a handle implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"`
}

// Handle is the minimal interface the backend requires to drive generation.
type Handle interface {
	Generate(ctx context.Context, req Request) (<-chan Response, <-chan error)
	Info() Info
}

// proxyTimeout bounds outbound calls routed through an explicit proxy.
const proxyTimeout = 60 * time.Second

// MaskKey renders an API key safe for diagnostics: first 10 and last 4
// characters with "..." between, or "<not set>" when absent or too short to
// mask meaningfully.
func MaskKey(key string) string {
	if len(key) <= 14 {
		return "<not set>"
	}
	return fmt.Sprintf("%s...%s", key[:10], key[len(key)-4:])
}

// ProxyClient returns an *http.Client routing through the proxy named by the
// conventional environment variables, or nil when none is set.
func ProxyClient() *http.Client {
	raw := ProxyURL()
	if raw == "" {
		return nil
	}
	proxyURL, err := url.Parse(raw)
	if err != nil {
		return nil
	}
	return &http.Client{
		Transport: &http.Transport{Proxy: http.ProxyURL(proxyURL)},
		Timeout:   proxyTimeout,
	}
}

// ProxyURL reports the configured proxy address, if any.
func ProxyURL() string {
	for _, name := range []string{"HTTPS_PROXY", "HTTP_PROXY", "https_proxy", "http_proxy"} {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}
