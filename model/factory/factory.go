// Package factory constructs model handles from provider configuration. It is
// the single place that maps the external provider identifiers onto the
// concrete adapters and wires outbound proxying.
package factory

import (
	"context"
	"fmt"

	sdkanthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/rs/zerolog/log"

	"github.com/hupe1980/agentbridge/event"
	"github.com/hupe1980/agentbridge/model"
	"github.com/hupe1980/agentbridge/model/anthropic"
	"github.com/hupe1980/agentbridge/model/gemini"
	"github.com/hupe1980/agentbridge/model/openai"
)

// Build constructs a handle for cfg. Before construction it emits a debug
// event carrying the provider, model id, base URL and a masked API key; the
// key never appears unmasked in any event. An HTTPS/HTTP proxy environment
// variable routes the handle's transport through the proxy with a bounded
// timeout.
func Build(ctx context.Context, cfg model.Config, em *event.Emitter) (model.Handle, error) {
	if cfg.Provider == "" {
		cfg.Provider = "openai"
	}

	em.Emit(event.TypeDebug, fmt.Sprintf(
		"Creating model: provider=%s, model=%s, base_url=%s, api_key=%s",
		cfg.Provider, cfg.ModelID, cfg.BaseURL, model.MaskKey(cfg.APIKey),
	), nil)

	httpClient := model.ProxyClient()
	if httpClient != nil {
		em.Emit(event.TypeDebug, fmt.Sprintf("Configuring %s with proxy: %s", cfg.Provider, model.ProxyURL()), nil)
	}

	switch cfg.Provider {
	case "openai":
		return openai.NewHandle(func(o *openai.Options) {
			if cfg.ModelID != "" {
				o.Model = cfg.ModelID
			}
			o.APIKey = cfg.APIKey
			o.BaseURL = cfg.BaseURL
			o.HTTPClient = httpClient
		}), nil
	case "anthropic", "claude":
		return anthropic.NewHandle(func(o *anthropic.Options) {
			if cfg.ModelID != "" {
				o.Model = sdkanthropic.Model(cfg.ModelID)
			}
			o.APIKey = cfg.APIKey
			o.BaseURL = cfg.BaseURL
			o.HTTPClient = httpClient
		}), nil
	case "gemini", "google":
		h, err := gemini.NewHandle(ctx, func(o *gemini.Options) {
			if cfg.ModelID != "" {
				o.Model = cfg.ModelID
			}
			o.APIKey = cfg.APIKey
			o.BaseURL = cfg.BaseURL
			o.HTTPClient = httpClient
		})
		if err != nil {
			return nil, err
		}
		return h, nil
	default:
		log.Warn().Str("provider", cfg.Provider).Msg("rejected model config")
		return nil, fmt.Errorf("%w: %s", model.ErrUnsupportedProvider, cfg.Provider)
	}
}
