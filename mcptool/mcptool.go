// Package mcptool establishes connections to MCP (Model Context Protocol)
// tool servers described by a job and tears them down at job end. Partial
// success is the normal outcome: a descriptor that fails to connect is
// reported as a warning and the remaining descriptors are still provisioned.
package mcptool

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog/log"

	"github.com/hupe1980/agentbridge/event"
)

// defaultTimeout bounds connection setup when a descriptor does not specify
// its own timeout.
const defaultTimeout = 300 * time.Second

// Descriptor specifies one tool server. Type selects the transport; the
// remaining fields are transport specific.
type Descriptor struct {
	Name           string            `json:"name"`
	Type           string            `json:"type"` // stdio, sse, streamable-http
	Command        string            `json:"command,omitempty"`
	Args           []string          `json:"args,omitempty"`
	Env            map[string]string `json:"env,omitempty"`
	URL            string            `json:"url,omitempty"`
	Headers        map[string]string `json:"headers,omitempty"`
	Timeout        int               `json:"timeout,omitempty"`
	SSEReadTimeout int               `json:"sse_read_timeout,omitempty"`
}

// label names the server in events, falling back to the transport type.
func (d Descriptor) label() string {
	if d.Name != "" {
		return d.Name
	}
	return d.Type
}

func (d Descriptor) timeout() time.Duration {
	if d.Timeout > 0 {
		return time.Duration(d.Timeout) * time.Second
	}
	return defaultTimeout
}

// Handle is one live connection to a tool server. It is owned by the job that
// provisioned it and must be torn down when the job ends.
type Handle struct {
	name   string
	client *client.Client
}

// Name returns the server label the handle was provisioned under.
func (h *Handle) Name() string { return h.name }

// ListTools queries the server for its tool definitions.
func (h *Handle) ListTools(ctx context.Context) ([]mcp.Tool, error) {
	res, err := h.client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("list tools: %w", err)
	}
	return res.Tools, nil
}

// Close disconnects from the server.
func (h *Handle) Close() error { return h.client.Close() }

// Provision connects to every well-formed descriptor. Descriptors missing
// their required field (command, or url) are skipped silently; a connection
// failure produces one warning event and does not abort the rest. Each
// successful connection emits an mcp_connected event.
func Provision(ctx context.Context, descs []Descriptor, em *event.Emitter) []*Handle {
	var handles []*Handle
	for _, desc := range descs {
		h, skip, err := connect(ctx, desc)
		if skip {
			continue
		}
		if err != nil {
			em.Emit(event.TypeWarning, fmt.Sprintf("Failed to setup MCP tool: %s", err), nil)
			continue
		}
		handles = append(handles, h)
		em.Emit(event.TypeMCPConnected, fmt.Sprintf("Connected to MCP server: %s", desc.label()), nil)
	}
	return handles
}

func connect(ctx context.Context, desc Descriptor) (*Handle, bool, error) {
	var (
		c          *client.Client
		err        error
		needsStart bool
	)

	switch desc.Type {
	case "stdio", "":
		if desc.Command == "" {
			return nil, true, nil
		}
		env := make([]string, 0, len(desc.Env))
		for k, v := range desc.Env {
			env = append(env, k+"="+v)
		}
		c, err = client.NewStdioMCPClient(desc.Command, env, desc.Args...)
	case "sse":
		if desc.URL == "" {
			return nil, true, nil
		}
		c, err = client.NewSSEMCPClient(desc.URL, transport.WithHeaders(desc.Headers))
		needsStart = true
	case "streamable-http", "streamable_http":
		if desc.URL == "" {
			return nil, true, nil
		}
		c, err = client.NewStreamableHttpClient(desc.URL,
			transport.WithHTTPHeaders(desc.Headers),
			transport.WithHTTPTimeout(desc.timeout()),
		)
		needsStart = true
	default:
		return nil, false, fmt.Errorf("unsupported MCP type: %s", desc.Type)
	}
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", desc.label(), err)
	}

	ctx, cancel := context.WithTimeout(ctx, desc.timeout())
	defer cancel()

	if needsStart {
		if err := c.Start(ctx); err != nil {
			_ = c.Close()
			return nil, false, fmt.Errorf("%s: %w", desc.label(), err)
		}
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: "agentbridge", Version: "0.1.0"}
	if _, err := c.Initialize(ctx, initReq); err != nil {
		_ = c.Close()
		return nil, false, fmt.Errorf("%s: %w", desc.label(), err)
	}

	return &Handle{name: desc.label(), client: c}, false, nil
}

// Teardown disconnects every handle, best-effort. Individual failures are
// logged and swallowed; teardown never raises.
func Teardown(handles []*Handle) {
	for _, h := range handles {
		if err := h.Close(); err != nil {
			log.Debug().Err(err).Str("server", h.Name()).Msg("mcp teardown failed")
		}
	}
}
