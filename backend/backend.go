// Package backend defines the contract between the runner and the execution
// backend that actually drives agents and teams, together with the backend's
// native event families. The two families are heterogeneous: the team flavor
// may nest agent-flavored events representing member activity. The normalize
// package collapses both into the external event vocabulary.
package backend

import (
	"context"
	"encoding/json"

	"github.com/hupe1980/agentbridge/agent"
)

// Input carries the per-run invocation parameters.
type Input struct {
	Prompt    string
	SessionID string
	UserID    string
	Debug     bool
}

// Result is a non-streaming run outcome. Backends populate Content when a
// plain text result is available, or Data as a structured dump; consumers
// must accept either.
type Result struct {
	Content string
	Data    map[string]any
}

// Text renders the result as a string, preferring Content over the
// structured dump.
func (r Result) Text() string {
	if r.Content != "" {
		return r.Content
	}
	if r.Data != nil {
		data, err := json.Marshal(r.Data)
		if err != nil {
			return ""
		}
		return string(data)
	}
	return ""
}

// Kind names a native backend event. The well-known values below cover the
// run lifecycle; backends may surface additional kinds (member response
// variants and the like) which the normalizer handles by inspection.
type Kind string

// Well-known native event kinds.
const (
	KindRunStarted        Kind = "run_started"
	KindRunCompleted      Kind = "run_completed"
	KindRunContent        Kind = "run_content"
	KindToolCallStarted   Kind = "tool_call_started"
	KindToolCallCompleted Kind = "tool_call_completed"
)

// ToolCall is the tool payload of a tool_call_* event.
type ToolCall struct {
	Name   string
	Args   map[string]any
	Result string
}

// AgentEvent is one event from the agent-flavored stream.
type AgentEvent struct {
	Kind    Kind
	RunID   string
	AgentID string
	Content string
	Tool    *ToolCall
}

// ReasoningStep is the payload of a team reasoning event.
type ReasoningStep struct {
	Title     string
	Action    string
	Reasoning string
}

// TeamEvent is one event from the team-flavored stream. Team-level lifecycle
// events populate Kind directly; member activity arrives nested in Member;
// reasoning steps in Reasoning. AgentID and Detail carry attribution for
// kinds outside the well-known set.
type TeamEvent struct {
	Kind      Kind
	RunID     string
	Content   string
	Tool      *ToolCall
	Member    *AgentEvent
	Reasoning *ReasoningStep
	AgentID   string
	Detail    string
}

// Backend drives agent and team execution. Streaming variants deliver native
// events until the run finishes or ctx is cancelled; the error channel
// carries at most one terminal error and is closed afterwards.
type Backend interface {
	RunAgent(ctx context.Context, a *agent.Agent, in Input) (<-chan AgentEvent, <-chan error)
	RunAgentSync(ctx context.Context, a *agent.Agent, in Input) (Result, error)
	RunTeam(ctx context.Context, t *agent.Team, in Input) (<-chan TeamEvent, <-chan error)
	RunTeamSync(ctx context.Context, t *agent.Team, in Input) (Result, error)
}
