package normalize

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentbridge/backend"
	"github.com/hupe1980/agentbridge/event"
)

func newTestNormalizer() (*Normalizer, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(event.NewEmitter(&buf)), &buf
}

func emitted(t *testing.T, buf *bytes.Buffer) []event.Event {
	t.Helper()
	var events []event.Event
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var ev event.Event
		require.NoError(t, json.Unmarshal([]byte(line), &ev))
		events = append(events, ev)
	}
	return events
}

func TestAgentEventMapping(t *testing.T) {
	n, buf := newTestNormalizer()

	n.HandleAgent(backend.AgentEvent{Kind: backend.KindRunStarted, RunID: "run-1", AgentID: "helper"})
	n.HandleAgent(backend.AgentEvent{Kind: backend.KindRunContent, Content: "hel"})
	n.HandleAgent(backend.AgentEvent{Kind: backend.KindRunContent, Content: "lo"})
	n.HandleAgent(backend.AgentEvent{Kind: backend.KindToolCallStarted, Tool: &backend.ToolCall{
		Name: "search", Args: map[string]any{"q": "go"},
	}})
	n.HandleAgent(backend.AgentEvent{Kind: backend.KindToolCallCompleted, Tool: &backend.ToolCall{
		Name: "search", Result: strings.Repeat("x", 300),
	}})
	n.HandleAgent(backend.AgentEvent{Kind: backend.KindRunCompleted, AgentID: "helper"})

	events := emitted(t, buf)
	require.Len(t, events, 6)
	assert.Equal(t, event.TypeRunStarted, events[0].Type)
	assert.Equal(t, "Agent run started: helper", events[0].Content)
	assert.Equal(t, event.TypeContent, events[1].Type)
	assert.Equal(t, "hel", events[1].Content)
	assert.Equal(t, event.TypeToolCallStarted, events[3].Type)
	assert.Equal(t, "search", events[3].Details["tool_name"])
	assert.Equal(t, event.TypeToolCallCompleted, events[4].Type)
	assert.Len(t, events[4].Details["result"], 200, "tool result must be previewed")
	assert.Equal(t, event.TypeRunCompleted, events[5].Type)

	assert.Equal(t, "hello", n.Content())
	assert.Equal(t, "run-1", n.RunID())
}

func TestAgentEmptyContentNotEmitted(t *testing.T) {
	n, buf := newTestNormalizer()

	n.HandleAgent(backend.AgentEvent{Kind: backend.KindRunContent, Content: ""})

	assert.Zero(t, buf.Len())
	assert.Empty(t, n.Content())
}

func TestTeamLevelMapping(t *testing.T) {
	n, buf := newTestNormalizer()

	n.HandleTeam(backend.TeamEvent{Kind: backend.KindRunStarted, RunID: "team-run-1"})
	n.HandleTeam(backend.TeamEvent{Kind: backend.KindRunContent, Content: "answer"})
	n.HandleTeam(backend.TeamEvent{Kind: backend.KindToolCallStarted, Tool: &backend.ToolCall{Name: "calc"}})
	n.HandleTeam(backend.TeamEvent{Kind: backend.KindRunCompleted})

	events := emitted(t, buf)
	require.Len(t, events, 4)
	assert.Equal(t, event.TypeTeamRunStarted, events[0].Type)
	assert.Equal(t, event.TypeContent, events[1].Type)
	assert.Equal(t, event.TypeToolCallStarted, events[2].Type)
	assert.Equal(t, event.TypeTeamRunCompleted, events[3].Type)

	assert.Equal(t, "answer", n.Content())
	assert.Equal(t, "team-run-1", n.RunID())
}

func TestMemberToolEventsTaggedWithAgent(t *testing.T) {
	n, buf := newTestNormalizer()

	n.HandleTeam(backend.TeamEvent{Member: &backend.AgentEvent{
		Kind: backend.KindToolCallStarted, AgentID: "researcher",
		Tool: &backend.ToolCall{Name: "fetch", Args: map[string]any{"url": "http://x"}},
	}})
	n.HandleTeam(backend.TeamEvent{Member: &backend.AgentEvent{
		Kind: backend.KindToolCallCompleted, AgentID: "researcher",
		Tool: &backend.ToolCall{Name: "fetch", Result: "page body"},
	}})

	events := emitted(t, buf)
	require.Len(t, events, 2)
	assert.Equal(t, event.TypeMemberToolStarted, events[0].Type)
	assert.Equal(t, "researcher", events[0].Details["agent_id"])
	assert.Equal(t, "fetch", events[0].Details["tool_name"])
	assert.Equal(t, event.TypeMemberToolDone, events[1].Type)
	assert.Equal(t, "page body", events[1].Details["result"])
}

func TestReasoningStepMapping(t *testing.T) {
	n, buf := newTestNormalizer()

	n.HandleTeam(backend.TeamEvent{Reasoning: &backend.ReasoningStep{
		Title: "Plan", Action: "delegate", Reasoning: "split the work",
	}})

	events := emitted(t, buf)
	require.Len(t, events, 1)
	assert.Equal(t, event.TypeReasoning, events[0].Type)
	assert.Equal(t, "Plan", events[0].Details["title"])
	assert.Equal(t, "delegate", events[0].Details["action"])
	assert.Equal(t, "split the work", events[0].Details["reasoning"])
}

func TestResponseKindsMapToMemberResponse(t *testing.T) {
	n, buf := newTestNormalizer()

	n.HandleTeam(backend.TeamEvent{Member: &backend.AgentEvent{
		Kind: "run_response_completed", AgentID: "writer",
		Content: strings.Repeat("y", 250),
	}})
	n.HandleTeam(backend.TeamEvent{Kind: "MemberResponseDelta", AgentID: "writer", Content: "partial"})

	events := emitted(t, buf)
	require.Len(t, events, 2)
	for _, ev := range events {
		assert.Equal(t, event.TypeMemberResponse, ev.Type)
		assert.Equal(t, "writer", ev.Details["agent_id"])
	}
	assert.Len(t, events[0].Details["content"], 200)
}

func TestUnattributedMemberResponseUsesUnknown(t *testing.T) {
	n, buf := newTestNormalizer()

	n.HandleTeam(backend.TeamEvent{Kind: "some_response_event", Content: "hm"})

	events := emitted(t, buf)
	require.Len(t, events, 1)
	assert.Equal(t, "unknown", events[0].Details["agent_id"])
}

func TestGenericEventsWithAgentIDBecomeMemberActivity(t *testing.T) {
	n, buf := newTestNormalizer()

	n.HandleTeam(backend.TeamEvent{Kind: "memory_update", AgentID: "researcher", Detail: "stored 3 facts"})
	n.HandleTeam(backend.TeamEvent{Member: &backend.AgentEvent{Kind: "run_paused", AgentID: "writer", Content: "waiting"}})

	events := emitted(t, buf)
	require.Len(t, events, 2)
	assert.Equal(t, event.TypeMemberActivity, events[0].Type)
	assert.Equal(t, "memory_update", events[0].Details["event_type"])
	assert.Equal(t, "stored 3 facts", events[0].Details["details"])
	assert.Equal(t, event.TypeMemberActivity, events[1].Type)
	assert.Equal(t, "writer", events[1].Details["agent_id"])
}

func TestUnrecognizedEventsWithoutAgentIDAreDropped(t *testing.T) {
	n, buf := newTestNormalizer()

	n.HandleTeam(backend.TeamEvent{Kind: "heartbeat"})
	n.HandleTeam(backend.TeamEvent{Kind: "metrics_flush", Detail: "nothing"})

	assert.Zero(t, buf.Len())
}

func TestContentAccumulatesAcrossFlavors(t *testing.T) {
	n, _ := newTestNormalizer()

	n.HandleTeam(backend.TeamEvent{Kind: backend.KindRunContent, Content: "a"})
	n.HandleTeam(backend.TeamEvent{Kind: backend.KindRunContent, Content: "b"})

	assert.Equal(t, "ab", n.Content())
}
