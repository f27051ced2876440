// Package normalize collapses the backend's native event streams — the
// agent flavor and the team flavor with its nested member activity — into the
// closed external event vocabulary. Every native event maps to at most one
// external event; textual content is accumulated into the running result
// string attached to the terminal completed event.
package normalize

import (
	"strings"

	"github.com/hupe1980/agentbridge/backend"
	"github.com/hupe1980/agentbridge/event"
)

// previewLimit caps tool results and member payloads embedded in event
// details.
const previewLimit = 200

// Normalizer maps native backend events onto external events, accumulating
// content and capturing the run identifier for cancellation correlation. One
// Normalizer serves one run.
type Normalizer struct {
	emitter *event.Emitter
	content strings.Builder
	runID   string
}

// New creates a Normalizer emitting through em.
func New(em *event.Emitter) *Normalizer {
	return &Normalizer{emitter: em}
}

// Content returns the text accumulated from content events so far.
func (n *Normalizer) Content() string { return n.content.String() }

// RunID returns the run identifier captured from the run_started event, if
// one was seen.
func (n *Normalizer) RunID() string { return n.runID }

// HandleAgent maps one agent-flavored event.
func (n *Normalizer) HandleAgent(ev backend.AgentEvent) {
	switch ev.Kind {
	case backend.KindRunStarted:
		n.runID = ev.RunID
		n.emitter.Emit(event.TypeRunStarted, "Agent run started: "+ev.AgentID, nil)
	case backend.KindRunCompleted:
		n.emitter.Emit(event.TypeRunCompleted, "Agent run completed: "+ev.AgentID, nil)
	case backend.KindToolCallStarted:
		n.emitter.Emit(event.TypeToolCallStarted, "", toolStartedDetails(ev.Tool))
	case backend.KindToolCallCompleted:
		n.emitter.Emit(event.TypeToolCallCompleted, "", toolCompletedDetails(ev.Tool))
	case backend.KindRunContent:
		if ev.Content != "" {
			n.content.WriteString(ev.Content)
			n.emitter.Emit(event.TypeContent, ev.Content, nil)
		}
	}
}

// HandleTeam maps one team-flavored event. Team-level lifecycle kinds take
// precedence; member activity is tagged with the originating agent id;
// events that fit no rule and carry no agent id are dropped silently.
func (n *Normalizer) HandleTeam(ev backend.TeamEvent) {
	switch {
	case ev.Reasoning != nil:
		n.emitter.Emit(event.TypeReasoning, "", map[string]any{
			"title":     ev.Reasoning.Title,
			"action":    ev.Reasoning.Action,
			"reasoning": ev.Reasoning.Reasoning,
		})
	case ev.Member != nil:
		n.handleMember(ev.Member)
	default:
		n.handleTeamLevel(ev)
	}
}

func (n *Normalizer) handleTeamLevel(ev backend.TeamEvent) {
	switch ev.Kind {
	case backend.KindRunStarted:
		n.runID = ev.RunID
		n.emitter.Emit(event.TypeTeamRunStarted, "Team run started", nil)
	case backend.KindRunCompleted:
		n.emitter.Emit(event.TypeTeamRunCompleted, "Team run completed", nil)
	case backend.KindToolCallStarted:
		n.emitter.Emit(event.TypeToolCallStarted, "", toolStartedDetails(ev.Tool))
	case backend.KindToolCallCompleted:
		n.emitter.Emit(event.TypeToolCallCompleted, "", toolCompletedDetails(ev.Tool))
	case backend.KindRunContent:
		if ev.Content != "" {
			n.content.WriteString(ev.Content)
			n.emitter.Emit(event.TypeContent, ev.Content, nil)
		}
	default:
		switch {
		case strings.Contains(strings.ToLower(string(ev.Kind)), "response"):
			n.emitter.Emit(event.TypeMemberResponse, "", map[string]any{
				"event_type": string(ev.Kind),
				"agent_id":   orUnknown(ev.AgentID),
				"content":    preview(ev.Content),
			})
		case ev.AgentID != "":
			n.emitter.Emit(event.TypeMemberActivity, "", map[string]any{
				"event_type": string(ev.Kind),
				"agent_id":   ev.AgentID,
				"details":    preview(ev.Detail),
			})
		}
		// No rule applies and no attribution: drop.
	}
}

func (n *Normalizer) handleMember(ev *backend.AgentEvent) {
	switch ev.Kind {
	case backend.KindToolCallStarted:
		details := toolStartedDetails(ev.Tool)
		details["agent_id"] = ev.AgentID
		n.emitter.Emit(event.TypeMemberToolStarted, "", details)
	case backend.KindToolCallCompleted:
		details := toolCompletedDetails(ev.Tool)
		details["agent_id"] = ev.AgentID
		n.emitter.Emit(event.TypeMemberToolDone, "", details)
	default:
		switch {
		case strings.Contains(strings.ToLower(string(ev.Kind)), "response"):
			n.emitter.Emit(event.TypeMemberResponse, "", map[string]any{
				"event_type": string(ev.Kind),
				"agent_id":   orUnknown(ev.AgentID),
				"content":    preview(ev.Content),
			})
		case ev.AgentID != "":
			n.emitter.Emit(event.TypeMemberActivity, "", map[string]any{
				"event_type": string(ev.Kind),
				"agent_id":   ev.AgentID,
				"details":    preview(ev.Content),
			})
		}
	}
}

func toolStartedDetails(tc *backend.ToolCall) map[string]any {
	details := map[string]any{"tool_name": "", "tool_args": map[string]any(nil)}
	if tc != nil {
		details["tool_name"] = tc.Name
		details["tool_args"] = tc.Args
	}
	return details
}

func toolCompletedDetails(tc *backend.ToolCall) map[string]any {
	details := map[string]any{"tool_name": "", "result": ""}
	if tc != nil {
		details["tool_name"] = tc.Name
		details["result"] = preview(tc.Result)
	}
	return details
}

func preview(s string) string {
	if len(s) > previewLimit {
		return s[:previewLimit]
	}
	return s
}

func orUnknown(agentID string) string {
	if agentID == "" {
		return "unknown"
	}
	return agentID
}
