// Package event defines the external event vocabulary of agentbridge and the
// emitter that serializes events onto the output stream. Every externally
// observable action of the runner flows through this package: one event per
// line, flushed immediately, so a reader can consume the stream as it is
// produced.
package event

// Type identifies the kind of an external event. The set of values is closed;
// consumers can rely on it not growing without a protocol revision.
type Type string

// External event vocabulary.
const (
	TypeStarted           Type = "started"
	TypeDebug             Type = "debug"
	TypeWarning           Type = "warning"
	TypeError             Type = "error"
	TypeCancelled         Type = "cancelled"
	TypeGitDownloaded     Type = "git_downloaded"
	TypeMCPConnected      Type = "mcp_connected"
	TypeSessionReused     Type = "session_reused"
	TypeThinkingStep      Type = "thinking_step"
	TypeRunStarted        Type = "run_started"
	TypeRunCompleted      Type = "run_completed"
	TypeToolCallStarted   Type = "tool_call_started"
	TypeToolCallCompleted Type = "tool_call_completed"
	TypeContent           Type = "content"
	TypeTeamRunStarted    Type = "team_run_started"
	TypeTeamRunCompleted  Type = "team_run_completed"
	TypeMemberToolStarted Type = "member_tool_started"
	TypeMemberToolDone    Type = "member_tool_completed"
	TypeReasoning         Type = "reasoning"
	TypeMemberResponse    Type = "member_response"
	TypeMemberActivity    Type = "member_activity"
	TypeCompleted         Type = "completed"
)

// Event is the external unit of output. After emission it is never revised.
// Details carries optional structured payload whose shape depends on Type.
type Event struct {
	Type    Type           `json:"type"`
	Content string         `json:"content"`
	Details map[string]any `json:"details,omitempty"`
}
