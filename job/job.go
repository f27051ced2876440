// Package job defines the external job contract: one JSON object read from
// the input channel describing what to run, with what model, and under which
// session.
package job

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hupe1980/agentbridge/agent"
	"github.com/hupe1980/agentbridge/mcptool"
	"github.com/hupe1980/agentbridge/model"
	"github.com/hupe1980/agentbridge/session"
)

// ErrNoInput is returned when the input channel yields no data at all.
var ErrNoInput = errors.New("no input data received")

// Context carries auxiliary information attached to the task prompt.
type Context struct {
	Cwd         string `json:"cwd,omitempty"`
	GitURL      string `json:"git_url,omitempty"`
	Branch      string `json:"branch,omitempty"`
	ProjectPath string `json:"project_path,omitempty"`
}

// Job is a single externally supplied request. It is immutable once decoded;
// its lifetime is one process invocation.
type Job struct {
	Type         string               `json:"type"`
	Prompt       string               `json:"prompt"`
	Model        model.Config         `json:"model"`
	Ghost        agent.PersonaConfig  `json:"ghost"`
	Team         *agent.TeamConfig    `json:"team,omitempty"`
	Context      Context              `json:"context"`
	SessionID    string               `json:"session_id"`
	MCPTools     []mcptool.Descriptor `json:"mcp_tools,omitempty"`
	Stream       bool                 `json:"stream"`
	Debug        bool                 `json:"debug"`
	DebugLevel   int                  `json:"debug_level"`
	ReuseSession bool                 `json:"reuse_session"`
}

// Decode reads one job from r, applying the contract's defaults for fields
// the sender omitted: session id "default", streaming on, session reuse on.
func Decode(r io.Reader) (*Job, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, ErrNoInput
	}

	// Shadow struct so absent fields and explicit false/empty values can be
	// told apart for the defaulted flags.
	raw := struct {
		Type         string               `json:"type"`
		Prompt       string               `json:"prompt"`
		Model        model.Config         `json:"model"`
		Ghost        agent.PersonaConfig  `json:"ghost"`
		Team         *agent.TeamConfig    `json:"team"`
		Context      Context              `json:"context"`
		SessionID    *string              `json:"session_id"`
		MCPTools     []mcptool.Descriptor `json:"mcp_tools"`
		Stream       *bool                `json:"stream"`
		Debug        bool                 `json:"debug"`
		DebugLevel   *int                 `json:"debug_level"`
		ReuseSession *bool                `json:"reuse_session"`
	}{}

	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid JSON input: %w", err)
	}

	j := &Job{
		Type:         normalizeType(raw.Type),
		Prompt:       raw.Prompt,
		Model:        raw.Model,
		Ghost:        raw.Ghost,
		Team:         raw.Team,
		Context:      raw.Context,
		SessionID:    "default",
		MCPTools:     raw.MCPTools,
		Stream:       true,
		Debug:        raw.Debug,
		DebugLevel:   2,
		ReuseSession: true,
	}

	if raw.SessionID != nil {
		j.SessionID = *raw.SessionID
	}
	if raw.Stream != nil {
		j.Stream = *raw.Stream
	}
	if raw.DebugLevel != nil {
		j.DebugLevel = *raw.DebugLevel
	}
	if raw.ReuseSession != nil {
		j.ReuseSession = *raw.ReuseSession
	}

	// An empty team object carries no configuration at all.
	if j.Team != nil && teamConfigEmpty(j.Team) {
		j.Team = nil
	}

	return j, nil
}

// Kind returns the session kind the job requests. Anything that is not a
// team job runs as a single agent.
func (j *Job) Kind() session.Kind {
	if j.Type == "team" {
		return session.KindTeam
	}

	return session.KindAgent
}

// PromptWithContext returns the task prompt with the auxiliary context
// appended: working directory, repository URL and checked-out project path.
func (j *Job) PromptWithContext() string {
	var b strings.Builder

	b.WriteString(j.Prompt)

	if j.Context.Cwd != "" {
		b.WriteString("\n\nCurrent working directory: " + j.Context.Cwd)
	}

	if j.Context.GitURL != "" {
		b.WriteString("\n\nProject URL: " + j.Context.GitURL)
	}

	if j.Context.ProjectPath != "" {
		b.WriteString("\n\nProject path: " + j.Context.ProjectPath)
	}

	return b.String()
}

// normalizeType folds the legacy aliases onto the two supported kinds.
func normalizeType(t string) string {
	switch t {
	case "team":
		return "team"
	case "", "bot", "robot", "agent":
		return "agent"
	default:
		return "agent"
	}
}

func teamConfigEmpty(cfg *agent.TeamConfig) bool {
	return cfg.Name == "" && cfg.Mode == "" && cfg.Leader == nil &&
		len(cfg.Members) == 0 && cfg.Description == ""
}
