// Package agent defines the execution contexts a job runs against — a single
// agent or a coordinated team — and the builder that assembles them from job
// configuration. Contexts are constructed once per session and may be cached
// for reuse; after construction only the backend mutates their conversation
// state.
package agent

import (
	"errors"

	"github.com/hupe1980/agentbridge/mcptool"
	"github.com/hupe1980/agentbridge/model"
)

var (
	// ErrEmptyTeam is returned when a team config declares neither members
	// nor a leader.
	ErrEmptyTeam = errors.New("team has no members or leader")

	// ErrNoTeamConfig is returned when a team job carries no team config.
	ErrNoTeamConfig = errors.New("no team config provided")
)

// PersonaConfig shapes a single agent's identity and instructions.
type PersonaConfig struct {
	Name        string `json:"name"`
	Personality string `json:"personality"`
	Description string `json:"description,omitempty"`
}

// MemberConfig is a PersonaConfig plus the member's own model selection.
type MemberConfig struct {
	Name        string       `json:"name"`
	Model       model.Config `json:"model"`
	Personality string       `json:"personality"`
	Description string       `json:"description,omitempty"`
}

// TeamConfig declares a team: coordination mode, members and optional leader.
type TeamConfig struct {
	Name        string         `json:"name"`
	Mode        string         `json:"mode"` // coordinate, collaborate, route
	Leader      *MemberConfig  `json:"leader,omitempty"`
	Members     []MemberConfig `json:"members"`
	Description string         `json:"description,omitempty"`
}

// Agent is a single-agent execution context: a model handle plus instructions
// and the job's provisioned tool handles.
type Agent struct {
	Name         string
	Description  string
	Instructions string
	Model        model.Handle
	Tools        []*mcptool.Handle
}

// Team is a team execution context: coordination mode, the ordered member
// list, an optional leader and the team-level model handle.
type Team struct {
	Name        string
	Description string
	Mode        ModeConfig
	Members     []*Agent
	Leader      *Agent
	Model       model.Handle
}
