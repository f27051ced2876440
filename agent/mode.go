package agent

// ModeConfig is the resolved coordination behavior of a team.
type ModeConfig struct {
	Reasoning            bool `json:"reasoning,omitempty"`
	DelegateToAllMembers bool `json:"delegate_to_all_members,omitempty"`
	RespondDirectly      bool `json:"respond_directly,omitempty"`
}

// ModeFor maps a coordination mode name to its fixed configuration. Unknown
// modes resolve to the zero value; they are not an error.
func ModeFor(mode string) ModeConfig {
	switch mode {
	case "coordinate":
		return ModeConfig{Reasoning: true}
	case "collaborate":
		return ModeConfig{DelegateToAllMembers: true, Reasoning: true}
	case "route":
		return ModeConfig{RespondDirectly: true}
	default:
		return ModeConfig{}
	}
}
