package agent

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentbridge/event"
	"github.com/hupe1980/agentbridge/mcptool"
	"github.com/hupe1980/agentbridge/model"
	"github.com/hupe1980/agentbridge/model/factory"
	"github.com/hupe1980/agentbridge/progress"
)

// BuildAgent assembles a single-agent context from a persona and the job's
// top-level model config, attaching all provisioned tool handles.
func BuildAgent(
	ctx context.Context,
	persona PersonaConfig,
	modelCfg model.Config,
	tools []*mcptool.Handle,
	em *event.Emitter,
) (*Agent, error) {
	handle, err := factory.Build(ctx, modelCfg, em)
	if err != nil {
		return nil, err
	}

	name := persona.Name
	if name == "" {
		name = "Agent"
	}
	description := persona.Description
	if description == "" {
		description = persona.Personality
	}

	return &Agent{
		Name:         name,
		Description:  description,
		Instructions: persona.Personality,
		Model:        handle,
		Tools:        tools,
	}, nil
}

// buildMember assembles one team member from its own config, sharing the
// job's provisioned tool handle set.
func buildMember(
	ctx context.Context,
	cfg MemberConfig,
	tools []*mcptool.Handle,
	em *event.Emitter,
) (*Agent, error) {
	return BuildAgent(ctx, PersonaConfig{
		Name:        cfg.Name,
		Personality: cfg.Personality,
		Description: cfg.Description,
	}, cfg.Model, tools, em)
}

// BuildTeam assembles a team context. Each member is built like a single
// agent with its own model; the team-level model comes from the job's
// top-level model config. When no members are declared the leader becomes the
// sole member; a config with neither fails with ErrEmptyTeam.
func BuildTeam(
	ctx context.Context,
	cfg *TeamConfig,
	teamModel model.Config,
	tools []*mcptool.Handle,
	em *event.Emitter,
	tracker *progress.Tracker,
) (*Team, error) {
	if cfg == nil {
		return nil, ErrNoTeamConfig
	}

	members := make([]*Agent, 0, len(cfg.Members))
	for _, memberCfg := range cfg.Members {
		member, err := buildMember(ctx, memberCfg, tools, em)
		if err != nil {
			return nil, err
		}
		members = append(members, member)
		tracker.AddStep(fmt.Sprintf("Created member: %s", member.Name), nil, false)
	}

	var leader *Agent
	if cfg.Leader != nil {
		built, err := buildMember(ctx, *cfg.Leader, tools, em)
		if err != nil {
			return nil, err
		}
		leader = built
		tracker.AddStep(fmt.Sprintf("Created leader: %s", leader.Name), nil, false)
	}

	if len(members) == 0 && leader == nil {
		return nil, ErrEmptyTeam
	}

	handle, err := factory.Build(ctx, teamModel, em)
	if err != nil {
		return nil, err
	}

	if len(members) == 0 {
		members = []*Agent{leader}
	}

	name := cfg.Name
	if name == "" {
		name = "Team"
	}
	mode := cfg.Mode
	if mode == "" {
		mode = "coordinate"
	}

	return &Team{
		Name:        name,
		Description: cfg.Description,
		Mode:        ModeFor(mode),
		Members:     members,
		Leader:      leader,
		Model:       handle,
	}, nil
}
