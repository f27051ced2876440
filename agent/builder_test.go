package agent

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentbridge/event"
	"github.com/hupe1980/agentbridge/model"
	"github.com/hupe1980/agentbridge/progress"
)

func testDeps() (*event.Emitter, *progress.Tracker) {
	var buf bytes.Buffer
	em := event.NewEmitter(&buf)
	return em, progress.NewTracker(em)
}

func openaiCfg(id string) model.Config {
	return model.Config{Provider: "openai", ModelID: id}
}

func TestBuildAgentDefaults(t *testing.T) {
	em, _ := testDeps()

	a, err := BuildAgent(context.Background(), PersonaConfig{Personality: "be terse"}, openaiCfg("gpt-4o-mini"), nil, em)

	require.NoError(t, err)
	assert.Equal(t, "Agent", a.Name)
	assert.Equal(t, "be terse", a.Instructions)
	assert.Equal(t, "be terse", a.Description, "description falls back to personality")
	require.NotNil(t, a.Model)
	assert.Equal(t, "openai", a.Model.Info().Provider)
}

func TestBuildAgentUnsupportedProvider(t *testing.T) {
	em, _ := testDeps()

	_, err := BuildAgent(context.Background(), PersonaConfig{}, model.Config{Provider: "mistral"}, nil, em)

	assert.ErrorIs(t, err, model.ErrUnsupportedProvider)
}

func TestBuildTeamMembersOnly(t *testing.T) {
	em, tracker := testDeps()

	team, err := BuildTeam(context.Background(), &TeamConfig{
		Name: "analysts",
		Mode: "coordinate",
		Members: []MemberConfig{
			{Name: "researcher", Model: openaiCfg("gpt-4o-mini"), Personality: "research"},
			{Name: "writer", Model: openaiCfg("gpt-4o-mini"), Personality: "write"},
		},
	}, openaiCfg("gpt-4o"), nil, em, tracker)

	require.NoError(t, err)
	require.Len(t, team.Members, 2)
	assert.Equal(t, "researcher", team.Members[0].Name)
	assert.Equal(t, "writer", team.Members[1].Name)
	assert.Nil(t, team.Leader)
	assert.Equal(t, ModeConfig{Reasoning: true}, team.Mode)
	require.NotNil(t, team.Model)
}

func TestBuildTeamLeaderBecomesSoleMember(t *testing.T) {
	em, tracker := testDeps()

	team, err := BuildTeam(context.Background(), &TeamConfig{
		Mode:   "route",
		Leader: &MemberConfig{Name: "router", Model: openaiCfg("gpt-4o-mini")},
	}, openaiCfg("gpt-4o"), nil, em, tracker)

	require.NoError(t, err)
	require.Len(t, team.Members, 1)
	assert.Same(t, team.Leader, team.Members[0])
	assert.Equal(t, ModeConfig{RespondDirectly: true}, team.Mode)
}

func TestBuildTeamLeaderNotLayeredOntoDeclaredMembers(t *testing.T) {
	em, tracker := testDeps()

	team, err := BuildTeam(context.Background(), &TeamConfig{
		Leader:  &MemberConfig{Name: "lead", Model: openaiCfg("gpt-4o-mini")},
		Members: []MemberConfig{{Name: "solo", Model: openaiCfg("gpt-4o-mini")}},
	}, openaiCfg("gpt-4o"), nil, em, tracker)

	require.NoError(t, err)
	require.Len(t, team.Members, 1)
	assert.Equal(t, "solo", team.Members[0].Name)
	require.NotNil(t, team.Leader)
	assert.Equal(t, "lead", team.Leader.Name)
}

func TestBuildTeamEmpty(t *testing.T) {
	em, tracker := testDeps()

	_, err := BuildTeam(context.Background(), &TeamConfig{Name: "ghost-town"}, openaiCfg("gpt-4o"), nil, em, tracker)

	assert.ErrorIs(t, err, ErrEmptyTeam)
}

func TestBuildTeamNilConfig(t *testing.T) {
	em, tracker := testDeps()

	_, err := BuildTeam(context.Background(), nil, openaiCfg("gpt-4o"), nil, em, tracker)

	assert.ErrorIs(t, err, ErrNoTeamConfig)
}

func TestBuildTeamDefaultsModeToCoordinate(t *testing.T) {
	em, tracker := testDeps()

	team, err := BuildTeam(context.Background(), &TeamConfig{
		Members: []MemberConfig{{Name: "m", Model: openaiCfg("gpt-4o-mini")}},
	}, openaiCfg("gpt-4o"), nil, em, tracker)

	require.NoError(t, err)
	assert.Equal(t, ModeConfig{Reasoning: true}, team.Mode)
	assert.Equal(t, "Team", team.Name)
}

func TestBuildTeamRecordsUnreportedMemberSteps(t *testing.T) {
	var buf bytes.Buffer
	em := event.NewEmitter(&buf)
	tracker := progress.NewTracker(em)

	_, err := BuildTeam(context.Background(), &TeamConfig{
		Leader:  &MemberConfig{Name: "lead", Model: openaiCfg("gpt-4o-mini")},
		Members: []MemberConfig{{Name: "m1", Model: openaiCfg("gpt-4o-mini")}},
	}, openaiCfg("gpt-4o"), nil, em, tracker)
	require.NoError(t, err)

	steps := tracker.Snapshot()
	require.Len(t, steps, 2)
	assert.Equal(t, "Created member: m1", steps[0].Title)
	assert.Equal(t, "Created leader: lead", steps[1].Title)
	assert.NotContains(t, buf.String(), "thinking_step", "member creation steps are not reported")
}
