package backend

import (
	"context"

	"github.com/hupe1980/agentbridge/agent"
)

// Scripted is a Backend replaying canned event sequences and results. It is
// the backend analogue of model.MockHandle and exists for tests and local
// experimentation.
type Scripted struct {
	AgentEvents []AgentEvent
	TeamEvents  []TeamEvent
	AgentResult Result
	TeamResult  Result
	Err         error

	// AgentInputs records the inputs passed to agent runs, in order.
	AgentInputs []Input
	// TeamInputs records the inputs passed to team runs, in order.
	TeamInputs []Input
}

// RunAgent implements Backend by replaying AgentEvents.
func (s *Scripted) RunAgent(ctx context.Context, a *agent.Agent, in Input) (<-chan AgentEvent, <-chan error) {
	s.AgentInputs = append(s.AgentInputs, in)
	out := make(chan AgentEvent, len(s.AgentEvents)+1)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)
		for _, ev := range s.AgentEvents {
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			case out <- ev:
			}
		}
		if s.Err != nil {
			errCh <- s.Err
		}
	}()

	return out, errCh
}

// RunAgentSync implements Backend by returning AgentResult.
func (s *Scripted) RunAgentSync(ctx context.Context, a *agent.Agent, in Input) (Result, error) {
	s.AgentInputs = append(s.AgentInputs, in)
	if s.Err != nil {
		return Result{}, s.Err
	}
	return s.AgentResult, nil
}

// RunTeam implements Backend by replaying TeamEvents.
func (s *Scripted) RunTeam(ctx context.Context, t *agent.Team, in Input) (<-chan TeamEvent, <-chan error) {
	s.TeamInputs = append(s.TeamInputs, in)
	out := make(chan TeamEvent, len(s.TeamEvents)+1)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)
		for _, ev := range s.TeamEvents {
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			case out <- ev:
			}
		}
		if s.Err != nil {
			errCh <- s.Err
		}
	}()

	return out, errCh
}

// RunTeamSync implements Backend by returning TeamResult.
func (s *Scripted) RunTeamSync(ctx context.Context, t *agent.Team, in Input) (Result, error) {
	s.TeamInputs = append(s.TeamInputs, in)
	if s.Err != nil {
		return Result{}, s.Err
	}
	return s.TeamResult, nil
}
