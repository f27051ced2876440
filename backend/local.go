package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/hupe1980/agentbridge/agent"
	"github.com/hupe1980/agentbridge/model"
)

// Local is a reference backend that drives the model handles directly: a
// single text-generation turn for agents, and sequential member turns
// followed by a team-model synthesis for teams. It implements the full
// Backend contract so the binary runs end-to-end without an external
// execution engine.
type Local struct{}

// NewLocal constructs the reference backend.
func NewLocal() *Local { return &Local{} }

// RunAgent implements Backend.
func (l *Local) RunAgent(ctx context.Context, a *agent.Agent, in Input) (<-chan AgentEvent, <-chan error) {
	out := make(chan AgentEvent, 32)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		runID := uuid.NewString()
		out <- AgentEvent{Kind: KindRunStarted, RunID: runID, AgentID: a.Name}

		text, err := l.generate(ctx, a.Model, a.Instructions, in.Prompt, true, func(chunk string) {
			out <- AgentEvent{Kind: KindRunContent, RunID: runID, AgentID: a.Name, Content: chunk}
		})
		if err != nil {
			errCh <- err
			return
		}
		log.Debug().Str("run_id", runID).Int("result_len", len(text)).Msg("agent run finished")
		out <- AgentEvent{Kind: KindRunCompleted, RunID: runID, AgentID: a.Name}
	}()

	return out, errCh
}

// RunAgentSync implements Backend.
func (l *Local) RunAgentSync(ctx context.Context, a *agent.Agent, in Input) (Result, error) {
	text, err := l.generate(ctx, a.Model, a.Instructions, in.Prompt, false, nil)
	if err != nil {
		return Result{}, err
	}
	return Result{Content: text}, nil
}

// RunTeam implements Backend. Members run in declaration order, each surfaced
// as nested member activity; the team model then synthesizes the final
// answer from the member outputs, streamed as team-level content.
func (l *Local) RunTeam(ctx context.Context, t *agent.Team, in Input) (<-chan TeamEvent, <-chan error) {
	out := make(chan TeamEvent, 32)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		runID := uuid.NewString()
		out <- TeamEvent{Kind: KindRunStarted, RunID: runID}

		if t.Mode.Reasoning {
			out <- TeamEvent{Reasoning: &ReasoningStep{
				Title:     "Delegating to members",
				Action:    "delegate",
				Reasoning: fmt.Sprintf("Running %d member(s) before synthesis", len(l.activeMembers(t))),
			}}
		}

		outputs, err := l.runMembers(ctx, t, in, out)
		if err != nil {
			errCh <- err
			return
		}

		_, err = l.generate(ctx, t.Model, t.Description, synthesisPrompt(in.Prompt, outputs), true, func(chunk string) {
			out <- TeamEvent{Kind: KindRunContent, RunID: runID, Content: chunk}
		})
		if err != nil {
			errCh <- err
			return
		}
		out <- TeamEvent{Kind: KindRunCompleted, RunID: runID}
	}()

	return out, errCh
}

// RunTeamSync implements Backend.
func (l *Local) RunTeamSync(ctx context.Context, t *agent.Team, in Input) (Result, error) {
	var outputs []memberOutput
	for _, m := range l.activeMembers(t) {
		text, err := l.generate(ctx, m.Model, m.Instructions, in.Prompt, false, nil)
		if err != nil {
			return Result{}, err
		}
		outputs = append(outputs, memberOutput{name: m.Name, text: text})
	}
	text, err := l.generate(ctx, t.Model, t.Description, synthesisPrompt(in.Prompt, outputs), false, nil)
	if err != nil {
		return Result{}, err
	}
	return Result{Content: text}, nil
}

type memberOutput struct {
	name string
	text string
}

// activeMembers applies the coordination mode to the declared member list:
// respond_directly routes to the first member only.
func (l *Local) activeMembers(t *agent.Team) []*agent.Agent {
	if t.Mode.RespondDirectly && len(t.Members) > 0 {
		return t.Members[:1]
	}
	return t.Members
}

func (l *Local) runMembers(ctx context.Context, t *agent.Team, in Input, out chan<- TeamEvent) ([]memberOutput, error) {
	var outputs []memberOutput
	for _, m := range l.activeMembers(t) {
		text, err := l.generate(ctx, m.Model, m.Instructions, in.Prompt, false, nil)
		if err != nil {
			return nil, err
		}
		out <- TeamEvent{Member: &AgentEvent{
			Kind:    "run_response_completed",
			AgentID: m.Name,
			Content: text,
		}}
		outputs = append(outputs, memberOutput{name: m.Name, text: text})
	}
	return outputs, nil
}

func synthesisPrompt(prompt string, outputs []memberOutput) string {
	if len(outputs) == 0 {
		return prompt
	}
	var b strings.Builder
	b.WriteString(prompt)
	b.WriteString("\n\nMember responses:\n")
	for _, o := range outputs {
		fmt.Fprintf(&b, "\n[%s]\n%s\n", o.name, o.text)
	}
	b.WriteString("\nSynthesize a single final answer from the member responses.")
	return b.String()
}

// generate drives one handle to completion, invoking onChunk for each partial
// chunk when streaming, and returns the final text.
func (l *Local) generate(
	ctx context.Context,
	h model.Handle,
	instructions, prompt string,
	stream bool,
	onChunk func(string),
) (string, error) {
	respCh, errCh := h.Generate(ctx, model.Request{
		Instructions: instructions,
		Prompt:       prompt,
		Stream:       stream,
	})

	var final string
	for resp := range respCh {
		if resp.Partial {
			if onChunk != nil && resp.Text != "" {
				onChunk(resp.Text)
			}
			continue
		}
		final = resp.Text
	}
	if err := <-errCh; err != nil {
		return "", err
	}
	return final, nil
}
