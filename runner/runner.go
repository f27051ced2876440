package runner

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/hupe1980/agentbridge/agent"
	"github.com/hupe1980/agentbridge/backend"
	"github.com/hupe1980/agentbridge/event"
	"github.com/hupe1980/agentbridge/gitfetch"
	"github.com/hupe1980/agentbridge/job"
	"github.com/hupe1980/agentbridge/mcptool"
	"github.com/hupe1980/agentbridge/normalize"
	"github.com/hupe1980/agentbridge/progress"
	"github.com/hupe1980/agentbridge/session"
)

// Options holds dependency + configuration overrides passed to New().
type Options struct {
	// Emitter serializes external events onto the output stream.
	Emitter *event.Emitter
	// Tracker records thinking steps; defaults to one reporting through
	// Emitter.
	Tracker *progress.Tracker
	// Cache holds execution contexts across jobs within the process.
	Cache *session.Cache
	// Token is the cancellation flag observed by the streaming loops.
	Token *Token
	// GitTimeout bounds the source-code download step.
	GitTimeout time.Duration
}

// Runner drives one job end to end: it resolves or builds the execution
// context, provisions tools, dispatches to the agent or team flow, and
// guarantees tool teardown on every exit path.
type Runner struct {
	backend backend.Backend
	emitter *event.Emitter
	tracker *progress.Tracker
	cache   *session.Cache
	token   *Token

	gitTimeout time.Duration
}

// New constructs a Runner driving b, with optional overrides.
func New(b backend.Backend, optFns ...func(o *Options)) *Runner {
	opts := Options{
		Emitter:    event.NewEmitter(os.Stdout),
		Cache:      session.NewCache(0),
		Token:      NewToken(),
		GitTimeout: gitfetch.DefaultTimeout,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Tracker == nil {
		opts.Tracker = progress.NewTracker(opts.Emitter)
	}

	return &Runner{
		backend:    b,
		emitter:    opts.Emitter,
		tracker:    opts.Tracker,
		cache:      opts.Cache,
		token:      opts.Token,
		gitTimeout: opts.GitTimeout,
	}
}

// Emitter returns the emitter the runner reports through.
func (r *Runner) Emitter() *event.Emitter { return r.emitter }

// Token returns the runner's cancellation token.
func (r *Runner) Token() *Token { return r.token }

// Execute runs one job to completion. Fatal errors are reported as a single
// error event with a stack snapshot and returned; teardown has already run by
// then.
func (r *Runner) Execute(ctx context.Context, j *job.Job) error {
	r.emitter.Emit(event.TypeStarted, fmt.Sprintf("Starting %s execution", j.Type), nil)

	var err error
	if j.Kind() == session.KindTeam {
		err = r.runTeam(ctx, j)
	} else {
		err = r.runAgent(ctx, j)
	}

	if err != nil {
		r.reportError(err)
	}

	return err
}

func (r *Runner) runAgent(ctx context.Context, j *job.Job) error {
	r.tracker.Reset()
	r.tracker.SetProgress(10)
	r.tracker.AddStep("Initializing agent", nil, true)

	r.downloadCode(ctx, j)

	r.tracker.SetProgress(20)
	tools := mcptool.Provision(ctx, j.MCPTools, r.emitter)
	defer mcptool.Teardown(tools)

	var ag *agent.Agent
	if j.ReuseSession {
		if cached, ok := r.cache.Lookup(j.SessionID, session.KindAgent); ok {
			ag = cached.(*agent.Agent)
			r.tracker.AddStep("Reusing existing agent session", map[string]any{"session_id": j.SessionID}, true)
			r.emitter.Emit(event.TypeSessionReused, "Reusing agent session: "+j.SessionID, nil)
		}
	}

	if ag == nil {
		r.tracker.SetProgress(30)
		r.tracker.AddStep("Creating new agent", nil, true)

		built, err := agent.BuildAgent(ctx, j.Ghost, j.Model, tools, r.emitter)
		if err != nil {
			return err
		}
		ag = built

		if j.ReuseSession {
			r.cache.Store(j.SessionID, session.KindAgent, ag)
		}
	}

	in := backend.Input{
		Prompt:    j.PromptWithContext(),
		SessionID: j.SessionID,
		UserID:    j.SessionID,
		Debug:     j.Debug,
	}

	r.tracker.SetProgress(50)
	r.tracker.AddStep("Executing agent", map[string]any{"streaming": j.Stream}, true)

	var content string
	if j.Stream {
		norm := normalize.New(r.emitter)

		evCh, errCh := r.backend.RunAgent(ctx, ag, in)

		stopped := false
		for ev := range evCh {
			if r.token.Cancelled() {
				r.emitter.Emit(event.TypeCancelled, "Task was cancelled", nil)
				stopped = true
				go drain(evCh)
				break
			}
			norm.HandleAgent(ev)
		}
		if !stopped {
			if err := <-errCh; err != nil {
				return err
			}
		}

		content = norm.Content()
	} else {
		r.tracker.AddStep("Running in non-streaming mode", nil, true)

		res, err := r.backend.RunAgentSync(ctx, ag, in)
		if err != nil {
			return err
		}
		content = res.Text()
	}

	r.tracker.SetProgress(100)
	if !r.token.Cancelled() {
		r.tracker.AddStep("Execution completed", nil, true)
		r.emitter.Emit(event.TypeCompleted, content, map[string]any{"thinking_steps": r.tracker.Snapshot()})
	}

	return nil
}

func (r *Runner) runTeam(ctx context.Context, j *job.Job) error {
	if j.Team == nil {
		return agent.ErrNoTeamConfig
	}

	r.tracker.Reset()
	r.tracker.SetProgress(10)
	r.tracker.AddStep("Initializing team", nil, true)

	r.downloadCode(ctx, j)

	r.tracker.SetProgress(20)
	tools := mcptool.Provision(ctx, j.MCPTools, r.emitter)
	defer mcptool.Teardown(tools)

	var team *agent.Team
	if j.ReuseSession {
		if cached, ok := r.cache.Lookup(j.SessionID, session.KindTeam); ok {
			team = cached.(*agent.Team)
			r.tracker.AddStep("Reusing existing team session", map[string]any{"session_id": j.SessionID}, true)
			r.emitter.Emit(event.TypeSessionReused, "Reusing team session: "+j.SessionID, nil)
		}
	}

	if team == nil {
		r.tracker.SetProgress(30)
		r.tracker.AddStep("Creating new team", nil, true)

		built, err := agent.BuildTeam(ctx, j.Team, j.Model, tools, r.emitter, r.tracker)
		if err != nil {
			return err
		}
		r.tracker.SetProgress(40)
		team = built

		if j.ReuseSession {
			r.cache.Store(j.SessionID, session.KindTeam, team)
		}
	}

	in := backend.Input{
		Prompt:    j.PromptWithContext(),
		SessionID: j.SessionID,
		UserID:    j.SessionID,
		Debug:     j.Debug,
	}

	mode := j.Team.Mode
	if mode == "" {
		mode = "coordinate"
	}

	r.tracker.SetProgress(50)
	r.tracker.AddStep("Executing team", map[string]any{"mode": mode, "streaming": j.Stream}, true)

	var content string
	if j.Stream {
		norm := normalize.New(r.emitter)

		evCh, errCh := r.backend.RunTeam(ctx, team, in)

		eventCount := 0
		stopped := false
		for ev := range evCh {
			if r.token.Cancelled() {
				r.emitter.Emit(event.TypeCancelled, "Task was cancelled", nil)
				stopped = true
				go drain(evCh)
				break
			}
			eventCount++
			norm.HandleTeam(ev)
		}
		if !stopped {
			if err := <-errCh; err != nil {
				return fmt.Errorf("team streaming error: %w", err)
			}
			if eventCount == 0 {
				r.emitter.Emit(event.TypeWarning, "No events received from team execution. Possible API error.", nil)
			}
		}

		content = norm.Content()
	} else {
		r.tracker.AddStep("Running in non-streaming mode", nil, true)

		res, err := r.backend.RunTeamSync(ctx, team, in)
		if err != nil {
			return fmt.Errorf("team execution error: %w", err)
		}
		content = res.Text()

		if strings.TrimSpace(content) == "" {
			r.emitter.Emit(event.TypeWarning, "Team execution returned empty result. Possible API error.", nil)
		}
	}

	r.tracker.SetProgress(100)
	if !r.token.Cancelled() {
		r.tracker.AddStep("Team execution completed", nil, true)
		r.emitter.Emit(event.TypeCompleted, content, map[string]any{"thinking_steps": r.tracker.Snapshot()})
	}

	return nil
}

// downloadCode fetches the job's source repository, if one is referenced.
// Failure is reported as a warning and the job proceeds without the checkout.
func (r *Runner) downloadCode(ctx context.Context, j *job.Job) {
	if j.Context.GitURL == "" {
		return
	}

	r.tracker.AddStep("Downloading code from repository", map[string]any{"git_url": j.Context.GitURL}, true)

	path, err := gitfetch.Fetch(ctx, j.Context.GitURL, j.Context.Branch, r.gitTimeout)
	if err != nil {
		r.emitter.Emit(event.TypeWarning, fmt.Sprintf("Failed to download code: %s", err), nil)
		return
	}

	r.tracker.AddStep("Code downloaded successfully", map[string]any{"path": path}, true)
	r.emitter.Emit(event.TypeGitDownloaded, "Code downloaded to "+path, map[string]any{"path": path})

	j.Context.ProjectPath = path
}

// reportError emits one error event carrying the message and a stack
// snapshot.
func (r *Runner) reportError(err error) {
	stack := make([]byte, 8192)
	n := runtime.Stack(stack, false)
	r.emitter.Emit(event.TypeError, err.Error(), map[string]any{"traceback": string(stack[:n])})
}

// drain consumes a stream the runner has stopped observing so the producer
// can finish and release its resources.
func drain[T any](ch <-chan T) {
	for range ch {
	}
}
