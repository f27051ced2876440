// Command agentbridge reads one JSON job from stdin, runs it against the
// local backend, and emits newline-delimited JSON events on stdout. Exit
// status is 0 for any run that got as far as execution, including cancelled
// and failed runs; missing or undecodable input exits 1.
package main

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/agentbridge/backend"
	"github.com/hupe1980/agentbridge/config"
	"github.com/hupe1980/agentbridge/event"
	"github.com/hupe1980/agentbridge/job"
	"github.com/hupe1980/agentbridge/logging"
	"github.com/hupe1980/agentbridge/runner"
	"github.com/hupe1980/agentbridge/session"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "agentbridge",
		Short:         "Run one agent or team job from stdin, emitting NDJSON events on stdout",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), configPath, os.Stdin, os.Stdout)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to YAML settings file")

	return cmd
}

func run(ctx context.Context, configPath string, in io.Reader, out io.Writer) error {
	em := event.NewEmitter(out)

	settings, err := config.Load(configPath)
	if err != nil {
		em.Emit(event.TypeError, err.Error(), nil)
		return err
	}

	logging.Setup(settings.Logging)

	j, err := job.Decode(in)
	if err != nil {
		em.Emit(event.TypeError, err.Error(), nil)
		return err
	}

	r := runner.New(backend.NewLocal(), func(o *runner.Options) {
		o.Emitter = em
		o.Cache = session.NewCache(settings.CacheCapacity)
		o.GitTimeout = settings.GitTimeout()
	})

	release := r.Token().Install(em)
	defer release()

	// Execution failures have already been reported on the event stream;
	// they do not change the exit status.
	_ = r.Execute(ctx, j)

	return nil
}
