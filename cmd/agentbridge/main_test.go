package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentbridge/job"
)

func TestRunNoInput(t *testing.T) {
	var out bytes.Buffer

	err := run(context.Background(), "", strings.NewReader(""), &out)

	require.ErrorIs(t, err, job.ErrNoInput)
	assert.Contains(t, out.String(), `"type":"error"`)
}

func TestRunInvalidJSON(t *testing.T) {
	var out bytes.Buffer

	err := run(context.Background(), "", strings.NewReader("{broken"), &out)

	require.Error(t, err)
	assert.Contains(t, out.String(), "invalid JSON input")
}

func TestRunExecutionErrorStillExitsClean(t *testing.T) {
	var out bytes.Buffer

	// Empty team config is a run-level failure: reported on the stream,
	// but not an exit-status error.
	err := run(context.Background(), "", strings.NewReader(`{"type":"team"}`), &out)

	require.NoError(t, err)
	assert.Contains(t, out.String(), `"type":"started"`)
	assert.Contains(t, out.String(), "no team config provided")
	assert.NotContains(t, out.String(), `"type":"completed"`)
}

func TestRootCmdHasConfigFlag(t *testing.T) {
	cmd := newRootCmd()
	assert.NotNil(t, cmd.Flags().Lookup("config"))
}
