// Package gitfetch downloads source code referenced by a job via a shallow
// git clone. Failures are reported to the caller but are never fatal to the
// job; execution proceeds without the checkout.
package gitfetch

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultTimeout bounds one clone attempt.
const DefaultTimeout = 300 * time.Second

// Fetch clones url (optionally a specific branch) into a fresh temp directory
// and returns its path. The clone is shallow and bounded by timeout; a zero
// timeout falls back to DefaultTimeout.
func Fetch(ctx context.Context, url, branch string, timeout time.Duration) (string, error) {
	if url == "" {
		return "", fmt.Errorf("no repository url given")
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	dir, err := os.MkdirTemp("", "agentbridge_code_")
	if err != nil {
		return "", fmt.Errorf("create checkout dir: %w", err)
	}

	args := []string{"clone", "--depth", "1"}
	if branch != "" {
		args = append(args, "-b", branch)
	}
	args = append(args, url, dir)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		_ = os.RemoveAll(dir)
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("git clone timed out")
		}
		return "", fmt.Errorf("git clone failed: %s", string(output))
	}

	log.Debug().Str("url", url).Str("dir", dir).Msg("repository cloned")
	return dir, nil
}
