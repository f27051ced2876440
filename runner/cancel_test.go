package runner

import (
	"bytes"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentbridge/event"
)

// syncBuffer guards reads against the signal goroutine's writes.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestTokenStartsUnset(t *testing.T) {
	tok := NewToken()
	assert.False(t, tok.Cancelled())

	tok.Cancel()
	assert.True(t, tok.Cancelled())
}

func TestTokenInstallHandlesSignal(t *testing.T) {
	var buf syncBuffer
	tok := NewToken()

	release := tok.Install(event.NewEmitter(&buf))
	defer release()

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGTERM))

	assert.Eventually(t, tok.Cancelled, 2*time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool {
		return strings.Contains(buf.String(), "Task cancelled by signal")
	}, 2*time.Second, 10*time.Millisecond)
}
