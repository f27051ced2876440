package model

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want string
	}{
		{"long key", "sk-abcdefghijklmnopqrstuvwx", "sk-abcdefg...uvwx"},
		{"boundary length 15", "abcdefghijklmno", "abcdefghij...lmno"},
		{"boundary length 14", "abcdefghijklmn", "<not set>"},
		{"short key", "short", "<not set>"},
		{"empty", "", "<not set>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MaskKey(tt.key))
		})
	}
}

func TestProxyClient(t *testing.T) {
	t.Run("no proxy env", func(t *testing.T) {
		for _, name := range []string{"HTTPS_PROXY", "HTTP_PROXY", "https_proxy", "http_proxy"} {
			t.Setenv(name, "")
		}
		assert.Nil(t, ProxyClient())
	})

	t.Run("https proxy set", func(t *testing.T) {
		t.Setenv("HTTPS_PROXY", "http://proxy.local:8080")
		client := ProxyClient()
		require.NotNil(t, client)
		assert.Equal(t, proxyTimeout, client.Timeout)
	})
}

func TestMockHandleStreaming(t *testing.T) {
	h := NewMockHandle("mock-model", "mock")
	h.AddResponse("hello", "hi")

	respCh, errCh := h.Generate(context.Background(), Request{Prompt: "hello", Stream: true})

	var partials string
	var final Response
	for resp := range respCh {
		if resp.Partial {
			partials += resp.Text
		} else {
			final = resp
		}
	}
	require.NoError(t, <-errCh)
	assert.Equal(t, "hi", partials)
	assert.Equal(t, "hi", final.Text)
	assert.Equal(t, "stop", final.FinishReason)
}

func TestMockHandleNonStreaming(t *testing.T) {
	h := NewMockHandle("mock-model", "mock")
	h.AddResponse("hello", "hi")

	respCh, errCh := h.Generate(context.Background(), Request{Prompt: "hello"})

	resp := <-respCh
	assert.Equal(t, "hi", resp.Text)
	assert.False(t, resp.Partial)
	_, open := <-respCh
	assert.False(t, open)
	assert.NoError(t, <-errCh)
}
