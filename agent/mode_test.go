package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModeFor(t *testing.T) {
	tests := []struct {
		mode string
		want ModeConfig
	}{
		{"coordinate", ModeConfig{Reasoning: true}},
		{"collaborate", ModeConfig{DelegateToAllMembers: true, Reasoning: true}},
		{"route", ModeConfig{RespondDirectly: true}},
		{"broadcast", ModeConfig{}},
		{"", ModeConfig{}},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			assert.Equal(t, tt.want, ModeFor(tt.mode))
		})
	}
}
