package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		ok       bool
	}{
		{OrderStatusRequested, OrderStatusApproved, true},
		{OrderStatusRequested, OrderStatusCompleted, false},
		{OrderStatusApproved, OrderStatusInProgress, true},
		{OrderStatusApproved, OrderStatusReadyForPickup, true},
		{OrderStatusInProgress, OrderStatusCompleted, true},
		{OrderStatusReadyForPickup, OrderStatusCompleted, true},
		{OrderStatusCompleted, OrderStatusCanceled, false},
		{OrderStatusCanceled, OrderStatusApproved, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.ok, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestTerminalStatus(t *testing.T) {
	assert.True(t, TerminalStatus(OrderStatusCanceled))
	assert.True(t, TerminalStatus(OrderStatusCompleted))
	assert.False(t, TerminalStatus(OrderStatusRequested))
}
