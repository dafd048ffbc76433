package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusTransitions(t *testing.T) {
	allowed := []struct {
		from, to OrderStatus
	}{
		{OrderPending, OrderPaid},
		{OrderPending, OrderCancelled},
		{OrderPaid, OrderProcessing},
		{OrderPaid, OrderRefunded},
		{OrderProcessing, OrderShipped},
		{OrderShipped, OrderDelivered},
		{OrderDelivered, OrderRefunded},
	}
	for _, tt := range allowed {
		assert.True(t, tt.from.CanTransition(tt.to), "%s -> %s should be allowed", tt.from, tt.to)
	}

	denied := []struct {
		from, to OrderStatus
	}{
		{OrderPending, OrderShipped},
		{OrderPaid, OrderPending},
		{OrderShipped, OrderCancelled},
		{OrderCancelled, OrderPaid},
		{OrderRefunded, OrderPending},
		{OrderDelivered, OrderShipped},
	}
	for _, tt := range denied {
		assert.False(t, tt.from.CanTransition(tt.to), "%s -> %s should be denied", tt.from, tt.to)
	}
}
