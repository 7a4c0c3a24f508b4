package payments

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Local simulates a processor in memory. Every order captures successfully.
type Local struct {
	mu     sync.Mutex
	orders map[string]Order
}

func NewLocal() *Local {
	return &Local{orders: map[string]Order{}}
}

func (l *Local) Name() string { return "local" }

func (l *Local) CreateOrder(_ context.Context, order Order) (*Checkout, error) {
	if order.Amount <= 0 {
		return nil, fmt.Errorf("local: invalid amount %.2f", order.Amount)
	}
	id := "pi_local_" + uuid.NewString()

	l.mu.Lock()
	l.orders[id] = order
	l.mu.Unlock()

	return &Checkout{OrderID: id, Token: "secret_" + id}, nil
}

func (l *Local) Capture(_ context.Context, orderID string) (*Capture, error) {
	l.mu.Lock()
	_, ok := l.orders[orderID]
	l.mu.Unlock()
	if !ok {
		return nil, ErrOrderNotFound
	}
	return &Capture{OrderID: orderID, TransactionID: "txn_" + orderID, Status: CaptureSucceeded}, nil
}
