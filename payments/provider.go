package payments

import (
	"context"
	"errors"
	"sort"
)

var ErrOrderNotFound = errors.New("payment order not found")

// Order is what the marketplace asks a provider to charge.
type Order struct {
	Reference     string
	Amount        float64
	Currency      string
	Description   string
	CustomerName  string
	CustomerEmail string
}

// Checkout is the provider's answer: an order id and where to send the payer.
type Checkout struct {
	OrderID     string `json:"order_id"`
	ApprovalURL string `json:"approval_url,omitempty"`
	Token       string `json:"token,omitempty"`
}

type CaptureStatus string

const (
	CaptureSucceeded CaptureStatus = "succeeded"
	CapturePending   CaptureStatus = "pending"
	CaptureFailed    CaptureStatus = "failed"
)

type Capture struct {
	OrderID       string
	TransactionID string
	Status        CaptureStatus
}

type Provider interface {
	Name() string
	CreateOrder(ctx context.Context, order Order) (*Checkout, error)
	Capture(ctx context.Context, orderID string) (*Capture, error)
}

// Registry holds the configured providers by name.
type Registry map[string]Provider

func NewRegistry(providers ...Provider) Registry {
	r := Registry{}
	for _, p := range providers {
		if p != nil {
			r[p.Name()] = p
		}
	}
	return r
}

func (r Registry) Get(name string) (Provider, bool) {
	p, ok := r[name]
	return p, ok
}

func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
