package payments

import (
	"context"
	"fmt"
	"math"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
)

// Midtrans creates Snap checkouts and reads their status through Core API.
// Snap only accepts whole currency units, so amounts are rounded.
type Midtrans struct {
	snap snap.Client
	core coreapi.Client
}

func NewMidtrans(serverKey string, production bool) *Midtrans {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}
	m := &Midtrans{}
	m.snap.New(serverKey, env)
	m.core.New(serverKey, env)
	return m
}

func (m *Midtrans) Name() string { return "midtrans" }

func (m *Midtrans) CreateOrder(_ context.Context, order Order) (*Checkout, error) {
	amount := int64(math.Round(order.Amount))
	if amount <= 0 {
		return nil, fmt.Errorf("midtrans: invalid amount %.2f", order.Amount)
	}

	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  order.Reference,
			GrossAmt: amount,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: order.CustomerName,
			Email: order.CustomerEmail,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    order.Reference,
				Price: amount,
				Qty:   1,
				Name:  truncate(order.Description, 50),
			},
		},
	}

	resp, merr := m.snap.CreateTransaction(req)
	if merr != nil {
		return nil, fmt.Errorf("midtrans: create transaction: %s", merr.Message)
	}
	return &Checkout{OrderID: order.Reference, ApprovalURL: resp.RedirectURL, Token: resp.Token}, nil
}

func (m *Midtrans) Capture(_ context.Context, orderID string) (*Capture, error) {
	status, merr := m.core.CheckTransaction(orderID)
	if merr != nil {
		if merr.StatusCode == 404 {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("midtrans: check transaction: %s", merr.Message)
	}

	result := &Capture{OrderID: orderID, TransactionID: status.TransactionID}
	switch status.TransactionStatus {
	case "capture", "settlement":
		result.Status = CaptureSucceeded
		if status.FraudStatus == "challenge" {
			result.Status = CapturePending
		}
	case "pending":
		result.Status = CapturePending
	default:
		result.Status = CaptureFailed
	}
	return result, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
