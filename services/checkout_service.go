package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anjiri1684/drive_tutor/models"
	"github.com/anjiri1684/drive_tutor/payments"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const checkoutCurrency = "BRL"

var payablePackageStatuses = []models.PackageStatus{models.PackagePending, models.PackageConfirmed}

type CheckoutResult struct {
	Payment  *models.Payment    `json:"payment"`
	Checkout *payments.Checkout `json:"checkout"`
}

// CheckoutService hands a package total to a payment processor. Payments are
// recorded on their own rows and never change package status.
type CheckoutService struct {
	store     Store
	providers payments.Registry
	log       *zap.Logger
	now       func() time.Time
}

func NewCheckoutService(store Store, providers payments.Registry, log *zap.Logger) *CheckoutService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CheckoutService{store: store, providers: providers, log: log, now: time.Now}
}

// WithClock allows tests to override the clock used by the service.
func (s *CheckoutService) WithClock(fn func() time.Time) {
	s.now = fn
}

func (s *CheckoutService) Providers() []string {
	return s.providers.Names()
}

func (s *CheckoutService) Start(ctx context.Context, actor Actor, packageID uuid.UUID, providerName string) (*CheckoutResult, error) {
	provider, ok := s.providers.Get(providerName)
	if !ok {
		return nil, invalid("unknown payment provider %q", providerName)
	}

	pkg, err := s.store.GetPackage(ctx, packageID)
	if err != nil {
		return nil, storeErr(err)
	}
	if actor.Role != models.RoleStudent || pkg.StudentID != actor.ID {
		return nil, fmt.Errorf("%w: only the package student can pay", ErrUnauthorizedActor)
	}
	payable := false
	for _, st := range payablePackageStatuses {
		payable = payable || pkg.Status == st
	}
	if !payable {
		return nil, fmt.Errorf("%w: a %s package cannot be paid", ErrInvalidTransition, pkg.Status)
	}

	user, err := s.store.GetUser(ctx, actor.ID)
	if err != nil {
		return nil, storeErr(err)
	}

	payment := &models.Payment{
		ID:        uuid.New(),
		PackageID: pkg.ID,
		StudentID: pkg.StudentID,
		Amount:    pkg.TotalPrice,
		Currency:  checkoutCurrency,
		Provider:  provider.Name(),
		Status:    models.PaymentPending,
		CreatedAt: s.now(),
		UpdatedAt: s.now(),
	}

	checkout, err := provider.CreateOrder(ctx, payments.Order{
		Reference:     payment.ID.String(),
		Amount:        payment.Amount,
		Currency:      payment.Currency,
		Description:   fmt.Sprintf("Driving lessons package (%dh)", pkg.TotalHours),
		CustomerName:  user.FullName,
		CustomerEmail: user.Email,
	})
	if err != nil {
		s.log.Error("checkout creation failed",
			zap.String("provider", provider.Name()),
			zap.String("package_id", pkg.ID.String()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", ErrPaymentProvider, err)
	}
	payment.ProviderOrderID = &checkout.OrderID

	if err := s.store.CreatePayment(ctx, payment); err != nil {
		return nil, storeErr(err)
	}

	s.log.Info("checkout started",
		zap.String("payment_id", payment.ID.String()),
		zap.String("provider", provider.Name()),
		zap.Float64("amount", payment.Amount),
	)
	return &CheckoutResult{Payment: payment, Checkout: checkout}, nil
}

// Capture asks the provider for the outcome of an order and settles the
// pending payment row accordingly.
func (s *CheckoutService) Capture(ctx context.Context, providerName, orderID string) (*models.Payment, error) {
	provider, ok := s.providers.Get(providerName)
	if !ok {
		return nil, invalid("unknown payment provider %q", providerName)
	}
	payment, err := s.store.GetPaymentByOrderID(ctx, orderID)
	if err != nil {
		return nil, storeErr(err)
	}
	if payment.Provider != provider.Name() {
		return nil, invalid("order %s does not belong to %s", orderID, providerName)
	}
	if payment.Status != models.PaymentPending {
		return payment, nil
	}

	capture, err := provider.Capture(ctx, orderID)
	if errors.Is(err, payments.ErrOrderNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentProvider, err)
	}

	var to models.PaymentStatus
	switch capture.Status {
	case payments.CaptureSucceeded:
		to = models.PaymentSucceeded
	case payments.CaptureFailed:
		to = models.PaymentFailed
	default:
		return payment, nil
	}

	var txn *string
	if capture.TransactionID != "" {
		txn = &capture.TransactionID
	}
	if _, err := s.store.UpdatePaymentIf(ctx, payment.ID, models.PaymentPending, to, txn); err != nil {
		return nil, storeErr(err)
	}

	s.log.Info("payment settled", zap.String("payment_id", payment.ID.String()), zap.String("status", string(to)))
	payment, err = s.store.GetPayment(ctx, payment.ID)
	return payment, storeErr(err)
}

// Cancel abandons a pending payment of the student.
func (s *CheckoutService) Cancel(ctx context.Context, actor Actor, paymentID uuid.UUID) (*models.Payment, error) {
	payment, err := s.store.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, storeErr(err)
	}
	if payment.StudentID != actor.ID {
		return nil, ErrUnauthorizedActor
	}
	ok, err := s.store.UpdatePaymentIf(ctx, payment.ID, models.PaymentPending, models.PaymentCanceled, nil)
	if err != nil {
		return nil, storeErr(err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: payment is %s", ErrInvalidTransition, payment.Status)
	}
	payment, err = s.store.GetPayment(ctx, payment.ID)
	return payment, storeErr(err)
}

func (s *CheckoutService) List(ctx context.Context) ([]models.Payment, error) {
	list, err := s.store.ListPayments(ctx)
	return list, storeErr(err)
}
