package memstore

import (
	"context"
	"fmt"
	"sort"

	"github.com/anjiri1684/drive_tutor/models"
	"github.com/anjiri1684/drive_tutor/services"
	"github.com/google/uuid"
)

// Reviews

func (s *Store) CreateReview(_ context.Context, review *models.Review) error {
	defer s.lock()()
	for _, r := range s.st.reviews {
		if r.PackageID == review.PackageID {
			return fmt.Errorf("%w: review for package %s", services.ErrAlreadyExists, review.PackageID)
		}
	}
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	if review.CreatedAt.IsZero() {
		review.CreatedAt = s.now()
	}
	row := *review
	row.Student = models.User{}
	s.st.reviews[review.ID] = row
	return nil
}

func (s *Store) ListReviewsByInstructor(_ context.Context, instructorID uuid.UUID) ([]models.Review, error) {
	defer s.lock()()
	var out []models.Review
	for _, r := range s.st.reviews {
		if r.InstructorID == instructorID {
			r.Student = s.st.users[r.StudentID]
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) InstructorRatings(_ context.Context, instructorID uuid.UUID) ([]int, error) {
	defer s.lock()()
	var out []int
	for _, r := range s.st.reviews {
		if r.InstructorID == instructorID {
			out = append(out, r.Rating)
		}
	}
	return out, nil
}

// Messages

func (s *Store) CreateMessage(_ context.Context, msg *models.Message) error {
	defer s.lock()()
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = s.now()
	}
	s.st.messages[msg.ID] = *msg
	return nil
}

func (s *Store) ListMessages(_ context.Context, packageID uuid.UUID) ([]models.Message, error) {
	defer s.lock()()
	var out []models.Message
	for _, m := range s.st.messages {
		if m.PackageID == packageID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) MarkMessagesRead(_ context.Context, packageID, readerID uuid.UUID) (int64, error) {
	defer s.lock()()
	var n int64
	for id, m := range s.st.messages {
		if m.PackageID == packageID && m.SenderID != readerID && !m.Read {
			m.Read = true
			s.st.messages[id] = m
			n++
		}
	}
	return n, nil
}

func (s *Store) CountUnread(_ context.Context, userID uuid.UUID) (int64, error) {
	defer s.lock()()
	var n int64
	for _, m := range s.st.messages {
		p, ok := s.st.packages[m.PackageID]
		if !ok || !p.HasParty(userID) {
			continue
		}
		if m.SenderID != userID && !m.Read {
			n++
		}
	}
	return n, nil
}

// Payments

func (s *Store) CreatePayment(_ context.Context, payment *models.Payment) error {
	defer s.lock()()
	if payment.ProviderOrderID != nil {
		for _, p := range s.st.payments {
			if p.ProviderOrderID != nil && *p.ProviderOrderID == *payment.ProviderOrderID {
				return fmt.Errorf("%w: order %s", services.ErrAlreadyExists, *payment.ProviderOrderID)
			}
		}
	}
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	stamp(&payment.CreatedAt, &payment.UpdatedAt, s.now())
	s.st.payments[payment.ID] = *payment
	return nil
}

func (s *Store) GetPayment(_ context.Context, id uuid.UUID) (*models.Payment, error) {
	defer s.lock()()
	p, ok := s.st.payments[id]
	if !ok {
		return nil, notFound("payment", id)
	}
	return &p, nil
}

func (s *Store) GetPaymentByOrderID(_ context.Context, orderID string) (*models.Payment, error) {
	defer s.lock()()
	for _, p := range s.st.payments {
		if p.ProviderOrderID != nil && *p.ProviderOrderID == orderID {
			return &p, nil
		}
	}
	return nil, notFound("payment order", orderID)
}

func (s *Store) UpdatePaymentIf(_ context.Context, id uuid.UUID, from, to models.PaymentStatus, txnID *string) (bool, error) {
	defer s.lock()()
	p, ok := s.st.payments[id]
	if !ok || p.Status != from {
		return false, nil
	}
	p.Status = to
	if txnID != nil {
		txn := *txnID
		p.ProviderTxnID = &txn
	}
	p.UpdatedAt = s.now()
	s.st.payments[id] = p
	return true, nil
}

func (s *Store) ListPayments(_ context.Context) ([]models.Payment, error) {
	defer s.lock()()
	out := make([]models.Payment, 0, len(s.st.payments))
	for _, p := range s.st.payments {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Certificates

func (s *Store) CreateCertificate(_ context.Context, cert *models.Certificate) error {
	defer s.lock()()
	for _, c := range s.st.certificates {
		if c.PackageID == cert.PackageID {
			return fmt.Errorf("%w: certificate for package %s", services.ErrAlreadyExists, cert.PackageID)
		}
	}
	if cert.ID == uuid.Nil {
		cert.ID = uuid.New()
	}
	s.st.certificates[cert.ID] = *cert
	return nil
}

func (s *Store) GetCertificateByPackage(_ context.Context, packageID uuid.UUID) (*models.Certificate, error) {
	defer s.lock()()
	for _, c := range s.st.certificates {
		if c.PackageID == packageID {
			return &c, nil
		}
	}
	return nil, notFound("certificate for package", packageID)
}

func (s *Store) ListCertificatesByStudent(_ context.Context, studentID uuid.UUID) ([]models.Certificate, error) {
	defer s.lock()()
	var out []models.Certificate
	for _, c := range s.st.certificates {
		if c.StudentID == studentID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompletionDate.After(out[j].CompletionDate) })
	return out, nil
}

// Stats

func (s *Store) DashboardStats(_ context.Context) (*services.DashboardStats, error) {
	defer s.lock()()
	stats := &services.DashboardStats{PackagesByStatus: map[models.PackageStatus]int64{}}
	for _, u := range s.st.users {
		stats.Users++
		switch u.Role {
		case models.RoleInstructor:
			stats.Instructors++
		case models.RoleStudent:
			stats.Students++
		}
	}
	for _, p := range s.st.packages {
		stats.PackagesByStatus[p.Status]++
		if p.Status == models.PackageCompleted {
			stats.CompletedRevenue += p.TotalPrice
			stats.PlatformRevenue += p.PlatformAmount
		}
	}
	var rated int
	for _, i := range s.st.instructors {
		if i.ReviewCount > 0 {
			stats.AverageRating += i.AvgRating
			rated++
		}
		if i.SubscriptionActive {
			stats.ActiveSubscribers++
		}
	}
	if rated > 0 {
		stats.AverageRating /= float64(rated)
	}
	return stats, nil
}
