package services

import (
	"errors"
	"testing"
)

func TestPricingCompute(t *testing.T) {
	p := NewPricing(10)

	tests := []struct {
		name         string
		rate         float64
		hours        int
		wantTotal    float64
		wantPlatform float64
	}{
		{"five hours no discount", 100, 5, 500, 50},
		{"ten hours five percent", 100, 10, 950, 95},
		{"twenty hours ten percent", 100, 20, 1800, 180},
		{"thirty hours fifteen percent", 100, 30, 2550, 255},
		{"fractional fee", 45.5, 20, 819, 81.9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := p.Compute(tt.rate, tt.hours)
			if err != nil {
				t.Fatalf("Compute() error = %v", err)
			}
			if q.TotalPrice != tt.wantTotal {
				t.Errorf("TotalPrice = %v, want %v", q.TotalPrice, tt.wantTotal)
			}
			if q.PlatformAmount != tt.wantPlatform {
				t.Errorf("PlatformAmount = %v, want %v", q.PlatformAmount, tt.wantPlatform)
			}
		})
	}
}

func TestPricingRejectsBadInput(t *testing.T) {
	p := NewPricing(10)

	if _, err := p.Compute(100, 7); !errors.Is(err, ErrInvalidTier) {
		t.Errorf("7 hours: got %v, want ErrInvalidTier", err)
	}
	if _, err := p.Compute(0, 10); !errors.Is(err, ErrValidation) {
		t.Errorf("zero rate: got %v, want ErrValidation", err)
	}
	if _, err := p.ComputeWithRate(100, 10, 120); !errors.Is(err, ErrValidation) {
		t.Errorf("fee above 100: got %v, want ErrValidation", err)
	}
}

func TestPricingZeroFee(t *testing.T) {
	q, err := NewPricing(10).ComputeWithRate(100, 10, 0)
	if err != nil {
		t.Fatalf("ComputeWithRate() error = %v", err)
	}
	if q.PlatformAmount != 0 || q.TotalPrice != 950 {
		t.Fatalf("got total %v platform %v, want 950 and 0", q.TotalPrice, q.PlatformAmount)
	}
}

func TestAverageRating(t *testing.T) {
	if got := averageRating(nil); got != 0 {
		t.Errorf("empty = %v, want 0", got)
	}
	if got := averageRating([]int{5, 4, 4}); got != 4.3 {
		t.Errorf("5,4,4 = %v, want 4.3", got)
	}
	if got := averageRating([]int{5, 4}); got != 4.5 {
		t.Errorf("5,4 = %v, want 4.5", got)
	}
}
