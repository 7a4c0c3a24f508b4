package services

import (
	"math"
)

// Tier is an hour quantity offered with a discount percentage.
type Tier struct {
	Hours    int     `json:"hours"`
	Discount float64 `json:"discount"`
	Popular  bool    `json:"popular"`
}

var DefaultTiers = []Tier{
	{Hours: 5, Discount: 0},
	{Hours: 10, Discount: 5, Popular: true},
	{Hours: 20, Discount: 10},
	{Hours: 30, Discount: 15},
}

type Quote struct {
	Hours           int     `json:"hours"`
	HourlyRate      float64 `json:"hourly_rate"`
	BasePrice       float64 `json:"base_price"`
	Discount        float64 `json:"discount"`
	TotalPrice      float64 `json:"total_price"`
	PlatformFeeRate float64 `json:"platform_fee_rate"`
	PlatformAmount  float64 `json:"platform_amount"`
}

type Pricing struct {
	Tiers          []Tier
	DefaultFeeRate float64
}

func NewPricing(defaultFeeRate float64) Pricing {
	return Pricing{Tiers: DefaultTiers, DefaultFeeRate: defaultFeeRate}
}

func (p Pricing) Tier(hours int) (Tier, bool) {
	for _, t := range p.Tiers {
		if t.Hours == hours {
			return t, true
		}
	}
	return Tier{}, false
}

// Compute prices a package at the default platform fee.
func (p Pricing) Compute(hourlyRate float64, hours int) (Quote, error) {
	return p.ComputeWithRate(hourlyRate, hours, p.DefaultFeeRate)
}

// ComputeWithRate prices a package with an explicit fee percentage. Each
// money sum is rounded to cents once; the platform amount is derived from
// the rounded total so it always equals total * rate / 100.
func (p Pricing) ComputeWithRate(hourlyRate float64, hours int, feeRate float64) (Quote, error) {
	tier, ok := p.Tier(hours)
	if !ok {
		return Quote{}, ErrInvalidTier
	}
	if hourlyRate <= 0 || math.IsNaN(hourlyRate) || math.IsInf(hourlyRate, 0) {
		return Quote{}, invalid("hourly rate must be positive")
	}
	if feeRate < 0 || feeRate > 100 {
		return Quote{}, invalid("platform fee rate must be between 0 and 100")
	}

	base := hourlyRate * float64(hours)
	total := round2(base * (1 - tier.Discount/100))

	return Quote{
		Hours:           hours,
		HourlyRate:      hourlyRate,
		BasePrice:       round2(base),
		Discount:        tier.Discount,
		TotalPrice:      total,
		PlatformFeeRate: feeRate,
		PlatformAmount:  round2(total * feeRate / 100),
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
