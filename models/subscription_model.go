package models

type PlanID string

const (
	PlanBasic        PlanID = "basic"
	PlanProfessional PlanID = "professional"
	PlanPremium      PlanID = "premium"
)

type SubscriptionPlan struct {
	ID          PlanID   `json:"id"`
	Name        string   `json:"name"`
	MonthlyFee  float64  `json:"monthly_fee"`
	Description string   `json:"description"`
	Benefits    []string `json:"benefits"`
	Featured    bool     `json:"featured"`
	FeeRate     float64  `json:"fee_rate"`
	Rank        int      `json:"-"`
}

var SubscriptionPlans = []SubscriptionPlan{
	{
		ID:          PlanBasic,
		Name:        "Basic",
		MonthlyFee:  49.90,
		Description: "Ideal to get started",
		Benefits:    []string{"Public profile", "Up to 5 reviews per month", "Listed in search", "Receive student requests"},
		FeeRate:     15,
		Rank:        1,
	},
	{
		ID:          PlanProfessional,
		Name:        "Professional",
		MonthlyFee:  99.90,
		Description: "More visibility",
		Benefits:    []string{"Everything in Basic", "Unlimited reviews", "Highlighted in search", "Professional badge", "Performance reports"},
		Featured:    true,
		FeeRate:     10,
		Rank:        2,
	},
	{
		ID:          PlanPremium,
		Name:        "Premium",
		MonthlyFee:  199.90,
		Description: "Maximum exposure",
		Benefits:    []string{"Everything in Professional", "Top of the ranking", "Gold premium badge", "Priority support", "No per-lesson fee"},
		FeeRate:     0,
		Rank:        3,
	},
}

func FindPlan(id PlanID) (SubscriptionPlan, bool) {
	for _, p := range SubscriptionPlans {
		if p.ID == id {
			return p, true
		}
	}
	return SubscriptionPlan{}, false
}
