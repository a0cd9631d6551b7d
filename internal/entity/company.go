package entity

import "time"

// Pricing defaults applied when company settings leave a value unset.
const (
	DefaultHourlyRate         = 85.0
	DefaultOverheadPercentage = 15.0
	DefaultProfitPercentage   = 10.0
)

// CompanySettings holds a company's pricing rules. Nil fields fall back to
// the package defaults.
type CompanySettings struct {
	CompanyID          string    `json:"companyId"`
	Name               string    `json:"name,omitempty"`
	HourlyRate         *float64  `json:"hourlyRate,omitempty"`
	OverheadPercentage *float64  `json:"overheadPercentage,omitempty"`
	ProfitPercentage   *float64  `json:"profitPercentage,omitempty"`
	UpdatedAt          time.Time `json:"updatedAt"`
	UpdatedBy          string    `json:"updatedBy,omitempty"`
}

// PricingRules are resolved company pricing values.
type PricingRules struct {
	HourlyRate         float64 `json:"hourlyRate"`
	OverheadPercentage float64 `json:"overheadPercentage"`
	ProfitPercentage   float64 `json:"profitPercentage"`
}

// Resolved applies defaults to unset values. A nil receiver yields the defaults.
func (c *CompanySettings) Resolved() PricingRules {
	r := PricingRules{
		HourlyRate:         DefaultHourlyRate,
		OverheadPercentage: DefaultOverheadPercentage,
		ProfitPercentage:   DefaultProfitPercentage,
	}
	if c == nil {
		return r
	}
	if c.HourlyRate != nil {
		r.HourlyRate = *c.HourlyRate
	}
	if c.OverheadPercentage != nil {
		r.OverheadPercentage = *c.OverheadPercentage
	}
	if c.ProfitPercentage != nil {
		r.ProfitPercentage = *c.ProfitPercentage
	}
	return r
}
