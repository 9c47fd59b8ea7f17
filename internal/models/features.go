package models

// FeatureVector holds the aggregate signals the scorer consumes.
// It lives for a single assessment and is never shared.
type FeatureVector struct {
	Cashflow            float64 `json:"cashflow"`
	Volatility          float64 `json:"volatility"`
	PaymentRate         float64 `json:"payment_rate"` // Paid bills / all bills, 0..1
	BillCount           int     `json:"bill_count"`
	WalletActivityCount int     `json:"wallet_activity_count"`
	AvgWalletAmount     float64 `json:"avg_wallet_amount"`
}

// BusinessData is optional applicant information used only by the simulation scorer
type BusinessData struct {
	YearsInBusiness float64 `json:"years_in_business,omitempty"`
	MonthlyRevenue  float64 `json:"monthly_revenue,omitempty"`
}
