package models

// License is a software license sold to a client.
type License struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`

	// Client is the customer the license was sold to.
	Client string `json:"client"`

	// Name is the license or product name.
	Name string `json:"name"`

	// Code is the license key or activation code.
	Code string `json:"code"`

	// Provider is the vendor the license was bought from.
	Provider string `json:"provider"`

	// ExpiryDate is the expiry date in ISO "2006-01-02" format.
	ExpiryDate string `json:"expiry_date"`

	// Installations is the number of allowed installations.
	Installations int `json:"installations"`

	// SaleValue is what the client paid; CostValue what the license cost us.
	SaleValue float64 `json:"sale_value"`
	CostValue float64 `json:"cost_value"`

	CreatedAt int64 `json:"created_at"`
}

// Profit returns the margin on the license (sale minus cost).
func (l *License) Profit() float64 {
	return l.SaleValue - l.CostValue
}
