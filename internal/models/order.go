package models

// OrderStatus is the lifecycle state of a service order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusInProgress OrderStatus = "in_progress"
	StatusFinalized  OrderStatus = "finalized"
	StatusDelivered  OrderStatus = "delivered"
)

// Valid reports whether s is one of the known order statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusFinalized, StatusDelivered:
		return true
	}
	return false
}

// LineItem is a single billable line on a service order.
type LineItem struct {
	// Description is the work or part description (e.g. "Screen replacement").
	Description string `json:"description"`

	// Quantity is the number of units. Line totals are Quantity * UnitPrice.
	Quantity float64 `json:"quantity"`

	// UnitPrice is the price charged per unit.
	UnitPrice float64 `json:"unit_price"`

	// PartCost is the per-unit cost of parts, used for profit calculation.
	PartCost float64 `json:"part_cost"`
}

// Payment is a single payment received against a service order.
type Payment struct {
	// Date is the payment date in ISO "2006-01-02" format.
	Date string `json:"date"`

	// Amount is the amount received.
	Amount float64 `json:"amount"`

	// Method is the payment method as free text (e.g. "efectivo", "transferencia").
	Method string `json:"method"`

	// Description is an optional free-text note for the payment.
	Description string `json:"description"`
}

// ServiceOrder represents a customer job: line items to bill, payments
// received, and the totals derived from both.
type ServiceOrder struct {
	// ID is the unique identifier for the order (UUID format).
	ID string `json:"id"`

	// OwnerID is the identity that owns this record.
	OwnerID string `json:"owner_id"`

	// CustomerName is the customer the order belongs to.
	CustomerName string `json:"customer_name"`

	// Description is the free-text description of the job.
	Description string `json:"description"`

	// Date is the order date in ISO "2006-01-02" format.
	Date string `json:"date"`

	// Status is the order lifecycle state.
	Status OrderStatus `json:"status"`

	// Items are the billable lines, in entry order.
	Items []LineItem `json:"items"`

	// Payments are the payments received, in entry order.
	Payments []Payment `json:"payments"`

	// Derived totals. Recalculate keeps these consistent with Items and
	// Payments; stored values are never trusted.
	Total          float64 `json:"total"`
	TotalPartCost  float64 `json:"total_part_cost"`
	Profit         float64 `json:"profit"`
	TotalPaid      float64 `json:"total_paid"`
	PendingBalance float64 `json:"pending_balance"`

	// CreatedAt is the Unix timestamp when the record was created.
	CreatedAt int64 `json:"created_at"`
}

// Recalculate recomputes the derived totals from Items and Payments:
//
//	Total          = sum(quantity * unit price)
//	TotalPartCost  = sum(quantity * part cost)
//	Profit         = Total - TotalPartCost
//	TotalPaid      = sum(payment amounts)
//	PendingBalance = max(0, Total - TotalPaid)
func (o *ServiceOrder) Recalculate() {
	o.Total = 0
	o.TotalPartCost = 0
	for _, item := range o.Items {
		o.Total += item.Quantity * item.UnitPrice
		o.TotalPartCost += item.Quantity * item.PartCost
	}
	o.Profit = o.Total - o.TotalPartCost

	o.TotalPaid = 0
	for _, p := range o.Payments {
		o.TotalPaid += p.Amount
	}

	o.PendingBalance = o.Total - o.TotalPaid
	if o.PendingBalance < 0 {
		o.PendingBalance = 0
	}
}
