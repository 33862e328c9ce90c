package models

import "time"

// Frequency is the recurrence cycle of a budget expense.
type Frequency string

const (
	FreqWeekly    Frequency = "weekly"
	FreqBiweekly  Frequency = "biweekly"
	FreqMonthly   Frequency = "monthly"
	FreqQuarterly Frequency = "quarterly"
	FreqYearly    Frequency = "yearly"
)

// Valid reports whether f is one of the known recurrence frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case FreqWeekly, FreqBiweekly, FreqMonthly, FreqQuarterly, FreqYearly:
		return true
	}
	return false
}

// advance returns t moved forward by one recurrence period.
func (f Frequency) advance(t time.Time) time.Time {
	switch f {
	case FreqWeekly:
		return t.AddDate(0, 0, 7)
	case FreqBiweekly:
		return t.AddDate(0, 0, 14)
	case FreqQuarterly:
		return t.AddDate(0, 3, 0)
	case FreqYearly:
		return t.AddDate(1, 0, 0)
	default: // monthly
		return t.AddDate(0, 1, 0)
	}
}

// CasualExpense is a one-off expense.
type CasualExpense struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`

	// Description is what the money was spent on.
	Description string `json:"description"`

	// Amount is the expense amount.
	Amount float64 `json:"amount"`

	// Date is the expense date in ISO "2006-01-02" format.
	Date string `json:"date"`

	// Category groups expenses for reporting (free text).
	Category string `json:"category"`

	// Notes is an optional free-text note.
	Notes string `json:"notes"`

	CreatedAt int64 `json:"created_at"`
}

// BudgetExpense is a recurring expense with a due-date cycle.
type BudgetExpense struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`

	Description string `json:"description"`
	Amount      float64 `json:"amount"`

	// Date is the first due date in ISO "2006-01-02" format. Subsequent due
	// dates are derived from it via Frequency.
	Date string `json:"date"`

	Category string `json:"category"`
	Notes    string `json:"notes"`

	// Frequency is the recurrence cycle.
	Frequency Frequency `json:"frequency"`

	CreatedAt int64 `json:"created_at"`
}

// NextDue returns the first due date strictly after the given time, derived
// from the expense's start date and frequency. A zero time is returned when
// the start date is missing or not a valid ISO date.
func (e *BudgetExpense) NextDue(after time.Time) time.Time {
	due, err := time.Parse("2006-01-02", e.Date)
	if err != nil {
		return time.Time{}
	}
	for !due.After(after) {
		due = e.Frequency.advance(due)
	}
	return due
}
