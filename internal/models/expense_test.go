package models

import (
	"testing"
	"time"
)

func TestNextDue(t *testing.T) {
	after := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		date      string
		frequency Frequency
		want      string
	}{
		{"monthly rolls into next month", "2024-03-01", FreqMonthly, "2024-04-01"},
		{"weekly lands after cutoff", "2024-03-01", FreqWeekly, "2024-03-22"},
		{"biweekly", "2024-03-01", FreqBiweekly, "2024-03-29"},
		{"quarterly", "2024-01-10", FreqQuarterly, "2024-04-10"},
		{"yearly", "2023-06-30", FreqYearly, "2024-06-30"},
		{"start date in the future is kept", "2024-05-01", FreqMonthly, "2024-05-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &BudgetExpense{Date: tt.date, Frequency: tt.frequency}
			got := e.NextDue(after).Format("2006-01-02")
			if got != tt.want {
				t.Errorf("NextDue = %s, want %s", got, tt.want)
			}
		})
	}

	t.Run("invalid date returns zero time", func(t *testing.T) {
		e := &BudgetExpense{Date: "not-a-date", Frequency: FreqMonthly}
		if !e.NextDue(after).IsZero() {
			t.Error("expected zero time for malformed date")
		}
	})

	t.Run("due date exactly at cutoff advances", func(t *testing.T) {
		e := &BudgetExpense{Date: "2024-03-15", Frequency: FreqWeekly}
		got := e.NextDue(after).Format("2006-01-02")
		if got != "2024-03-22" {
			t.Errorf("NextDue = %s, want 2024-03-22", got)
		}
	})
}

func TestLicenseProfit(t *testing.T) {
	l := &License{SaleValue: 150, CostValue: 90}
	if got := l.Profit(); got != 60 {
		t.Errorf("Profit = %v, want 60", got)
	}

	loss := &License{SaleValue: 50, CostValue: 90}
	if got := loss.Profit(); got != -40 {
		t.Errorf("Profit = %v, want -40", got)
	}
}
