// Package reports computes the financial summaries shown on the dashboard.
// Everything here is a pure function over in-memory records; data access and
// caching stay in the gateway.
package reports

import (
	"strings"

	"github.com/tallerhq/backoffice/internal/models"
)

// Summary aggregates income, profit and spending across every record kind.
type Summary struct {
	// OrderIncome is the billed value of all orders; CollectedIncome is the
	// part already paid. PendingBalance is what customers still owe.
	OrderIncome     float64 `json:"order_income"`
	CollectedIncome float64 `json:"collected_income"`
	PendingBalance  float64 `json:"pending_balance"`

	// OrderProfit is billed value minus part costs.
	OrderProfit float64 `json:"order_profit"`

	LicenseSales  float64 `json:"license_sales"`
	LicenseProfit float64 `json:"license_profit"`

	CasualExpenseTotal float64 `json:"casual_expense_total"`
	BudgetExpenseTotal float64 `json:"budget_expense_total"`

	// ExpensesByCategory merges casual and budget spending per category.
	// Uncategorized records land under "other".
	ExpensesByCategory map[string]float64 `json:"expenses_by_category"`

	// Net is order profit plus license profit minus all expenses.
	Net float64 `json:"net"`
}

// Build computes a summary over the given records.
func Build(orders []models.ServiceOrder, casual []models.CasualExpense, budget []models.BudgetExpense, licenses []models.License) *Summary {
	s := &Summary{ExpensesByCategory: make(map[string]float64)}

	for i := range orders {
		o := &orders[i]
		s.OrderIncome += o.Total
		s.OrderProfit += o.Profit
		s.PendingBalance += o.PendingBalance
		for _, p := range o.Payments {
			s.CollectedIncome += p.Amount
		}
	}

	for i := range casual {
		s.CasualExpenseTotal += casual[i].Amount
		s.ExpensesByCategory[category(casual[i].Category)] += casual[i].Amount
	}
	for i := range budget {
		s.BudgetExpenseTotal += budget[i].Amount
		s.ExpensesByCategory[category(budget[i].Category)] += budget[i].Amount
	}

	for i := range licenses {
		s.LicenseSales += licenses[i].SaleValue
		s.LicenseProfit += licenses[i].Profit()
	}

	s.Net = s.OrderProfit + s.LicenseProfit - s.CasualExpenseTotal - s.BudgetExpenseTotal
	return s
}

// BuildForMonth computes a summary restricted to records dated in the given
// month ("2024-03"). Dates are the ISO strings the records carry; a record
// with no date never matches a month filter.
func BuildForMonth(month string, orders []models.ServiceOrder, casual []models.CasualExpense, budget []models.BudgetExpense, licenses []models.License) *Summary {
	var (
		mOrders   []models.ServiceOrder
		mCasual   []models.CasualExpense
		mBudget   []models.BudgetExpense
		mLicenses []models.License
	)
	for i := range orders {
		if inMonth(orders[i].Date, month) {
			mOrders = append(mOrders, orders[i])
		}
	}
	for i := range casual {
		if inMonth(casual[i].Date, month) {
			mCasual = append(mCasual, casual[i])
		}
	}
	for i := range budget {
		if inMonth(budget[i].Date, month) {
			mBudget = append(mBudget, budget[i])
		}
	}
	for i := range licenses {
		if inMonth(licenses[i].ExpiryDate, month) {
			mLicenses = append(mLicenses, licenses[i])
		}
	}
	return Build(mOrders, mCasual, mBudget, mLicenses)
}

func inMonth(date, month string) bool {
	return month != "" && date != "" && strings.HasPrefix(date, month)
}

func category(c string) string {
	if c == "" {
		return "other"
	}
	return c
}
