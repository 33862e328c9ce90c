package migration

import (
	"testing"

	"github.com/tallerhq/backoffice/internal/models"
)

func TestNormalizeOrderLegacyKeys(t *testing.T) {
	raw := map[string]any{
		"cliente":     "Taller Ríos",
		"descripcion": "Cambio de pantalla",
		"fecha":       "2024-03-10",
		"estado":      "en_proceso",
		"productos": []any{
			map[string]any{"descripcion": "Pantalla", "cantidad": 2.0, "precio": "150", "costo": 90.0},
		},
		"abonos": []any{
			map[string]any{"fecha": "2024-03-11", "monto": 100.0, "metodo": "efectivo"},
		},
		"id": "local-37", // local ids are dropped
	}

	o := normalizeOrder(raw, "user-1")

	if o.OwnerID != "user-1" {
		t.Errorf("OwnerID = %q", o.OwnerID)
	}
	if o.ID != "" {
		t.Errorf("ID = %q, want local id discarded", o.ID)
	}
	if o.CustomerName != "Taller Ríos" || o.Description != "Cambio de pantalla" || o.Date != "2024-03-10" {
		t.Errorf("legacy fields not coalesced: %+v", o)
	}
	if o.Status != models.StatusInProgress {
		t.Errorf("Status = %q, want in_progress", o.Status)
	}
	if len(o.Items) != 1 || o.Items[0].Quantity != 2 || o.Items[0].UnitPrice != 150 {
		t.Fatalf("items not normalized: %+v", o.Items)
	}
	if len(o.Payments) != 1 || o.Payments[0].Amount != 100 {
		t.Fatalf("payments not normalized: %+v", o.Payments)
	}

	// Derived fields recomputed from normalized items, not trusted from input.
	if o.Total != 300 {
		t.Errorf("Total = %v, want 300", o.Total)
	}
	if o.Profit != 120 {
		t.Errorf("Profit = %v, want 120", o.Profit)
	}
	if o.PendingBalance != 200 {
		t.Errorf("PendingBalance = %v, want 200", o.PendingBalance)
	}
}

func TestNormalizeOrderCanonicalKeysWinOverAliases(t *testing.T) {
	raw := map[string]any{
		"customer_name": "Ana",
		"cliente":       "ignored",
	}
	if o := normalizeOrder(raw, "u"); o.CustomerName != "Ana" {
		t.Errorf("CustomerName = %q, want canonical key preferred", o.CustomerName)
	}
}

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want models.OrderStatus
	}{
		{"pending", models.StatusPending},
		{"delivered", models.StatusDelivered},
		{"pendiente", models.StatusPending},
		{"finalizado", models.StatusFinalized},
		{"entregado", models.StatusDelivered},
		{"", models.StatusPending},
		{"garbage", models.StatusPending},
	}
	for _, tt := range tests {
		if got := normalizeStatus(tt.raw); got != tt.want {
			t.Errorf("normalizeStatus(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestNormalizeFrequency(t *testing.T) {
	tests := []struct {
		raw  string
		want models.Frequency
	}{
		{"weekly", models.FreqWeekly},
		{"semanal", models.FreqWeekly},
		{"quincenal", models.FreqBiweekly},
		{"trimestral", models.FreqQuarterly},
		{"anual", models.FreqYearly},
		{"", models.FreqMonthly},
	}
	for _, tt := range tests {
		if got := normalizeFrequency(tt.raw); got != tt.want {
			t.Errorf("normalizeFrequency(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestNormalizeExpenses(t *testing.T) {
	casual := normalizeCasualExpense(map[string]any{
		"descripcion": "Tornillos",
		"importe":     "45.50", // numeric string from an old form input
		"categoria":   "repuestos",
	}, "user-1")
	if casual.Amount != 45.50 {
		t.Errorf("Amount = %v, want numeric string parsed", casual.Amount)
	}
	if casual.Category != "repuestos" {
		t.Errorf("Category = %q", casual.Category)
	}

	budget := normalizeBudgetExpense(map[string]any{
		"description": "Renta",
		"monto":       800.0,
		"frecuencia":  "mensual",
	}, "user-1")
	if budget.Frequency != models.FreqMonthly {
		t.Errorf("Frequency = %q", budget.Frequency)
	}
	if budget.Amount != 800 {
		t.Errorf("Amount = %v", budget.Amount)
	}
}

func TestNormalizeLicense(t *testing.T) {
	l := normalizeLicense(map[string]any{
		"cliente":       "Farmacia Sol",
		"nombre":        "Office",
		"codigo":        "ABC-123",
		"vencimiento":   "2025-01-01",
		"instalaciones": 3.0,
		"venta":         120.0,
		"costo":         70.0,
	}, "user-1")

	if l.Client != "Farmacia Sol" || l.Name != "Office" || l.Code != "ABC-123" {
		t.Errorf("legacy fields not coalesced: %+v", l)
	}
	if l.Installations != 3 {
		t.Errorf("Installations = %d", l.Installations)
	}
	if l.Profit() != 50 {
		t.Errorf("Profit = %v, want 50", l.Profit())
	}
}

func TestNormalizePasswordAndServer(t *testing.T) {
	p := normalizePassword(map[string]any{
		"sitio":   "correo",
		"usuario": "ana@example.com",
		"clave":   "hunter2",
	}, "user-1")
	if p.Service != "correo" || p.Username != "ana@example.com" || p.Password != "hunter2" {
		t.Errorf("password entry not normalized: %+v", p)
	}

	s := normalizeServer(map[string]any{
		"servidor":  "srv-01",
		"vpn_ip":    "10.0.0.1",
		"vpn_clave": "vpnpass",
		"usuarios": []any{
			map[string]any{"usuario": "root", "clave": "rootpass"},
		},
	}, "user-1")
	if s.ServerName != "srv-01" || s.VPNName != "10.0.0.1" || s.VPNPassword != "vpnpass" {
		t.Errorf("server not normalized: %+v", s)
	}
	if len(s.Users) != 1 || s.Users[0].Username != "root" || s.Users[0].Password != "rootpass" {
		t.Errorf("server users not normalized: %+v", s.Users)
	}
}

func TestNormalizeEmptyRecord(t *testing.T) {
	o := normalizeOrder(map[string]any{}, "user-1")
	if o.Status != models.StatusPending {
		t.Errorf("Status = %q, want default pending", o.Status)
	}
	if o.Total != 0 || o.PendingBalance != 0 {
		t.Errorf("derived fields = %v/%v, want zero", o.Total, o.PendingBalance)
	}
}
