package migration

import (
	"strconv"

	"github.com/tallerhq/backoffice/internal/models"
)

// Local-mode data accumulated under several generations of field names, some
// Spanish, some English. Normalization coalesces every known alias into the
// one canonical field per record kind and drops everything unrecognized.
// Local record ids are discarded: the backend copy gets a fresh identifier.

// str returns the first alias present as a non-empty string.
func str(m map[string]any, aliases ...string) string {
	for _, key := range aliases {
		if v, ok := m[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// num returns the first alias present as a number. Numeric strings are
// accepted: old local data stored form inputs verbatim.
func num(m map[string]any, aliases ...string) float64 {
	for _, key := range aliases {
		v, ok := m[key]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		case string:
			if f, err := strconv.ParseFloat(n, 64); err == nil {
				return f
			}
		}
	}
	return 0
}

// items returns the first alias present as a list of objects.
func items(m map[string]any, aliases ...string) []map[string]any {
	for _, key := range aliases {
		v, ok := m[key]
		if !ok {
			continue
		}
		list, ok := v.([]any)
		if !ok {
			continue
		}
		out := make([]map[string]any, 0, len(list))
		for _, entry := range list {
			if obj, ok := entry.(map[string]any); ok {
				out = append(out, obj)
			}
		}
		return out
	}
	return nil
}

// legacyStatuses maps Spanish-era status values to the canonical set.
var legacyStatuses = map[string]models.OrderStatus{
	"pendiente":  models.StatusPending,
	"en_proceso": models.StatusInProgress,
	"finalizado": models.StatusFinalized,
	"entregado":  models.StatusDelivered,
}

func normalizeStatus(raw string) models.OrderStatus {
	if s := models.OrderStatus(raw); s.Valid() {
		return s
	}
	if s, ok := legacyStatuses[raw]; ok {
		return s
	}
	return models.StatusPending
}

// legacyFrequencies maps Spanish-era recurrence values to the canonical set.
var legacyFrequencies = map[string]models.Frequency{
	"semanal":    models.FreqWeekly,
	"quincenal":  models.FreqBiweekly,
	"mensual":    models.FreqMonthly,
	"trimestral": models.FreqQuarterly,
	"anual":      models.FreqYearly,
}

func normalizeFrequency(raw string) models.Frequency {
	if f := models.Frequency(raw); f.Valid() {
		return f
	}
	if f, ok := legacyFrequencies[raw]; ok {
		return f
	}
	return models.FreqMonthly
}

func normalizeOrder(raw map[string]any, ownerID string) *models.ServiceOrder {
	order := &models.ServiceOrder{
		OwnerID:      ownerID,
		CustomerName: str(raw, "customer_name", "customerName", "cliente"),
		Description:  str(raw, "description", "descripcion", "detail"),
		Date:         str(raw, "date", "fecha"),
		Status:       normalizeStatus(str(raw, "status", "estado")),
	}

	for _, item := range items(raw, "items", "productos") {
		order.Items = append(order.Items, models.LineItem{
			Description: str(item, "description", "descripcion"),
			Quantity:    num(item, "quantity", "cantidad"),
			UnitPrice:   num(item, "unit_price", "unitPrice", "precio"),
			PartCost:    num(item, "part_cost", "partCost", "costo"),
		})
	}
	for _, payment := range items(raw, "payments", "abonos") {
		order.Payments = append(order.Payments, models.Payment{
			Date:        str(payment, "date", "fecha"),
			Amount:      num(payment, "amount", "monto"),
			Method:      str(payment, "method", "metodo"),
			Description: str(payment, "description", "descripcion"),
		})
	}

	order.Recalculate()
	return order
}

func normalizeCasualExpense(raw map[string]any, ownerID string) *models.CasualExpense {
	return &models.CasualExpense{
		OwnerID:     ownerID,
		Description: str(raw, "description", "descripcion"),
		Amount:      num(raw, "amount", "monto", "importe"),
		Date:        str(raw, "date", "fecha"),
		Category:    str(raw, "category", "categoria"),
		Notes:       str(raw, "notes", "detail", "detalle"),
	}
}

func normalizeBudgetExpense(raw map[string]any, ownerID string) *models.BudgetExpense {
	return &models.BudgetExpense{
		OwnerID:     ownerID,
		Description: str(raw, "description", "descripcion"),
		Amount:      num(raw, "amount", "monto", "importe"),
		Date:        str(raw, "date", "fecha"),
		Category:    str(raw, "category", "categoria"),
		Notes:       str(raw, "notes", "detail", "detalle"),
		Frequency:   normalizeFrequency(str(raw, "frequency", "frecuencia")),
	}
}

func normalizeLicense(raw map[string]any, ownerID string) *models.License {
	return &models.License{
		OwnerID:       ownerID,
		Client:        str(raw, "client", "cliente"),
		Name:          str(raw, "name", "license_name", "nombre"),
		Code:          str(raw, "code", "key", "codigo"),
		Provider:      str(raw, "provider", "proveedor"),
		ExpiryDate:    str(raw, "expiry_date", "expiration", "vencimiento"),
		Installations: int(num(raw, "installations", "instalaciones")),
		SaleValue:     num(raw, "sale_value", "venta"),
		CostValue:     num(raw, "cost_value", "costo"),
	}
}

func normalizePassword(raw map[string]any, ownerID string) *models.PasswordEntry {
	return &models.PasswordEntry{
		OwnerID:  ownerID,
		Service:  str(raw, "service", "site", "servicio", "sitio"),
		Username: str(raw, "username", "user", "usuario", "email"),
		Password: str(raw, "password", "clave"),
		Category: str(raw, "category", "categoria"),
		Notes:    str(raw, "notes", "detail", "detalle"),
	}
}

func normalizeServer(raw map[string]any, ownerID string) *models.ServerCredential {
	server := &models.ServerCredential{
		OwnerID:     ownerID,
		Client:      str(raw, "client", "cliente"),
		ServerName:  str(raw, "server_name", "server", "servidor"),
		VPNName:     str(raw, "vpn_name", "vpn", "vpn_ip"),
		VPNPassword: str(raw, "vpn_password", "vpn_clave"),
	}
	for _, user := range items(raw, "users", "usuarios") {
		server.Users = append(server.Users, models.ServerUser{
			Username: str(user, "username", "usuario"),
			Password: str(user, "password", "clave"),
		})
	}
	return server
}
