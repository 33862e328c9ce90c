// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/tallerhq/backoffice/internal/models"
)

// Collection names, matching the hosted backend's table names and the local
// store's keys.
const (
	CollectionOrders         = "service_orders"
	CollectionCasualExpenses = "casual_expenses"
	CollectionBudgetExpenses = "budget_expenses"
	CollectionLicenses       = "licenses"
	CollectionPasswords      = "password_entries"
	CollectionServers        = "server_credentials"
)

// Collections lists all collections in the fixed order the migration
// processes them. Do not reorder.
var Collections = []string{
	CollectionOrders,
	CollectionCasualExpenses,
	CollectionBudgetExpenses,
	CollectionLicenses,
	CollectionPasswords,
	CollectionServers,
}

// ErrNotFound is returned when a record id does not exist for the owner.
var ErrNotFound = errors.New("record not found")

// Store defines the per-collection CRUD operations against a backend.
// The hosted REST client implements it; the persistence gateway wraps it
// with caching, sanitizing and secret encryption.
//
// Every operation is scoped to an owner identity: lists filter by owner,
// updates and deletes only touch rows the owner holds.
type Store interface {
	ListOrders(ctx context.Context, ownerID string) ([]models.ServiceOrder, error)
	CreateOrder(ctx context.Context, order *models.ServiceOrder) error
	UpdateOrder(ctx context.Context, order *models.ServiceOrder) error
	DeleteOrder(ctx context.Context, id, ownerID string) error

	ListCasualExpenses(ctx context.Context, ownerID string) ([]models.CasualExpense, error)
	CreateCasualExpense(ctx context.Context, e *models.CasualExpense) error
	UpdateCasualExpense(ctx context.Context, e *models.CasualExpense) error
	DeleteCasualExpense(ctx context.Context, id, ownerID string) error

	ListBudgetExpenses(ctx context.Context, ownerID string) ([]models.BudgetExpense, error)
	CreateBudgetExpense(ctx context.Context, e *models.BudgetExpense) error
	UpdateBudgetExpense(ctx context.Context, e *models.BudgetExpense) error
	DeleteBudgetExpense(ctx context.Context, id, ownerID string) error

	ListLicenses(ctx context.Context, ownerID string) ([]models.License, error)
	CreateLicense(ctx context.Context, l *models.License) error
	UpdateLicense(ctx context.Context, l *models.License) error
	DeleteLicense(ctx context.Context, id, ownerID string) error

	ListPasswords(ctx context.Context, ownerID string) ([]models.PasswordEntry, error)
	CreatePassword(ctx context.Context, p *models.PasswordEntry) error
	UpdatePassword(ctx context.Context, p *models.PasswordEntry) error
	DeletePassword(ctx context.Context, id, ownerID string) error

	ListServers(ctx context.Context, ownerID string) ([]models.ServerCredential, error)
	CreateServer(ctx context.Context, s *models.ServerCredential) error
	UpdateServer(ctx context.Context, s *models.ServerCredential) error
	DeleteServer(ctx context.Context, id, ownerID string) error
}

// SecretCipher is the opaque encryption boundary for password material.
// Both calls are remote; no encryption logic lives in this service.
type SecretCipher interface {
	// EncryptSecret returns the encrypted form of plaintext.
	EncryptSecret(ctx context.Context, plaintext string) (string, error)

	// VerifySecret checks plaintext against previously encrypted material.
	VerifySecret(ctx context.Context, plaintext, encrypted string) (bool, error)
}
