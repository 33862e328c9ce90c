package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/tallerhq/backoffice/internal/models"
	"github.com/tallerhq/backoffice/internal/storage"
)

// The backend speaks per-table REST: lists filter by the owner foreign key,
// writes are row-addressed by id+owner so one user can never touch another's
// rows even if policies were misconfigured.

func tablePath(table string) string {
	return "/rest/v1/" + table
}

func ownerFilter(ownerID string) url.Values {
	return url.Values{
		"owner_id": {"eq." + ownerID},
		"select":   {"*"},
	}
}

func rowFilter(id, ownerID string) url.Values {
	return url.Values{
		"id":       {"eq." + id},
		"owner_id": {"eq." + ownerID},
	}
}

func listRecords[T any](ctx context.Context, c *Client, table, ownerID string) ([]T, error) {
	query := ownerFilter(ownerID)
	query.Set("order", "created_at.desc")

	data, err := c.do(ctx, http.MethodGet, tablePath(table), query, nil, "")
	if err != nil {
		return nil, err
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode %s list: %w", table, err)
	}
	return records, nil
}

// createRecord inserts one row and refreshes *record from the returned
// representation, picking up anything the backend filled in.
func createRecord[T any](ctx context.Context, c *Client, table string, record *T) error {
	data, err := c.do(ctx, http.MethodPost, tablePath(table), nil, record, "return=representation")
	if err != nil {
		return err
	}

	var rows []T
	if err := json.Unmarshal(data, &rows); err != nil {
		return fmt.Errorf("failed to decode %s insert response: %w", table, err)
	}
	if len(rows) > 0 {
		*record = rows[0]
	}
	return nil
}

func updateRecord[T any](ctx context.Context, c *Client, table, id, ownerID string, record *T) error {
	data, err := c.do(ctx, http.MethodPatch, tablePath(table), rowFilter(id, ownerID), record, "return=representation")
	if err != nil {
		return err
	}

	var rows []T
	if err := json.Unmarshal(data, &rows); err != nil {
		return fmt.Errorf("failed to decode %s update response: %w", table, err)
	}
	if len(rows) == 0 {
		return storage.ErrNotFound
	}
	*record = rows[0]
	return nil
}

func deleteRecord(ctx context.Context, c *Client, table, id, ownerID string) error {
	data, err := c.do(ctx, http.MethodDelete, tablePath(table), rowFilter(id, ownerID), nil, "return=representation")
	if err != nil {
		return err
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		return fmt.Errorf("failed to decode %s delete response: %w", table, err)
	}
	if len(rows) == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// stamp fills in the client-generated id and creation time on new records.
func stamp(id *string, createdAt *int64) {
	if *id == "" {
		*id = uuid.New().String()
	}
	if *createdAt == 0 {
		*createdAt = time.Now().Unix()
	}
}

func (c *Client) ListOrders(ctx context.Context, ownerID string) ([]models.ServiceOrder, error) {
	return listRecords[models.ServiceOrder](ctx, c, storage.CollectionOrders, ownerID)
}

func (c *Client) CreateOrder(ctx context.Context, order *models.ServiceOrder) error {
	stamp(&order.ID, &order.CreatedAt)
	return createRecord(ctx, c, storage.CollectionOrders, order)
}

func (c *Client) UpdateOrder(ctx context.Context, order *models.ServiceOrder) error {
	return updateRecord(ctx, c, storage.CollectionOrders, order.ID, order.OwnerID, order)
}

func (c *Client) DeleteOrder(ctx context.Context, id, ownerID string) error {
	return deleteRecord(ctx, c, storage.CollectionOrders, id, ownerID)
}

func (c *Client) ListCasualExpenses(ctx context.Context, ownerID string) ([]models.CasualExpense, error) {
	return listRecords[models.CasualExpense](ctx, c, storage.CollectionCasualExpenses, ownerID)
}

func (c *Client) CreateCasualExpense(ctx context.Context, e *models.CasualExpense) error {
	stamp(&e.ID, &e.CreatedAt)
	return createRecord(ctx, c, storage.CollectionCasualExpenses, e)
}

func (c *Client) UpdateCasualExpense(ctx context.Context, e *models.CasualExpense) error {
	return updateRecord(ctx, c, storage.CollectionCasualExpenses, e.ID, e.OwnerID, e)
}

func (c *Client) DeleteCasualExpense(ctx context.Context, id, ownerID string) error {
	return deleteRecord(ctx, c, storage.CollectionCasualExpenses, id, ownerID)
}

func (c *Client) ListBudgetExpenses(ctx context.Context, ownerID string) ([]models.BudgetExpense, error) {
	return listRecords[models.BudgetExpense](ctx, c, storage.CollectionBudgetExpenses, ownerID)
}

func (c *Client) CreateBudgetExpense(ctx context.Context, e *models.BudgetExpense) error {
	stamp(&e.ID, &e.CreatedAt)
	return createRecord(ctx, c, storage.CollectionBudgetExpenses, e)
}

func (c *Client) UpdateBudgetExpense(ctx context.Context, e *models.BudgetExpense) error {
	return updateRecord(ctx, c, storage.CollectionBudgetExpenses, e.ID, e.OwnerID, e)
}

func (c *Client) DeleteBudgetExpense(ctx context.Context, id, ownerID string) error {
	return deleteRecord(ctx, c, storage.CollectionBudgetExpenses, id, ownerID)
}

func (c *Client) ListLicenses(ctx context.Context, ownerID string) ([]models.License, error) {
	return listRecords[models.License](ctx, c, storage.CollectionLicenses, ownerID)
}

func (c *Client) CreateLicense(ctx context.Context, l *models.License) error {
	stamp(&l.ID, &l.CreatedAt)
	return createRecord(ctx, c, storage.CollectionLicenses, l)
}

func (c *Client) UpdateLicense(ctx context.Context, l *models.License) error {
	return updateRecord(ctx, c, storage.CollectionLicenses, l.ID, l.OwnerID, l)
}

func (c *Client) DeleteLicense(ctx context.Context, id, ownerID string) error {
	return deleteRecord(ctx, c, storage.CollectionLicenses, id, ownerID)
}

func (c *Client) ListPasswords(ctx context.Context, ownerID string) ([]models.PasswordEntry, error) {
	return listRecords[models.PasswordEntry](ctx, c, storage.CollectionPasswords, ownerID)
}

func (c *Client) CreatePassword(ctx context.Context, p *models.PasswordEntry) error {
	stamp(&p.ID, &p.CreatedAt)
	return createRecord(ctx, c, storage.CollectionPasswords, p)
}

func (c *Client) UpdatePassword(ctx context.Context, p *models.PasswordEntry) error {
	return updateRecord(ctx, c, storage.CollectionPasswords, p.ID, p.OwnerID, p)
}

func (c *Client) DeletePassword(ctx context.Context, id, ownerID string) error {
	return deleteRecord(ctx, c, storage.CollectionPasswords, id, ownerID)
}

func (c *Client) ListServers(ctx context.Context, ownerID string) ([]models.ServerCredential, error) {
	return listRecords[models.ServerCredential](ctx, c, storage.CollectionServers, ownerID)
}

func (c *Client) CreateServer(ctx context.Context, s *models.ServerCredential) error {
	stamp(&s.ID, &s.CreatedAt)
	return createRecord(ctx, c, storage.CollectionServers, s)
}

func (c *Client) UpdateServer(ctx context.Context, s *models.ServerCredential) error {
	return updateRecord(ctx, c, storage.CollectionServers, s.ID, s.OwnerID, s)
}

func (c *Client) DeleteServer(ctx context.Context, id, ownerID string) error {
	return deleteRecord(ctx, c, storage.CollectionServers, id, ownerID)
}
