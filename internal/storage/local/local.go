// Package local provides the on-device store used when no hosted backend is
// configured, and the source data for the one-time migration.
//
// The layout deliberately mirrors the original on-device storage: a flat
// key/value table where each collection is one key holding a JSON array,
// plus a per-user migration marker key and the synthesized demo identity.
// SQLite (pure Go driver) replaces the browser's storage area.
package local

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/tallerhq/backoffice/internal/models"
	"github.com/tallerhq/backoffice/internal/storage"
)

// Ensure Store implements the typed CRUD interface for local-only mode.
var _ storage.Store = (*Store)(nil)

const (
	markerPrefix = "migration_shown:"
	demoUserKey  = "demo_user"
)

// Store is the on-device key/value store. Collections are stored whole, as
// JSON arrays, and rewritten on every mutation; at single-tenant volumes
// that is cheap and keeps the semantics of the original storage.
type Store struct {
	db *sql.DB

	// mu serializes read-modify-write cycles on collection values.
	mu sync.Mutex
}

// New opens (or creates) the local store at the given path.
func New(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize local store: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	return nil
}

func (s *Store) delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete key %q: %w", key, err)
	}
	return nil
}

// ReadCollection returns the raw records stored under the collection key.
// A missing key or an unparsable value yields an empty list, never an error:
// malformed stored JSON means "no data". The returned error only reflects a
// storage-level failure (the one case the migration treats as blocking).
func (s *Store) ReadCollection(ctx context.Context, name string) ([]map[string]any, error) {
	value, ok, err := s.get(ctx, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var items []map[string]any
	if err := json.Unmarshal([]byte(value), &items); err != nil {
		return nil, nil
	}
	return items, nil
}

// WriteCollection replaces the collection's stored JSON array.
func (s *Store) WriteCollection(ctx context.Context, name string, items []map[string]any) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode collection %q: %w", name, err)
	}
	return s.set(ctx, name, string(data))
}

// ClearCollection removes the collection key entirely.
func (s *Store) ClearCollection(ctx context.Context, name string) error {
	return s.delete(ctx, name)
}

// MigrationShown reports whether the migration prompt has already been
// resolved (completed or skipped) for the given user identity.
func (s *Store) MigrationShown(ctx context.Context, userID string) (bool, error) {
	_, ok, err := s.get(ctx, markerPrefix+userID)
	return ok, err
}

// SetMigrationShown records that the migration flow is settled for the user
// and must never re-trigger.
func (s *Store) SetMigrationShown(ctx context.Context, userID string) error {
	return s.set(ctx, markerPrefix+userID, "true")
}

// DemoUser returns the synthesized local-mode identity, or nil when none has
// been created yet.
func (s *Store) DemoUser(ctx context.Context) (*models.User, error) {
	value, ok, err := s.get(ctx, demoUserKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var u struct {
		models.User
		PasswordHash string `json:"password_hash"`
	}
	if err := json.Unmarshal([]byte(value), &u); err != nil {
		return nil, fmt.Errorf("failed to decode demo user: %w", err)
	}
	user := u.User
	user.PasswordHash = u.PasswordHash
	return &user, nil
}

// SaveDemoUser stores the synthesized local-mode identity.
func (s *Store) SaveDemoUser(ctx context.Context, user *models.User) error {
	data, err := json.Marshal(struct {
		models.User
		PasswordHash string `json:"password_hash"`
	}{User: *user, PasswordHash: user.PasswordHash})
	if err != nil {
		return fmt.Errorf("failed to encode demo user: %w", err)
	}
	return s.set(ctx, demoUserKey, string(data))
}

// --- typed CRUD over the JSON-array collections -----------------------------
//
// Local-only mode serves the same Store interface the hosted client does, so
// the rest of the service never branches on mode. Each collection is decoded
// whole, mutated in memory and written back under the store mutex.

// ownedBy reports whether a record belongs to the given identity. Records
// written before identities existed carry no owner and belong to everyone.
func ownedBy(ownerID, recordOwner string) bool {
	return recordOwner == "" || recordOwner == ownerID
}

func readTyped[T any](ctx context.Context, s *Store, name string) ([]T, error) {
	value, ok, err := s.get(ctx, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var items []T
	if err := json.Unmarshal([]byte(value), &items); err != nil {
		return nil, nil
	}
	return items, nil
}

func writeTyped[T any](ctx context.Context, s *Store, name string, items []T) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode collection %q: %w", name, err)
	}
	return s.set(ctx, name, string(data))
}

func listOwned[T any](ctx context.Context, s *Store, name, ownerID string, owner func(T) string) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := readTyped[T](ctx, s, name)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if ownedBy(ownerID, owner(item)) {
			out = append(out, item)
		}
	}
	return out, nil
}

func appendRecord[T any](ctx context.Context, s *Store, name string, record T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := readTyped[T](ctx, s, name)
	if err != nil {
		return err
	}
	return writeTyped(ctx, s, name, append(items, record))
}

func replaceRecord[T any](ctx context.Context, s *Store, name, id, ownerID string, record T, meta func(T) (string, string)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := readTyped[T](ctx, s, name)
	if err != nil {
		return err
	}
	for i, item := range items {
		itemID, itemOwner := meta(item)
		if itemID == id && ownedBy(ownerID, itemOwner) {
			items[i] = record
			return writeTyped(ctx, s, name, items)
		}
	}
	return storage.ErrNotFound
}

func removeRecord[T any](ctx context.Context, s *Store, name, id, ownerID string, meta func(T) (string, string)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := readTyped[T](ctx, s, name)
	if err != nil {
		return err
	}
	for i, item := range items {
		itemID, itemOwner := meta(item)
		if itemID == id && ownedBy(ownerID, itemOwner) {
			items = append(items[:i], items[i+1:]...)
			return writeTyped(ctx, s, name, items)
		}
	}
	return storage.ErrNotFound
}

// stamp fills in the generated id and creation time on new records.
func stamp(id *string, createdAt *int64) {
	if *id == "" {
		*id = uuid.New().String()
	}
	if *createdAt == 0 {
		*createdAt = time.Now().Unix()
	}
}

func (s *Store) ListOrders(ctx context.Context, ownerID string) ([]models.ServiceOrder, error) {
	return listOwned(ctx, s, storage.CollectionOrders, ownerID,
		func(o models.ServiceOrder) string { return o.OwnerID })
}

func (s *Store) CreateOrder(ctx context.Context, order *models.ServiceOrder) error {
	stamp(&order.ID, &order.CreatedAt)
	return appendRecord(ctx, s, storage.CollectionOrders, *order)
}

func (s *Store) UpdateOrder(ctx context.Context, order *models.ServiceOrder) error {
	return replaceRecord(ctx, s, storage.CollectionOrders, order.ID, order.OwnerID, *order,
		func(o models.ServiceOrder) (string, string) { return o.ID, o.OwnerID })
}

func (s *Store) DeleteOrder(ctx context.Context, id, ownerID string) error {
	return removeRecord[models.ServiceOrder](ctx, s, storage.CollectionOrders, id, ownerID,
		func(o models.ServiceOrder) (string, string) { return o.ID, o.OwnerID })
}

func (s *Store) ListCasualExpenses(ctx context.Context, ownerID string) ([]models.CasualExpense, error) {
	return listOwned(ctx, s, storage.CollectionCasualExpenses, ownerID,
		func(e models.CasualExpense) string { return e.OwnerID })
}

func (s *Store) CreateCasualExpense(ctx context.Context, e *models.CasualExpense) error {
	stamp(&e.ID, &e.CreatedAt)
	return appendRecord(ctx, s, storage.CollectionCasualExpenses, *e)
}

func (s *Store) UpdateCasualExpense(ctx context.Context, e *models.CasualExpense) error {
	return replaceRecord(ctx, s, storage.CollectionCasualExpenses, e.ID, e.OwnerID, *e,
		func(e models.CasualExpense) (string, string) { return e.ID, e.OwnerID })
}

func (s *Store) DeleteCasualExpense(ctx context.Context, id, ownerID string) error {
	return removeRecord[models.CasualExpense](ctx, s, storage.CollectionCasualExpenses, id, ownerID,
		func(e models.CasualExpense) (string, string) { return e.ID, e.OwnerID })
}

func (s *Store) ListBudgetExpenses(ctx context.Context, ownerID string) ([]models.BudgetExpense, error) {
	return listOwned(ctx, s, storage.CollectionBudgetExpenses, ownerID,
		func(e models.BudgetExpense) string { return e.OwnerID })
}

func (s *Store) CreateBudgetExpense(ctx context.Context, e *models.BudgetExpense) error {
	stamp(&e.ID, &e.CreatedAt)
	return appendRecord(ctx, s, storage.CollectionBudgetExpenses, *e)
}

func (s *Store) UpdateBudgetExpense(ctx context.Context, e *models.BudgetExpense) error {
	return replaceRecord(ctx, s, storage.CollectionBudgetExpenses, e.ID, e.OwnerID, *e,
		func(e models.BudgetExpense) (string, string) { return e.ID, e.OwnerID })
}

func (s *Store) DeleteBudgetExpense(ctx context.Context, id, ownerID string) error {
	return removeRecord[models.BudgetExpense](ctx, s, storage.CollectionBudgetExpenses, id, ownerID,
		func(e models.BudgetExpense) (string, string) { return e.ID, e.OwnerID })
}

func (s *Store) ListLicenses(ctx context.Context, ownerID string) ([]models.License, error) {
	return listOwned(ctx, s, storage.CollectionLicenses, ownerID,
		func(l models.License) string { return l.OwnerID })
}

func (s *Store) CreateLicense(ctx context.Context, l *models.License) error {
	stamp(&l.ID, &l.CreatedAt)
	return appendRecord(ctx, s, storage.CollectionLicenses, *l)
}

func (s *Store) UpdateLicense(ctx context.Context, l *models.License) error {
	return replaceRecord(ctx, s, storage.CollectionLicenses, l.ID, l.OwnerID, *l,
		func(l models.License) (string, string) { return l.ID, l.OwnerID })
}

func (s *Store) DeleteLicense(ctx context.Context, id, ownerID string) error {
	return removeRecord[models.License](ctx, s, storage.CollectionLicenses, id, ownerID,
		func(l models.License) (string, string) { return l.ID, l.OwnerID })
}

func (s *Store) ListPasswords(ctx context.Context, ownerID string) ([]models.PasswordEntry, error) {
	return listOwned(ctx, s, storage.CollectionPasswords, ownerID,
		func(p models.PasswordEntry) string { return p.OwnerID })
}

func (s *Store) CreatePassword(ctx context.Context, p *models.PasswordEntry) error {
	stamp(&p.ID, &p.CreatedAt)
	return appendRecord(ctx, s, storage.CollectionPasswords, *p)
}

func (s *Store) UpdatePassword(ctx context.Context, p *models.PasswordEntry) error {
	return replaceRecord(ctx, s, storage.CollectionPasswords, p.ID, p.OwnerID, *p,
		func(p models.PasswordEntry) (string, string) { return p.ID, p.OwnerID })
}

func (s *Store) DeletePassword(ctx context.Context, id, ownerID string) error {
	return removeRecord[models.PasswordEntry](ctx, s, storage.CollectionPasswords, id, ownerID,
		func(p models.PasswordEntry) (string, string) { return p.ID, p.OwnerID })
}

func (s *Store) ListServers(ctx context.Context, ownerID string) ([]models.ServerCredential, error) {
	return listOwned(ctx, s, storage.CollectionServers, ownerID,
		func(c models.ServerCredential) string { return c.OwnerID })
}

func (s *Store) CreateServer(ctx context.Context, c *models.ServerCredential) error {
	stamp(&c.ID, &c.CreatedAt)
	return appendRecord(ctx, s, storage.CollectionServers, *c)
}

func (s *Store) UpdateServer(ctx context.Context, c *models.ServerCredential) error {
	return replaceRecord(ctx, s, storage.CollectionServers, c.ID, c.OwnerID, *c,
		func(c models.ServerCredential) (string, string) { return c.ID, c.OwnerID })
}

func (s *Store) DeleteServer(ctx context.Context, id, ownerID string) error {
	return removeRecord[models.ServerCredential](ctx, s, storage.CollectionServers, id, ownerID,
		func(c models.ServerCredential) (string, string) { return c.ID, c.OwnerID })
}
