// Package gateway is the single write path to persistent data: a uniform
// CRUD surface over the six record collections that layers a read cache,
// free-text sanitizing and remote secret encryption over a storage.Store.
//
// Invariants this layer enforces:
//   - every list consults the cache first; a miss fetches and fills it
//   - every mutation invalidates the whole cache for the affected user,
//     unconditionally, favoring correctness over cache reuse
//   - plaintext password material never reaches the store: non-empty
//     password fields are replaced through the encryption boundary
//   - store errors pass through unchanged; a failed write leaves the cache
//     untouched, so stale entries are never poisoned by partial writes
package gateway

import (
	"context"
	"log/slog"

	"github.com/tallerhq/backoffice/internal/cache"
	"github.com/tallerhq/backoffice/internal/metrics"
	"github.com/tallerhq/backoffice/internal/models"
	"github.com/tallerhq/backoffice/internal/sanitize"
	"github.com/tallerhq/backoffice/internal/storage"
)

// PlainCipher is the local-only mode cipher: it stores secrets as-is, the
// way the original local mode did. Hosted mode always uses the backend's
// encryption primitive instead.
type PlainCipher struct{}

func (PlainCipher) EncryptSecret(_ context.Context, plaintext string) (string, error) {
	return plaintext, nil
}

func (PlainCipher) VerifySecret(_ context.Context, plaintext, encrypted string) (bool, error) {
	return plaintext == encrypted, nil
}

// Gateway is the persistence gateway. Construct one per application with New
// and inject it; the cache it owns lives and dies with it.
type Gateway struct {
	store   storage.Store
	cipher  storage.SecretCipher
	cache   *cache.Cache
	metrics *metrics.Metrics
	log     *slog.Logger
}

// New wires a gateway over the given store. cipher encrypts password-bearing
// fields before they reach the store.
func New(store storage.Store, cipher storage.SecretCipher, c *cache.Cache, m *metrics.Metrics, log *slog.Logger) *Gateway {
	return &Gateway{store: store, cipher: cipher, cache: c, metrics: m, log: log}
}

// Teardown clears the read cache. Call on logout so one session's reads
// never leak into the next.
func (g *Gateway) Teardown() {
	g.cache.Clear()
}

// listCached serves a list from the cache when fresh, otherwise through
// fetch, caching the result.
func listCached[T any](ctx context.Context, g *Gateway, collection, ownerID string, fetch func(context.Context, string) ([]T, error)) ([]T, error) {
	key := cache.Key(collection, ownerID)
	if v, ok := g.cache.Get(key); ok {
		if records, ok := v.([]T); ok {
			g.metrics.CacheHits.Inc()
			return records, nil
		}
	}
	g.metrics.CacheMisses.Inc()

	records, err := fetch(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	g.cache.Set(key, records)
	return records, nil
}

// write runs a mutation and, on success, drops every cached read for the
// owner.
func (g *Gateway) write(ownerID string, op func() error) error {
	if err := op(); err != nil {
		return err
	}
	g.cache.InvalidateUser(ownerID)
	return nil
}

// encrypt replaces a non-empty plaintext secret through the encryption
// boundary. Empty values stay empty.
func (g *Gateway) encrypt(ctx context.Context, plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	return g.cipher.EncryptSecret(ctx, plaintext)
}

// --- field sanitizing --------------------------------------------------------

func sanitizeOrder(o *models.ServiceOrder) {
	o.CustomerName = sanitize.Short(o.CustomerName)
	o.Description = sanitize.Long(o.Description)
	if !o.Status.Valid() {
		o.Status = models.StatusPending
	}
	for i := range o.Items {
		o.Items[i].Description = sanitize.Short(o.Items[i].Description)
	}
	for i := range o.Payments {
		o.Payments[i].Method = sanitize.Short(o.Payments[i].Method)
		o.Payments[i].Description = sanitize.Long(o.Payments[i].Description)
	}
	o.Recalculate()
}

func sanitizeCasual(e *models.CasualExpense) {
	e.Description = sanitize.Short(e.Description)
	e.Category = sanitize.Short(e.Category)
	e.Notes = sanitize.Long(e.Notes)
}

func sanitizeBudget(e *models.BudgetExpense) {
	e.Description = sanitize.Short(e.Description)
	e.Category = sanitize.Short(e.Category)
	e.Notes = sanitize.Long(e.Notes)
	if !e.Frequency.Valid() {
		e.Frequency = models.FreqMonthly
	}
}

func sanitizeLicense(l *models.License) {
	l.Client = sanitize.Short(l.Client)
	l.Name = sanitize.Short(l.Name)
	l.Provider = sanitize.Short(l.Provider)
	// License codes are opaque material, not prose; escape but never truncate.
	l.Code = sanitize.Text(l.Code, 0)
}

func sanitizePasswordEntry(p *models.PasswordEntry) {
	p.Service = sanitize.Short(p.Service)
	p.Username = sanitize.Short(p.Username)
	p.Category = sanitize.Short(p.Category)
	p.Notes = sanitize.Long(p.Notes)
}

func sanitizeServer(s *models.ServerCredential) {
	s.Client = sanitize.Short(s.Client)
	s.ServerName = sanitize.Short(s.ServerName)
	s.VPNName = sanitize.Short(s.VPNName)
	for i := range s.Users {
		s.Users[i].Username = sanitize.Short(s.Users[i].Username)
	}
}

// --- service orders ----------------------------------------------------------

func (g *Gateway) ListOrders(ctx context.Context, ownerID string) ([]models.ServiceOrder, error) {
	return listCached(ctx, g, storage.CollectionOrders, ownerID, g.store.ListOrders)
}

func (g *Gateway) CreateOrder(ctx context.Context, order *models.ServiceOrder) error {
	sanitizeOrder(order)
	return g.write(order.OwnerID, func() error { return g.store.CreateOrder(ctx, order) })
}

func (g *Gateway) UpdateOrder(ctx context.Context, order *models.ServiceOrder) error {
	sanitizeOrder(order)
	return g.write(order.OwnerID, func() error { return g.store.UpdateOrder(ctx, order) })
}

func (g *Gateway) DeleteOrder(ctx context.Context, id, ownerID string) error {
	return g.write(ownerID, func() error { return g.store.DeleteOrder(ctx, id, ownerID) })
}

// --- casual expenses ---------------------------------------------------------

func (g *Gateway) ListCasualExpenses(ctx context.Context, ownerID string) ([]models.CasualExpense, error) {
	return listCached(ctx, g, storage.CollectionCasualExpenses, ownerID, g.store.ListCasualExpenses)
}

func (g *Gateway) CreateCasualExpense(ctx context.Context, e *models.CasualExpense) error {
	sanitizeCasual(e)
	return g.write(e.OwnerID, func() error { return g.store.CreateCasualExpense(ctx, e) })
}

func (g *Gateway) UpdateCasualExpense(ctx context.Context, e *models.CasualExpense) error {
	sanitizeCasual(e)
	return g.write(e.OwnerID, func() error { return g.store.UpdateCasualExpense(ctx, e) })
}

func (g *Gateway) DeleteCasualExpense(ctx context.Context, id, ownerID string) error {
	return g.write(ownerID, func() error { return g.store.DeleteCasualExpense(ctx, id, ownerID) })
}

// --- budget expenses ---------------------------------------------------------

func (g *Gateway) ListBudgetExpenses(ctx context.Context, ownerID string) ([]models.BudgetExpense, error) {
	return listCached(ctx, g, storage.CollectionBudgetExpenses, ownerID, g.store.ListBudgetExpenses)
}

func (g *Gateway) CreateBudgetExpense(ctx context.Context, e *models.BudgetExpense) error {
	sanitizeBudget(e)
	return g.write(e.OwnerID, func() error { return g.store.CreateBudgetExpense(ctx, e) })
}

func (g *Gateway) UpdateBudgetExpense(ctx context.Context, e *models.BudgetExpense) error {
	sanitizeBudget(e)
	return g.write(e.OwnerID, func() error { return g.store.UpdateBudgetExpense(ctx, e) })
}

func (g *Gateway) DeleteBudgetExpense(ctx context.Context, id, ownerID string) error {
	return g.write(ownerID, func() error { return g.store.DeleteBudgetExpense(ctx, id, ownerID) })
}

// --- licenses ----------------------------------------------------------------

func (g *Gateway) ListLicenses(ctx context.Context, ownerID string) ([]models.License, error) {
	return listCached(ctx, g, storage.CollectionLicenses, ownerID, g.store.ListLicenses)
}

func (g *Gateway) CreateLicense(ctx context.Context, l *models.License) error {
	sanitizeLicense(l)
	return g.write(l.OwnerID, func() error { return g.store.CreateLicense(ctx, l) })
}

func (g *Gateway) UpdateLicense(ctx context.Context, l *models.License) error {
	sanitizeLicense(l)
	return g.write(l.OwnerID, func() error { return g.store.UpdateLicense(ctx, l) })
}

func (g *Gateway) DeleteLicense(ctx context.Context, id, ownerID string) error {
	return g.write(ownerID, func() error { return g.store.DeleteLicense(ctx, id, ownerID) })
}

// --- password entries --------------------------------------------------------

func (g *Gateway) ListPasswords(ctx context.Context, ownerID string) ([]models.PasswordEntry, error) {
	return listCached(ctx, g, storage.CollectionPasswords, ownerID, g.store.ListPasswords)
}

// CreatePassword encrypts the incoming plaintext password before it leaves
// this layer. The record stored and cached only ever holds encrypted
// material.
func (g *Gateway) CreatePassword(ctx context.Context, p *models.PasswordEntry) error {
	sanitizePasswordEntry(p)
	encrypted, err := g.encrypt(ctx, p.Password)
	if err != nil {
		return err
	}
	p.Password = encrypted
	return g.write(p.OwnerID, func() error { return g.store.CreatePassword(ctx, p) })
}

// UpdatePassword treats a non-empty Password as new plaintext to encrypt;
// an empty value stays empty.
func (g *Gateway) UpdatePassword(ctx context.Context, p *models.PasswordEntry) error {
	sanitizePasswordEntry(p)
	encrypted, err := g.encrypt(ctx, p.Password)
	if err != nil {
		return err
	}
	p.Password = encrypted
	return g.write(p.OwnerID, func() error { return g.store.UpdatePassword(ctx, p) })
}

func (g *Gateway) DeletePassword(ctx context.Context, id, ownerID string) error {
	return g.write(ownerID, func() error { return g.store.DeletePassword(ctx, id, ownerID) })
}

// VerifyPassword reports whether plaintext matches the stored entry, without
// ever returning the stored material. Missing entries report ErrNotFound.
func (g *Gateway) VerifyPassword(ctx context.Context, id, ownerID, plaintext string) (bool, error) {
	entries, err := g.ListPasswords(ctx, ownerID)
	if err != nil {
		return false, err
	}
	for i := range entries {
		if entries[i].ID == id {
			return g.cipher.VerifySecret(ctx, plaintext, entries[i].Password)
		}
	}
	return false, storage.ErrNotFound
}

// --- server credentials ------------------------------------------------------

func (g *Gateway) ListServers(ctx context.Context, ownerID string) ([]models.ServerCredential, error) {
	return listCached(ctx, g, storage.CollectionServers, ownerID, g.store.ListServers)
}

// encryptServer replaces the VPN password and every per-server user password.
func (g *Gateway) encryptServer(ctx context.Context, s *models.ServerCredential) error {
	encrypted, err := g.encrypt(ctx, s.VPNPassword)
	if err != nil {
		return err
	}
	s.VPNPassword = encrypted

	for i := range s.Users {
		encrypted, err := g.encrypt(ctx, s.Users[i].Password)
		if err != nil {
			return err
		}
		s.Users[i].Password = encrypted
	}
	return nil
}

func (g *Gateway) CreateServer(ctx context.Context, s *models.ServerCredential) error {
	sanitizeServer(s)
	if err := g.encryptServer(ctx, s); err != nil {
		return err
	}
	return g.write(s.OwnerID, func() error { return g.store.CreateServer(ctx, s) })
}

func (g *Gateway) UpdateServer(ctx context.Context, s *models.ServerCredential) error {
	sanitizeServer(s)
	if err := g.encryptServer(ctx, s); err != nil {
		return err
	}
	return g.write(s.OwnerID, func() error { return g.store.UpdateServer(ctx, s) })
}

func (g *Gateway) DeleteServer(ctx context.Context, id, ownerID string) error {
	return g.write(ownerID, func() error { return g.store.DeleteServer(ctx, id, ownerID) })
}
