package gateway

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tallerhq/backoffice/internal/cache"
	"github.com/tallerhq/backoffice/internal/metrics"
	"github.com/tallerhq/backoffice/internal/models"
	"github.com/tallerhq/backoffice/internal/storage"
)

// fakeStore records calls for the methods the tests exercise. The embedded
// interface satisfies the rest of storage.Store; calling an unimplemented
// method panics loudly.
type fakeStore struct {
	storage.Store

	orders     []models.ServiceOrder
	listCalls  int
	failCreate error

	passwords []models.PasswordEntry
	servers   []models.ServerCredential
}

func (f *fakeStore) ListOrders(_ context.Context, ownerID string) ([]models.ServiceOrder, error) {
	f.listCalls++
	return f.orders, nil
}

func (f *fakeStore) CreateOrder(_ context.Context, order *models.ServiceOrder) error {
	if f.failCreate != nil {
		return f.failCreate
	}
	if order.ID == "" {
		order.ID = "generated-id"
	}
	f.orders = append(f.orders, *order)
	return nil
}

func (f *fakeStore) CreatePassword(_ context.Context, p *models.PasswordEntry) error {
	if p.ID == "" {
		p.ID = "generated-id"
	}
	f.passwords = append(f.passwords, *p)
	return nil
}

func (f *fakeStore) ListPasswords(_ context.Context, _ string) ([]models.PasswordEntry, error) {
	return f.passwords, nil
}

func (f *fakeStore) CreateServer(_ context.Context, s *models.ServerCredential) error {
	f.servers = append(f.servers, *s)
	return nil
}

// fakeCipher marks material so tests can tell plaintext from encrypted.
type fakeCipher struct {
	calls int
}

func (c *fakeCipher) EncryptSecret(_ context.Context, plaintext string) (string, error) {
	c.calls++
	return "enc(" + plaintext + ")", nil
}

func (c *fakeCipher) VerifySecret(_ context.Context, plaintext, encrypted string) (bool, error) {
	return "enc("+plaintext+")" == encrypted, nil
}

func newTestGateway(store storage.Store, cipher storage.SecretCipher) *Gateway {
	return New(store, cipher, cache.New(time.Minute),
		metrics.New(prometheus.NewRegistry()), slog.New(slog.DiscardHandler))
}

func TestListCachesResults(t *testing.T) {
	store := &fakeStore{orders: []models.ServiceOrder{{ID: "o1", OwnerID: "user-1"}}}
	g := newTestGateway(store, PlainCipher{})
	ctx := context.Background()

	first, err := g.ListOrders(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListOrders failed: %v", err)
	}
	second, err := g.ListOrders(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListOrders failed: %v", err)
	}

	if store.listCalls != 1 {
		t.Errorf("store list calls = %d, want 1 (second list served from cache)", store.listCalls)
	}
	if len(first) != 1 || len(second) != 1 || first[0].ID != second[0].ID {
		t.Errorf("cached list differs: %+v vs %+v", first, second)
	}
}

func TestCreateInvalidatesCache(t *testing.T) {
	store := &fakeStore{}
	g := newTestGateway(store, PlainCipher{})
	ctx := context.Background()

	if _, err := g.ListOrders(ctx, "user-1"); err != nil {
		t.Fatalf("ListOrders failed: %v", err)
	}

	order := &models.ServiceOrder{OwnerID: "user-1", CustomerName: "Ana"}
	if err := g.CreateOrder(ctx, order); err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	if order.ID == "" {
		t.Error("expected generated id on created order")
	}

	if _, err := g.ListOrders(ctx, "user-1"); err != nil {
		t.Fatalf("ListOrders failed: %v", err)
	}
	if store.listCalls != 2 {
		t.Errorf("store list calls = %d, want 2 (write must force a re-fetch)", store.listCalls)
	}
}

func TestFailedWriteLeavesCacheIntact(t *testing.T) {
	store := &fakeStore{orders: []models.ServiceOrder{{ID: "o1", OwnerID: "user-1"}}}
	g := newTestGateway(store, PlainCipher{})
	ctx := context.Background()

	if _, err := g.ListOrders(ctx, "user-1"); err != nil {
		t.Fatalf("ListOrders failed: %v", err)
	}

	store.failCreate = errors.New("backend down")
	err := g.CreateOrder(ctx, &models.ServiceOrder{OwnerID: "user-1"})
	if err == nil || !strings.Contains(err.Error(), "backend down") {
		t.Fatalf("error = %v, want backend error passed through unchanged", err)
	}

	if _, err := g.ListOrders(ctx, "user-1"); err != nil {
		t.Fatalf("ListOrders failed: %v", err)
	}
	if store.listCalls != 1 {
		t.Errorf("store list calls = %d, want 1 (failed write must not invalidate)", store.listCalls)
	}
}

func TestCreateOrderSanitizesAndRecalculates(t *testing.T) {
	store := &fakeStore{}
	g := newTestGateway(store, PlainCipher{})

	order := &models.ServiceOrder{
		OwnerID:      "user-1",
		CustomerName: `<script>alert(1)</script>`,
		Status:       models.OrderStatus("bogus"),
		Items: []models.LineItem{
			{Description: "Screen", Quantity: 2, UnitPrice: 50, PartCost: 20},
		},
		Total: 999, // stale derived value
	}

	if err := g.CreateOrder(context.Background(), order); err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	stored := store.orders[0]
	if strings.ContainsAny(stored.CustomerName, "<>") {
		t.Errorf("CustomerName not escaped: %q", stored.CustomerName)
	}
	if stored.Status != models.StatusPending {
		t.Errorf("Status = %q, want fallback to pending", stored.Status)
	}
	if stored.Total != 100 || stored.Profit != 60 {
		t.Errorf("derived totals not recalculated: total=%v profit=%v", stored.Total, stored.Profit)
	}
}

func TestCreatePasswordEncryptsPlaintext(t *testing.T) {
	store := &fakeStore{}
	cipher := &fakeCipher{}
	g := newTestGateway(store, cipher)

	p := &models.PasswordEntry{OwnerID: "user-1", Service: "hosting", Password: "hunter2"}
	if err := g.CreatePassword(context.Background(), p); err != nil {
		t.Fatalf("CreatePassword failed: %v", err)
	}

	if cipher.calls != 1 {
		t.Errorf("cipher calls = %d, want 1", cipher.calls)
	}
	if store.passwords[0].Password != "enc(hunter2)" {
		t.Errorf("stored password = %q, want encrypted material", store.passwords[0].Password)
	}
}

func TestVerifyPassword(t *testing.T) {
	store := &fakeStore{}
	cipher := &fakeCipher{}
	g := newTestGateway(store, cipher)
	ctx := context.Background()

	p := &models.PasswordEntry{OwnerID: "user-1", Service: "hosting", Password: "hunter2"}
	if err := g.CreatePassword(ctx, p); err != nil {
		t.Fatalf("CreatePassword failed: %v", err)
	}

	match, err := g.VerifyPassword(ctx, p.ID, "user-1", "hunter2")
	if err != nil {
		t.Fatalf("VerifyPassword failed: %v", err)
	}
	if !match {
		t.Error("expected match for correct password")
	}

	match, err = g.VerifyPassword(ctx, p.ID, "user-1", "wrong")
	if err != nil {
		t.Fatalf("VerifyPassword failed: %v", err)
	}
	if match {
		t.Error("expected mismatch for wrong password")
	}

	if _, err := g.VerifyPassword(ctx, "no-such-id", "user-1", "x"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestCreateServerEncryptsAllSecrets(t *testing.T) {
	store := &fakeStore{}
	cipher := &fakeCipher{}
	g := newTestGateway(store, cipher)

	s := &models.ServerCredential{
		OwnerID:     "user-1",
		ServerName:  "srv-01",
		VPNPassword: "vpnpass",
		Users: []models.ServerUser{
			{Username: "root", Password: "rootpass"},
			{Username: "backup", Password: ""},
		},
	}
	if err := g.CreateServer(context.Background(), s); err != nil {
		t.Fatalf("CreateServer failed: %v", err)
	}

	stored := store.servers[0]
	if stored.VPNPassword != "enc(vpnpass)" {
		t.Errorf("VPNPassword = %q", stored.VPNPassword)
	}
	if stored.Users[0].Password != "enc(rootpass)" {
		t.Errorf("user password = %q", stored.Users[0].Password)
	}
	if stored.Users[1].Password != "" {
		t.Errorf("empty password should stay empty, got %q", stored.Users[1].Password)
	}
	if cipher.calls != 2 {
		t.Errorf("cipher calls = %d, want 2 (empty values skip the boundary)", cipher.calls)
	}
}

func TestTeardownClearsCache(t *testing.T) {
	store := &fakeStore{}
	g := newTestGateway(store, PlainCipher{})
	ctx := context.Background()

	if _, err := g.ListOrders(ctx, "user-1"); err != nil {
		t.Fatalf("ListOrders failed: %v", err)
	}
	g.Teardown()
	if _, err := g.ListOrders(ctx, "user-1"); err != nil {
		t.Fatalf("ListOrders failed: %v", err)
	}

	if store.listCalls != 2 {
		t.Errorf("store list calls = %d, want 2 (teardown must clear the cache)", store.listCalls)
	}
}
