package local

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tallerhq/backoffice/internal/models"
	"github.com/tallerhq/backoffice/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "backoffice-local-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func TestCollections(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("missing collection reads as empty", func(t *testing.T) {
		items, err := store.ReadCollection(ctx, storage.CollectionOrders)
		if err != nil {
			t.Fatalf("ReadCollection failed: %v", err)
		}
		if len(items) != 0 {
			t.Errorf("expected empty collection, got %d items", len(items))
		}
	})

	t.Run("write then read round trip", func(t *testing.T) {
		in := []map[string]any{
			{"id": "1", "customer_name": "Ana"},
			{"id": "2", "customer_name": "Luis"},
		}
		if err := store.WriteCollection(ctx, storage.CollectionOrders, in); err != nil {
			t.Fatalf("WriteCollection failed: %v", err)
		}

		out, err := store.ReadCollection(ctx, storage.CollectionOrders)
		if err != nil {
			t.Fatalf("ReadCollection failed: %v", err)
		}
		if len(out) != 2 {
			t.Fatalf("got %d items, want 2", len(out))
		}
		if out[0]["customer_name"] != "Ana" {
			t.Errorf("customer_name = %v, want Ana", out[0]["customer_name"])
		}
	})

	t.Run("malformed JSON reads as empty, not an error", func(t *testing.T) {
		if err := store.set(ctx, storage.CollectionLicenses, "{not json"); err != nil {
			t.Fatalf("set failed: %v", err)
		}

		items, err := store.ReadCollection(ctx, storage.CollectionLicenses)
		if err != nil {
			t.Fatalf("ReadCollection failed: %v", err)
		}
		if items != nil {
			t.Errorf("expected nil for malformed value, got %v", items)
		}
	})

	t.Run("clear removes the key", func(t *testing.T) {
		if err := store.ClearCollection(ctx, storage.CollectionOrders); err != nil {
			t.Fatalf("ClearCollection failed: %v", err)
		}
		items, err := store.ReadCollection(ctx, storage.CollectionOrders)
		if err != nil {
			t.Fatalf("ReadCollection failed: %v", err)
		}
		if len(items) != 0 {
			t.Errorf("expected cleared collection to be empty, got %d items", len(items))
		}
	})
}

func TestMigrationMarker(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	shown, err := store.MigrationShown(ctx, "user-1")
	if err != nil {
		t.Fatalf("MigrationShown failed: %v", err)
	}
	if shown {
		t.Error("marker should be unset initially")
	}

	if err := store.SetMigrationShown(ctx, "user-1"); err != nil {
		t.Fatalf("SetMigrationShown failed: %v", err)
	}

	shown, err = store.MigrationShown(ctx, "user-1")
	if err != nil {
		t.Fatalf("MigrationShown failed: %v", err)
	}
	if !shown {
		t.Error("marker should be set after SetMigrationShown")
	}

	// Marker is per identity.
	shown, err = store.MigrationShown(ctx, "user-2")
	if err != nil {
		t.Fatalf("MigrationShown failed: %v", err)
	}
	if shown {
		t.Error("marker for a different identity should be unset")
	}
}

func TestDemoUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	u, err := store.DemoUser(ctx)
	if err != nil {
		t.Fatalf("DemoUser failed: %v", err)
	}
	if u != nil {
		t.Fatal("expected no demo user initially")
	}

	saved := &models.User{ID: "demo-1", Email: "demo@local", PasswordHash: "hash"}
	if err := store.SaveDemoUser(ctx, saved); err != nil {
		t.Fatalf("SaveDemoUser failed: %v", err)
	}

	u, err = store.DemoUser(ctx)
	if err != nil {
		t.Fatalf("DemoUser failed: %v", err)
	}
	if u == nil || u.ID != "demo-1" || u.Email != "demo@local" {
		t.Fatalf("DemoUser = %+v, want saved identity", u)
	}
	if u.PasswordHash != "hash" {
		t.Error("expected password hash to round trip locally")
	}
}

func TestTypedCRUD(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("create assigns id and filters by owner", func(t *testing.T) {
		order := &models.ServiceOrder{OwnerID: "user-1", CustomerName: "Ana"}
		if err := store.CreateOrder(ctx, order); err != nil {
			t.Fatalf("CreateOrder failed: %v", err)
		}
		if order.ID == "" {
			t.Error("expected generated id")
		}
		if order.CreatedAt == 0 {
			t.Error("expected CreatedAt to be set")
		}

		other := &models.ServiceOrder{OwnerID: "user-2", CustomerName: "Luis"}
		if err := store.CreateOrder(ctx, other); err != nil {
			t.Fatalf("CreateOrder failed: %v", err)
		}

		mine, err := store.ListOrders(ctx, "user-1")
		if err != nil {
			t.Fatalf("ListOrders failed: %v", err)
		}
		if len(mine) != 1 || mine[0].CustomerName != "Ana" {
			t.Fatalf("ListOrders = %+v, want only Ana's order", mine)
		}
	})

	t.Run("ownerless legacy records are visible to everyone", func(t *testing.T) {
		legacy := []map[string]any{{"id": "legacy-1", "description": "Internet", "amount": 30.0}}
		if err := store.WriteCollection(ctx, storage.CollectionCasualExpenses, legacy); err != nil {
			t.Fatalf("WriteCollection failed: %v", err)
		}

		expenses, err := store.ListCasualExpenses(ctx, "user-1")
		if err != nil {
			t.Fatalf("ListCasualExpenses failed: %v", err)
		}
		if len(expenses) != 1 || expenses[0].ID != "legacy-1" {
			t.Fatalf("ListCasualExpenses = %+v, want the legacy record", expenses)
		}
	})

	t.Run("update replaces matching record", func(t *testing.T) {
		l := &models.License{OwnerID: "user-1", Name: "Antivirus", SaleValue: 100}
		if err := store.CreateLicense(ctx, l); err != nil {
			t.Fatalf("CreateLicense failed: %v", err)
		}

		l.SaleValue = 120
		if err := store.UpdateLicense(ctx, l); err != nil {
			t.Fatalf("UpdateLicense failed: %v", err)
		}

		licenses, err := store.ListLicenses(ctx, "user-1")
		if err != nil {
			t.Fatalf("ListLicenses failed: %v", err)
		}
		if len(licenses) != 1 || licenses[0].SaleValue != 120 {
			t.Fatalf("ListLicenses = %+v, want updated sale value", licenses)
		}
	})

	t.Run("update of unknown id returns ErrNotFound", func(t *testing.T) {
		err := store.UpdateLicense(ctx, &models.License{ID: "nope", OwnerID: "user-1"})
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("UpdateLicense error = %v, want ErrNotFound", err)
		}
	})

	t.Run("delete removes only the owner's record", func(t *testing.T) {
		p := &models.PasswordEntry{OwnerID: "user-1", Service: "hosting"}
		if err := store.CreatePassword(ctx, p); err != nil {
			t.Fatalf("CreatePassword failed: %v", err)
		}

		if err := store.DeletePassword(ctx, p.ID, "user-2"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("foreign delete error = %v, want ErrNotFound", err)
		}
		if err := store.DeletePassword(ctx, p.ID, "user-1"); err != nil {
			t.Fatalf("DeletePassword failed: %v", err)
		}

		entries, err := store.ListPasswords(ctx, "user-1")
		if err != nil {
			t.Fatalf("ListPasswords failed: %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("expected no entries after delete, got %d", len(entries))
		}
	})
}
