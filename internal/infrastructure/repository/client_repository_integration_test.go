package repository_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	domain "github.com/mohammadpnp/client-import/internal/domain/client"
	"github.com/mohammadpnp/client-import/internal/infrastructure/db"
	"github.com/mohammadpnp/client-import/internal/infrastructure/repository"
)

func openIntegrationDB(t *testing.T) (*gorm.DB, *pgxpool.Pool) {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	if err := db.Migrate(dsn, zap.NewNop()); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to connect db: %v", err)
	}
	if err := gdb.Exec("DELETE FROM clients; DELETE FROM import_runs;").Error; err != nil {
		t.Fatalf("failed cleanup: %v", err)
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("failed to create pgx pool: %v", err)
	}
	t.Cleanup(pool.Close)

	return gdb, pool
}

func TestClientRepositoryIntegration(t *testing.T) {
	gdb, pool := openIntegrationDB(t)
	ctx := context.Background()

	clients := repository.NewClientRepository(gdb)
	index := repository.NewClientIndexRepository(pool)

	first := domain.NewClient(uuid.NewString(), "s1", domain.KnownIdentityFields{
		Name: "Açaí Norte", City: "Belém", State: "pa",
	}, domain.Attributes{"email": "contato@acai.com"})
	if err := clients.Create(ctx, first); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	second := domain.NewClient(uuid.NewString(), "s2", domain.KnownIdentityFields{
		Name: "Padaria Sol", City: "Niterói", State: "RJ", Document: "11.222.333/0001-44",
	}, nil)
	if err := clients.Create(ctx, second); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	clash := domain.NewClient(uuid.NewString(), "s1", domain.KnownIdentityFields{Document: "11222333000144"}, nil)
	if err := clients.Create(ctx, clash); !errors.Is(err, domain.ErrUniqueViolation) {
		t.Fatalf("expected unique violation, got %v", err)
	}

	manager := domain.Scope{Role: domain.RoleManager, UserID: "m1", TeamUserIDs: []string{"s1", "s2"}}
	records, err := index.ListVisible(ctx, manager)
	if err != nil {
		t.Fatalf("list visible failed: %v", err)
	}
	if len(records) != 2 || records[0].ID != first.ID || records[1].ID != second.ID {
		t.Fatalf("expected both clients oldest first, got %+v", records)
	}
	if got := records[1].Identity().Fingerprint(); got != "doc:11222333000144" {
		t.Fatalf("unexpected fingerprint from stored record: %s", got)
	}

	seller := domain.Scope{Role: domain.RoleSeller, UserID: "s1"}
	records, err = index.ListVisible(ctx, seller)
	if err != nil {
		t.Fatalf("list visible failed: %v", err)
	}
	if len(records) != 1 || records[0].ID != first.ID {
		t.Fatalf("seller should only see its own client, got %+v", records)
	}

	if _, err := clients.FindByID(ctx, seller, second.ID); !errors.Is(err, domain.ErrClientNotFound) {
		t.Fatalf("expected not found outside scope, got %v", err)
	}

	loaded, err := clients.FindByID(ctx, seller, first.ID)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	loaded.Merge(domain.KnownIdentityFields{Document: "99.887.766/0001-55"}, domain.Attributes{"phone": "91999999999"})
	if err := clients.Update(ctx, *loaded); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	reloaded, err := clients.FindByID(ctx, seller, first.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Fingerprint != "doc:99887766000155" {
		t.Fatalf("unexpected fingerprint after update: %s", reloaded.Fingerprint)
	}
	if reloaded.Attributes["email"] != "contato@acai.com" || reloaded.Attributes["phone"] != "91999999999" {
		t.Fatalf("attributes not merged: %+v", reloaded.Attributes)
	}

	runs := repository.NewImportRunRepository(gdb)
	if err := runs.Record(ctx, domain.ImportRun{
		ID:           uuid.NewString(),
		Mode:         domain.RunModeImport,
		UserID:       "s1",
		Role:         domain.RoleSeller,
		TotalRows:    3,
		CreatedCount: 2,
		FailedCount:  1,
		StartedAt:    time.Now(),
		FinishedAt:   time.Now(),
	}); err != nil {
		t.Fatalf("record run failed: %v", err)
	}
}
