//go:build integration

package postgres

import (
	"context"
	"os"
	"testing"

	"points/internal/store"
	"points/internal/store/storetest"
)

func testClient(t *testing.T) *Client {
	t.Helper()
	dsn := os.Getenv("POINTS_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("POINTS_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	client, err := New(ctx, dsn)
	if err != nil {
		t.Fatalf("connecting to test postgres: %v", err)
	}
	t.Cleanup(func() { _ = client.Close(ctx) })

	if err := client.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	if _, err := client.pool.Exec(ctx, `TRUNCATE histories, operations, participants, teams`); err != nil {
		t.Fatalf("truncating tables: %v", err)
	}
	return client
}

func TestClient(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return testClient(t) })
}

func TestEnsureSchema_Idempotent(t *testing.T) {
	client := testClient(t)
	if err := client.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensure schema (idempotent): %v", err)
	}
}
