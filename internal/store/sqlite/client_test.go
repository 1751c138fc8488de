package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"points/internal/store"
	"points/internal/store/storetest"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	ctx := context.Background()
	client, err := New(ctx, "sqlite://"+filepath.Join(t.TempDir(), "points.db"))
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	t.Cleanup(func() { _ = client.Close(ctx) })
	if err := client.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensuring schema: %v", err)
	}
	return client
}

func TestClient(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return newTestClient(t) })
}

func TestEnsureSchema_Idempotent(t *testing.T) {
	client := newTestClient(t)
	if err := client.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("expected no error on second run, got %v", err)
	}
}

func TestNew_Memory(t *testing.T) {
	ctx := context.Background()
	client, err := New(ctx, "sqlite://:memory:")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer client.Close(ctx)
	if err := client.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensuring schema: %v", err)
	}
	teams, err := client.ListTeams(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(teams) != 0 {
		t.Fatalf("expected no teams, got %v", teams)
	}
}

func TestNew_PragmasOnEveryConnection(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	conns := make([]*sql.Conn, 0, 3)
	for i := 0; i < 3; i++ {
		conn, err := client.db.Conn(ctx)
		if err != nil {
			t.Fatalf("acquiring connection %d: %v", i, err)
		}
		conns = append(conns, conn)
	}

	for i, conn := range conns {
		var timeout, foreignKeys int
		if err := conn.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&timeout); err != nil {
			t.Fatalf("reading busy_timeout on connection %d: %v", i, err)
		}
		if err := conn.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&foreignKeys); err != nil {
			t.Fatalf("reading foreign_keys on connection %d: %v", i, err)
		}
		if timeout != 30000 || foreignKeys != 1 {
			t.Fatalf("expected busy_timeout 30000 and foreign_keys 1 on connection %d, got %d and %d", i, timeout, foreignKeys)
		}
	}
	for _, conn := range conns {
		conn.Close()
	}
}

func TestClient_ConcurrentActors(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	participant := store.Participant{ID: uuid.New(), Name: "Alice"}
	if err := client.UpsertParticipant(ctx, participant); err != nil {
		t.Fatalf("registering participant: %v", err)
	}

	const actors, applies = 16, 20
	var g errgroup.Group
	for a := 0; a < actors; a++ {
		actor := uuid.New()
		base := int64(a * 1000)
		g.Go(func() error {
			for i := 0; i < applies; i++ {
				entry := store.HistoryEntry{ParticipantID: participant.ID, Delta: 1, Timestamp: time.Now()}
				if err := client.ApplyOperation(ctx, store.Operation{ID: base + int64(i) + 1, ActorID: actor}, []store.HistoryEntry{entry}); err != nil {
					return err
				}
				if i%5 == 4 {
					if _, err := client.CancelLatest(ctx, actor); err != nil {
						return err
					}
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("expected concurrent writers to succeed, got %v", err)
	}

	history, err := client.History(ctx, participant.ID)
	if err != nil {
		t.Fatalf("reading history: %v", err)
	}
	// Each actor cancels 4 of its 20 applies; the last cancellation survives
	// while earlier ones are purged by the next apply.
	if expected := actors * (applies - applies/5); len(history) != expected {
		t.Fatalf("expected %d active entries, got %d", expected, len(history))
	}
}
