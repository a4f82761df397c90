//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	_ "github.com/lib/pq"

	"github.com/bankislami/voicebot/internal/domain"
)

// startPostgres spins up a throwaway PostgreSQL container and returns its
// connection string.
func startPostgres(t *testing.T, ctx context.Context) string {
	t.Helper()

	container, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		tcpostgres.WithDatabase("voicebot_test"),
		tcpostgres.WithUsername("voicebot"),
		tcpostgres.WithPassword("voicebot_test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate postgres container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get postgres host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get postgres port: %v", err)
	}

	connStr := fmt.Sprintf("postgres://voicebot:voicebot_test@%s:%s/voicebot_test?sslmode=disable", host, port.Port())

	// Wait until the server actually accepts queries
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatalf("Failed to open postgres: %v", err)
	}
	defer db.Close()
	for i := 0; i < 30; i++ {
		if err := db.Ping(); err == nil {
			break
		}
		time.Sleep(time.Second)
	}

	return connStr
}

func TestConversationRepository_SaveAndFindRecent(t *testing.T) {
	ctx := context.Background()
	connStr := startPostgres(t, ctx)
	logger := zap.NewNop()

	db, err := NewConnection(connStr, logger)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer Close(db)

	if err := RunMigrations(db); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	repo := NewConversationRepository(db, logger)

	turns := []domain.ConversationTurn{
		{ID: uuid.NewString(), Channel: "web", UserText: "asaan account benefits", Reply: "Free debit card.", Intent: "account_benefits", Product: "asaan_account", Outcome: "answer"},
		{ID: uuid.NewString(), Channel: "whatsapp", UserText: "hello", Reply: "Assalam-o-Alaikum.", Outcome: "greeting"},
		{ID: uuid.NewString(), Channel: "voice", UserText: "gibberish", Reply: "Mazrat, main samajh nahi saka.", Outcome: "fallback"},
	}
	for i := range turns {
		turns[i].CreatedAt = time.Now().Add(time.Duration(i) * time.Second)
		if err := repo.Save(ctx, &turns[i]); err != nil {
			t.Fatalf("Save turn %d: %v", i, err)
		}
	}

	t.Run("FindRecent", func(t *testing.T) {
		got, err := repo.FindRecent(ctx, 10)
		if err != nil {
			t.Fatalf("FindRecent: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("Expected 3 turns, got %d", len(got))
		}
		// Most recent first
		if got[0].Outcome != "fallback" {
			t.Errorf("Expected most recent turn first, got outcome %q", got[0].Outcome)
		}
	})

	t.Run("FindRecentLimit", func(t *testing.T) {
		got, err := repo.FindRecent(ctx, 2)
		if err != nil {
			t.Fatalf("FindRecent: %v", err)
		}
		if len(got) != 2 {
			t.Errorf("Expected 2 turns, got %d", len(got))
		}
	})

	t.Run("RoundTripFields", func(t *testing.T) {
		got, err := repo.FindRecent(ctx, 10)
		if err != nil {
			t.Fatalf("FindRecent: %v", err)
		}
		var found *domain.ConversationTurn
		for i := range got {
			if got[i].ID == turns[0].ID {
				found = &got[i]
			}
		}
		if found == nil {
			t.Fatal("Saved turn not returned")
		}
		if found.Intent != "account_benefits" || found.Product != "asaan_account" {
			t.Errorf("Understanding fields lost: intent=%q product=%q", found.Intent, found.Product)
		}
	})
}
