package media

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/bankislami/voicebot/internal/mocks"
)

func TestStore_RoundTrip(t *testing.T) {
	store := NewStore(mocks.NewMockCache(), time.Minute, zap.NewNop())
	ctx := context.Background()

	id, err := store.Put(ctx, []byte{0x01, 0x02, 0x03}, "audio/mpeg")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if id == "" {
		t.Fatal("expected a non-empty id")
	}

	item, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if item.ContentType != "audio/mpeg" {
		t.Errorf("unexpected content type %q", item.ContentType)
	}
	if len(item.Data) != 3 || item.Data[0] != 0x01 {
		t.Errorf("audio bytes corrupted: %v", item.Data)
	}
}

func TestStore_UnknownID(t *testing.T) {
	store := NewStore(mocks.NewMockCache(), time.Minute, zap.NewNop())

	if _, err := store.Get(context.Background(), "nope"); err == nil {
		t.Error("expected error for unknown id")
	}
}
