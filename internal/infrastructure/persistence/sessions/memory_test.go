package sessions

import (
	"context"
	"testing"

	"github.com/AtRiskMedia/ussd-go/internal/domain/entities/session"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	s := session.New("abc123", "welcome", "en", "233200000000")
	s.SetData("name", session.NewStr("John"))
	s.PushVisited("welcome")
	s.CurrentScreen = "main_menu"

	if err := store.Store(ctx, s); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	got, err := store.Retrieve(ctx, "abc123")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if got == nil {
		t.Fatal("Retrieve returned nil for a stored session")
	}
	if got.CurrentScreen != "main_menu" {
		t.Errorf("CurrentScreen = %q, want %q", got.CurrentScreen, "main_menu")
	}
	if len(got.VisitedScreens) != 1 || got.VisitedScreens[0] != "welcome" {
		t.Errorf("VisitedScreens = %v, want [welcome]", got.VisitedScreens)
	}
	name, ok := got.GetData("name")
	if !ok || name.Kind != session.KindStr || name.Str != "John" {
		t.Errorf("data[name] = %+v, want Str John", name)
	}
}

func TestMemoryStoreMissIsNotAnError(t *testing.T) {
	store := NewMemoryStore()

	got, err := store.Retrieve(context.Background(), "never-stored")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if got != nil {
		t.Errorf("Retrieve = %+v, want nil for a miss", got)
	}
}

func TestMemoryStoreIsolatesStoredState(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	s := session.New("abc123", "welcome", "en", "233200000000")
	if err := store.Store(ctx, s); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	// Mutations after storing must not leak into the stored copy.
	s.CurrentScreen = "mutated"

	got, err := store.Retrieve(ctx, "abc123")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if got.CurrentScreen != "welcome" {
		t.Errorf("CurrentScreen = %q, want %q", got.CurrentScreen, "welcome")
	}
}

func TestMemoryStoreOverwrites(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	s := session.New("abc123", "welcome", "en", "233200000000")
	if err := store.Store(ctx, s); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	s.CurrentScreen = "main_menu"
	if err := store.Store(ctx, s); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	got, err := store.Retrieve(ctx, "abc123")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if got.CurrentScreen != "main_menu" {
		t.Errorf("CurrentScreen = %q, want %q", got.CurrentScreen, "main_menu")
	}
}
