package replay

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	memrepo "driftworld/internal/adapter/repo/memory"
	"driftworld/internal/app/ports"
	"driftworld/internal/domain/world"
)

func seedStore(t *testing.T) *memrepo.Store {
	t.Helper()
	store := memrepo.NewStore()
	store.SeedWorld(world.World{
		ID:       "world-1",
		Tick:     10,
		BaseTime: time.Date(2030, 3, 4, 0, 0, 0, 0, time.UTC),
		TickStep: time.Hour,
	})
	repo := memrepo.NewEventRepo(store)
	for tick := int64(1); tick <= 10; tick++ {
		err := repo.Append(context.Background(), []world.Event{{
			ID:      fmt.Sprintf("ev-%02d", tick),
			WorldID: "world-1",
			Tick:    tick,
			Kind:    world.EventMovement,
		}})
		if err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	return store
}

func newUseCase(store *memrepo.Store) UseCase {
	return UseCase{
		WorldRepo: memrepo.NewWorldRepo(store),
		EventRepo: memrepo.NewEventRepo(store),
	}
}

func TestExecute_WindowedReplay(t *testing.T) {
	uc := newUseCase(seedStore(t))

	resp, err := uc.Execute(context.Background(), Request{WorldID: "world-1", FromTick: 3, ToTick: 6})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(resp.Events) != 4 {
		t.Fatalf("expected ticks three through six inclusive, got %d events", len(resp.Events))
	}
	for _, ev := range resp.Events {
		if ev.Tick < 3 || ev.Tick > 6 {
			t.Fatalf("event outside window: tick %d", ev.Tick)
		}
	}
}

func TestExecute_OpenWindowEndsAtCurrentTick(t *testing.T) {
	uc := newUseCase(seedStore(t))

	resp, err := uc.Execute(context.Background(), Request{WorldID: "world-1", FromTick: 8})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if resp.ToTick != 10 {
		t.Fatalf("open window should end at the world tick, got %d", resp.ToTick)
	}
	if len(resp.Events) != 3 {
		t.Fatalf("expected three events, got %d", len(resp.Events))
	}
}

func TestExecute_InvalidWindow(t *testing.T) {
	uc := newUseCase(seedStore(t))
	if _, err := uc.Execute(context.Background(), Request{WorldID: "world-1", FromTick: 6, ToTick: 3}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected invalid request, got %v", err)
	}
	if _, err := uc.Execute(context.Background(), Request{WorldID: "world-missing", FromTick: 1}); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}
