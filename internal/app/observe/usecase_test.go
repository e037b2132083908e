package observe

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode"

	cachemem "driftworld/internal/adapter/cache/memory"
	"driftworld/internal/adapter/metrics/inmemory"
	memrepo "driftworld/internal/adapter/repo/memory"
	"driftworld/internal/app/ports"
	"driftworld/internal/domain/psyche"
	"driftworld/internal/domain/world"
)

func seedStore(t *testing.T) *memrepo.Store {
	t.Helper()
	store := memrepo.NewStore()
	store.SeedWorld(world.World{
		ID:       "world-1",
		Tick:     5,
		BaseTime: time.Date(2030, 3, 4, 0, 0, 0, 0, time.UTC),
		TickStep: time.Hour,
	})
	store.SeedAgent(psyche.Agent{
		ID: "agent-mira", WorldID: "world-1", Name: "Mira", Location: "home-mira",
		Energy: 0.3,
		Mood:   psyche.Mood{Valence: -0.5, Arousal: 0.6},
		Drives: map[psyche.DriveName]psyche.Drive{
			psyche.DriveConnection: {Level: 0.9, Sensitivity: 0.8, Baseline: 0.4},
		},
		Version: 3,
	})
	store.SeedAgent(psyche.Agent{
		ID: "agent-theo", WorldID: "world-1", Name: "Theo", Location: "cafe",
	})
	store.SeedAgent(psyche.Agent{
		ID: "user-ava", WorldID: "world-1", Name: "Ava", Protected: true,
	})
	store.SeedRelationship(psyche.Relationship{
		Source: "agent-mira", Target: "agent-theo", Warmth: 0.8, Trust: 0.8, Tension: 0.1, Familiarity: 0.9,
	})
	return store
}

func newUseCase(store *memrepo.Store, cache ports.Cache, metrics ports.CycleMetrics) UseCase {
	return UseCase{
		TxManager:     memrepo.NewTxManager(store),
		WorldRepo:     memrepo.NewWorldRepo(store),
		AgentRepo:     memrepo.NewAgentRepo(store),
		RelRepo:       memrepo.NewRelationshipRepo(store),
		ArcRepo:       memrepo.NewArcRepo(store),
		IntentionRepo: memrepo.NewIntentionRepo(store),
		MemoryRepo:    memrepo.NewMemoryRepo(store),
		Cache:         cache,
		Metrics:       metrics,
	}
}

func TestExecute_RendersDigitFreeFragments(t *testing.T) {
	uc := newUseCase(seedStore(t), nil, nil)

	resp, err := uc.Execute(context.Background(), Request{WorldID: "world-1", AgentID: "agent-mira"})
	if err != nil {
		t.Fatalf("execute error: %v", err)
	}
	if resp.Tick != 5 || resp.Name != "Mira" {
		t.Fatalf("unexpected response header: %+v", resp)
	}
	if len(resp.Fragments) == 0 {
		t.Fatalf("expected fragments")
	}
	for _, f := range resp.Fragments {
		for _, r := range f {
			if unicode.IsDigit(r) {
				t.Fatalf("fragment leaked a digit: %q", f)
			}
		}
	}
	// Relationship fragments mention the counterpart by name, never by id.
	foundTheo := false
	for _, f := range resp.Fragments {
		if strings.Contains(f, "Theo") {
			foundTheo = true
		}
		if strings.Contains(f, "agent-theo") {
			t.Fatalf("fragment leaked an internal id: %q", f)
		}
	}
	if !foundTheo {
		t.Fatalf("expected a relationship fragment naming Theo: %v", resp.Fragments)
	}
}

func TestExecute_ProtectedParticipantTripsGuard(t *testing.T) {
	recorder := inmemory.NewRecorder()
	uc := newUseCase(seedStore(t), nil, recorder)

	_, err := uc.Execute(context.Background(), Request{WorldID: "world-1", AgentID: "user-ava"})
	if !errors.Is(err, psyche.ErrProtectedParticipant) {
		t.Fatalf("expected protected-participant error, got %v", err)
	}
	if recorder.Snapshot().GuardTrips != 1 {
		t.Fatalf("guard trip not recorded")
	}
}

func TestExecute_SnapshotCacheHitsOnSecondRead(t *testing.T) {
	recorder := inmemory.NewRecorder()
	uc := newUseCase(seedStore(t), cachemem.New(), recorder)

	first, err := uc.Execute(context.Background(), Request{WorldID: "world-1", AgentID: "agent-mira"})
	if err != nil {
		t.Fatalf("first execute: %v", err)
	}
	second, err := uc.Execute(context.Background(), Request{WorldID: "world-1", AgentID: "agent-mira"})
	if err != nil {
		t.Fatalf("second execute: %v", err)
	}
	if len(first.Fragments) != len(second.Fragments) {
		t.Fatalf("cached snapshot diverged")
	}
	snap := recorder.Snapshot()
	if snap.CacheMisses != 1 || snap.CacheHits != 1 {
		t.Fatalf("expected one miss then one hit, got %+v", snap)
	}
}

func TestExecute_UnknownAgent(t *testing.T) {
	uc := newUseCase(seedStore(t), nil, nil)
	_, err := uc.Execute(context.Background(), Request{WorldID: "world-1", AgentID: "agent-nobody"})
	if !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}
