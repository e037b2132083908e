package main

import (
	"context"
	"log"
	"os"
	"time"

	cachemem "driftworld/internal/adapter/cache/memory"
	cachenoop "driftworld/internal/adapter/cache/noop"
	httpadapter "driftworld/internal/adapter/http"
	metricsinmem "driftworld/internal/adapter/metrics/inmemory"
	openaiprovider "driftworld/internal/adapter/narrative/openai"
	"driftworld/internal/adapter/narrative/rulebased"
	gormrepo "driftworld/internal/adapter/repo/gorm"
	memrepo "driftworld/internal/adapter/repo/memory"
	"driftworld/internal/app/continuity"
	"driftworld/internal/app/cycle"
	"driftworld/internal/app/observe"
	"driftworld/internal/app/ports"
	"driftworld/internal/app/replay"
	"driftworld/internal/config"
	"driftworld/internal/domain/psyche"
	"driftworld/internal/domain/world"

	"github.com/cloudwego/hertz/pkg/app/server"
)

func main() {
	cfgPath := os.Getenv("DRIFTWORLD_CONFIG")
	if cfgPath == "" {
		cfgPath = "./config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	repos := mustBuildRepos(cfg)
	kpiRecorder := metricsinmem.NewRecorder()

	var cache ports.Cache
	if cfg.Cache.Enabled {
		cache = cachemem.New()
	} else {
		cache = cachenoop.New()
	}

	cycleUC := cycle.UseCase{
		TxManager:        repos.tx,
		WorldRepo:        repos.worlds,
		AgentRepo:        repos.agents,
		RelRepo:          repos.relationships,
		MemoryRepo:       repos.memories,
		ArcRepo:          repos.arcs,
		IntentionRepo:    repos.intentions,
		CalendarRepo:     repos.calendars,
		EventRepo:        repos.events,
		CooldownRepo:     repos.cooldowns,
		ExecRepo:         repos.executions,
		Cache:            cache,
		Cognition:        mustBuildCognition(cfg),
		Metrics:          kpiRecorder,
		Locks:            cycle.NewLockSet(),
		Engine:           world.Engine{ReminderLeads: cfg.World.ReminderLeads},
		CognitionTimeout: cfg.Cognition.Timeout.Std(),
		Now:              time.Now,
	}

	h := httpadapter.Handler{
		CycleUC: cycleUC,
		ContinuityUC: continuity.UseCase{
			WorldRepo: repos.worlds,
			Cycle:     cycleUC,
			MaxTicks:  cfg.World.CatchUpCap,
			Now:       time.Now,
		},
		ObserveUC: observe.UseCase{
			TxManager:     repos.tx,
			WorldRepo:     repos.worlds,
			AgentRepo:     repos.agents,
			RelRepo:       repos.relationships,
			ArcRepo:       repos.arcs,
			IntentionRepo: repos.intentions,
			MemoryRepo:    repos.memories,
			Cache:         cache,
			Metrics:       kpiRecorder,
		},
		ReplayUC: replay.UseCase{
			WorldRepo: repos.worlds,
			EventRepo: repos.events,
		},
		KPI: kpiRecorder,
	}

	s := server.Default(server.WithHostPorts(cfg.Server.Addr))
	h.RegisterRoutes(s)

	log.Printf("driftworld server listening on %s (cognition: %s)", cfg.Server.Addr, cfg.Cognition.Provider)
	s.Spin()
}

type repoSet struct {
	tx            ports.TxManager
	worlds        ports.WorldRepository
	agents        ports.AgentRepository
	relationships ports.RelationshipRepository
	memories      ports.MemoryRepository
	arcs          ports.ArcRepository
	intentions    ports.IntentionRepository
	calendars     ports.CalendarRepository
	events        ports.EventRepository
	cooldowns     ports.CooldownRepository
	executions    ports.CycleExecutionRepository
}

// mustBuildRepos wires postgres when a DSN is configured and falls back to
// the in-memory store, seeded with a demo world, when it is not.
func mustBuildRepos(cfg config.Config) repoSet {
	if cfg.Database.DSN == "" {
		log.Println("no database dsn configured, using in-memory store with demo world")
		store := memrepo.NewStore()
		seedDemoWorld(store, cfg.World.TickStep.Std())
		return repoSet{
			tx:            memrepo.NewTxManager(store),
			worlds:        memrepo.NewWorldRepo(store),
			agents:        memrepo.NewAgentRepo(store),
			relationships: memrepo.NewRelationshipRepo(store),
			memories:      memrepo.NewMemoryRepo(store),
			arcs:          memrepo.NewArcRepo(store),
			intentions:    memrepo.NewIntentionRepo(store),
			calendars:     memrepo.NewCalendarRepo(store),
			events:        memrepo.NewEventRepo(store),
			cooldowns:     memrepo.NewCooldownRepo(store),
			executions:    memrepo.NewCycleExecutionRepo(store),
		}
	}

	db, err := gormrepo.OpenPostgres(cfg.Database.DSN)
	if err != nil {
		log.Fatalf("open postgres: %v", err)
	}
	if err := gormrepo.ApplyMigrations(context.Background(), db, cfg.Database.MigrationsDir); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}
	return repoSet{
		tx:            gormrepo.NewTxManager(db),
		worlds:        gormrepo.NewWorldRepo(db),
		agents:        gormrepo.NewAgentRepo(db),
		relationships: gormrepo.NewRelationshipRepo(db),
		memories:      gormrepo.NewMemoryRepo(db),
		arcs:          gormrepo.NewArcRepo(db),
		intentions:    gormrepo.NewIntentionRepo(db),
		calendars:     gormrepo.NewCalendarRepo(db),
		events:        gormrepo.NewEventRepo(db),
		cooldowns:     gormrepo.NewCooldownRepo(db),
		executions:    gormrepo.NewCycleExecutionRepo(db),
	}
}

func mustBuildCognition(cfg config.Config) ports.CognitionProvider {
	switch cfg.Cognition.Provider {
	case config.ProviderOpenAI:
		opts := []openaiprovider.Option{openaiprovider.WithTimeout(cfg.Cognition.Timeout.Std())}
		if cfg.Cognition.BaseURL != "" {
			opts = append(opts, openaiprovider.WithBaseURL(cfg.Cognition.BaseURL))
		}
		p, err := openaiprovider.New(cfg.Cognition.APIKey, cfg.Cognition.Model, opts...)
		if err != nil {
			log.Fatalf("build openai provider: %v", err)
		}
		return p
	default:
		return rulebased.New()
	}
}

func seedDemoWorld(store *memrepo.Store, tickStep time.Duration) {
	store.SeedWorld(world.World{
		ID:       "demo-world",
		BaseTime: time.Now().UTC().Truncate(time.Hour),
		TickStep: tickStep,
		Graph: world.Graph{
			Locations: map[string]world.Location{
				"home":   {ID: "home", Name: "the apartment", Kind: world.LocationHome},
				"studio": {ID: "studio", Name: "the studio", Kind: world.LocationWork},
				"cafe":   {ID: "cafe", Name: "the corner cafe", Kind: world.LocationSocial},
			},
			Edges: map[string][]string{
				"home":   {"studio", "cafe"},
				"studio": {"home", "cafe"},
				"cafe":   {"home", "studio"},
			},
		},
	})
	store.SeedAgent(psyche.Agent{
		ID:       "demo-mira",
		WorldID:  "demo-world",
		Name:     "Mira",
		Location: "home",
		Energy:   0.7,
		Drives: map[psyche.DriveName]psyche.Drive{
			psyche.DriveRest:       {Level: 0.4, Sensitivity: 0.5, Baseline: 0.4},
			psyche.DriveConnection: {Level: 0.5, Sensitivity: 0.6, Baseline: 0.5},
		},
		Routine: world.RoutineTable{
			{FromHour: 9, ToHour: 17, Location: "studio"},
			{FromHour: 17, ToHour: 19, Location: "cafe"},
			{FromHour: 19, ToHour: 9, Location: "home"},
		},
	})
	store.SeedAgent(psyche.Agent{
		ID:       "demo-theo",
		WorldID:  "demo-world",
		Name:     "Theo",
		Location: "home",
		Energy:   0.6,
		Drives: map[psyche.DriveName]psyche.Drive{
			psyche.DriveRest:       {Level: 0.5, Sensitivity: 0.4, Baseline: 0.5},
			psyche.DriveConnection: {Level: 0.6, Sensitivity: 0.5, Baseline: 0.6},
		},
		Routine: world.RoutineTable{
			{FromHour: 8, ToHour: 18, Location: "studio"},
			{FromHour: 18, ToHour: 8, Location: "home"},
		},
	})
	store.SeedAgent(psyche.Agent{
		ID:        "demo-user",
		WorldID:   "demo-world",
		Name:      "Ava",
		Protected: true,
	})
	store.SeedRelationship(psyche.Relationship{
		Source: "demo-mira", Target: "demo-theo",
		Trust: 0.6, Warmth: 0.5, Familiarity: 0.5,
	})
	store.SeedRelationship(psyche.Relationship{
		Source: "demo-theo", Target: "demo-mira",
		Trust: 0.55, Warmth: 0.5, Familiarity: 0.5,
	})
}
