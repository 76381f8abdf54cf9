package main

import (
	"context"
	"net/http"

	"github.com/redis/go-redis/v9"

	auditstore "github.com/PabloGalante/aluma-agent/internal/adapters/audit"
	httpadapter "github.com/PabloGalante/aluma-agent/internal/adapters/http"
	"github.com/PabloGalante/aluma-agent/internal/adapters/llm"
	"github.com/PabloGalante/aluma-agent/internal/adapters/prefs"
	"github.com/PabloGalante/aluma-agent/internal/adapters/speech"
	"github.com/PabloGalante/aluma-agent/internal/app/cards"
	"github.com/PabloGalante/aluma-agent/internal/app/generate"
	"github.com/PabloGalante/aluma-agent/internal/catalog"
	"github.com/PabloGalante/aluma-agent/internal/config"
	"github.com/PabloGalante/aluma-agent/internal/domain"
	"github.com/PabloGalante/aluma-agent/internal/observability"
)

func main() {
	ctx := context.Background()

	cfg := config.Load()

	if err := observability.Init(string(cfg.Mode)); err != nil {
		panic(err)
	}
	defer observability.Sync()
	log := observability.Logger()

	// Model: mock or Vertex by config (useful for dev).
	var (
		model domain.ModelClient
		err   error
	)
	if cfg.UseMockLLM {
		log.Infow("using mock model client")
		model = llm.NewMockLLM()
	} else {
		log.Infow("using Vertex model client",
			"project", cfg.GCPProjectID, "location", cfg.GCPLocation)
		model, err = llm.NewGeminiClient(ctx, cfg.GCPProjectID, cfg.GCPLocation)
		if err != nil {
			log.Fatalw("initializing Vertex client", "error", err)
		}
	}

	// Speech: mock or Cloud Text-to-Speech.
	var speechClient domain.SpeechClient
	if cfg.UseMockSpeech {
		log.Infow("using mock speech client")
		speechClient = speech.NewMockSpeech()
	} else {
		speechClient, err = speech.NewGCPClient(ctx)
		if err != nil {
			log.Fatalw("initializing text-to-speech client", "error", err)
		}
	}

	// Preferences: Redis or in-memory.
	var prefStore domain.PrefStore
	switch cfg.PrefsBackend {
	case "redis":
		log.Infow("using Redis preferences", "addr", cfg.RedisAddr)
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		prefStore, err = prefs.NewRedisStore(
			prefs.WithRedisClient(client),
			prefs.WithKeyPrefix("aluma"),
		)
		if err != nil {
			log.Fatalw("initializing Redis preferences", "error", err)
		}
	default:
		log.Infow("using in-memory preferences")
		prefStore = prefs.NewMemoryStore()
	}
	defer prefStore.Close()

	// Audit: Firestore or in-memory ring.
	var audit domain.AuditRecorder
	switch cfg.AuditBackend {
	case "firestore":
		if cfg.GCPProjectID == "" {
			log.Fatalw("ALUMA_GCP_PROJECT is required for the Firestore audit backend")
		}
		log.Infow("using Firestore audit log", "project", cfg.GCPProjectID)
		audit, err = auditstore.NewFirestoreRecorder(ctx, cfg.GCPProjectID)
		if err != nil {
			log.Fatalw("initializing Firestore audit log", "error", err)
		}
	default:
		log.Infow("using in-memory audit log")
		audit = auditstore.NewMemoryRecorder(200)
	}

	orch := generate.NewOrchestrator(
		model, speechClient, audit,
		cfg.PrimaryModel, cfg.FallbackModel,
		cfg.GenerationTimeout,
	)

	svc := cards.NewService(catalog.New(), orch, prefStore, cards.Config{
		HistoryCap:       cfg.HistoryCap,
		ConsentIntensity: cfg.ConsentIntensity,
		RedrawDelay:      cfg.RedrawDelay,
	})
	svc.LoadSettings(ctx)

	handler := httpadapter.NewServer(svc, audit)

	addr := ":" + cfg.Port
	log.Infow("aluma api listening", "addr", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalw("server stopped", "error", err)
	}
}
