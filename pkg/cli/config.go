package cli

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/jarvis-assistant/jarvis/pkg/adapter"
	"github.com/jarvis-assistant/jarvis/pkg/backend"
	"github.com/jarvis-assistant/jarvis/pkg/lookup"
	"github.com/jarvis-assistant/jarvis/pkg/memory"
	"github.com/jarvis-assistant/jarvis/pkg/model"
	"github.com/jarvis-assistant/jarvis/pkg/repository"
	"github.com/jarvis-assistant/jarvis/pkg/usecase/router"
	"github.com/jarvis-assistant/jarvis/pkg/utils/logging"
)

// config holds configuration values
type config struct {
	logLevel string

	// LLM backends
	groqAPIKey   string
	groqModel    string
	geminiAPIKey string
	geminiModel  string

	// Memory store
	memoryBackend       string // "local" or "firestore"
	memoryPath          string
	firestoreProject    string
	firestoreDatabase   string
	firestoreCollection string
	embeddingModel      string
	embeddingDimensions int64
	topK                int64

	// Lookup handlers
	shodanAPIKey      string
	ipinfoToken       string
	openWeatherAPIKey string
	lookupTimeout     time.Duration
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("JARVIS_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
	}
}

// llmFlags returns flags for LLM backend configuration with destination config
func llmFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "groq-api-key",
			Usage:       "Groq API key (primary backend)",
			Sources:     cli.EnvVars("GROQ_API_KEY"),
			Destination: &cfg.groqAPIKey,
		},
		&cli.StringFlag{
			Name:        "groq-model",
			Usage:       "Groq model ID",
			Value:       "llama-3.3-70b-versatile",
			Sources:     cli.EnvVars("JARVIS_GROQ_MODEL"),
			Destination: &cfg.groqModel,
		},
		&cli.StringFlag{
			Name:        "gemini-api-key",
			Usage:       "Gemini API key (secondary backend and embeddings)",
			Sources:     cli.EnvVars("GEMINI_API_KEY", "GOOGLE_API_KEY"),
			Destination: &cfg.geminiAPIKey,
		},
		&cli.StringFlag{
			Name:        "gemini-model",
			Usage:       "Gemini model ID",
			Value:       "gemini-2.5-flash",
			Sources:     cli.EnvVars("JARVIS_GEMINI_MODEL"),
			Destination: &cfg.geminiModel,
		},
	}
}

// memoryFlags returns flags for the memory store with destination config
func memoryFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "memory-backend",
			Usage:       "Memory store backend (local or firestore)",
			Value:       "local",
			Sources:     cli.EnvVars("JARVIS_MEMORY_BACKEND"),
			Destination: &cfg.memoryBackend,
		},
		&cli.StringFlag{
			Name:        "memory-path",
			Usage:       "Path of the local memory snapshot file",
			Value:       ".jarvis/memory.json",
			Sources:     cli.EnvVars("JARVIS_MEMORY_PATH"),
			Destination: &cfg.memoryPath,
		},
		&cli.StringFlag{
			Name:        "firestore-project",
			Usage:       "Google Cloud project ID for the Firestore memory backend",
			Sources:     cli.EnvVars("GOOGLE_CLOUD_PROJECT"),
			Destination: &cfg.firestoreProject,
		},
		&cli.StringFlag{
			Name:        "firestore-database",
			Usage:       "Firestore database ID",
			Value:       "(default)",
			Sources:     cli.EnvVars("FIRESTORE_DATABASE_ID"),
			Destination: &cfg.firestoreDatabase,
		},
		&cli.StringFlag{
			Name:        "firestore-collection",
			Usage:       "Firestore collection for memory records",
			Value:       "jarvis_memories",
			Sources:     cli.EnvVars("JARVIS_FIRESTORE_COLLECTION"),
			Destination: &cfg.firestoreCollection,
		},
		&cli.StringFlag{
			Name:        "embedding-model",
			Usage:       "Gemini embedding model ID",
			Value:       "gemini-embedding-001",
			Sources:     cli.EnvVars("JARVIS_EMBEDDING_MODEL"),
			Destination: &cfg.embeddingModel,
		},
		&cli.IntFlag{
			Name:        "embedding-dimensions",
			Usage:       "Embedding dimensionality, fixed per store",
			Value:       768,
			Sources:     cli.EnvVars("JARVIS_EMBEDDING_DIMENSIONS"),
			Destination: &cfg.embeddingDimensions,
		},
		&cli.IntFlag{
			Name:        "top-k",
			Usage:       "How many memory records to recall per turn",
			Value:       router.DefaultTopK,
			Sources:     cli.EnvVars("JARVIS_TOP_K"),
			Destination: &cfg.topK,
		},
	}
}

// lookupFlags returns flags for the lookup handlers with destination config
func lookupFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "shodan-api-key",
			Usage:       "Shodan API key",
			Sources:     cli.EnvVars("SHODAN_API_KEY"),
			Destination: &cfg.shodanAPIKey,
		},
		&cli.StringFlag{
			Name:        "ipinfo-token",
			Usage:       "ipinfo.io token (optional)",
			Sources:     cli.EnvVars("IPINFO_TOKEN"),
			Destination: &cfg.ipinfoToken,
		},
		&cli.StringFlag{
			Name:        "openweather-api-key",
			Usage:       "OpenWeather API key",
			Sources:     cli.EnvVars("OPENWEATHER_API_KEY"),
			Destination: &cfg.openWeatherAPIKey,
		},
		&cli.DurationFlag{
			Name:        "lookup-timeout",
			Usage:       "Per-call timeout for lookup and LLM requests",
			Value:       10 * time.Second,
			Sources:     cli.EnvVars("JARVIS_LOOKUP_TIMEOUT"),
			Destination: &cfg.lookupTimeout,
		},
	}
}

// routerFlags is the full flag set for commands that run turns.
func routerFlags(cfg *config) []cli.Flag {
	flags := globalFlags(cfg)
	flags = append(flags, llmFlags(cfg)...)
	flags = append(flags, memoryFlags(cfg)...)
	flags = append(flags, lookupFlags(cfg)...)
	return flags
}

// setupLogger installs the configured default logger.
func (cfg *config) setupLogger() {
	logging.SetDefault(logging.New(cfg.logLevel, nil))
}

// newGemini creates a Gemini adapter, or nil when no credential is set.
// A nil adapter means the Gemini backend reports AuthMissing and the memory
// store runs degraded (no embeddings).
func (cfg *config) newGemini(ctx context.Context) (adapter.Gemini, error) {
	if cfg.geminiAPIKey == "" {
		return nil, nil
	}
	return adapter.NewGemini(ctx, cfg.geminiAPIKey,
		adapter.WithGenerativeModel(cfg.geminiModel),
		adapter.WithEmbeddingModel(cfg.embeddingModel),
	)
}

// newRepository creates the configured memory repository
func (cfg *config) newRepository(ctx context.Context) (repository.Repository, error) {
	switch cfg.memoryBackend {
	case "local":
		return repository.NewLocal(cfg.memoryPath)

	case "firestore":
		if cfg.firestoreProject == "" {
			return nil, goerr.New("firestore-project is required for the firestore memory backend")
		}
		return repository.NewFirestore(ctx, cfg.firestoreProject, cfg.firestoreDatabase,
			repository.WithCollection(cfg.firestoreCollection))

	default:
		return nil, goerr.New("unknown memory backend", goerr.V("backend", cfg.memoryBackend))
	}
}

// newMemoryStore creates the memory store. Total inability to initialize the
// repository is the one fatal startup condition.
func (cfg *config) newMemoryStore(ctx context.Context, gemini adapter.Gemini) (*memory.Store, error) {
	repo, err := cfg.newRepository(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize memory store")
	}

	var embedder memory.Embedder
	if gemini != nil {
		embedder = memory.NewGeminiEmbedder(gemini, int(cfg.embeddingDimensions))
	}

	return memory.New(repo, embedder, int(cfg.embeddingDimensions)), nil
}

// newRouter wires the full turn pipeline.
func (cfg *config) newRouter(ctx context.Context) (*router.Router, error) {
	cfg.setupLogger()

	gemini, err := cfg.newGemini(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Gemini client")
	}

	store, err := cfg.newMemoryStore(ctx, gemini)
	if err != nil {
		return nil, err
	}

	var groq adapter.Groq
	if cfg.groqAPIKey != "" {
		groq = adapter.NewGroq(cfg.groqAPIKey, adapter.WithGroqModel(cfg.groqModel))
	}

	// Attempt order is fixed: primary Groq, then Gemini. Entries without
	// credentials stay in the chain and report AuthMissing when tried.
	chain := backend.NewChain([]backend.Backend{
		backend.NewGroq(groq),
		backend.NewGemini(gemini),
	})

	lookups := lookup.NewRegistry(
		lookup.NewWeather(cfg.openWeatherAPIKey, cfg.lookupTimeout),
		lookup.NewShodan(cfg.shodanAPIKey, cfg.lookupTimeout),
		lookup.NewIPInfo(cfg.ipinfoToken, cfg.lookupTimeout),
		lookup.NewWiki(cfg.lookupTimeout),
	)

	return router.New(router.NewInput{
		Lookups: lookups,
		Chain:   chain,
		Memory:  store,
		TopK:    int(cfg.topK),
	}), nil
}

// parseSource validates the --source flag value.
func parseSource(s string) (model.Source, error) {
	switch model.Source(s) {
	case model.SourceSpeech, model.SourceTyped, model.SourceScripted:
		return model.Source(s), nil
	default:
		return "", goerr.New("invalid source", goerr.V("source", s))
	}
}
