package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/paralegal/internal/config"
	"github.com/kailas-cloud/paralegal/internal/corpus"
	"github.com/kailas-cloud/paralegal/internal/db"
	dbChromem "github.com/kailas-cloud/paralegal/internal/db/chromem"
	dbQdrant "github.com/kailas-cloud/paralegal/internal/db/qdrant"
	dbRedis "github.com/kailas-cloud/paralegal/internal/db/redis"
	"github.com/kailas-cloud/paralegal/internal/domain"
	logpkg "github.com/kailas-cloud/paralegal/internal/logger"
	"github.com/kailas-cloud/paralegal/internal/metrics"
	"github.com/kailas-cloud/paralegal/internal/repository/embcache"
	"github.com/kailas-cloud/paralegal/internal/transport/local"
	openaiTransport "github.com/kailas-cloud/paralegal/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/paralegal/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/paralegal/internal/usecase/health"
	queryuc "github.com/kailas-cloud/paralegal/internal/usecase/query"
	retrievaluc "github.com/kailas-cloud/paralegal/internal/usecase/retrieval"
	seeduc "github.com/kailas-cloud/paralegal/internal/usecase/seed"
	synthesisuc "github.com/kailas-cloud/paralegal/internal/usecase/synthesis"
)

const seedLockTTL = 2 * time.Minute

// app is the composition root shared by serve, ask and seed.
// Collaborators are built once and passed explicitly.
type app struct {
	env           string
	cfg           config.Config
	logger        *zap.Logger
	store         db.Store
	closeEmbedder func() error

	query  *queryuc.Service
	seed   *seeduc.Service
	health *healthuc.Service
}

// newApp loads configuration and wires every collaborator.
func newApp(ctx context.Context, flags *globalFlags) (*app, error) {
	env := flags.environment()

	cfg, err := flags.load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	a := &app{env: env, cfg: cfg, logger: logger}
	if err := a.wire(ctx); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) wire(ctx context.Context) error {
	cfg := a.cfg

	// Register domain metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterLLMMetrics()
	metrics.RegisterQueryMetrics()

	dims, err := embeddingDimensions(cfg.Embedding)
	if err != nil {
		return err
	}
	cfg.Embedding.Dimensions = dims
	a.cfg.Embedding.Dimensions = dims

	store, err := openStore(ctx, cfg.Database, dims, a.logger)
	if err != nil {
		return err
	}
	a.store = store
	a.logger.Info("Connected to document store",
		zap.String("driver", cfg.Database.Driver),
		zap.String("collection", cfg.Database.Collection),
	)

	docs, err := corpus.Load(cfg.Corpus.Path)
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}

	embedder, closeEmbedder, err := buildEmbedder(cfg.Embedding, cfg.LLM.APIKey, cfg.Database.KeyPrefix, store, a.logger)
	if err != nil {
		return err
	}
	a.closeEmbedder = closeEmbedder

	if cfg.LLM.APIKey == "" {
		a.logger.Warn("LLM API key is not set; answers will be degraded until OPENAI_API_KEY is provided")
	}
	chat := openaiTransport.NewChatModel(&openaiTransport.ChatConfig{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLM.Timeout(),
		Logger:  a.logger,
	})

	retriever := retrievaluc.New(store, embedder)
	synthesizer := synthesisuc.New(chat,
		synthesisuc.WithMaxTokens(cfg.LLM.MaxTokens),
		synthesisuc.WithTemperature(cfg.LLM.SamplingTemperature()),
	)
	a.query = queryuc.New(retriever, synthesizer,
		queryuc.WithMaxResultsLimit(cfg.Query.MaxResultsLimit),
		queryuc.WithLogger(a.logger),
		queryuc.WithMetrics(metrics.QueryDegradedTotal, metrics.QueryConfidence, metrics.QueryRetrievedDocuments),
	)

	seedOpts := []seeduc.Option{
		seeduc.WithSeededCounter(metrics.SeededDocumentsTotal),
		seeduc.WithLogger(a.logger),
	}
	if locker, ok := store.(db.Locker); ok {
		seedOpts = append(seedOpts, seeduc.WithLocker(locker, cfg.Database.KeyPrefix+"seed_lock", seedLockTTL))
	}
	a.seed = seeduc.New(store, embedder, docs, seedOpts...)

	var embHealth healthuc.ProviderChecker
	if hc, ok := embedder.(domain.HealthChecker); ok {
		embHealth = hc
	}
	a.health = healthuc.New(store, healthuc.WithProvider("embedding", embHealth))

	return nil
}

// seedIfEmpty seeds the store on startup when enabled.
func (a *app) seedIfEmpty(ctx context.Context) error {
	if !a.cfg.Corpus.SeedEnabled() {
		return nil
	}
	report, err := a.seed.SeedIfEmpty(ctx)
	if err != nil {
		return fmt.Errorf("seed corpus: %w", err)
	}
	a.logger.Info("Corpus seeding finished",
		zap.Int("seeded", report.Seeded),
		zap.Bool("skipped", report.Skipped),
		zap.Int("total", report.Total),
	)
	return nil
}

func (a *app) close() {
	if a.closeEmbedder != nil {
		if err := a.closeEmbedder(); err != nil {
			a.logger.Warn("close embedder", zap.Error(err))
		}
	}
	if a.store != nil {
		a.store.Close()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// openStore creates the configured store, waits for it and prepares its index.
func openStore(ctx context.Context, cfg config.DatabaseConfig, dims int, logger *zap.Logger) (db.Store, error) {
	switch cfg.Driver {
	case config.DriverChromem:
		s, err := dbChromem.NewStore(dbChromem.Config{
			Path:       cfg.Path,
			Compress:   cfg.Compress,
			Collection: cfg.Collection,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create chromem store: %w", err)
		}
		return s, nil

	case config.DriverRedis, config.DriverValkey:
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:     cfg.Addrs,
			Username:  cfg.Username,
			Password:  cfg.Password,
			DB:        cfg.DB,
			KeyPrefix: cfg.KeyPrefix,
			VectorDim: dims,
			HNSWM:     cfg.HNSWM,
			HNSWEF:    cfg.HNSWEFConstruct,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create %s store: %w", cfg.Driver, err)
		}
		if err := s.WaitForReady(ctx, cfg.Readiness()); err != nil {
			s.Close()
			return nil, fmt.Errorf("database not ready: %w", err)
		}
		if err := s.EnsureIndex(ctx); err != nil {
			s.Close()
			return nil, fmt.Errorf("ensure index: %w", err)
		}
		return s, nil

	case config.DriverQdrant:
		s, err := dbQdrant.NewStore(dbQdrant.Config{
			Host:       cfg.Host,
			Port:       cfg.Port,
			APIKey:     cfg.APIKey,
			UseTLS:     cfg.UseTLS,
			Collection: cfg.Collection,
			VectorDim:  dims,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create qdrant store: %w", err)
		}
		if err := s.WaitForReady(ctx, cfg.Readiness()); err != nil {
			s.Close()
			return nil, fmt.Errorf("database not ready: %w", err)
		}
		if err := s.EnsureCollection(ctx); err != nil {
			s.Close()
			return nil, fmt.Errorf("ensure collection: %w", err)
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}

// localEmbedder is an in-process embedder that owns native resources.
type localEmbedder interface {
	domain.Embedder
	domain.HealthChecker
	Close() error
}

// newLocalEmbedder loads the fastembed model. Tests replace it to avoid the download.
var newLocalEmbedder = func(cfg config.EmbeddingConfig, logger *zap.Logger) (localEmbedder, error) {
	e, err := local.NewEmbedder(local.Config{
		Model:      cfg.Model,
		CacheDir:   cfg.CacheDir,
		MaxLength:  cfg.MaxLength,
		ONNXPath:   cfg.ONNXPath,
		Dimensions: cfg.Dimensions,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// embeddingDimensions returns the configured vector size, or the fastembed model's own.
func embeddingDimensions(cfg config.EmbeddingConfig) (int, error) {
	if cfg.Dimensions > 0 {
		return cfg.Dimensions, nil
	}
	if cfg.Provider == config.ProviderFastEmbed {
		if d, ok := local.ModelDimensions(cfg.Model); ok {
			return d, nil
		}
		return 0, fmt.Errorf("embedding.model %q is not a supported fastembed model", cfg.Model)
	}
	return 0, fmt.Errorf("embedding.dimensions must be set for provider %q", cfg.Provider)
}

// cacheKeyPrefix namespaces cached vectors by model and size so switching
// either never serves vectors from the previous configuration.
func cacheKeyPrefix(keyPrefix, model string, dims int) string {
	return keyPrefix + "emb_cache:" + model + ":" + strconv.Itoa(dims) + ":"
}

// buildEmbedder assembles the decorator chain: provider -> Cached -> Instrumented -> Instruction.
// fallbackKey is used when the embedding section has no key of its own.
// The returned closer releases provider resources.
func buildEmbedder(
	cfg config.EmbeddingConfig,
	fallbackKey, keyPrefix string,
	store db.Store,
	logger *zap.Logger,
) (domain.Embedder, func() error, error) {
	closer := func() error { return nil }

	var embedder domain.Embedder
	switch cfg.Provider {
	case config.ProviderFastEmbed:
		e, err := newLocalEmbedder(cfg, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("create fastembed embedder: %w", err)
		}
		embedder = e
		closer = e.Close

	case config.ProviderOpenAI:
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = fallbackKey
		}
		if apiKey == "" {
			return nil, nil, fmt.Errorf("embedding provider %q needs embedding.api_key or llm.api_key (OPENAI_API_KEY); "+
				"set embedding.provider: %s to embed locally", config.ProviderOpenAI, config.ProviderFastEmbed)
		}
		embedder = openaiTransport.NewEmbedder(&openaiTransport.Config{
			APIKey:     apiKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Provider:   cfg.Provider,
			Timeout:    cfg.Timeout(),
			Logger:     logger,
		})

		// Cached, only where the store doubles as a key-value cache
		if kv, ok := store.(db.KVStore); ok && cfg.Cache {
			embedder = embcache.New(embedder, kv,
				embcache.WithKeyPrefix(cacheKeyPrefix(keyPrefix, cfg.Model, cfg.Dimensions)),
				embcache.WithCacheCounter(metrics.EmbeddingCacheTotal),
				embcache.WithLogger(logger),
			)
		}

	default:
		return nil, nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}

	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, cfg.Provider, cfg.Model, cfg.Dimensions, logger)

	// Instruction prefix (outermost, so the cache key includes it)
	if cfg.Instruction != "" {
		embedder = domain.NewInstructionEmbedder(embedder, cfg.Instruction)
	}

	logger.Info("Embedder created",
		zap.String("provider", cfg.Provider),
		zap.String("model", cfg.Model),
		zap.Int("dimensions", cfg.Dimensions),
	)
	return embedder, closer, nil
}
