package seed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/paralegal/internal/domain"
)

const (
	defaultLockKey   = "paralegal:seed_lock"
	defaultLockTTL   = 2 * time.Minute
	lockPollInterval = 200 * time.Millisecond
)

// Report summarizes a seeding run.
type Report struct {
	Seeded  int  // documents written
	Skipped bool // store already held documents
	Total   int  // corpus size
}

// Service writes the corpus into the document store.
type Service struct {
	store   Store
	embed   Embedder
	docs    []domain.Document
	locker  Locker
	lockKey string
	lockTTL time.Duration
	seeded  prometheus.Counter
	logger  *zap.Logger

	mu sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithLocker adds a distributed lock around seeding.
func WithLocker(l Locker, key string, ttl time.Duration) Option {
	return func(s *Service) {
		s.locker = l
		if key != "" {
			s.lockKey = key
		}
		if ttl > 0 {
			s.lockTTL = ttl
		}
	}
}

// WithSeededCounter counts written documents.
func WithSeededCounter(c prometheus.Counter) Option {
	return func(s *Service) { s.seeded = c }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// New creates a seeding service for docs.
func New(store Store, embed Embedder, docs []domain.Document, opts ...Option) *Service {
	s := &Service{
		store:   store,
		embed:   embed,
		docs:    docs,
		lockKey: defaultLockKey,
		lockTTL: defaultLockTTL,
		logger:  zap.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// SeedIfEmpty writes the corpus when the store holds no documents.
// Concurrent callers are serialized; only the first one writes.
func (s *Service) SeedIfEmpty(ctx context.Context) (Report, error) {
	return s.run(ctx, false)
}

// Seed writes every corpus document regardless of the current count.
// Upserts are keyed by id so existing documents are overwritten, not duplicated.
func (s *Service) Seed(ctx context.Context) (Report, error) {
	return s.run(ctx, true)
}

func (s *Service) run(ctx context.Context, force bool) (Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	release, err := s.acquire(ctx)
	if err != nil {
		return Report{}, err
	}
	defer release()

	report := Report{Total: len(s.docs)}

	if !force {
		n, err := s.store.Count(ctx)
		if err != nil {
			return Report{}, fmt.Errorf("count documents: %w", err)
		}
		if n > 0 {
			s.logger.Debug("store already seeded", zap.Int("documents", n))
			report.Skipped = true
			return report, nil
		}
	}

	start := time.Now()
	for _, doc := range s.docs {
		emb, err := s.embed.Embed(ctx, doc.Content)
		if err != nil {
			return report, fmt.Errorf("embed document %s: %w", doc.ID, err)
		}
		if err := s.store.Upsert(ctx, doc, emb.Embedding); err != nil {
			return report, fmt.Errorf("upsert document %s: %w", doc.ID, err)
		}
		report.Seeded++
		if s.seeded != nil {
			s.seeded.Inc()
		}
	}

	s.logger.Info("corpus seeded",
		zap.Int("documents", report.Seeded),
		zap.Bool("force", force),
		zap.Duration("duration", time.Since(start)),
	)
	return report, nil
}

// acquire takes the distributed lock, polling while another process holds it.
func (s *Service) acquire(ctx context.Context) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}

	ticker := time.NewTicker(lockPollInterval)
	defer ticker.Stop()

	for {
		token, ok, err := s.locker.TryLock(ctx, s.lockKey, s.lockTTL)
		if err != nil {
			return nil, fmt.Errorf("acquire seed lock: %w", err)
		}
		if ok {
			return func() {
				// Release even if the request context is already done.
				if err := s.locker.Unlock(context.WithoutCancel(ctx), s.lockKey, token); err != nil {
					s.logger.Warn("release seed lock", zap.Error(err))
				}
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("wait for seed lock: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}
