package qdrant

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/kailas-cloud/paralegal/internal/db"
	"github.com/kailas-cloud/paralegal/internal/domain"
)

// Compile-time check.
var _ db.Store = (*Store)(nil)

const (
	payloadID      = "id"
	payloadContent = "content"
	payloadType    = "type"
	payloadTopic   = "topic"
)

// pointNamespace derives stable point UUIDs from document ids.
var pointNamespace = uuid.MustParse("6f1b0a5e-3c1d-4f7a-9a52-7d3e2c8b9e10")

// client is the subset of *qdrant.Client the store uses.
type client interface {
	CollectionExists(ctx context.Context, collectionName string) (bool, error)
	CreateCollection(ctx context.Context, request *qdrant.CreateCollection) error
	Upsert(ctx context.Context, request *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	Count(ctx context.Context, request *qdrant.CountPoints) (uint64, error)
	Query(ctx context.Context, request *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
	HealthCheck(ctx context.Context) (*qdrant.HealthCheckReply, error)
	Close() error
}

// Config holds Qdrant connection parameters.
type Config struct {
	Host       string
	Port       int
	APIKey     string
	UseTLS     bool
	Collection string
	VectorDim  int
}

// Store implements db.Store on a Qdrant collection over gRPC.
type Store struct {
	client     client
	collection string
	vectorDim  int
}

// NewStore connects to Qdrant.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("host is required")
	}
	if cfg.Collection == "" {
		return nil, fmt.Errorf("collection name is required")
	}
	if cfg.VectorDim <= 0 {
		return nil, fmt.Errorf("vector dimension must be positive")
	}
	port := cfg.Port
	if port == 0 {
		port = 6334
	}

	c, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("create qdrant client: %w", err)
	}
	return newStore(c, cfg), nil
}

func newStore(c client, cfg Config) *Store {
	return &Store{client: c, collection: cfg.Collection, vectorDim: cfg.VectorDim}
}

// EnsureCollection creates the cosine collection if it is missing.
func (s *Store) EnsureCollection(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return &db.Error{Op: db.OpIndexInfo, Err: err}
	}
	if exists {
		return nil
	}
	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(s.vectorDim),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	return nil
}

// Ping runs the Qdrant health check.
func (s *Store) Ping(ctx context.Context) error {
	if _, err := s.client.HealthCheck(ctx); err != nil {
		return fmt.Errorf("qdrant health check: %w", err)
	}
	return nil
}

// Close releases the gRPC connection.
func (s *Store) Close() {
	_ = s.client.Close()
}

// WaitForReady polls Ping until Qdrant responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	return db.WaitForReady(ctx, s, timeout)
}

// Count returns the exact number of points in the collection.
func (s *Store) Count(ctx context.Context) (int, error) {
	n, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: s.collection,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, &db.Error{Op: db.OpCount, Err: err}
	}
	return int(n), nil
}

// Upsert writes the document as a point keyed by a UUIDv5 of its id.
func (s *Store) Upsert(ctx context.Context, doc domain.Document, vector []float32) error {
	if doc.ID == "" {
		return fmt.Errorf("document id is required")
	}
	if len(vector) != s.vectorDim {
		return fmt.Errorf("vector has %d dimensions, collection expects %d", len(vector), s.vectorDim)
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Wait:           qdrant.PtrOf(true),
		Points: []*qdrant.PointStruct{{
			Id:      qdrant.NewIDUUID(PointID(doc.ID)),
			Vectors: qdrant.NewVectors(vector...),
			Payload: toPayload(doc),
		}},
	})
	if err != nil {
		return &db.Error{Op: db.OpUpsert, Err: err}
	}
	return nil
}

// Search returns up to k nearest points. Distance is 1 - cosine score.
func (s *Store) Search(ctx context.Context, vector []float32, k int) (domain.RetrievalResult, error) {
	if k <= 0 {
		return domain.RetrievalResult{}, nil
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("vector is required")
	}

	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}

	matches := make(domain.RetrievalResult, 0, len(points))
	for _, p := range points {
		matches = append(matches, domain.Match{
			Document: fromPayload(p.GetPayload()),
			Distance: 1 - float64(p.GetScore()),
		})
	}
	return matches, nil
}

// PointID maps a document id to its deterministic point UUID.
func PointID(docID string) string {
	return uuid.NewSHA1(pointNamespace, []byte(docID)).String()
}

func toPayload(doc domain.Document) map[string]*qdrant.Value {
	return map[string]*qdrant.Value{
		payloadID:      qdrant.NewValueString(doc.ID),
		payloadContent: qdrant.NewValueString(doc.Content),
		payloadType:    qdrant.NewValueString(doc.Metadata.Type),
		payloadTopic:   qdrant.NewValueString(doc.Metadata.Topic),
	}
}

func fromPayload(p map[string]*qdrant.Value) domain.Document {
	str := func(k string) string {
		if v, ok := p[k]; ok {
			return v.GetStringValue()
		}
		return ""
	}
	return domain.Document{
		ID:      str(payloadID),
		Content: str(payloadContent),
		Metadata: domain.Metadata{
			Type:  str(payloadType),
			Topic: str(payloadTopic),
		},
	}
}
