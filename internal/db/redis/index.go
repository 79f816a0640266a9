package redis

import (
	"context"
	"errors"
	"strconv"

	"github.com/kailas-cloud/paralegal/internal/db"
)

const (
	fieldID      = "id"
	fieldContent = "content"
	fieldType    = "type"
	fieldTopic   = "topic"
	fieldVector  = "vector"
	fieldScore   = "__vector_score"
)

// EnsureIndex creates the document index unless it already exists.
func (s *Store) EnsureIndex(ctx context.Context) error {
	exists, err := s.IndexExists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	if err := s.CreateIndex(ctx); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return err
	}
	return nil
}

// CreateIndex creates the HASH index with an HNSW/COSINE vector field.
func (s *Store) CreateIndex(ctx context.Context) error {
	args := s.buildCreateArgs()

	cmd := s.b().Arbitrary("FT.CREATE").Args(args...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "index already exists") {
			return db.ErrIndexExists
		}
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	return nil
}

// IndexExists probes index existence via FT.INFO.
func (s *Store) IndexExists(ctx context.Context) (bool, error) {
	cmd := s.b().Arbitrary("FT.INFO").Args(s.indexName()).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isMissingIndex(err) {
			return false, nil
		}
		return false, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
	return true, nil
}

func (s *Store) buildCreateArgs() []string {
	args := []string{
		s.indexName(),
		"ON", "HASH",
		"PREFIX", "1", s.docPrefix(),
		"SCHEMA",
		fieldType, "TAG",
		fieldTopic, "TAG",
	}
	return append(args, s.buildVectorFieldArgs()...)
}

func (s *Store) buildVectorFieldArgs() []string {
	attrs := []string{
		"TYPE", "FLOAT32",
		"DIM", strconv.Itoa(s.vectorDim),
		"DISTANCE_METRIC", "COSINE",
	}
	if s.hnswM > 0 {
		attrs = append(attrs, "M", strconv.Itoa(s.hnswM))
	}
	if s.hnswEF > 0 {
		attrs = append(attrs, "EF_CONSTRUCTION", strconv.Itoa(s.hnswEF))
	}

	result := make([]string, 0, 4+len(attrs))
	result = append(result, fieldVector, "VECTOR", "HNSW", strconv.Itoa(len(attrs)))
	return append(result, attrs...)
}
