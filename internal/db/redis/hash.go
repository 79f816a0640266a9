package redis

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/paralegal/internal/db"
	"github.com/kailas-cloud/paralegal/internal/domain"
)

// Upsert writes a document HASH. Re-writing the same id overwrites its fields.
func (s *Store) Upsert(ctx context.Context, doc domain.Document, vector []float32) error {
	if doc.ID == "" {
		return fmt.Errorf("document id is required")
	}
	if len(vector) != s.vectorDim {
		return fmt.Errorf("vector has %d dimensions, index expects %d", len(vector), s.vectorDim)
	}

	cmd := s.b().Hset().Key(s.docKey(doc.ID)).FieldValue().
		FieldValue(fieldID, doc.ID).
		FieldValue(fieldContent, doc.Content).
		FieldValue(fieldType, doc.Metadata.Type).
		FieldValue(fieldTopic, doc.Metadata.Topic).
		FieldValue(fieldVector, vectorToBytes(vector)).
		Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpHSet, Err: err}
	}
	return nil
}
