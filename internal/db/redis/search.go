package redis

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/paralegal/internal/db"
	"github.com/kailas-cloud/paralegal/internal/domain"
)

var returnFields = []string{fieldID, fieldContent, fieldType, fieldTopic, fieldScore}

// Search runs a KNN query via FT.SEARCH. Distances are raw cosine distances,
// sorted ascending. A missing index is treated as an empty store.
func (s *Store) Search(ctx context.Context, vector []float32, k int) (domain.RetrievalResult, error) {
	if k <= 0 {
		return domain.RetrievalResult{}, nil
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("vector is required")
	}

	args := []string{
		s.indexName(),
		fmt.Sprintf("*=>[KNN %d @%s $BLOB]", k, fieldVector),
		"RETURN", strconv.Itoa(len(returnFields)),
	}
	args = append(args, returnFields...)
	args = append(args,
		"LIMIT", "0", strconv.Itoa(k),
		"PARAMS", "2", "BLOB", vectorToBytes(vector),
		"DIALECT", "2",
	)

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if isMissingIndex(err) {
			return domain.RetrievalResult{}, nil
		}
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return parseKNNResult(raw)
}

// Count returns the number of indexed documents via FT.SEARCH with LIMIT 0 0.
func (s *Store) Count(ctx context.Context) (int, error) {
	cmd := s.b().Arbitrary("FT.SEARCH").Args(s.indexName(), "*", "LIMIT", "0", "0").Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if isMissingIndex(err) {
			return 0, nil
		}
		return 0, &db.Error{Op: db.OpSearch, Err: err}
	}
	if len(raw) == 0 {
		return 0, nil
	}
	total, err := raw[0].AsInt64()
	if err != nil {
		return 0, fmt.Errorf("parse count: %w", err)
	}
	return int(total), nil
}

// --- Result parsing ---

func parseKNNResult(raw []rueidis.RedisMessage) (domain.RetrievalResult, error) {
	if len(raw) == 0 {
		return domain.RetrievalResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return domain.RetrievalResult{}, nil
	}

	matches := make(domain.RetrievalResult, 0, total)
	// 2-stride: [total, key1, fields1, key2, fields2, ...]
	for i := 1; i+1 < len(raw); i += 2 {
		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}
		m := parseFieldPairs(fields)

		dist, err := strconv.ParseFloat(m[fieldScore], 64)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", fieldScore, err)
		}

		matches = append(matches, domain.Match{
			Document: domain.Document{
				ID:      m[fieldID],
				Content: m[fieldContent],
				Metadata: domain.Metadata{
					Type:  m[fieldType],
					Topic: m[fieldTopic],
				},
			},
			Distance: dist,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})
	return matches, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
