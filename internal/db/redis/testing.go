package redis

import "github.com/redis/rueidis"

// NewStoreForTest creates a Store with the given client (for testing with mocks).
func NewStoreForTest(c rueidis.Client, cfg Config) *Store {
	return newStore(c, cfg)
}
