package db

import (
	"context"
	_ "embed"
)

//go:embed schema.sql
var schemaSQL string

// EnsureSchema creates the tables the store reads from when they are missing.
// Production databases are owned by the repair records service; this is for
// local setups and integration tests.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.Pool.Exec(ctx, schemaSQL)
	return err
}
