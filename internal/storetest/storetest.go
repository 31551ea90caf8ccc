// Package storetest opens throwaway SQLite stores migrated with the
// production schema.
package storetest

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"startup-funding-api/migrations"
	"startup-funding-api/pkg/database"
)

// DSN points at a fresh database file under t.TempDir. Write transactions
// take the lock at BEGIN so concurrent writers queue instead of failing
// mid-transaction.
func DSN(t testing.TB) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "funding.db")
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate", path)
}

func Open(t testing.TB) *database.Store {
	t.Helper()

	store, err := database.Open(context.Background(), database.SQLite, DSN(t), database.Options{})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if err := migrations.Up(store, nil); err != nil {
		t.Fatalf("migrate store: %v", err)
	}

	return store
}
