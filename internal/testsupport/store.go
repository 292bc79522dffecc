package testsupport

import (
	"testing"

	"kartvid/internal/config"
	"kartvid/internal/racedb"
)

// MustOpenStore opens a racedb.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *racedb.Store {
	t.Helper()

	store, err := racedb.Open(cfg)
	if err != nil {
		t.Fatalf("racedb.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
