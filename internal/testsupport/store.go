package testsupport

import (
	"testing"

	"vogsdemo/internal/config"
	"vogsdemo/internal/diagnostics"
)

// MustOpenEventStore opens a diagnostics.Store for tests and registers cleanup.
func MustOpenEventStore(t testing.TB, cfg *config.Config) *diagnostics.Store {
	t.Helper()

	store, err := diagnostics.Open(cfg.DiagnosticsDBPath())
	if err != nil {
		t.Fatalf("diagnostics.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
