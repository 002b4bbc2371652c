package testsupport

import (
	"context"
	"testing"

	"tagwater/internal/catalog"
	"tagwater/internal/config"
)

// MustOpenCatalog opens a catalog.Store for tests and registers cleanup.
func MustOpenCatalog(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustRegisterTags registers each name in the store's default category and
// returns the new IDs keyed by name.
func MustRegisterTags(t testing.TB, store *catalog.Store, names ...string) map[string]int64 {
	t.Helper()

	ctx := context.Background()
	categoryID, ok, err := store.TagCategoryID(ctx, store.DefaultCategory())
	if err != nil || !ok {
		t.Fatalf("default category %q: ok=%v err=%v", store.DefaultCategory(), ok, err)
	}
	ids := make(map[string]int64, len(names))
	for _, name := range names {
		id, err := store.NewTag(ctx, name, categoryID, "")
		if err != nil {
			t.Fatalf("store.NewTag(%q): %v", name, err)
		}
		ids[name] = id
	}
	return ids
}
