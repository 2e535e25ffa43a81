// Package testsupport provides fixture loading and store fakes shared by the
// test suites in this module.
package testsupport

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/padocode/go-tenant-repository/docstore"
)

// LoadFixture loads raw test data from a fixture file, relative to the test
// package directory.
func LoadFixture(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to load fixture from %s: %v", path, err)
	}
	return data
}

// LoadFixtureJSON loads a JSON fixture and unmarshals it into dest.
func LoadFixtureJSON(t *testing.T, path string, dest any) {
	t.Helper()

	if err := json.Unmarshal(LoadFixture(t, path), dest); err != nil {
		t.Fatalf("failed to unmarshal JSON fixture from %s: %v", path, err)
	}
}

// FixturePath constructs a path to a fixture file under testdata.
func FixturePath(filename string) string {
	return filepath.Join("testdata", filename)
}

// SeedDocuments inserts documents into a store, failing the test on error.
func SeedDocuments(t *testing.T, store docstore.Store, collection string, docs ...docstore.Document) {
	t.Helper()

	ctx := context.Background()
	for _, doc := range docs {
		if err := store.Insert(ctx, collection, doc); err != nil {
			t.Fatalf("failed to seed document %s/%s: %v", collection, doc.ID, err)
		}
	}
}
