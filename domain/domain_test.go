package domain_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/padocode/go-tenant-repository/docstore"
	"github.com/padocode/go-tenant-repository/pkg/di"
	"github.com/padocode/go-tenant-repository/pkg/testsupport"
	"github.com/padocode/go-tenant-repository/retry"
	"github.com/padocode/go-tenant-repository/tenant"
	"github.com/padocode/go-tenant-repository/tenantrepo"
)

type domainEnv struct {
	container *di.Container
	store     *testsupport.FlakyStore
	memory    *docstore.MemoryStore
}

// newDomainEnv wires the full container over an instrumented memory store.
// The flaky wrapper runs with zero failures here, serving purely as a query
// counter; individual tests arm it when they need transient errors.
func newDomainEnv(t *testing.T) *domainEnv {
	t.Helper()

	memory := docstore.NewMemoryStore()
	store := testsupport.NewFlakyStore(memory, 0, nil)

	container, err := di.New(store,
		di.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		di.WithRepositoryOptions(
			tenantrepo.WithQueryRetryPolicy(retry.Policy{
				MaxRetries:  3,
				BaseDelay:   time.Millisecond,
				ShouldRetry: docstore.IsTransient,
				Clock:       clockwork.NewRealClock(),
			}),
		),
	)
	if err != nil {
		t.Fatalf("failed to build container: %v", err)
	}
	t.Cleanup(container.Close)

	return &domainEnv{container: container, store: store, memory: memory}
}

func (e *domainEnv) loadFixture(t *testing.T, file, collection string) {
	t.Helper()
	var docs []docstore.Document
	testsupport.LoadFixtureJSON(t, testsupport.FixturePath(file), &docs)
	testsupport.SeedDocuments(t, e.memory, collection, docs...)
}

func asTenant(tenantID string) context.Context {
	return tenant.WithPrincipal(context.Background(), tenant.Principal{UserID: "u-" + tenantID, TenantID: tenantID})
}
