// Package service implements the catalog pipeline: refresh from the global
// feeds, reconciliation into the store, catalog queries, playlist ingestion,
// and stream health checks.
package service

import (
	"net/http"

	"github.com/voyagen/channelvault/internal/config"
	"github.com/voyagen/channelvault/internal/store"
)

// hlsMarker identifies the only stream container format the catalog accepts.
const hlsMarker = ".m3u8"

// Service ties the fetchers, the reconciler, and the query surface to one
// store and one config. All methods are safe for concurrent use; concurrent
// refreshes are not serialized and simply race with idempotent upserts.
type Service struct {
	store  store.Store
	cfg    *config.Config
	client *http.Client
}

// New creates a Service. client may be nil, in which case a default client is
// used; per-call timeouts come from the config.
func New(s store.Store, cfg *config.Config, client *http.Client) *Service {
	if client == nil {
		client = &http.Client{}
	}
	return &Service{store: s, cfg: cfg, client: client}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func ptrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
