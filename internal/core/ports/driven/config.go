package driven

import "github.com/custodia-labs/semidx-cli/internal/core/domain"

// ConfigSource supplies index settings and notifies the core when they
// change. Settings are read once at construction; OnChange lets a running
// pipeline apply a new rate limit or batch size without re-reading any
// global state.
type ConfigSource interface {
	// Settings returns the current index settings, normalised.
	Settings() domain.IndexSettings

	// Embedding returns the current embedding provider settings.
	Embedding() domain.EmbeddingSettings

	// OnChange registers a callback invoked with the new settings whenever
	// the underlying configuration changes. Callbacks must be fast and
	// must not call back into the ConfigSource.
	OnChange(fn func(domain.IndexSettings))
}
