package domain

// Default index settings. Applied by Normalise when a field is unset.
const (
	// DefaultBatchSize is the number of chunks embedded per provider call.
	DefaultBatchSize = 10

	// DefaultRequestsPerMinute spaces embedding calls to one per second.
	DefaultRequestsPerMinute = 60

	// DefaultMaxPartitionBytes bounds a single partition file (10 MiB).
	DefaultMaxPartitionBytes = 10 << 20

	// DefaultChunkSize is the target chunk length in runes.
	DefaultChunkSize = 1000

	// DefaultChunkOverlap is the overlap between consecutive chunks in runes.
	DefaultChunkOverlap = 200
)

// IndexSettings holds tunables for the indexing pipeline and the
// partitioned store. A zero value is usable after Normalise.
type IndexSettings struct {
	// BatchSize is the number of chunks sent per embedding request.
	BatchSize int

	// RequestsPerMinute caps outgoing embedding requests.
	RequestsPerMinute int

	// MaxPartitionBytes bounds each partition file. A single record larger
	// than the bound still lands whole in one partition.
	MaxPartitionBytes int64

	// ChunkSize is the target chunk length in runes.
	ChunkSize int

	// ChunkOverlap is the overlap between consecutive chunks in runes.
	ChunkOverlap int
}

// Normalise returns a copy with defaults applied and floors enforced.
func (s IndexSettings) Normalise() IndexSettings {
	if s.BatchSize < 1 {
		s.BatchSize = DefaultBatchSize
	}
	if s.RequestsPerMinute < 1 {
		s.RequestsPerMinute = DefaultRequestsPerMinute
	}
	if s.MaxPartitionBytes < 1 {
		s.MaxPartitionBytes = DefaultMaxPartitionBytes
	}
	if s.ChunkSize < 1 {
		s.ChunkSize = DefaultChunkSize
	}
	if s.ChunkOverlap < 0 {
		s.ChunkOverlap = DefaultChunkOverlap
	}
	if s.ChunkOverlap >= s.ChunkSize {
		s.ChunkOverlap = s.ChunkSize / 4
	}
	return s
}

// RequestsPerSecond converts the configured per-minute cap to the
// per-second rate the limiter consumes.
func (s IndexSettings) RequestsPerSecond() float64 {
	return float64(s.RequestsPerMinute) / 60.0
}

// AIProvider identifies an embedding service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider selects the embedding backend.
	Provider AIProvider

	// BaseURL overrides the provider's API endpoint.
	BaseURL string

	// Model is the embedding model name.
	Model string

	// APIKey authenticates cloud providers.
	APIKey string

	// Dimensions overrides the model's default vector size where supported.
	Dimensions int
}

// IsConfigured returns true if the settings name a usable provider.
func (s *EmbeddingSettings) IsConfigured() bool {
	if s == nil || !s.Provider.IsValid() {
		return false
	}
	if s.Provider.RequiresAPIKey() && s.APIKey == "" {
		return false
	}
	return true
}
