// Package embedding provides factory functions for creating embedding
// service adapters from settings.
package embedding

import (
	"context"
	"fmt"
	"time"

	ollamaembed "github.com/custodia-labs/semidx-cli/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/semidx-cli/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/semidx-cli/internal/core/domain"
	"github.com/custodia-labs/semidx-cli/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for connectivity validation.
const pingTimeout = 5 * time.Second

// NewService creates an embedding service from settings.
func NewService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if !settings.IsConfigured() {
		return nil, domain.ErrEmbeddingUnavailable
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		})

	default:
		return nil, fmt.Errorf("%w: embedding provider %q", domain.ErrUnsupportedType, settings.Provider)
	}
}

// NewValidatedService creates an embedding service and verifies
// connectivity before handing it out.
func NewValidatedService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := NewService(settings)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrEmbeddingUnavailable, err)
	}
	return svc, nil
}
