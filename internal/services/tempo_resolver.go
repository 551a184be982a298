package services

import (
	"context"
	"log"

	"github.com/Conceptual-Machines/beatstoch-api/internal/config"
	"github.com/Conceptual-Machines/beatstoch-api/internal/llm"
	"github.com/Conceptual-Machines/beatstoch-api/internal/observability"
	"github.com/Conceptual-Machines/beatstoch-api/internal/tempo"
	"gorm.io/gorm"
)

const tempoTraceName = "tempo.lookup"

// NewTempoResolver builds the lookup chain: the LLM behind a cache (Postgres when
// db is set, otherwise in memory), then the built-in catalog. Without LLM
// credentials only the catalog answers.
func NewTempoResolver(ctx context.Context, cfg *config.Config, db *gorm.DB, tracing *observability.LangfuseClient) tempo.Resolver {
	catalog := tempo.NewCatalogResolver(tempo.DefaultCatalog)
	if !cfg.HasLLM() {
		log.Printf("⚠️  No LLM key configured, tempo lookup limited to %d catalog songs", catalog.Len())
		return tempo.ChainResolver{catalog}
	}

	provider, err := llm.NewProviderFactory(cfg.OpenAIAPIKey, cfg.GeminiAPIKey).
		GetProvider(ctx, cfg.TempoModel, cfg.TempoProvider)
	if err != nil {
		log.Printf("⚠️  Tempo LLM provider unavailable: %v", err)
		return tempo.ChainResolver{catalog}
	}
	provider = observability.TraceProvider(provider, tracing, tempoTraceName)

	var cache tempo.Cache = tempo.NewMemoryCache()
	if db != nil {
		cache = NewTempoStore(db)
	}

	log.Printf("🎼 Tempo lookup: %s (%s), cache TTL %v", provider.Name(), cfg.TempoModel, cfg.TempoCacheTTL)
	return tempo.ChainResolver{
		tempo.NewCachedResolver(tempo.NewLLMResolver(provider, cfg.TempoModel), cache, cfg.TempoCacheTTL, provider.Name()),
		catalog,
	}
}
