package memory

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jllopis/topomind/pkg/errors"
)

// EpisodicIndex stores semantic fact text in a vector store so that later
// turns can recall related memories by similarity. Failures here degrade
// to log lines: episodic recall is an enrichment, never a dependency of
// the ingestion path.
type EpisodicIndex struct {
	store      VectorStore
	embedder   Embedder
	collection string
	logger     *slog.Logger
}

// NewEpisodicIndex builds an index over a vector store and embedder.
func NewEpisodicIndex(store VectorStore, embedder Embedder, collection string) *EpisodicIndex {
	return &EpisodicIndex{
		store:      store,
		embedder:   embedder,
		collection: collection,
		logger:     slog.Default(),
	}
}

// EnsureCollection creates the backing collection sized to the embedder's
// output. Call once at startup with a probe embedding.
func (e *EpisodicIndex) EnsureCollection(ctx context.Context) error {
	probe, err := e.embedder.Embed(ctx, "topomind collection probe")
	if err != nil {
		return errors.New(errors.CodeMemoryError, "probe embedding failed", err)
	}
	return e.store.CreateCollection(ctx, e.collection, uint64(len(probe)))
}

// Index embeds one fact and upserts it with its node type and turn.
func (e *EpisodicIndex) Index(ctx context.Context, nodeType, text string, turn int) error {
	vector, err := e.embedder.Embed(ctx, text)
	if err != nil {
		return errors.New(errors.CodeMemoryError, "embed fact", err)
	}
	point := Point{
		ID:     uuid.NewString(),
		Vector: vector,
		Payload: map[string]any{
			"node_type": nodeType,
			"text":      text,
			"turn":      turn,
		},
	}
	if err := e.store.Upsert(ctx, e.collection, []Point{point}); err != nil {
		return errors.New(errors.CodeMemoryError, "upsert fact", err)
	}
	return nil
}

// Recall returns the text of up to limit memories related to the query.
// Errors are logged and reported as an empty result.
func (e *EpisodicIndex) Recall(ctx context.Context, query string, limit int) []string {
	vector, err := e.embedder.Embed(ctx, query)
	if err != nil {
		e.logger.Warn("episodic recall embed failed", slog.String("error", err.Error()))
		return nil
	}
	results, err := e.store.Search(ctx, e.collection, vector, limit, 0)
	if err != nil {
		e.logger.Warn("episodic recall search failed", slog.String("error", err.Error()))
		return nil
	}
	var texts []string
	for _, r := range results {
		if text, ok := r.Point.Payload["text"].(string); ok {
			texts = append(texts, text)
		}
	}
	return texts
}
