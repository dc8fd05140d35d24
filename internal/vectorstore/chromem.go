package vectorstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	chromem "github.com/philippgille/chromem-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// chromemTracer for OpenTelemetry instrumentation.
var chromemTracer = otel.Tracer("ragd.vectorstore.chromem")

// ChromemConfig holds configuration for the chromem-go embedded vector database.
type ChromemConfig struct {
	// Path is the directory for persistent storage.
	Path string

	// Compress enables gzip compression for stored data.
	Compress bool
}

// Validate validates the configuration.
func (c *ChromemConfig) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("%w: storage path is required", ErrInvalidConfig)
	}
	return nil
}

// ChromemStore implements the Store interface using chromem-go.
//
// chromem-go is an embeddable vector database with zero third-party
// dependencies: pure Go, no external service, automatic persistence to
// gob files. One chromem collection backs one tenant collection.
type ChromemStore struct {
	db       *chromem.DB
	embedder Embedder
	logger   *zap.Logger
}

// NewChromemStore creates a ChromemStore persisting under config.Path.
func NewChromemStore(config ChromemConfig, embedder Embedder, logger *zap.Logger) (*ChromemStore, error) {
	if embedder == nil {
		return nil, fmt.Errorf("%w: embedder is required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	expandedPath, err := expandChromemPath(config.Path)
	if err != nil {
		return nil, fmt.Errorf("expanding path: %w", err)
	}
	if err := os.MkdirAll(expandedPath, 0o755); err != nil {
		return nil, fmt.Errorf("creating directory %s: %w", expandedPath, err)
	}

	db, err := chromem.NewPersistentDB(expandedPath, config.Compress)
	if err != nil {
		return nil, fmt.Errorf("creating chromem DB: %w", err)
	}

	logger.Info("chromem store initialized",
		zap.String("path", expandedPath),
		zap.Bool("compress", config.Compress),
	)

	return &ChromemStore{db: db, embedder: embedder, logger: logger}, nil
}

// expandChromemPath expands ~ to home directory.
func expandChromemPath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// createEmbeddingFunc creates a chromem.EmbeddingFunc from our Embedder.
// chromem uses it to embed query text; document embeddings are computed
// in batch before insertion.
func (s *ChromemStore) createEmbeddingFunc() chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		return s.embedder.EmbedQuery(ctx, text)
	}
}

// Add inserts documents into the named collection, creating it if absent.
func (s *ChromemStore) Add(ctx context.Context, collection string, docs []Document) error {
	ctx, span := chromemTracer.Start(ctx, "ChromemStore.Add")
	defer span.End()

	span.SetAttributes(
		attribute.String("collection", collection),
		attribute.Int("document_count", len(docs)),
	)

	if len(docs) == 0 {
		return ErrEmptyDocuments
	}
	if err := ValidateCollectionName(collection); err != nil {
		return err
	}

	col, err := s.db.GetOrCreateCollection(collection, nil, s.createEmbeddingFunc())
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("getting/creating collection %s: %w", collection, err)
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Content
	}

	embeddings, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}

	chromemDocs := make([]chromem.Document, len(docs))
	for i, doc := range docs {
		chromemDocs[i] = chromem.Document{
			ID:        doc.ID,
			Content:   doc.Content,
			Metadata:  doc.Metadata,
			Embedding: embeddings[i],
		}
	}

	// Concurrency of 1 since embeddings are already computed.
	if err := col.AddDocuments(ctx, chromemDocs, 1); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("adding documents: %w", err)
	}

	span.SetStatus(codes.Ok, "success")
	s.logger.Debug("added documents to chromem",
		zap.String("collection", collection),
		zap.Int("count", len(docs)),
	)
	return nil
}

// Query performs similarity search in the named collection.
func (s *ChromemStore) Query(ctx context.Context, collection, query string, k int) ([]SearchResult, error) {
	ctx, span := chromemTracer.Start(ctx, "ChromemStore.Query")
	defer span.End()

	span.SetAttributes(
		attribute.String("collection", collection),
		attribute.Int("k", k),
	)

	if err := ValidateCollectionName(collection); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}

	col := s.db.GetCollection(collection, s.createEmbeddingFunc())
	if col == nil {
		// A tenant that has never ingested gets empty context, not a failure.
		span.SetStatus(codes.Ok, "collection absent")
		return []SearchResult{}, nil
	}

	// chromem requires nResults <= doc count.
	docCount := col.Count()
	if docCount == 0 {
		return []SearchResult{}, nil
	}
	if k > docCount {
		k = docCount
	}

	results, err := col.Query(ctx, query, k, nil, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("querying collection %s: %w", collection, err)
	}

	searchResults := make([]SearchResult, len(results))
	for i, r := range results {
		searchResults[i] = SearchResult{
			ID:       r.ID,
			Content:  r.Content,
			Score:    r.Similarity,
			Metadata: r.Metadata,
		}
	}

	span.SetAttributes(attribute.Int("results_count", len(searchResults)))
	span.SetStatus(codes.Ok, "success")

	s.logger.Debug("searched chromem collection",
		zap.String("collection", collection),
		zap.Int("k", k),
		zap.Int("results", len(searchResults)),
	)
	return searchResults, nil
}

// DeleteBySource removes all documents whose "source" metadata matches.
func (s *ChromemStore) DeleteBySource(ctx context.Context, collection, source string) error {
	ctx, span := chromemTracer.Start(ctx, "ChromemStore.DeleteBySource")
	defer span.End()

	span.SetAttributes(
		attribute.String("collection", collection),
		attribute.String("source", source),
	)

	if err := ValidateCollectionName(collection); err != nil {
		return err
	}

	col := s.db.GetCollection(collection, s.createEmbeddingFunc())
	if col == nil {
		span.SetStatus(codes.Ok, "collection absent")
		return nil
	}

	if err := col.Delete(ctx, map[string]string{"source": source}, nil); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("deleting documents with source %s: %w", source, err)
	}

	span.SetStatus(codes.Ok, "success")
	s.logger.Debug("deleted documents by source",
		zap.String("collection", collection),
		zap.String("source", source),
	)
	return nil
}

// DeleteCollection deletes a collection and all its documents.
func (s *ChromemStore) DeleteCollection(ctx context.Context, collection string) error {
	_, span := chromemTracer.Start(ctx, "ChromemStore.DeleteCollection")
	defer span.End()

	span.SetAttributes(attribute.String("collection", collection))

	if err := ValidateCollectionName(collection); err != nil {
		return err
	}

	if col := s.db.GetCollection(collection, s.createEmbeddingFunc()); col == nil {
		span.SetStatus(codes.Error, "collection not found")
		return ErrCollectionNotFound
	}

	if err := s.db.DeleteCollection(collection); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("deleting collection %s: %w", collection, err)
	}

	span.SetStatus(codes.Ok, "success")
	s.logger.Info("deleted chromem collection", zap.String("collection", collection))
	return nil
}

// Close closes the ChromemStore.
// chromem-go persists automatically, no explicit close needed.
func (s *ChromemStore) Close() error {
	s.logger.Info("chromem store closed")
	return nil
}

// Ensure ChromemStore implements Store interface.
var _ Store = (*ChromemStore)(nil)
