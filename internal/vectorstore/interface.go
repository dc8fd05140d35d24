// Package vectorstore defines the interface for vector storage operations.
package vectorstore

import (
	"context"
	"errors"
	"regexp"
)

// Sentinel errors for vector store operations.
var (
	// ErrCollectionNotFound is returned when a collection does not exist.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmptyDocuments indicates empty or nil documents.
	ErrEmptyDocuments = errors.New("empty or nil documents")

	// ErrEmbeddingFailed indicates embedding generation failure.
	ErrEmbeddingFailed = errors.New("failed to generate embeddings")

	// ErrInvalidCollectionName indicates collection name validation failure.
	ErrInvalidCollectionName = errors.New("invalid collection name")
)

// Document represents a document to be stored in the vector store.
type Document struct {
	// ID is the unique identifier for the document within its collection.
	ID string

	// Content is the text content of the document.
	Content string

	// Metadata contains additional key-value pairs for filtering.
	// Ingested chunks carry {"source": <filename>}.
	Metadata map[string]string
}

// SearchResult represents a similarity search result.
type SearchResult struct {
	// ID is the document identifier.
	ID string

	// Content is the document text content.
	Content string

	// Score is the similarity score (higher = more similar).
	Score float32

	// Metadata contains the document metadata.
	Metadata map[string]string
}

// Embedder generates vector embeddings from text.
//
// Embeddings are dense numerical representations that capture semantic
// meaning, enabling similarity search. Implementations call cloud APIs
// (OpenAI, Gemini).
type Embedder interface {
	// EmbedDocuments generates embeddings for multiple texts.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery generates an embedding for a single query.
	// Some models optimize differently for queries vs documents.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Store is the interface for vector storage operations.
//
// Each tenant owns exactly one collection; collection names are derived
// deterministically from the username by the tenant package and are never
// shared. Isolation is by construction of distinct names, not by locking.
type Store interface {
	// Add inserts documents into the named collection, creating the
	// collection if absent. All documents land in one batch.
	Add(ctx context.Context, collection string, docs []Document) error

	// Query returns the k documents most similar to the query text.
	// A missing or empty collection yields an empty result, not an error.
	Query(ctx context.Context, collection, query string, k int) ([]SearchResult, error)

	// DeleteBySource removes all documents whose source metadata matches.
	// A missing collection is not an error.
	DeleteBySource(ctx context.Context, collection, source string) error

	// DeleteCollection removes a collection and all its documents.
	// Returns ErrCollectionNotFound if the collection does not exist.
	DeleteCollection(ctx context.Context, collection string) error

	// Close releases resources held by the store.
	Close() error
}

// collectionNamePattern matches valid collection names: alphanumeric plus
// -_. with sane length bounds, mirroring chromem's own constraints.
var collectionNamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{1,250}$`)

// ValidateCollectionName checks a collection name before any store call.
func ValidateCollectionName(name string) error {
	if !collectionNamePattern.MatchString(name) {
		return ErrInvalidCollectionName
	}
	return nil
}
