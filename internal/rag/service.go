// Package rag implements the ingestion and retrieval pipelines around a
// tenant's vector collection.
package rag

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/ragd/internal/chunker"
	"github.com/fyrsmithlabs/ragd/internal/extract"
	"github.com/fyrsmithlabs/ragd/internal/llm"
	"github.com/fyrsmithlabs/ragd/internal/tenant"
	"github.com/fyrsmithlabs/ragd/internal/vectorstore"
)

// tracer for OpenTelemetry instrumentation.
var tracer = otel.Tracer("ragd.rag")

// Sentinel errors for pipeline failures. Each marks the stage that failed;
// none are retried by the service.
var (
	// ErrExtraction indicates an unreadable or corrupt document.
	ErrExtraction = errors.New("document extraction failed")

	// ErrStorage indicates a vector index write failure.
	ErrStorage = errors.New("vector index write failed")

	// ErrRetrieval indicates a vector index read failure.
	ErrRetrieval = errors.New("vector index read failed")

	// ErrGeneration indicates a generative service failure.
	ErrGeneration = errors.New("text generation failed")

	// ErrDocumentNotFound indicates a delete of a document that is not stored.
	ErrDocumentNotFound = errors.New("document not found")
)

// answerPreamble is the fixed instructional preamble of every grounding prompt.
const answerPreamble = "You are a helpful assistant. Use the context below to answer the question."

// Config holds pipeline tuning knobs.
type Config struct {
	// ChunkSize is the chunk length in characters.
	ChunkSize int

	// TopK is the number of chunks retrieved per question.
	TopK int

	// CallTimeout bounds each external call (extraction, index, LLM).
	CallTimeout time.Duration
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.ChunkSize == 0 {
		c.ChunkSize = chunker.DefaultChunkSize
	}
	if c.TopK == 0 {
		c.TopK = 3
	}
	if c.CallTimeout == 0 {
		c.CallTimeout = 60 * time.Second
	}
}

// IngestResult reports what an ingest call stored.
type IngestResult struct {
	Filename string
	Chunks   int
}

// Service orchestrates document ingestion and question answering for all
// tenants. It is request-scoped: concurrent calls share only the store and
// provider handles, which are safe for concurrent use. Tenant isolation is
// by construction of distinct collection names.
type Service struct {
	workspaces *tenant.Manager
	extractor  extract.Extractor
	store      vectorstore.Store
	generator  llm.Generator
	config     Config
	logger     *zap.Logger
}

// NewService creates the pipeline service.
func NewService(workspaces *tenant.Manager, extractor extract.Extractor, store vectorstore.Store, generator llm.Generator, config Config, logger *zap.Logger) (*Service, error) {
	if workspaces == nil {
		return nil, fmt.Errorf("workspace manager is required")
	}
	if extractor == nil {
		return nil, fmt.Errorf("extractor is required")
	}
	if store == nil {
		return nil, fmt.Errorf("vector store is required")
	}
	if generator == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	config.ApplyDefaults()

	return &Service{
		workspaces: workspaces,
		extractor:  extractor,
		store:      store,
		generator:  generator,
		config:     config,
		logger:     logger,
	}, nil
}

// Ingest stores an uploaded document in the tenant's workspace, extracts and
// chunks its text, and submits the chunks to the tenant's collection.
//
// Prior chunks of a same-named document are purged before the new chunks are
// written, so re-ingesting a shorter document leaves no stale tail entries.
// The raw file is not rolled back when a later stage fails.
func (s *Service) Ingest(ctx context.Context, username, filename string, r io.Reader) (IngestResult, error) {
	ctx, span := tracer.Start(ctx, "rag.Ingest")
	defer span.End()

	span.SetAttributes(
		attribute.String("username", username),
		attribute.String("filename", filename),
	)

	path, err := s.workspaces.DocumentPath(username, filename)
	if err != nil {
		return IngestResult{}, err
	}

	if err := writeFile(path, r); err != nil {
		span.RecordError(err)
		return IngestResult{}, fmt.Errorf("storing document: %w", err)
	}

	text, err := s.extractText(ctx, path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return IngestResult{}, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	chunks := chunker.Split(text, s.config.ChunkSize)

	collection := tenant.CollectionName(username)
	docs := make([]vectorstore.Document, len(chunks))
	for i, chunk := range chunks {
		docs[i] = vectorstore.Document{
			ID:       chunker.ChunkID(filename, i),
			Content:  chunk,
			Metadata: map[string]string{"source": filename},
		}
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.config.CallTimeout)
	defer cancel()

	if err := s.store.DeleteBySource(storeCtx, collection, filename); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return IngestResult{}, fmt.Errorf("%w: purging prior chunks: %v", ErrStorage, err)
	}
	if len(docs) > 0 {
		if err := s.store.Add(storeCtx, collection, docs); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return IngestResult{}, fmt.Errorf("%w: %v", ErrStorage, err)
		}
	}

	span.SetAttributes(attribute.Int("chunks", len(chunks)))
	span.SetStatus(codes.Ok, "success")

	s.logger.Info("ingested document",
		zap.String("username", username),
		zap.String("filename", filename),
		zap.Int("chunks", len(chunks)),
	)

	return IngestResult{Filename: filename, Chunks: len(chunks)}, nil
}

// Answer retrieves the most relevant chunks for the question from the
// tenant's collection, assembles a grounding prompt, and returns the
// generated answer with surrounding whitespace trimmed.
//
// A tenant with no ingested content gets an answer generated from empty
// context rather than an error.
func (s *Service) Answer(ctx context.Context, username, question string) (string, error) {
	ctx, span := tracer.Start(ctx, "rag.Answer")
	defer span.End()

	span.SetAttributes(attribute.String("username", username))

	collection := tenant.CollectionName(username)

	queryCtx, cancel := context.WithTimeout(ctx, s.config.CallTimeout)
	results, err := s.store.Query(queryCtx, collection, question, s.config.TopK)
	cancel()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("%w: %v", ErrRetrieval, err)
	}

	contents := make([]string, len(results))
	for i, r := range results {
		contents[i] = r.Content
	}
	prompt := BuildPrompt(contents, question)

	genCtx, cancel := context.WithTimeout(ctx, s.config.CallTimeout)
	defer cancel()

	answer, err := s.generator.Generate(genCtx, prompt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	span.SetAttributes(attribute.Int("context_chunks", len(results)))
	span.SetStatus(codes.Ok, "success")

	s.logger.Info("answered question",
		zap.String("username", username),
		zap.Int("context_chunks", len(results)),
	)

	return strings.TrimSpace(answer), nil
}

// BuildPrompt assembles the grounding prompt: the fixed preamble, the
// retrieved chunks joined by blank lines, and the literal question.
func BuildPrompt(chunks []string, question string) string {
	context := strings.Join(chunks, "\n\n")
	return fmt.Sprintf("%s\n\nContext:\n%s\n\nQuestion: %s", answerPreamble, context, question)
}

// ListDocuments returns the filenames stored in the tenant's workspace.
func (s *Service) ListDocuments(ctx context.Context, username string) ([]string, error) {
	return s.workspaces.ListDocuments(username)
}

// DeleteDocument removes a stored document and its chunks from the tenant's
// collection. Returns ErrDocumentNotFound if no such document is stored.
func (s *Service) DeleteDocument(ctx context.Context, username, filename string) error {
	ctx, span := tracer.Start(ctx, "rag.DeleteDocument")
	defer span.End()

	span.SetAttributes(
		attribute.String("username", username),
		attribute.String("filename", filename),
	)

	path, err := s.workspaces.DocumentPath(username, filename)
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrDocumentNotFound, filename)
	} else if err != nil {
		return fmt.Errorf("checking document: %w", err)
	}

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("removing document: %w", err)
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.config.CallTimeout)
	defer cancel()

	if err := s.store.DeleteBySource(storeCtx, tenant.CollectionName(username), filename); err != nil {
		span.RecordError(err)
		return fmt.Errorf("%w: purging chunks: %v", ErrStorage, err)
	}

	s.logger.Info("deleted document",
		zap.String("username", username),
		zap.String("filename", filename),
	)
	return nil
}

// CreateTenant provisions the workspace for a new user.
func (s *Service) CreateTenant(ctx context.Context, username string) error {
	_, err := s.workspaces.Workspace(username)
	return err
}

// DestroyTenant removes the user's workspace and collection. Removal is
// best-effort: both steps run regardless of the other's outcome, and
// partial failures are logged and joined into the returned error.
func (s *Service) DestroyTenant(ctx context.Context, username string) error {
	ctx, span := tracer.Start(ctx, "rag.DestroyTenant")
	defer span.End()

	span.SetAttributes(attribute.String("username", username))

	var errs []error

	if err := s.workspaces.Destroy(username); err != nil {
		errs = append(errs, err)
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.config.CallTimeout)
	defer cancel()

	err := s.store.DeleteCollection(storeCtx, tenant.CollectionName(username))
	if err != nil && !errors.Is(err, vectorstore.ErrCollectionNotFound) {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		err := errors.Join(errs...)
		span.RecordError(err)
		s.logger.Warn("partial tenant teardown",
			zap.String("username", username),
			zap.Error(err),
		)
		return err
	}

	s.logger.Info("destroyed tenant", zap.String("username", username))
	return nil
}

// extractText runs the extractor under the configured call timeout.
// Extraction is local CPU/disk work, but large documents can still take
// long enough to matter.
func (s *Service) extractText(ctx context.Context, path string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.CallTimeout)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		text, err := s.extractor.Extract(path)
		ch <- result{text, err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		return res.text, res.err
	}
}

// writeFile streams r into path, overwriting any prior file.
func writeFile(path string, r io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
