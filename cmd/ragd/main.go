// Ragd is a multi-tenant document Q&A daemon.
//
// Each user owns an isolated workspace and vector collection. Uploaded
// documents are chunked and embedded; questions are answered by a
// generative model grounded in the user's own content.
//
// Configuration is loaded from an optional YAML file and RAGD_* environment
// variables. See internal/config for details.
//
// Usage:
//
//	# Start server with defaults
//	RAGD_ADMIN_SECRET=... RAGD_EMBEDDING_API_KEY=... ragd
//
//	# Configure via file
//	ragd -config /etc/ragd/config.yaml
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/ragd/internal/auth"
	"github.com/fyrsmithlabs/ragd/internal/config"
	"github.com/fyrsmithlabs/ragd/internal/embeddings"
	"github.com/fyrsmithlabs/ragd/internal/extract"
	httpserver "github.com/fyrsmithlabs/ragd/internal/http"
	"github.com/fyrsmithlabs/ragd/internal/llm"
	"github.com/fyrsmithlabs/ragd/internal/logging"
	"github.com/fyrsmithlabs/ragd/internal/rag"
	"github.com/fyrsmithlabs/ragd/internal/tenant"
	"github.com/fyrsmithlabs/ragd/internal/vectorstore"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	// Optional .env for local development; absence is not an error.
	_ = godotenv.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Printf("Received signal %v, shutting down gracefully...", sig)
		cancel()
	}()

	if err := run(ctx, *configPath); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server shutdown complete")
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("ragd by Fyrsmith Labs\n")
	fmt.Printf("Version:    %s\n", version)
	fmt.Printf("Commit:     %s\n", gitCommit)
	fmt.Printf("Build Date: %s\n", buildDate)
}

// run starts the ragd server and blocks until context is cancelled.
//
// Initialization order:
//  1. Load and validate configuration
//  2. Initialize logger
//  3. Open credential store and workspace manager
//  4. Create embedding provider and vector store
//  5. Create generator and pipeline service
//  6. Start HTTP server
//  7. Graceful shutdown on context cancellation
func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger, err := logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting ragd",
		zap.String("version", version),
		zap.String("data_root", cfg.Storage.DataRoot),
		zap.String("embedding_provider", cfg.Embedding.Provider),
		zap.String("llm_provider", cfg.LLM.Provider),
	)

	credentials, err := auth.NewStore(cfg.Storage.UsersFile, logger.Named("auth"))
	if err != nil {
		return fmt.Errorf("opening credential store: %w", err)
	}

	workspaces, err := tenant.NewManager(cfg.Storage.DataRoot, logger.Named("tenant"))
	if err != nil {
		return fmt.Errorf("initializing workspace manager: %w", err)
	}

	embedder, err := embeddings.NewProvider(embeddings.ProviderConfig{
		Provider: cfg.Embedding.Provider,
		Model:    cfg.Embedding.Model,
		APIKey:   cfg.Embedding.APIKey,
	})
	if err != nil {
		return fmt.Errorf("creating embedding provider: %w", err)
	}
	defer func() { _ = embedder.Close() }()

	store, err := vectorstore.NewChromemStore(vectorstore.ChromemConfig{
		Path: cfg.Storage.VectorPath,
	}, embedder, logger.Named("vectorstore"))
	if err != nil {
		return fmt.Errorf("creating vector store: %w", err)
	}
	defer func() { _ = store.Close() }()

	generator, err := llm.NewGenerator(llm.Config{
		Provider: cfg.LLM.Provider,
		Model:    cfg.LLM.Model,
		APIKey:   cfg.LLM.APIKey,
	})
	if err != nil {
		return fmt.Errorf("creating generator: %w", err)
	}
	defer func() { _ = generator.Close() }()

	pipeline, err := rag.NewService(workspaces, extract.New(), store, generator, rag.Config{
		ChunkSize:   cfg.Pipeline.ChunkSize,
		TopK:        cfg.Pipeline.TopK,
		CallTimeout: cfg.Pipeline.CallTimeout,
	}, logger.Named("rag"))
	if err != nil {
		return fmt.Errorf("creating pipeline service: %w", err)
	}

	server, err := httpserver.NewServer(credentials, pipeline, cfg.Admin.Secret, logger.Named("http"), &httpserver.Config{
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	})
	if err != nil {
		return fmt.Errorf("creating http server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
