// Package tenant maps usernames to their isolated storage locations and
// vector collection names.
package tenant

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/ragd/internal/sanitize"
)

// collectionPrefix namespaces per-user collections inside the vector store.
const collectionPrefix = "user_"

// Workspace holds the filesystem locations owned by one tenant.
type Workspace struct {
	// DocumentsDir holds uploaded source documents.
	DocumentsDir string

	// ChatDir holds derived chat artifacts.
	ChatDir string
}

// Manager derives and manages per-tenant workspaces under a data root.
//
// Paths are deterministic functions of the username:
//
//	<root>/users/<username>/docs
//	<root>/users/<username>/chat
type Manager struct {
	root   string
	logger *zap.Logger
}

// NewManager creates a workspace manager rooted at root.
func NewManager(root string, logger *zap.Logger) (*Manager, error) {
	if root == "" {
		return nil, fmt.Errorf("data root is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Join(root, "users"), 0o755); err != nil {
		return nil, fmt.Errorf("creating data root: %w", err)
	}
	return &Manager{root: root, logger: logger}, nil
}

// CollectionName returns the vector collection name for a username.
// The mapping is injective: distinct usernames yield distinct names.
func CollectionName(username string) string {
	return collectionPrefix + username
}

// Workspace returns the tenant's workspace, creating its directories if absent.
func (m *Manager) Workspace(username string) (Workspace, error) {
	if err := sanitize.ValidateUsername(username); err != nil {
		return Workspace{}, err
	}

	base := filepath.Join(m.root, "users", username)
	ws := Workspace{
		DocumentsDir: filepath.Join(base, "docs"),
		ChatDir:      filepath.Join(base, "chat"),
	}

	for _, dir := range []string{ws.DocumentsDir, ws.ChatDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Workspace{}, fmt.Errorf("creating workspace directory %s: %w", dir, err)
		}
	}
	return ws, nil
}

// DocumentPath returns the path of a named document inside the tenant's
// workspace, creating the workspace if absent.
func (m *Manager) DocumentPath(username, filename string) (string, error) {
	if err := sanitize.ValidateFilename(filename); err != nil {
		return "", err
	}
	ws, err := m.Workspace(username)
	if err != nil {
		return "", err
	}
	return filepath.Join(ws.DocumentsDir, filename), nil
}

// ListDocuments returns the filenames currently stored in the tenant's
// documents directory, in lexical order.
func (m *Manager) ListDocuments(username string) ([]string, error) {
	ws, err := m.Workspace(username)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(ws.DocumentsDir)
	if err != nil {
		return nil, fmt.Errorf("reading documents directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Destroy recursively removes all tenant storage. Removal is best-effort:
// an already-absent workspace is not an error, and failures are logged as
// well as returned so callers can proceed with the rest of the cascade.
func (m *Manager) Destroy(username string) error {
	if err := sanitize.ValidateUsername(username); err != nil {
		return err
	}

	base := filepath.Join(m.root, "users", username)
	if err := os.RemoveAll(base); err != nil {
		m.logger.Warn("partial workspace removal",
			zap.String("username", username),
			zap.String("path", base),
			zap.Error(err),
		)
		return fmt.Errorf("removing workspace %s: %w", base, err)
	}

	m.logger.Info("destroyed workspace", zap.String("username", username))
	return nil
}
