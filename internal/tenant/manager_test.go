package tenant

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestManager(t *testing.T) (*Manager, string) {
	t.Helper()
	root := t.TempDir()
	m, err := NewManager(root, zap.NewNop())
	require.NoError(t, err)
	return m, root
}

func TestCollectionName(t *testing.T) {
	tests := []struct {
		username string
		want     string
	}{
		{"alice", "user_alice"},
		{"bob-2", "user_bob-2"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CollectionName(tt.username))
	}
}

func TestManager_WorkspaceCreatesDirectories(t *testing.T) {
	m, root := newTestManager(t)

	ws, err := m.Workspace("alice")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "users", "alice", "docs"), ws.DocumentsDir)
	assert.Equal(t, filepath.Join(root, "users", "alice", "chat"), ws.ChatDir)

	for _, dir := range []string{ws.DocumentsDir, ws.ChatDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}

	// Idempotent.
	again, err := m.Workspace("alice")
	require.NoError(t, err)
	assert.Equal(t, ws, again)
}

func TestManager_WorkspaceRejectsInvalidUsername(t *testing.T) {
	m, _ := newTestManager(t)

	for _, bad := range []string{"", "../evil", "a/b", ".hidden"} {
		_, err := m.Workspace(bad)
		assert.Error(t, err, "username %q", bad)
	}
}

func TestManager_DocumentPath(t *testing.T) {
	m, root := newTestManager(t)

	path, err := m.DocumentPath("alice", "doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "users", "alice", "docs", "doc.pdf"), path)

	_, err = m.DocumentPath("alice", "../../etc/passwd")
	assert.Error(t, err)
	_, err = m.DocumentPath("alice", "a/b.pdf")
	assert.Error(t, err)
}

func TestManager_ListDocuments(t *testing.T) {
	m, _ := newTestManager(t)

	docs, err := m.ListDocuments("alice")
	require.NoError(t, err)
	assert.Empty(t, docs)

	for _, name := range []string{"b.pdf", "a.pdf"} {
		path, err := m.DocumentPath("alice", name)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	}

	docs, err = m.ListDocuments("alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, docs)
}

func TestManager_Destroy(t *testing.T) {
	m, root := newTestManager(t)

	_, err := m.Workspace("alice")
	require.NoError(t, err)

	require.NoError(t, m.Destroy("alice"))

	_, err = os.Stat(filepath.Join(root, "users", "alice"))
	assert.True(t, os.IsNotExist(err))

	// Destroying an absent workspace is not an error.
	require.NoError(t, m.Destroy("alice"))
}

func TestManager_WorkspacesAreDisjoint(t *testing.T) {
	m, _ := newTestManager(t)

	a, err := m.Workspace("alice")
	require.NoError(t, err)
	b, err := m.Workspace("bob")
	require.NoError(t, err)

	assert.NotEqual(t, a.DocumentsDir, b.DocumentsDir)

	require.NoError(t, m.Destroy("bob"))

	_, err = os.Stat(a.DocumentsDir)
	assert.NoError(t, err, "destroying bob must not touch alice")
}
