package auth

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.json")
	store, err := NewStore(path, zap.NewNop())
	require.NoError(t, err)
	return store
}

func TestNewStore_CreatesEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")

	_, err := NewStore(path, zap.NewNop())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	users := map[string]string{}
	require.NoError(t, json.Unmarshal(data, &users))
	assert.Empty(t, users)
}

func TestStore_AddAndVerify(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Add("alice", "pw1"))

	assert.True(t, store.Verify("alice", "pw1"))
	assert.False(t, store.Verify("alice", "wrong"))
	assert.False(t, store.Verify("nobody", "pw1"))
}

func TestStore_AddDuplicateKeepsOriginalHash(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Add("alice", "pw1"))

	err := store.Add("alice", "pw2")
	require.ErrorIs(t, err, ErrUserExists)

	// The original credential still works; the rejected one never does.
	assert.True(t, store.Verify("alice", "pw1"))
	assert.False(t, store.Verify("alice", "pw2"))
}

func TestStore_Delete(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Add("alice", "pw1"))
	require.NoError(t, store.Add("bob", "pw2"))

	require.NoError(t, store.Delete("alice"))

	users, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, users)

	// Deleted users can no longer authenticate.
	assert.False(t, store.Verify("alice", "pw1"))

	err = store.Delete("alice")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestStore_ListSorted(t *testing.T) {
	store := newTestStore(t)

	for _, name := range []string{"carol", "alice", "bob"} {
		require.NoError(t, store.Add(name, "pw"))
	}

	users, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob", "carol"}, users)
}

func TestStore_RejectsInvalidUsername(t *testing.T) {
	store := newTestStore(t)

	assert.Error(t, store.Add("", "pw"))
	assert.Error(t, store.Add("../evil", "pw"))
	assert.Error(t, store.Add("a/b", "pw"))
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")

	store, err := NewStore(path, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, store.Add("alice", "pw1"))

	reopened, err := NewStore(path, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, reopened.Verify("alice", "pw1"))
}

func TestStore_ConcurrentMutations(t *testing.T) {
	store := newTestStore(t)

	done := make(chan error, 20)
	for i := 0; i < 20; i++ {
		name := string(rune('a'+i%10)) + "user"
		go func(name string) {
			done <- store.Add(name, "pw")
		}(name)
	}

	var added int
	for i := 0; i < 20; i++ {
		if err := <-done; err == nil {
			added++
		} else {
			require.ErrorIs(t, err, ErrUserExists)
		}
	}

	users, err := store.List()
	require.NoError(t, err)
	assert.Len(t, users, added)
}
