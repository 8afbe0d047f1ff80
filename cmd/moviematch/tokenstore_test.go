package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileTokenStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store, err := NewFileTokenStore(path)
	require.NoError(t, err)

	sess, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, sess)

	require.NoError(t, store.Save(storedSession{Token: "tok", UserID: "u1", Email: "a@b.c"}))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	sess, err = store.Load()
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "tok", sess.Token)
	assert.Equal(t, "u1", sess.UserID)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
	sess, err = store.Load()
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestFileTokenStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store, err := NewFileTokenStore(path)
	require.NoError(t, err)
	_, err = store.Load()
	assert.Error(t, err)
}
