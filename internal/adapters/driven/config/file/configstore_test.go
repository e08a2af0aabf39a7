package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	err = store.Set("embedding.provider", "ollama")
	require.NoError(t, err)

	val, ok := store.Get("embedding.provider")
	assert.True(t, ok)
	assert.Equal(t, "ollama", val)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("string_key", "hello"))
	require.NoError(t, store.Set("int_key", 42))
	require.NoError(t, store.Set("bool_key", true))

	assert.Equal(t, "hello", store.GetString("string_key"))
	assert.Equal(t, 42, store.GetInt("int_key"))
	assert.True(t, store.GetBool("bool_key"))

	// Missing keys return zero values
	assert.Equal(t, "", store.GetString("nonexistent"))
	assert.Equal(t, 0, store.GetInt("nonexistent"))
	assert.False(t, store.GetBool("nonexistent"))

	// Wrong types return zero values
	assert.Equal(t, "", store.GetString("int_key"))
	assert.Equal(t, 0, store.GetInt("string_key"))
	assert.False(t, store.GetBool("string_key"))
}

func TestConfigStore_Persistence(t *testing.T) {
	tmpDir := t.TempDir()

	store1, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	require.NoError(t, store1.Set("chunking.size", 500))
	require.NoError(t, store1.Set("embedding.provider", "openai"))

	store2, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, 500, store2.GetInt("chunking.size"))
	assert.Equal(t, "openai", store2.GetString("embedding.provider"))
}

func TestConfigStore_NestedKeysFlattened(t *testing.T) {
	tmpDir := t.TempDir()

	content := []byte("[embedding]\nprovider = \"ollama\"\nmodel = \"nomic-embed-text\"\n")
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), content, 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "ollama", store.GetString("embedding.provider"))
	assert.Equal(t, "nomic-embed-text", store.GetString("embedding.model"))
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("api_key", "secret"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_LoadCorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()

	corrupted := []byte("this is not valid TOML {{{[[")
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), corrupted, 0600))

	store, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestConfigStore_EmptyFile(t *testing.T) {
	tmpDir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte{}, 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	val, ok := store.Get("any_key")
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestConfigStore_OverwriteValue(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("key", "original"))
	require.NoError(t, store.Set("key", "updated"))
	assert.Equal(t, "updated", store.GetString("key"))
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func(id int) {
			key := "key" + string(rune('0'+id))
			_ = store.Set(key, id)
			_ = store.GetInt(key)
			_, _ = store.Get(key)
			done <- true
		}(i)
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}
