package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileKV(t *testing.T) *FileKV {
	t.Helper()
	kv, err := NewFileKV(t.TempDir())
	require.NoError(t, err)
	return kv
}

func TestFileKV_SetGet(t *testing.T) {
	kv := newTestFileKV(t)

	require.NoError(t, kv.Set("cart", []byte(`{"items":[]}`)))

	data, err := kv.Get("cart")
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[]}`, string(data))
}

func TestFileKV_GetMissing(t *testing.T) {
	kv := newTestFileKV(t)

	_, err := kv.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileKV_Overwrite(t *testing.T) {
	kv := newTestFileKV(t)

	require.NoError(t, kv.Set("token", []byte(`"a"`)))
	require.NoError(t, kv.Set("token", []byte(`"b"`)))

	data, err := kv.Get("token")
	require.NoError(t, err)
	assert.Equal(t, `"b"`, string(data))
}

func TestFileKV_DeleteIsIdempotent(t *testing.T) {
	kv := newTestFileKV(t)

	require.NoError(t, kv.Set("user", []byte(`{}`)))
	require.NoError(t, kv.Delete("user"))
	require.NoError(t, kv.Delete("user"))

	_, err := kv.Get("user")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetJSON_CorruptValueDegradesToAbsent(t *testing.T) {
	dir := t.TempDir()
	kv, err := NewFileKV(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "cart.json"), []byte("{not json"), 0o644))

	var v map[string]any
	assert.False(t, GetJSON(kv, "cart", &v))
}

func TestSetJSON_GetJSON_RoundTrip(t *testing.T) {
	kv := newTestFileKV(t)

	type draft struct {
		City  string `json:"city"`
		Phone string `json:"phone"`
	}
	require.NoError(t, SetJSON(kv, "checkout_address", draft{City: "Cairo", Phone: "0100"}))

	var got draft
	require.True(t, GetJSON(kv, "checkout_address", &got))
	assert.Equal(t, "Cairo", got.City)
	assert.Equal(t, "0100", got.Phone)
}
