package session

import (
	"context"
	stderrors "errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ember/internal/value"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "nested", "sessions.db")
	store, err := Open(context.Background(), "sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	vars := map[string]value.Value{
		"n":     value.Number(0.1 + 0.2),
		"big":   value.Number(1e300),
		"neg":   value.Number(-2.25),
		"inf":   value.Number(math.Inf(1)),
		"s":     value.String("multi\nline \"quoted\""),
		"empty": value.String(""),
		"t":     value.Bool(true),
		"f":     value.Bool(false),
		"z":     value.Nil{},
	}
	require.NoError(t, store.Save(ctx, "work", vars))

	got, err := store.Load(ctx, "work")
	require.NoError(t, err)
	assert.Equal(t, vars, got)
}

func TestSaveReplaces(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	require.NoError(t, store.Save(ctx, "s", map[string]value.Value{"a": value.Number(1), "b": value.Number(2)}))
	require.NoError(t, store.Save(ctx, "s", map[string]value.Value{"c": value.Number(3)}))

	got, err := store.Load(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, map[string]value.Value{"c": value.Number(3)}, got)
}

func TestLoadMissing(t *testing.T) {
	_, err := openTestStore(t).Load(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, ErrNotFound))
}

func TestListAndDelete(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	require.NoError(t, store.Save(ctx, "beta", map[string]value.Value{"x": value.Number(1)}))
	require.NoError(t, store.Save(ctx, "alpha", map[string]value.Value{"x": value.Number(1), "y": value.Nil{}}))

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "alpha", list[0].Name)
	assert.Equal(t, 2, list[0].Bindings)
	assert.Equal(t, "beta", list[1].Name)
	assert.False(t, list[1].UpdatedAt.IsZero())

	require.NoError(t, store.Delete(ctx, "alpha"))
	err = store.Delete(ctx, "alpha")
	assert.True(t, stderrors.Is(err, ErrNotFound))

	list, err = store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestSaveEmptyRemoves(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	require.NoError(t, store.Save(ctx, "s", map[string]value.Value{"a": value.Number(1)}))
	require.NoError(t, store.Save(ctx, "s", nil))
	_, err := store.Load(ctx, "s")
	assert.True(t, stderrors.Is(err, ErrNotFound))
}

func TestSaveValidatesNames(t *testing.T) {
	store := openTestStore(t)
	assert.Error(t, store.Save(context.Background(), "", nil))
	assert.Error(t, store.Save(context.Background(), strings.Repeat("x", 300), nil))
}

func TestUnsupportedBackend(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database type: oracle")
}

func TestDialects(t *testing.T) {
	tests := []struct {
		dbType string
		driver string
		second string
	}{
		{"sqlite3", "sqlite", "?"},
		{"postgresql", "postgres", "$2"},
		{"MySQL", "mysql", "?"},
		{"mssql", "sqlserver", "@p2"},
	}
	for _, tt := range tests {
		d, err := dialectFor(tt.dbType)
		require.NoError(t, err)
		assert.Equal(t, tt.driver, d.driver)
		assert.Equal(t, tt.second, d.placeholder(2))
	}
}

func TestCodec(t *testing.T) {
	kind, text := Encode(value.Number(3))
	assert.Equal(t, "number", kind)
	assert.Equal(t, "3", text)

	kind, text = Encode(nil)
	assert.Equal(t, "nil", kind)
	assert.Equal(t, "", text)

	v, err := Decode("number", "NaN")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(float64(v.(value.Number))))

	_, err = Decode("number", "abc")
	assert.Error(t, err)
	_, err = Decode("blob", "")
	assert.Error(t, err)
}
