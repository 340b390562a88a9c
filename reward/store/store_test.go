package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ledger() map[string]any {
	return map[string]any{
		"Players": []map[string]any{{
			"UUID": "5f0c1c4e-8a8b-4c4f-9e3b-1c2d3e4f5a6b",
			"Rewards": []map[string]any{
				{"Reward": "titanium:cape", "Option": int32(2)},
			},
		}},
		"Configured": []string{"5f0c1c4e-8a8b-4c4f-9e3b-1c2d3e4f5a6b"},
	}
}

func checkLedger(t *testing.T, data map[string]any) {
	t.Helper()
	players, ok := data["Players"].([]any)
	require.True(t, ok, "Players is %T", data["Players"])
	require.Len(t, players, 1)
	player := players[0].(map[string]any)
	assert.Equal(t, "5f0c1c4e-8a8b-4c4f-9e3b-1c2d3e4f5a6b", player["UUID"])
	rewards := player["Rewards"].([]any)
	require.Len(t, rewards, 1)
	assert.Equal(t, int32(2), rewards[0].(map[string]any)["Option"])
}

func exercise(t *testing.T, b Backend) {
	t.Helper()
	ctx := context.Background()

	_, found, err := b.Load(ctx, "overworld")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, b.Save(ctx, "overworld", ledger()))
	data, found, err := b.Load(ctx, "overworld")
	require.NoError(t, err)
	require.True(t, found)
	checkLedger(t, data)

	// Saving again replaces.
	require.NoError(t, b.Save(ctx, "overworld", map[string]any{"Players": []map[string]any{}}))
	data, found, err = b.Load(ctx, "overworld")
	require.NoError(t, err)
	require.True(t, found)
	assert.NotContains(t, data, "Configured")

	_, found, err = b.Load(ctx, "nether")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemory(t *testing.T) {
	b := NewMemory()
	exercise(t, b)
	require.NoError(t, b.Close())
}

func TestFile(t *testing.T) {
	dir := t.TempDir()
	b, err := NewFile(dir)
	require.NoError(t, err)
	exercise(t, b)

	_, err = os.Stat(filepath.Join(dir, "overworld", FileName))
	assert.NoError(t, err)
	entries, err := os.ReadDir(filepath.Join(dir, "overworld"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files left behind")
}

func TestFileRejectsNestedWorldKeys(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	b, err := NewFile(dir)
	require.NoError(t, err)

	for _, world := range []string{"", ".", "..", "a/b", `a\b`, "../escape"} {
		assert.ErrorIs(t, b.Save(ctx, world, ledger()), ErrInvalidWorld, world)
		_, _, err := b.Load(ctx, world)
		assert.ErrorIs(t, err, ErrInvalidWorld, world)
	}

	// "b" keeps its own ledger instead of sharing one with "a/b".
	require.NoError(t, b.Save(ctx, "b", ledger()))
	path, err := b.Path("b")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "b", FileName), path)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLevelDB(t *testing.T) {
	dir := t.TempDir()
	b, err := OpenLevelDB(dir)
	require.NoError(t, err)
	exercise(t, b)
	require.NoError(t, b.Close())

	reopened, err := OpenLevelDB(dir)
	require.NoError(t, err)
	defer reopened.Close()
	_, found, err := reopened.Load(context.Background(), "overworld")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rewards.db")
	b, err := OpenSQLite(path)
	require.NoError(t, err)
	exercise(t, b)
	require.NoError(t, b.Close())
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	for _, kind := range []string{KindMemory, KindFile, KindLevelDB} {
		b, err := Open(kind, filepath.Join(dir, kind))
		require.NoError(t, err, kind)
		require.NoError(t, b.Close())
	}
	b, err := Open(KindSQLite, filepath.Join(dir, "db", "rewards.db"))
	require.NoError(t, err)
	require.NoError(t, b.Close())

	_, err = Open("redis", dir)
	assert.Error(t, err)
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := NewMemory().Load(ctx, "overworld")
	assert.ErrorIs(t, err, context.Canceled)
}
