package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/connguard/pkg/backup"
)

func openTemp(t *testing.T, key string) (*Repository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "backup.db")
	repo, err := Open(path, key)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo, path
}

func TestRepository_LoadMissing(t *testing.T) {
	repo, _ := openTemp(t, "")
	ctx := context.Background()

	_, err := repo.Load(ctx)
	assert.ErrorIs(t, err, backup.ErrNotFound)

	ok, err := repo.Exists(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRepository_SaveLoadDelete(t *testing.T) {
	repo, _ := openTemp(t, "")
	ctx := context.Background()
	at := time.Date(2024, 5, 14, 9, 0, 0, 0, time.UTC)

	rec := backup.NewRecord(json.RawMessage(`{"entrate":[1]}`), at, "2024-05")
	require.NoError(t, repo.Save(ctx, rec))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"entrate":[1]}`, string(got.Data))
	assert.Equal(t, "2024-05-14T09:00:00.000Z", got.Timestamp)
	assert.Equal(t, "2024-05", got.PeriodOr(""))

	ok, err := repo.Exists(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, repo.Delete(ctx))
	require.NoError(t, repo.Delete(ctx), "second delete")

	_, err = repo.Load(ctx)
	assert.ErrorIs(t, err, backup.ErrNotFound)
}

func TestRepository_SaveReplaces(t *testing.T) {
	repo, _ := openTemp(t, "")
	ctx := context.Background()
	at := time.Date(2024, 5, 14, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Save(ctx, backup.NewRecord(json.RawMessage(`{"v":1}`), at, "")))
	require.NoError(t, repo.Save(ctx, backup.NewRecord(json.RawMessage(`{"v":2}`), at.Add(time.Minute), "")))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":2}`, string(got.Data))
	assert.Nil(t, got.Period)
}

func TestRepository_Corrupt(t *testing.T) {
	repo, _ := openTemp(t, "")
	ctx := context.Background()

	require.NoError(t, repo.saveRaw(ctx, []byte("{not json")))

	_, err := repo.Load(ctx)
	assert.True(t, errors.Is(err, backup.ErrCorrupt), "err = %v", err)

	ok, err := repo.Exists(ctx)
	require.NoError(t, err)
	assert.True(t, ok, "corrupt row must stay in place")
}

func TestRepository_ReopenKeepsRecordAndSeparatesKeys(t *testing.T) {
	repo, path := openTemp(t, "pendingSave")
	ctx := context.Background()
	at := time.Date(2024, 5, 14, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Save(ctx, backup.NewRecord(json.RawMessage(`{"v":1}`), at, "")))
	require.NoError(t, repo.Close())

	again, err := Open(path, "pendingSave")
	require.NoError(t, err)
	defer again.Close()

	got, err := again.Load(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":1}`, string(got.Data))

	other, err := Open(path, "otherKey")
	require.NoError(t, err)
	defer other.Close()

	_, err = other.Load(ctx)
	assert.ErrorIs(t, err, backup.ErrNotFound)
}
