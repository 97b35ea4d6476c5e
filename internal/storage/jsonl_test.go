package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rbtr/internal/model"
)

func TestJsonlStorageAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "snapshots.jsonl")
	sink := NewJsonlStorage(path)
	ctx := context.Background()

	require.NoError(t, sink.PutSnapshotBatch(ctx, []model.PoolSnapshot{{Pool: "0x01", Tick: -10}}))
	require.NoError(t, sink.PutSnapshotBatch(ctx, nil))
	require.NoError(t, sink.PutSnapshotBatch(ctx, []model.PoolSnapshot{{Pool: "0x01", Tick: 20}, {Pool: "0x01", Tick: 30}}))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	var ticks []int64
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var snap model.PoolSnapshot
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &snap))
		ticks = append(ticks, snap.Tick)
	}
	require.NoError(t, scanner.Err())
	assert.Equal(t, []int64{-10, 20, 30}, ticks)
}

func TestJsonlStorageCancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots.jsonl")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewJsonlStorage(path).PutSnapshotBatch(ctx, []model.PoolSnapshot{{Pool: "0x01"}})
	assert.ErrorIs(t, err, context.Canceled)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}
