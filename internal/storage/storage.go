package storage

import (
	"context"

	"rbtr/internal/model"
)

// Storage defines a sink for pool snapshots.
type Storage interface {
	PutSnapshotBatch(ctx context.Context, snapshots []model.PoolSnapshot) error
}
