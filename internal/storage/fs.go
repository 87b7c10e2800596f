package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/mkadhem/pricescout/internal/logging"
	"github.com/mkadhem/pricescout/internal/model"
)

// fsStorage writes the same partitioned parquet layout as the S3 backend
// under a local root directory. Used for dev runs and air-gapped batches.
//
// Options: root (required).
type fsStorage struct {
	root   string
	logger logging.Logger

	batch []model.ScrapedRecord
}

func newFSStorage(target model.StorageTarget, logger logging.Logger) (Storage, error) {
	if err := requireOptions(target.Options, "root"); err != nil {
		return nil, err
	}
	return &fsStorage{
		root:   target.Options["root"],
		logger: logger.With(logging.Field{Key: "component", Value: "storage.fs"}),
	}, nil
}

func (f *fsStorage) Write(_ context.Context, rec *model.ScrapedRecord) error {
	f.batch = append(f.batch, *rec)
	return nil
}

func (f *fsStorage) Close() error {
	if len(f.batch) == 0 {
		f.logger.Warn("nothing to store, skipping write")
		return nil
	}

	data, err := encodeParquet(f.batch)
	if err != nil {
		return fmt.Errorf("%w: encode batch: %w", ErrWrite, err)
	}
	dest := filepath.Join(f.root, filepath.FromSlash(batchKey("", &f.batch[0], f.batch[0].ScrapedAt)))

	if err := atomicWriteFile(dest, data, 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrWrite, dest, err)
	}

	f.logger.Info("wrote batch",
		logging.Field{Key: "path", Value: dest},
		logging.Field{Key: "records", Value: len(f.batch)})
	return nil
}
