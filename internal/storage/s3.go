package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/mkadhem/pricescout/internal/logging"
	"github.com/mkadhem/pricescout/internal/model"
)

// s3Storage buffers the batch and uploads a single partitioned parquet
// object on Close. Credentials come from the AWS default chain (environment
// variables or the shared credentials file).
//
// Options: bucket (required), prefix, region.
type s3Storage struct {
	client *s3.Client
	bucket string
	prefix string
	logger logging.Logger

	batch []model.ScrapedRecord
}

func newS3Storage(target model.StorageTarget, logger logging.Logger) (Storage, error) {
	if err := requireOptions(target.Options, "bucket"); err != nil {
		return nil, err
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if region := optionOr(target.Options, "region", ""); region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: load aws config: %w", ErrWrite, err)
	}

	componentLogger := logger.With(logging.Field{Key: "component", Value: "storage.s3"})
	componentLogger.Info("created s3 storage",
		logging.Field{Key: "bucket", Value: target.Options["bucket"]},
		logging.Field{Key: "prefix", Value: target.Options["prefix"]})

	return &s3Storage{
		client: s3.NewFromConfig(cfg),
		bucket: target.Options["bucket"],
		prefix: optionOr(target.Options, "prefix", ""),
		logger: componentLogger,
	}, nil
}

func (s *s3Storage) Write(_ context.Context, rec *model.ScrapedRecord) error {
	s.batch = append(s.batch, *rec)
	return nil
}

func (s *s3Storage) Close() error {
	if len(s.batch) == 0 {
		s.logger.Warn("nothing to store, skipping upload")
		return nil
	}

	data, err := encodeParquet(s.batch)
	if err != nil {
		return fmt.Errorf("%w: encode batch: %w", ErrWrite, err)
	}
	key := batchKey(s.prefix, &s.batch[0], s.batch[0].ScrapedAt)

	_, err = s.client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/vnd.apache.parquet"),
	})
	if err != nil {
		return fmt.Errorf("%w: put s3://%s/%s: %w", ErrWrite, s.bucket, key, err)
	}

	s.logger.Info("uploaded batch",
		logging.Field{Key: "key", Value: key},
		logging.Field{Key: "records", Value: len(s.batch)},
		logging.Field{Key: "bytes", Value: len(data)})
	return nil
}
