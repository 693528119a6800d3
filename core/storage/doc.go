// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client behind the small Client interface used by the
// ICS calendar store, so both AWS S3 and self-hosted MinIO can hold calendar
// objects. Tests use the testify mock in core/storage/mocks.
//
//	client, err := storage.NewClient(cfg.Storage)
//	err = storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region, false)
package storage
