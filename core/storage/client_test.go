package storage_test

import (
	"context"
	"errors"
	"testing"

	"cal-sync/core/storage"
	"cal-sync/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestNewClient(t *testing.T) {
	t.Run("ValidConfig", func(t *testing.T) {
		cfg := storage.Config{
			Endpoint:  "localhost:9000",
			AccessKey: "testkey",
			SecretKey: "testsecret",
			Bucket:    "calendars",
			Region:    "us-east-1",
		}

		client, err := storage.NewClient(cfg)
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("EndpointWithHTTPS", func(t *testing.T) {
		cfg := storage.Config{
			Endpoint:  "https://s3.amazonaws.com",
			AccessKey: "testkey",
			SecretKey: "testsecret",
			UseSSL:    true,
			Region:    "us-east-1",
		}

		client, err := storage.NewClient(cfg)
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})
}

func TestEnsureBucket(t *testing.T) {
	ctx := context.Background()

	t.Run("Exists", func(t *testing.T) {
		m := new(mocks.Client)
		m.On("BucketExists", ctx, "calendars").Return(true, nil)

		assert.NoError(t, storage.EnsureBucket(ctx, m, "calendars", "", false))
		m.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("MissingWithoutCreate", func(t *testing.T) {
		m := new(mocks.Client)
		m.On("BucketExists", ctx, "calendars").Return(false, nil)

		assert.ErrorContains(t, storage.EnsureBucket(ctx, m, "calendars", "", false), "does not exist")
	})

	t.Run("MissingWithCreate", func(t *testing.T) {
		m := new(mocks.Client)
		m.On("BucketExists", ctx, "calendars").Return(false, nil)
		m.On("MakeBucket", ctx, "calendars", minio.MakeBucketOptions{Region: "eu-west-1"}).Return(nil)

		assert.NoError(t, storage.EnsureBucket(ctx, m, "calendars", "eu-west-1", true))
		m.AssertExpectations(t)
	})

	t.Run("CheckFails", func(t *testing.T) {
		m := new(mocks.Client)
		boom := errors.New("unreachable")
		m.On("BucketExists", ctx, "calendars").Return(false, boom)

		assert.ErrorIs(t, storage.EnsureBucket(ctx, m, "calendars", "", true), boom)
	})
}

func TestIsNotFound(t *testing.T) {
	assert.False(t, storage.IsNotFound(nil))
	assert.True(t, storage.IsNotFound(minio.ErrorResponse{Code: "NoSuchKey", StatusCode: 404}))
	assert.False(t, storage.IsNotFound(errors.New("other")))
}
