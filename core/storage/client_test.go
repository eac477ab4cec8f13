package storage_test

import (
	"context"
	"errors"
	"testing"

	"parent-reconciler/core/storage"
	"parent-reconciler/core/storage/mocks"

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
			UseSSL:    false,
			Bucket:    "test-bucket",
			Region:    "us-east-1",
		}

		client, err := storage.NewClient(cfg)
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("EndpointWithHTTP", func(t *testing.T) {
		cfg := storage.Config{
			Endpoint:  "http://localhost:9000",
			AccessKey: "testkey",
			SecretKey: "testsecret",
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
		client := new(mocks.Client)
		client.On("BucketExists", ctx, "reports").Return(true, nil)

		assert.NoError(t, storage.EnsureBucket(ctx, client, "reports", "us-east-1"))
		client.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Creates", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", ctx, "reports").Return(false, nil)
		client.On("MakeBucket", ctx, "reports", minio.MakeBucketOptions{Region: "us-east-1"}).Return(nil)

		assert.NoError(t, storage.EnsureBucket(ctx, client, "reports", "us-east-1"))
		client.AssertExpectations(t)
	})

	t.Run("CheckFails", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", ctx, "reports").Return(false, errors.New("access denied"))

		err := storage.EnsureBucket(ctx, client, "reports", "")
		assert.ErrorContains(t, err, "failed to check bucket existence")
	})

	t.Run("CreateFails", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", ctx, "reports").Return(false, nil)
		client.On("MakeBucket", ctx, "reports", mock.Anything).Return(errors.New("quota"))

		err := storage.EnsureBucket(ctx, client, "reports", "")
		assert.ErrorContains(t, err, "failed to create bucket reports")
	})
}
