package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/futurosresidentes/backoffice/internal/infrastructure/config"
)

func TestNewS3ArchiveValidation(t *testing.T) {
	t.Run("nil config returns error", func(t *testing.T) {
		_, err := NewS3Archive(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration is required")
	})

	t.Run("missing bucket returns error", func(t *testing.T) {
		_, err := NewS3Archive(&config.StorageConfig{
			AccessKey: "test-key",
			SecretKey: "test-secret",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket is required")
	})

	t.Run("missing access key returns error", func(t *testing.T) {
		_, err := NewS3Archive(&config.StorageConfig{
			Bucket:    "agreements",
			SecretKey: "test-secret",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "access key is required")
	})

	t.Run("missing secret key returns error", func(t *testing.T) {
		_, err := NewS3Archive(&config.StorageConfig{
			Bucket:    "agreements",
			AccessKey: "test-key",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "secret key is required")
	})
}

func TestNewS3ArchiveEndpointHandling(t *testing.T) {
	cfg := &config.StorageConfig{
		Bucket:       "agreements",
		AccessKey:    "test-key",
		SecretKey:    "test-secret",
		Endpoint:     "minio.internal:9000",
		UsePathStyle: true,
		KeyPrefix:    "acuerdos/",
	}

	archive, err := NewS3Archive(cfg)
	require.NoError(t, err)
	assert.Equal(t, "agreements", archive.bucket)
	assert.Equal(t, "acuerdos/", archive.keyPrefix)
}
