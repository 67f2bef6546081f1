package s3_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pocketpilot/internal/config"
	"pocketpilot/internal/storage/s3"
)

func TestNewReceiptStore_StaticCredentials(t *testing.T) {
	store, err := s3.NewReceiptStore(context.Background(), &config.S3Config{
		Region:    "ap-south-1",
		Endpoint:  "http://localhost:9000",
		AccessKey: "minio",
		SecretKey: "minio-secret",
	})
	require.NoError(t, err)

	url, err := store.GetPresignedURL(context.Background(), "receipts", "receipts/a/b/c.jpg", 300)
	require.NoError(t, err)
	assert.Contains(t, url, "http://localhost:9000/receipts/receipts/a/b/c.jpg")
	assert.Contains(t, url, "X-Amz-Expires=300")
}
