package s3

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendbot/internal/config"
)

func TestClientOptions_DefaultEndpoint(t *testing.T) {
	assert.Nil(t, clientOptions(&config.S3Config{Region: "us-east-1"}))
}

func TestGetPresignedURL_CustomEndpoint(t *testing.T) {
	store, err := NewObjectStore(context.Background(), &config.S3Config{
		Region:    "us-east-1",
		Endpoint:  "http://localhost:9000",
		AccessKey: "minio",
		SecretKey: "minio-secret",
	})
	require.NoError(t, err)

	raw, err := store.GetPresignedURL(context.Background(), "receipts", "inbox/doc-1", 300)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.Equal(t, "/receipts/inbox/doc-1", u.Path)
	assert.Equal(t, "300", u.Query().Get("X-Amz-Expires"))
	assert.True(t, strings.HasPrefix(u.Query().Get("X-Amz-Credential"), "minio/"))
}
