package storage

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liftlog/workout-engine/internal/config"
)

func TestIsObjectKey(t *testing.T) {
	assert.True(t, IsObjectKey("catalog/row.jpg"))
	assert.False(t, IsObjectKey("https://cdn.example.com/row.jpg"))
	assert.False(t, IsObjectKey("HTTP://cdn.example.com/row.jpg"))
	assert.False(t, IsObjectKey(""))
}

func TestPassthrough(t *testing.T) {
	url, err := Passthrough{}.SignImageURL(context.Background(), "catalog/row.jpg")
	require.NoError(t, err)
	assert.Equal(t, "catalog/row.jpg", url)
}

func TestS3SignerPresignsObjectKeys(t *testing.T) {
	ctx := context.Background()
	signer, err := NewS3Signer(ctx, config.S3Config{
		Endpoint:        "http://localhost:9000",
		Region:          "us-east-1",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio-secret",
		BucketName:      "exercise-images",
		PresignExpiry:   5 * time.Minute,
	}, zerolog.Nop())
	require.NoError(t, err)

	url, err := signer.SignImageURL(ctx, "catalog/rowing-machine.jpg")
	require.NoError(t, err)
	assert.Contains(t, url, "http://localhost:9000/exercise-images/catalog/rowing-machine.jpg")
	assert.Contains(t, url, "X-Amz-Signature=")
	assert.Contains(t, url, "X-Amz-Expires=300")

	absolute := "https://cdn.example.com/plank.png"
	url, err = signer.SignImageURL(ctx, absolute)
	require.NoError(t, err)
	assert.Equal(t, absolute, url)
}
