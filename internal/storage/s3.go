package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfg "github.com/aws/aws-sdk-go-v2/config" // Alias config to avoid clash
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"liftlog/workout-engine/internal/config"
)

// s3Signer implements ImageSigner with presigned GET URLs on an S3-compatible backend.
type s3Signer struct {
	presignClient *s3.PresignClient
	bucketName    string
	expires       time.Duration
	log           zerolog.Logger
}

// NewS3Signer creates the presigning client for the configured bucket.
func NewS3Signer(ctx context.Context, cfg config.S3Config, log zerolog.Logger) (ImageSigner, error) {
	awsSDKConfig, err := awsCfg.LoadDefaultConfig(ctx,
		awsCfg.WithRegion(cfg.Region),
		awsCfg.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load AWS SDK config for S3: %w", err)
	}

	s3Client := s3.NewFromConfig(awsSDKConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			// S3-compatible services (MinIO, Spaces) need their own endpoint and path-style addressing.
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	expires := cfg.PresignExpiry
	if expires <= 0 {
		expires = DefaultPresignedURLExpiry
	}

	log.Info().Str("endpoint", cfg.Endpoint).Str("bucket", cfg.BucketName).Msg("S3 image signer initialized")
	return &s3Signer{
		presignClient: s3.NewPresignClient(s3Client),
		bucketName:    cfg.BucketName,
		expires:       expires,
		log:           log,
	}, nil
}

// SignImageURL creates a temporary GET URL for object keys.
func (s *s3Signer) SignImageURL(ctx context.Context, ref string) (string, error) {
	if !IsObjectKey(ref) {
		return ref, nil
	}
	presignParams := &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(ref),
	}
	req, err := s.presignClient.PresignGetObject(ctx, presignParams, s3.WithPresignExpires(s.expires))
	if err != nil {
		s.log.Error().Err(err).Str("key", ref).Msg("failed to presign image URL")
		return "", err
	}
	return req.URL, nil
}
