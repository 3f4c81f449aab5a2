package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	internalConfig "github.com/sefazor/reelmint-backend/internal/config"
	"github.com/sefazor/reelmint-backend/pkg/apperror"
	"go.uber.org/zap"
)

// StoredArtifact describes a durably persisted object.
type StoredArtifact struct {
	StoragePath string
	PublicURL   string
}

// CloudflareStorage persists generated artifacts to R2 and hands back
// stable public URLs.
type CloudflareStorage struct {
	client    *s3.Client
	http      *http.Client
	bucket    string
	publicURL string
	logger    *zap.Logger
}

func NewCloudflareStorage(cfg *internalConfig.Config, logger *zap.Logger) (*CloudflareStorage, error) {
	r2Resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2.AccountID),
		}, nil
	})

	awsCfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithEndpointResolverWithOptions(r2Resolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.R2.AccessKeyID,
			cfg.R2.SecretAccessKey,
			"",
		)),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &CloudflareStorage{
		client:    s3.NewFromConfig(awsCfg),
		http:      http.DefaultClient,
		bucket:    cfg.R2.Bucket,
		publicURL: strings.TrimRight(cfg.R2.PublicURL, "/"),
		logger:    logger.With(zap.String("component", "r2")),
	}, nil
}

// StoreFromURL downloads a remotely generated artifact and uploads it to R2
// under the given key.
func (s *CloudflareStorage) StoreFromURL(ctx context.Context, remoteURL, key string) (*StoredArtifact, error) {
	s.logger.Info("downloading artifact", zap.String("url", remoteURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, remoteURL, nil)
	if err != nil {
		return nil, apperror.Wrap(500, apperror.CodeStorage, "failed to build download request", err)
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, apperror.Wrap(502, apperror.CodeStorage, "failed to download artifact", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperror.New(502, apperror.CodeStorage,
			fmt.Sprintf("artifact download returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperror.Wrap(502, apperror.CodeStorage, "failed to read artifact body", err)
	}

	s.logger.Info("uploading artifact",
		zap.String("key", key),
		zap.Int("size", len(body)))

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String("video/mp4"),
		CacheControl:  aws.String("public, max-age=3600"),
	})
	if err != nil {
		return nil, apperror.Wrap(502, apperror.CodeStorage, "failed to upload artifact to R2", err)
	}

	artifact := &StoredArtifact{
		StoragePath: key,
		PublicURL:   fmt.Sprintf("%s/%s", s.publicURL, key),
	}
	s.logger.Info("artifact stored", zap.String("public_url", artifact.PublicURL))
	return artifact, nil
}

// Delete removes an object from R2.
func (s *CloudflareStorage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}
