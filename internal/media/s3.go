package media

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"food-catalog/internal/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"go.uber.org/zap"
)

// S3Store keeps images in an S3 compatible bucket
type S3Store struct {
	client    s3iface.S3API
	bucket    string
	region    string
	publicURL string
	options   UploadOptions
	logger    *zap.Logger
	now       func() time.Time
}

// NewS3Store creates a session from static credentials
func NewS3Store(cfg config.MediaConfig, logger *zap.Logger) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("media bucket is not configured")
	}

	awsCfg := &aws.Config{
		Region: aws.String(cfg.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		),
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return newS3Store(s3.New(sess), cfg, logger), nil
}

func newS3Store(client s3iface.S3API, cfg config.MediaConfig, logger *zap.Logger) *S3Store {
	return &S3Store{
		client:    client,
		bucket:    cfg.Bucket,
		region:    cfg.Region,
		publicURL: cfg.PublicURL,
		options:   DefaultUploadOptions(cfg.Folder, cfg.MaxUploadBytes),
		logger:    logger,
		now:       time.Now,
	}
}

// Upload puts the file under a generated key with a public-read ACL
func (s *S3Store) Upload(ctx context.Context, file *File) (*UploadResult, error) {
	if err := s.options.ValidateFile(file); err != nil {
		return nil, err
	}

	data, err := readAllLimited(file.Body, s.options.MaxSize)
	if err != nil {
		return nil, err
	}

	contentType := file.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	key := objectKey(s.options.Folder, file.Filename, s.now())

	_, err = s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
		ACL:           aws.String(s3.ObjectCannedACLPublicRead),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	s.logger.Debug("Uploaded image", zap.String("key", key), zap.Int("bytes", len(data)))

	return &UploadResult{URL: s.url(key), Key: key}, nil
}

// Delete removes the object stored under key
func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}

	s.logger.Debug("Deleted image", zap.String("key", key))
	return nil
}

func (s *S3Store) url(key string) string {
	if s.publicURL != "" {
		return fmt.Sprintf("%s/%s", s.publicURL, key)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
