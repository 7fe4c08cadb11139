package archive

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/marmos91/dittoview/internal/logger"
)

// PutObjectAPI is the subset of *s3.Client the sink needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config configures an S3 sink.
type S3Config struct {
	Bucket string
	Key    string
	Region string

	// Endpoint overrides the S3 endpoint (MinIO, Localstack). Enables
	// path-style addressing.
	Endpoint string

	// AccessKeyID and SecretAccessKey select static credentials. When empty
	// the default credential chain is used.
	AccessKeyID     string
	SecretAccessKey string

	// MaxRetries for transient S3 failures. Default: 10
	MaxRetries int
}

// S3Sink uploads the archive as a single object.
//
// The stream is spooled to a temporary file first so the upload has a known
// length and a seekable body.
type S3Sink struct {
	client PutObjectAPI
	bucket string
	key    string
}

// NewS3Sink builds an S3 client from cfg and returns a sink using it.
//
// Parameters:
//   - ctx: Context for loading the AWS configuration
//   - cfg: Bucket, key and connection settings
//
// Returns:
//   - *S3Sink: Ready to use sink
//   - error: Missing bucket/key/region or AWS configuration failure
func NewS3Sink(ctx context.Context, cfg S3Config) (*S3Sink, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 sink: bucket is required")
	}
	if cfg.Key == "" {
		return nil, fmt.Errorf("s3 sink: key is required")
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("s3 sink: region is required")
	}

	var configOptions []func(*awsConfig.LoadOptions) error
	configOptions = append(configOptions, awsConfig.WithRegion(cfg.Region))

	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		credProvider := credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)
		configOptions = append(configOptions, awsConfig.WithCredentialsProvider(credProvider))
	}

	maxRetries := cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = 10
	}
	configOptions = append(configOptions, awsConfig.WithRetryer(func() aws.Retryer {
		return retry.NewStandard(func(o *retry.StandardOptions) {
			o.MaxAttempts = maxRetries
		})
	}))

	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, configOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	logger.Info("S3 archive sink initialized: bucket=%s, key=%s, region=%s", cfg.Bucket, cfg.Key, cfg.Region)
	return NewS3SinkWithClient(client, cfg.Bucket, cfg.Key), nil
}

// NewS3SinkWithClient creates a sink around an existing client.
func NewS3SinkWithClient(client PutObjectAPI, bucket, key string) *S3Sink {
	return &S3Sink{client: client, bucket: bucket, key: key}
}

func (s *S3Sink) Name() string {
	return fmt.Sprintf("s3://%s/%s", s.bucket, s.key)
}

func (s *S3Sink) Store(ctx context.Context, r io.Reader) (int64, error) {
	spool, err := os.CreateTemp("", "dittoview-archive-*.zip")
	if err != nil {
		return 0, fmt.Errorf("create spool file: %w", err)
	}
	defer func() {
		_ = spool.Close()
		_ = os.Remove(spool.Name())
	}()

	n, err := io.Copy(spool, r)
	if err != nil {
		return 0, err
	}
	if _, err := spool.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("rewind spool file: %w", err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key),
		Body:          spool,
		ContentLength: aws.Int64(n),
		ContentType:   aws.String("application/zip"),
	})
	if err != nil {
		return 0, fmt.Errorf("put object: %w", err)
	}

	return n, nil
}
