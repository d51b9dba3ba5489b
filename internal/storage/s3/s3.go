// Package s3 implements the Amazon S3 object sink. Any S3-compatible store
// (MinIO, R2, LocalStack) works by setting an endpoint and path-style
// addressing.
package s3

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"

	"tabetl/internal/storage"
)

// DefaultRegion is used when neither the descriptor nor the environment
// names one.
const DefaultRegion = "us-east-1"

func init() {
	storage.Register("s3", func(ctx context.Context, d storage.Descriptor) (storage.Sink, error) {
		if err := storage.CheckObject(d.Bucket, d.Key); err != nil {
			return nil, fmt.Errorf("s3: %w", err)
		}
		u, err := NewUploader(ctx, d)
		if err != nil {
			return nil, err
		}
		return storage.NewObjectSink(d, d.Bucket, u)
	})
}

// putter is the part of *awss3.Client the uploader needs.
type putter interface {
	PutObject(ctx context.Context, in *awss3.PutObjectInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectOutput, error)
}

// Uploader puts artifacts with PutObject.
type Uploader struct {
	client putter
}

// NewUploader builds an S3 client for d. Static keys in d take precedence
// over the default AWS credential chain (environment, shared config, IAM
// role).
func NewUploader(ctx context.Context, d storage.Descriptor) (*Uploader, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if d.Region != "" {
		opts = append(opts, awsconfig.WithRegion(d.Region))
	}
	if d.AccessKeyID != "" || d.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(d.AccessKeyID, d.SecretAccessKey, "")))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load aws config: %w", err)
	}
	if cfg.Region == "" {
		cfg.Region = DefaultRegion
	}

	client := awss3.NewFromConfig(cfg, func(o *awss3.Options) {
		o.UsePathStyle = d.UsePathStyle
		if d.Endpoint != "" {
			o.BaseEndpoint = aws.String(d.Endpoint)
			o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		}
	})
	return &Uploader{client: client}, nil
}

// Upload implements storage.Uploader.
func (u *Uploader) Upload(ctx context.Context, bucket, key string, a storage.Artifact) error {
	_, err := u.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(a.Body),
		ContentLength: aws.Int64(int64(len(a.Body))),
		ContentType:   aws.String(storage.ContentType),
		Metadata:      map[string]string{storage.ChecksumMetadataKey: a.Checksum},
	})
	if err != nil {
		return fmt.Errorf("s3: put s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}

// Close implements storage.Uploader.
func (u *Uploader) Close() error { return nil }
