package assets

import (
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Store serves assets from an S3 bucket under a key prefix.
//
// Example:
//
//	cfg, _ := config.LoadDefaultConfig(context.Background())
//	store := assets.NewS3Store(s3.NewFromConfig(cfg), "my-bucket", "assets/")
type S3Store struct {
	client S3Client
	bucket string
	prefix string
}

// S3Client is the slice of the S3 API the store uses.
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// NewS3Store creates a store reading from bucket under prefix.
func NewS3Store(client S3Client, bucket, prefix string) *S3Store {
	return &S3Store{client: client, bucket: bucket, prefix: prefix}
}

// Open implements Store. The object's own ContentType wins over the
// extension guess when S3 has one.
func (s *S3Store) Open(ctx context.Context, name string) (io.ReadCloser, string, error) {
	clean, ok := cleanName(name)
	if !ok {
		return nil, "", ErrNotFound
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.prefix + clean),
	})
	if err != nil {
		return nil, "", ErrNotFound
	}
	ct := contentType(clean)
	if out.ContentType != nil && *out.ContentType != "" {
		ct = *out.ContentType
	}
	return out.Body, ct, nil
}
