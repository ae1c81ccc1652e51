package storage

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/base64"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"iiifingest/internal/errs"
)

// S3API is the subset of the S3 client used by S3Store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store uploads objects to S3.
type S3Store struct {
	api S3API
}

// NewS3Store builds an S3Store from the default AWS credential chain.
func NewS3Store(ctx context.Context, region string) (*S3Store, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errs.Wrap(errs.ErrConfiguration, err, "storage", "load aws config")
	}
	return &S3Store{api: s3.NewFromConfig(cfg)}, nil
}

// NewS3StoreFromAPI wraps an existing S3 client; used by tests and
// callers that manage their own AWS session.
func NewS3StoreFromAPI(api S3API) *S3Store {
	return &S3Store{api: api}
}

// Put uploads body under bucket/key with an MD5 content check so a
// corrupted transfer is rejected by the service rather than silently
// stored.
func (s *S3Store) Put(ctx context.Context, body io.Reader, bucket, key string) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", errs.Wrap(errs.ErrStorage, err, "storage", "read upload body")
	}
	sum := md5.Sum(data)
	contentMD5 := base64.StdEncoding.EncodeToString(sum[:])

	_, err = s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:     aws.String(bucket),
		Key:        aws.String(key),
		Body:       bytes.NewReader(data),
		ContentMD5: aws.String(contentMD5),
	})
	if err != nil {
		return "", errs.Wrap(errs.ErrStorage, err, "storage", fmt.Sprintf("put %s/%s", bucket, key))
	}
	return key, nil
}

// PutFile uploads a local file under bucket/key.
func (s *S3Store) PutFile(ctx context.Context, path, bucket, key string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", errs.Wrap(errs.ErrStorage, err, "storage", "open upload source")
	}
	defer file.Close()

	_, err = s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   file,
	})
	if err != nil {
		return "", errs.Wrap(errs.ErrStorage, err, "storage", fmt.Sprintf("put %s/%s", bucket, key))
	}
	return key, nil
}
