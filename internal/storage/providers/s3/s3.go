// Package s3 implements storage.Backend on an S3-compatible bucket.
//
// Objects are stored under "{prefix}{entryID}/{mediaID}_{filename}" and the
// persisted location is the object key. Links are presigned GET URLs.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/mrlokans/journal/internal/storage"
)

const linkExpiry = 15 * time.Minute

// API is the subset of the S3 client the backend uses.
type API interface {
	PutObject(ctx context.Context, in *awss3.PutObjectInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *awss3.DeleteObjectInput, optFns ...func(*awss3.Options)) (*awss3.DeleteObjectOutput, error)
	DeleteObjects(ctx context.Context, in *awss3.DeleteObjectsInput, optFns ...func(*awss3.Options)) (*awss3.DeleteObjectsOutput, error)
	ListObjectsV2(ctx context.Context, in *awss3.ListObjectsV2Input, optFns ...func(*awss3.Options)) (*awss3.ListObjectsV2Output, error)
}

// Presigner signs GET requests for stored objects.
type Presigner interface {
	PresignGetObject(ctx context.Context, in *awss3.GetObjectInput, optFns ...func(*awss3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Config holds the connection settings. Endpoint is only needed for
// S3-compatible services such as MinIO.
type Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Prefix    string
}

// Backend implements storage.Backend for S3.
type Backend struct {
	api       API
	presigner Presigner
	bucket    string
	prefix    string
}

var _ storage.Backend = (*Backend)(nil)

var loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

// New builds an S3 client from cfg.
func New(ctx context.Context, cfg Config) (*Backend, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewWithClient(client, awss3.NewPresignClient(client), cfg.Bucket, cfg.Prefix), nil
}

// NewWithClient wires the backend to an existing client.
func NewWithClient(api API, presigner Presigner, bucket, prefix string) *Backend {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Backend{api: api, presigner: presigner, bucket: bucket, prefix: prefix}
}

func (b *Backend) Upload(ctx context.Context, key string, content io.Reader) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid media key %q", key)
	}
	objectKey := b.prefix + key
	_, err := b.api.PutObject(ctx, &awss3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(objectKey),
		Body:   content,
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", objectKey, err)
	}
	return objectKey, nil
}

func (b *Backend) Delete(ctx context.Context, location string) error {
	if !b.manages(location) {
		return storage.ErrNotManaged
	}
	_, err := b.api.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(location),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", location, err)
	}
	return nil
}

func (b *Backend) DeleteDir(ctx context.Context, dir string) error {
	if dir == "" || strings.Contains(dir, "/") {
		return fmt.Errorf("invalid media dir %q", dir)
	}

	paginator := awss3.NewListObjectsV2Paginator(b.api, &awss3.ListObjectsV2Input{
		Bucket: aws.String(b.bucket),
		Prefix: aws.String(b.prefix + dir + "/"),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("list %s: %w", dir, err)
		}
		if len(page.Contents) == 0 {
			continue
		}

		ids := make([]types.ObjectIdentifier, 0, len(page.Contents))
		for _, obj := range page.Contents {
			ids = append(ids, types.ObjectIdentifier{Key: obj.Key})
		}
		out, err := b.api.DeleteObjects(ctx, &awss3.DeleteObjectsInput{
			Bucket: aws.String(b.bucket),
			Delete: &types.Delete{Objects: ids, Quiet: aws.Bool(true)},
		})
		if err != nil {
			return fmt.Errorf("delete %s: %w", dir, err)
		}
		if len(out.Errors) > 0 {
			return fmt.Errorf("delete %s: %d objects failed, first: %s",
				dir, len(out.Errors), aws.ToString(out.Errors[0].Message))
		}
	}
	return nil
}

func (b *Backend) ListDirs(ctx context.Context) ([]storage.FileInfo, error) {
	var (
		order []string
		byDir = make(map[string]*storage.FileInfo)
	)

	paginator := awss3.NewListObjectsV2Paginator(b.api, &awss3.ListObjectsV2Input{
		Bucket: aws.String(b.bucket),
		Prefix: aws.String(b.prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list objects: %w", err)
		}
		for _, obj := range page.Contents {
			rel := strings.TrimPrefix(aws.ToString(obj.Key), b.prefix)
			dir, _, found := strings.Cut(rel, "/")
			if !found || dir == "" {
				continue
			}

			info, ok := byDir[dir]
			if !ok {
				info = &storage.FileInfo{Name: dir, Path: b.prefix + dir, IsDir: true}
				byDir[dir] = info
				order = append(order, dir)
			}
			info.Size += aws.ToInt64(obj.Size)
			if modified := aws.ToTime(obj.LastModified); modified.After(info.ModifiedAt) {
				info.ModifiedAt = modified
			}
		}
	}

	dirs := make([]storage.FileInfo, 0, len(order))
	for _, dir := range order {
		dirs = append(dirs, *byDir[dir])
	}
	return dirs, nil
}

func (b *Backend) URL(ctx context.Context, location string) (string, error) {
	if !b.manages(location) {
		return "", storage.ErrNotManaged
	}
	req, err := b.presigner.PresignGetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(location),
	}, awss3.WithPresignExpires(linkExpiry))
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", location, err)
	}
	return req.URL, nil
}

func (b *Backend) manages(location string) bool {
	rel := strings.TrimPrefix(location, b.prefix)
	return location != "" && strings.HasPrefix(location, b.prefix) && strings.Contains(rel, "/")
}
