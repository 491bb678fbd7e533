// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package backup

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Options configures the remote copy of backups.
type S3Options struct {
	Bucket string
	Region string

	// Endpoint selects an S3-compatible service and switches to path-style URLs.
	Endpoint string

	AccessKeyID     string
	SecretAccessKey string
}

// S3Uploader copies snapshots to an S3 bucket.
type S3Uploader struct {
	client *s3.Client
	bucket string
}

func NewS3Uploader(ctx context.Context, options S3Options) (*S3Uploader, error) {
	if options.Bucket == "" {
		return nil, errors.New("backup: S3 bucket is required")
	}

	loadOptions := []func(*config.LoadOptions) error{config.WithRegion(options.Region)}
	if options.AccessKeyID != "" && options.SecretAccessKey != "" {
		loadOptions = append(loadOptions, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(options.AccessKeyID, options.SecretAccessKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOptions...)
	if err != nil {
		return nil, fmt.Errorf("backup: load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if options.Endpoint != "" {
			o.BaseEndpoint = aws.String(options.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Uploader{client: client, bucket: options.Bucket}, nil
}

func (uploader *S3Uploader) Upload(ctx context.Context, key string, body io.Reader) error {
	_, err := uploader.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(uploader.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String("application/vnd.sqlite3"),
	})
	if err != nil {
		return fmt.Errorf("backup: upload %s: %w", key, err)
	}
	return nil
}

func (uploader *S3Uploader) Delete(ctx context.Context, key string) error {
	_, err := uploader.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(uploader.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("backup: delete %s: %w", key, err)
	}
	return nil
}
