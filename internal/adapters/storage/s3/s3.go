package s3

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"mediakit/internal/ports"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Options configure the S3 client. A non-empty Endpoint targets an
// S3-compatible service (MinIO, R2) and switches URLs to path style.
type Options struct {
	Bucket         string
	Region         string
	Endpoint       string
	AccessKey      string
	SecretKey      string
	ForcePathStyle bool
}

// Client implements ports.StorageProvider on an S3 bucket.
type Client struct {
	api      *s3.Client
	uploader *manager.Uploader
	opts     Options
}

func New(o Options) *Client {
	so := s3.Options{
		Region:       o.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(o.AccessKey, o.SecretKey, ""),
		UsePathStyle: o.ForcePathStyle || o.Endpoint != "",
	}
	if o.Endpoint != "" {
		so.BaseEndpoint = aws.String(o.Endpoint)
	}
	api := s3.New(so)
	return &Client{api: api, uploader: manager.NewUploader(api), opts: o}
}

func (c *Client) Provider() string { return "s3" }

func (c *Client) PutObject(ctx context.Context, in ports.PutObjectInput) (ports.PutObjectOutput, error) {
	if in.ObjectKey == "" {
		return ports.PutObjectOutput{}, fmt.Errorf("object_key is required")
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(c.opts.Bucket),
		Key:    aws.String(in.ObjectKey),
		Body:   in.Reader,
	}
	if in.ContentType != "" {
		input.ContentType = aws.String(in.ContentType)
	}

	if _, err := c.uploader.Upload(ctx, input); err != nil {
		return ports.PutObjectOutput{}, fmt.Errorf("failed to upload object %s to bucket %s: %w", in.ObjectKey, c.opts.Bucket, err)
	}
	return ports.PutObjectOutput{ObjectKey: in.ObjectKey, URL: c.URL(in.ObjectKey), Size: in.Size}, nil
}

func (c *Client) DeleteObject(ctx context.Context, objectKey string) error {
	_, err := c.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.opts.Bucket),
		Key:    aws.String(objectKey),
	})
	return err
}

func (c *Client) Ping(ctx context.Context) error {
	_, err := c.api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(c.opts.Bucket)})
	return err
}

// URL is the public object URL: path style against a custom endpoint,
// virtual-host style against AWS.
func (c *Client) URL(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	escaped := strings.Join(parts, "/")

	switch {
	case c.opts.Endpoint != "":
		return strings.TrimRight(c.opts.Endpoint, "/") + "/" + c.opts.Bucket + "/" + escaped
	case c.opts.ForcePathStyle:
		return fmt.Sprintf("https://s3.%s.amazonaws.com/%s/%s", c.opts.Region, c.opts.Bucket, escaped)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", c.opts.Bucket, c.opts.Region, escaped)
	}
}
