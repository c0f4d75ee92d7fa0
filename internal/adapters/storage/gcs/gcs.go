package gcs

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"mediakit/internal/ports"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

const publicURLBase = "https://storage.googleapis.com/"

// Client implements ports.StorageProvider on a Google Cloud Storage bucket.
type Client struct {
	client     *storage.Client
	bucket     string
	makePublic bool
}

// New opens a storage client. An empty credentialsFile uses application
// default credentials.
func New(ctx context.Context, bucket, credentialsFile string, makePublic bool, opts ...option.ClientOption) (*Client, error) {
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	c, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage.NewClient: %w", err)
	}
	return &Client{client: c, bucket: bucket, makePublic: makePublic}, nil
}

func (c *Client) Provider() string { return "gcs" }

func (c *Client) PutObject(ctx context.Context, in ports.PutObjectInput) (ports.PutObjectOutput, error) {
	if in.ObjectKey == "" {
		return ports.PutObjectOutput{}, fmt.Errorf("object_key is required")
	}

	obj := c.client.Bucket(c.bucket).Object(in.ObjectKey)
	wc := obj.NewWriter(ctx)
	if in.ContentType != "" {
		wc.ContentType = in.ContentType
	}

	n, err := io.Copy(wc, in.Reader)
	if err != nil {
		_ = wc.Close()
		return ports.PutObjectOutput{}, fmt.Errorf("io.Copy: %w", err)
	}
	if err := wc.Close(); err != nil {
		return ports.PutObjectOutput{}, fmt.Errorf("Writer.Close: %w", err)
	}

	if c.makePublic {
		if err := obj.ACL().Set(ctx, storage.AllUsers, storage.RoleReader); err != nil {
			return ports.PutObjectOutput{}, fmt.Errorf("make public %s: %w", in.ObjectKey, err)
		}
	}

	return ports.PutObjectOutput{ObjectKey: in.ObjectKey, URL: PublicURL(c.bucket, in.ObjectKey), Size: n}, nil
}

func (c *Client) DeleteObject(ctx context.Context, objectKey string) error {
	return c.client.Bucket(c.bucket).Object(objectKey).Delete(ctx)
}

func (c *Client) Ping(ctx context.Context) error {
	_, err := c.client.Bucket(c.bucket).Attrs(ctx)
	return err
}

// Close releases the underlying client.
func (c *Client) Close() error {
	return c.client.Close()
}

// PublicURL is the anonymous-read URL of an object.
func PublicURL(bucket, key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return publicURLBase + bucket + "/" + strings.Join(parts, "/")
}
