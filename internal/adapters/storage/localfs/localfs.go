package localfs

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"mediakit/internal/ports"
)

// LocalFS implements ports.StorageProvider using the local filesystem.
// Objects live under root/bucket; URLs are built from publicBase, which is
// expected to serve that directory (a CDN or the API's /files mount).
type LocalFS struct {
	root       string
	publicBase string
}

func New(root, bucket, publicBase string) *LocalFS {
	return &LocalFS{
		root:       filepath.Join(root, bucket),
		publicBase: strings.TrimRight(publicBase, "/"),
	}
}

func (l *LocalFS) Provider() string { return "localfs" }

// Root is the directory objects are written to.
func (l *LocalFS) Root() string { return l.root }

func (l *LocalFS) PutObject(ctx context.Context, in ports.PutObjectInput) (ports.PutObjectOutput, error) {
	dst, err := l.pathFor(in.ObjectKey)
	if err != nil {
		return ports.PutObjectOutput{}, err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return ports.PutObjectOutput{}, err
	}

	outF, err := os.Create(dst)
	if err != nil {
		return ports.PutObjectOutput{}, err
	}

	n, err := io.Copy(outF, in.Reader)
	if closeErr := outF.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(dst)
		return ports.PutObjectOutput{}, err
	}

	return ports.PutObjectOutput{ObjectKey: in.ObjectKey, URL: l.urlFor(in.ObjectKey, dst), Size: n}, nil
}

func (l *LocalFS) DeleteObject(ctx context.Context, objectKey string) error {
	p, err := l.pathFor(objectKey)
	if err != nil {
		return err
	}
	return os.Remove(p)
}

func (l *LocalFS) Ping(ctx context.Context) error {
	if err := os.MkdirAll(l.root, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(l.root, ".ping-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}

// pathFor rejects keys that would escape root.
func (l *LocalFS) pathFor(objectKey string) (string, error) {
	if objectKey == "" {
		return "", fmt.Errorf("object_key is required")
	}
	p := filepath.Join(l.root, filepath.FromSlash(objectKey))
	rel, err := filepath.Rel(l.root, p)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("invalid object_key %q", objectKey)
	}
	return p, nil
}

func (l *LocalFS) urlFor(objectKey, path string) string {
	if l.publicBase == "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
	}
	parts := strings.Split(objectKey, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return l.publicBase + "/" + strings.Join(parts, "/")
}
