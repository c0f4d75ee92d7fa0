package gdrive

import (
	"context"
	"fmt"

	"mediakit/internal/ports"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
)

const downloadURLBase = "https://drive.google.com/uc?export=download&id="

// Client implements ports.StorageProvider backed by Google Drive.
// Uploads use the object key as the Drive file name inside folderID and return
// the Drive fileId as ObjectKey, which DeleteObject expects.
type Client struct {
	srv      *drive.Service
	folderID string
	public   bool
}

func NewClient(srv *drive.Service, folderID string, public bool) *Client {
	return &Client{srv: srv, folderID: folderID, public: public}
}

func (c *Client) Provider() string { return "gdrive" }

func (c *Client) PutObject(ctx context.Context, in ports.PutObjectInput) (ports.PutObjectOutput, error) {
	if in.ObjectKey == "" {
		return ports.PutObjectOutput{}, fmt.Errorf("object_key is required")
	}

	file := &drive.File{Name: in.ObjectKey}
	if c.folderID != "" {
		file.Parents = []string{c.folderID}
	}

	call := c.srv.Files.Create(file).SupportsAllDrives(true).Fields("id", "size")
	if in.ContentType != "" {
		call = call.Media(in.Reader, googleapi.ContentType(in.ContentType))
	} else {
		call = call.Media(in.Reader)
	}

	created, err := call.Context(ctx).Do()
	if err != nil {
		return ports.PutObjectOutput{}, fmt.Errorf("gdrive upload failed: %w", err)
	}

	if c.public {
		perm := &drive.Permission{Type: "anyone", Role: "reader"}
		if _, err := c.srv.Permissions.Create(created.Id, perm).SupportsAllDrives(true).Context(ctx).Do(); err != nil {
			_ = c.DeleteObject(ctx, created.Id)
			return ports.PutObjectOutput{}, fmt.Errorf("gdrive share failed: %w", err)
		}
	}

	size := created.Size
	if size == 0 {
		size = in.Size
	}
	return ports.PutObjectOutput{ObjectKey: created.Id, URL: downloadURLBase + created.Id, Size: size}, nil
}

func (c *Client) DeleteObject(ctx context.Context, objectKey string) error {
	return c.srv.Files.Delete(objectKey).
		SupportsAllDrives(true).
		Context(ctx).
		Do()
}

func (c *Client) Ping(ctx context.Context) error {
	_, err := c.srv.About.Get().Fields("user").Context(ctx).Do()
	return err
}
