package storage

import (
	"context"
	"fmt"

	"mediakit/internal/adapters/storage/gcs"
	"mediakit/internal/adapters/storage/gdrive"
	"mediakit/internal/adapters/storage/localfs"
	"mediakit/internal/adapters/storage/s3"
	"mediakit/internal/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// NewProvider builds the provider selected by cfg.Provider. The bucket is the
// GCS/S3 bucket, the Drive folder id, or the localfs subdirectory.
func NewProvider(ctx context.Context, cfg config.StorageConfig) (Provider, error) {
	switch cfg.Provider {
	case config.ProviderGCS:
		return gcs.New(ctx, cfg.Bucket, cfg.GCSCredentialsFile, cfg.GCSMakePublic)

	case config.ProviderS3:
		return s3.New(s3.Options{
			Bucket:         cfg.Bucket,
			Region:         cfg.S3Region,
			Endpoint:       cfg.S3Endpoint,
			AccessKey:      cfg.S3AccessKey,
			SecretKey:      cfg.S3SecretKey,
			ForcePathStyle: cfg.S3ForcePathStyle,
		}), nil

	case config.ProviderGDrive:
		return newGDriveProvider(ctx, cfg)

	case config.ProviderLocalFS:
		return localfs.New(cfg.LocalRoot, cfg.Bucket, cfg.PublicBaseURL), nil

	default:
		return nil, fmt.Errorf("unknown storage provider: %s", cfg.Provider)
	}
}

func newGDriveProvider(ctx context.Context, cfg config.StorageConfig) (Provider, error) {
	conf := &oauth2.Config{
		ClientID:     cfg.GDriveClientID,
		ClientSecret: cfg.GDriveClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{drive.DriveFileScope},
	}

	tok := &oauth2.Token{RefreshToken: cfg.GDriveRefreshToken}
	httpClient := conf.Client(ctx, tok)

	srv, err := drive.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, err
	}

	return gdrive.NewClient(srv, cfg.Bucket, true), nil
}
