package storage

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/semmidev/mysqlbackup/internal/config"
)

type GDriveStorage struct {
	service  *drive.Service
	folderID string
}

func NewGDrive(ctx context.Context, cfg *config.UploadTarget) (*GDriveStorage, error) {
	if cfg.CredentialsFile == "" {
		return nil, fmt.Errorf("gdrive: credentials_file is required")
	}

	service, err := drive.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	return &GDriveStorage{
		service:  service,
		folderID: cfg.FolderID,
	}, nil
}

func (g *GDriveStorage) Upload(ctx context.Context, localPath string, remoteName string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer file.Close()

	metadata := &drive.File{
		Name:     remoteName,
		MimeType: "application/zip",
	}
	if g.folderID != "" {
		metadata.Parents = []string{g.folderID}
	}

	_, err = g.service.Files.Create(metadata).
		Media(file).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to upload to gdrive: %w", err)
	}

	return nil
}
