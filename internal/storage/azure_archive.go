package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/google/uuid"
)

// ImageArchive keeps a copy of every scanned photo
type ImageArchive interface {
	// Archive stores data and returns the object name it was stored under
	Archive(ctx context.Context, data []byte, contentType string) (string, error)
}

// blobUploader is the slice of *azblob.Client the archive uses
type blobUploader interface {
	UploadBuffer(ctx context.Context, containerName string, blobName string, buffer []byte, o *azblob.UploadBufferOptions) (azblob.UploadBufferResponse, error)
}

type azureArchive struct {
	client    blobUploader
	container string
	now       func() time.Time
	newID     func() string
}

// NewAzureArchive creates an archive writing to the given blob container
func NewAzureArchive(accountName, accountKey, container string) (ImageArchive, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("invalid storage credentials: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}

	return newAzureArchive(client, container), nil
}

func newAzureArchive(client blobUploader, container string) *azureArchive {
	return &azureArchive{
		client:    client,
		container: container,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

func (a *azureArchive) Archive(ctx context.Context, data []byte, contentType string) (string, error) {
	name := a.blobName(contentType)
	ct := contentType
	opts := &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &ct},
	}

	if _, err := a.client.UploadBuffer(ctx, a.container, name, data, opts); err != nil {
		return "", fmt.Errorf("upload failed: %w", err)
	}
	return name, nil
}

// blobName lays scans out by UTC day: scans/YYYY/MM/DD/<uuid>.<ext>
func (a *azureArchive) blobName(contentType string) string {
	day := a.now().UTC().Format("2006/01/02")
	return path.Join("scans", day, a.newID()+"."+extensionFor(contentType))
}

func extensionFor(contentType string) string {
	mediaType := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	switch mediaType {
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	case "image/webp":
		return "webp"
	case "image/bmp":
		return "bmp"
	case "image/tiff":
		return "tiff"
	default:
		return "bin"
	}
}

// nopArchive discards everything
type nopArchive struct{}

// NewNopArchive returns an ImageArchive used when archiving is disabled
func NewNopArchive() ImageArchive {
	return nopArchive{}
}

func (nopArchive) Archive(context.Context, []byte, string) (string, error) {
	return "", nil
}
