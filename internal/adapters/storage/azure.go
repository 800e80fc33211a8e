package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"

	"github.com/jobrunner/geomkit/internal/config"
	"github.com/jobrunner/geomkit/internal/domain"
	"github.com/jobrunner/geomkit/internal/ports/output"
)

// AzureStorage implements ObjectStorage for Azure Blob Storage.
type AzureStorage struct {
	client    *azblob.Client
	container string
	prefix    string
}

// NewAzureStorage creates a new Azure Blob Storage adapter. A connection
// string takes precedence over account name and key.
func NewAzureStorage(cfg config.AzureConfig) (*AzureStorage, error) {
	client, err := newAzureClient(cfg)
	if err != nil {
		return nil, err
	}
	return &AzureStorage{
		client:    client,
		container: cfg.Container,
		prefix:    strings.Trim(cfg.Prefix, "/"),
	}, nil
}

func newAzureClient(cfg config.AzureConfig) (*azblob.Client, error) {
	if cfg.ConnectionString != "" {
		return azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
	}
	cred, err := azblob.NewSharedKeyCredential(cfg.AccountName, cfg.AccountKey)
	if err != nil {
		return nil, err
	}
	url := fmt.Sprintf("https://%s.blob.core.windows.net/", cfg.AccountName)
	return azblob.NewClientWithSharedKeyCredential(url, cred, nil)
}

// List returns all GeoJSON blobs below the prefix.
func (s *AzureStorage) List(ctx context.Context) ([]output.StorageObject, error) {
	opts := &azblob.ListBlobsFlatOptions{}
	if s.prefix != "" {
		prefix := s.prefix + "/"
		opts.Prefix = &prefix
	}

	var objects []output.StorageObject
	pager := s.client.NewListBlobsFlatPager(s.container, opts)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, blob := range page.Segment.BlobItems {
			if obj, ok := s.toObject(blob); ok {
				objects = append(objects, obj)
			}
		}
	}
	return objects, nil
}

// toObject converts a listed blob. Blobs that are not GeoJSON are skipped.
func (s *AzureStorage) toObject(blob *container.BlobItem) (output.StorageObject, bool) {
	if blob.Name == nil || !IsCollectionKey(*blob.Name) {
		return output.StorageObject{}, false
	}

	obj := output.StorageObject{Key: trimKey(s.prefix, *blob.Name)}
	if p := blob.Properties; p != nil {
		if p.ContentLength != nil {
			obj.Size = *p.ContentLength
		}
		if p.LastModified != nil {
			obj.LastModified = p.LastModified.Unix()
		}
		if p.ETag != nil {
			obj.ETag = strings.Trim(string(*p.ETag), `"`)
		}
	}
	return obj, true
}

// GetReader streams the blob stored under key.
func (s *AzureStorage) GetReader(ctx context.Context, key string) (io.ReadCloser, error) {
	resp, err := s.client.DownloadStream(ctx, s.container, joinKey(s.prefix, key), nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, key)
		}
		return nil, err
	}
	return resp.Body, nil
}

// Exists checks for the blob by reading its properties.
func (s *AzureStorage) Exists(ctx context.Context, key string) (bool, error) {
	blob := s.client.ServiceClient().
		NewContainerClient(s.container).
		NewBlobClient(joinKey(s.prefix, key))

	if _, err := blob.GetProperties(ctx, nil); err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
