// Package azureblob implements blobstore.Store against an Azure Storage
// block blob container via azure-sdk-for-go/sdk/storage/azblob, using
// the chunk key as the blob name.
package azureblob

import (
	"context"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blockblob"

	"github.com/jchristn/dedupe/internal/blobstore"
)

// Client is the subset of *azblob.Client the Store needs, so tests can
// substitute a fake without a live storage account.
type Client interface {
	UploadBuffer(ctx context.Context, containerName, blobName string, buffer []byte, o *blockblob.UploadBufferOptions) (blockblob.UploadBufferResponse, error)
	DownloadStream(ctx context.Context, containerName, blobName string, o *blob.DownloadStreamOptions) (blob.DownloadStreamResponse, error)
	DeleteBlob(ctx context.Context, containerName, blobName string, o *blob.DeleteOptions) (blob.DeleteResponse, error)
}

// Store is a blobstore.Store backed by one Azure Storage container.
type Store struct {
	client    Client
	container string
}

// New returns a Store against container using client.
func New(client Client, container string) *Store {
	return &Store{client: client, container: container}
}

func (s *Store) WriteChunk(ctx context.Context, key string, data []byte) error {
	if _, err := s.client.UploadBuffer(ctx, s.container, key, data, nil); err != nil {
		return fmt.Errorf("azure blob upload: %w", err)
	}
	return nil
}

func (s *Store) ReadChunk(ctx context.Context, key string) ([]byte, error) {
	resp, err := s.client.DownloadStream(ctx, s.container, key, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil, blobstore.ErrChunkNotFound
		}
		return nil, fmt.Errorf("azure blob download: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("azure blob read stream: %w", err)
	}
	return data, nil
}

func (s *Store) DeleteChunk(ctx context.Context, key string) error {
	_, err := s.client.DeleteBlob(ctx, s.container, key, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.BlobNotFound) {
		return fmt.Errorf("azure blob delete: %w", err)
	}
	return nil
}

var _ blobstore.Store = (*Store)(nil)
