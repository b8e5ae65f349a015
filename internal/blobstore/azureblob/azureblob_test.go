package azureblob

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blockblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"github.com/jchristn/dedupe/internal/blobstore"
	"github.com/jchristn/dedupe/internal/blobstore/blobstoretest"
)

// fakeClient is an in-memory stand-in for *azblob.Client satisfying the
// Client interface, so the conformance suite runs without a live
// storage account.
type fakeClient struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newFakeClient() *fakeClient {
	return &fakeClient{blobs: make(map[string][]byte)}
}

func (f *fakeClient) UploadBuffer(_ context.Context, _, blobName string, buffer []byte, _ *blockblob.UploadBufferOptions) (blockblob.UploadBufferResponse, error) {
	cp := make([]byte, len(buffer))
	copy(cp, buffer)
	f.mu.Lock()
	f.blobs[blobName] = cp
	f.mu.Unlock()
	return blockblob.UploadBufferResponse{}, nil
}

func (f *fakeClient) DownloadStream(_ context.Context, _, blobName string, _ *blob.DownloadStreamOptions) (blob.DownloadStreamResponse, error) {
	f.mu.Lock()
	data, ok := f.blobs[blobName]
	f.mu.Unlock()
	if !ok {
		return blob.DownloadStreamResponse{}, &azcore.ResponseError{ErrorCode: string(bloberror.BlobNotFound)}
	}
	resp := blob.DownloadStreamResponse{}
	resp.Body = io.NopCloser(bytes.NewReader(data))
	return resp, nil
}

func (f *fakeClient) DeleteBlob(_ context.Context, _, blobName string, _ *blob.DeleteOptions) (blob.DeleteResponse, error) {
	f.mu.Lock()
	delete(f.blobs, blobName)
	f.mu.Unlock()
	return blob.DeleteResponse{}, nil
}

func TestStoreConformance(t *testing.T) {
	blobstoretest.TestStore(t, func(t *testing.T) blobstore.Store {
		return New(newFakeClient(), "test-container")
	})
}
