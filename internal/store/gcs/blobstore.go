// Package gcs implements store.BlobStore on a Google Cloud Storage bucket.
package gcs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	cloudstorage "cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/replaydeck/replaydeck/internal/store"
)

// BlobStore stores one JSON object per session under sessions/.
type BlobStore struct {
	client *cloudstorage.Client
	bucket string
}

// Options configures the blob store.
type Options struct {
	Bucket string
	// CredentialsFile is the path to a service account JSON key. Empty
	// falls back to Application Default Credentials.
	CredentialsFile string
}

// NewBlobStore creates a blob store backed by the configured bucket.
func NewBlobStore(ctx context.Context, opts Options) (*BlobStore, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}
	var clientOpts []option.ClientOption
	if opts.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(opts.CredentialsFile))
	}
	client, err := cloudstorage.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &BlobStore{client: client, bucket: opts.Bucket}, nil
}

func objectName(sessionID string) string {
	return "sessions/" + sessionID + ".json"
}

// GetSession downloads and decodes the blob for a session. A missing object
// is reported via the bool return, not an error.
func (b *BlobStore) GetSession(ctx context.Context, sessionID string) (*store.SessionBlob, bool, error) {
	r, err := b.client.Bucket(b.bucket).Object(objectName(sessionID)).NewReader(ctx)
	if errors.Is(err, cloudstorage.ErrObjectNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to open session object %q: %w", sessionID, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read session object %q: %w", sessionID, err)
	}
	var blob store.SessionBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		return nil, false, fmt.Errorf("failed to decode session object %q: %w", sessionID, err)
	}
	return &blob, true, nil
}

// PutSession uploads the blob for a session, replacing any existing object,
// and returns its gs:// path.
func (b *BlobStore) PutSession(ctx context.Context, blob *store.SessionBlob) (string, error) {
	name := objectName(blob.SessionID)
	w := b.client.Bucket(b.bucket).Object(name).NewWriter(ctx)
	w.ContentType = "application/json"

	if err := json.NewEncoder(w).Encode(blob); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to encode session object %q: %w", blob.SessionID, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to write session object %q: %w", blob.SessionID, err)
	}
	return fmt.Sprintf("gs://%s/%s", b.bucket, name), nil
}

// Close releases the underlying storage client.
func (b *BlobStore) Close() error {
	return b.client.Close()
}

var _ store.BlobStore = (*BlobStore)(nil)
