package blobstore

import (
	"context"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/minio/minio-go/v7"
)

// MinIOStore implements Store for MinIO and other S3-compatible storage.
type MinIOStore struct {
	client *minio.Client
	bucket string
	prefix string
}

var _ Store = (*MinIOStore)(nil)

// NewMinIOStore creates a MinIO blob store. rootPrefix is prepended to all
// keys (e.g. "indexes/").
func NewMinIOStore(client *minio.Client, bucket, rootPrefix string) *MinIOStore {
	return &MinIOStore{
		client: client,
		bucket: bucket,
		prefix: rootPrefix,
	}
}

func (s *MinIOStore) key(name string) string {
	return path.Join(s.prefix, name)
}

// Create creates a blob for streaming writes. The upload runs in the
// background and is settled when the returned writer is closed.
func (s *MinIOStore) Create(ctx context.Context, name string) (io.WriteCloser, error) {
	pr, pw := io.Pipe()
	w := &pipeWriter{pw: pw, done: make(chan error, 1)}

	go func() {
		_, err := s.client.PutObject(ctx, s.bucket, s.key(name), pr, -1, minio.PutObjectOptions{})
		_ = pr.CloseWithError(err)
		w.done <- err
	}()

	return w, nil
}

// Open opens a blob for reading.
func (s *MinIOStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	key := s.key(name)

	// Stat first to surface missing blobs on Open, not on first Read.
	_, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" || errResp.Code == "NotFound" {
			return nil, ErrNotFound
		}
		return nil, err
	}

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	return obj, nil
}

// Delete removes a blob.
func (s *MinIOStore) Delete(ctx context.Context, name string) error {
	err := s.client.RemoveObject(ctx, s.bucket, s.key(name), minio.RemoveObjectOptions{})
	if err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" || errResp.Code == "NotFound" {
			return nil // Already gone
		}
		return err
	}
	return nil
}

// List returns all blob names with the given prefix, sorted.
func (s *MinIOStore) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    s.key(prefix),
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		name := strings.TrimPrefix(obj.Key, s.prefix)
		name = strings.TrimPrefix(name, "/")
		if name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// pipeWriter adapts a background upload to io.WriteCloser. Close waits for
// the upload to settle and reports its error.
type pipeWriter struct {
	pw   *io.PipeWriter
	done chan error
}

func (w *pipeWriter) Write(p []byte) (int, error) {
	return w.pw.Write(p)
}

func (w *pipeWriter) Close() error {
	if err := w.pw.Close(); err != nil {
		return err
	}
	return <-w.done
}
