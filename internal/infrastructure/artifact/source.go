package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
)

// ErrNotFound is returned by a Source when the named artifact is absent.
var ErrNotFound = errors.New("artifact not found")

// Source reads artifact files by name.
type Source interface {
	ReadFile(ctx context.Context, name string) ([]byte, error)
	String() string
	Close() error
}

// LocalSource reads artifacts from a directory.
type LocalSource struct {
	Dir string
}

// NewLocalSource returns a Source rooted at dir.
func NewLocalSource(dir string) *LocalSource {
	return &LocalSource{Dir: dir}
}

func (s *LocalSource) ReadFile(_ context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir, filepath.FromSlash(name)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, filepath.Join(s.Dir, name))
	}
	if err != nil {
		return nil, fmt.Errorf("artifact: read %s: %w", name, err)
	}
	return data, nil
}

func (s *LocalSource) String() string { return s.Dir }
func (s *LocalSource) Close() error   { return nil }

// GCSSource reads artifacts from gs://bucket/prefix.
type GCSSource struct {
	client *storage.Client
	bucket string
	prefix string
	owned  bool
}

// NewGCSSource wraps an existing client. The caller keeps ownership of it.
func NewGCSSource(client *storage.Client, uri string) (*GCSSource, error) {
	bucket, prefix, err := ParseGCSURI(uri)
	if err != nil {
		return nil, err
	}
	return &GCSSource{client: client, bucket: bucket, prefix: prefix}, nil
}

// ParseGCSURI splits gs://bucket/some/prefix into bucket and prefix.
func ParseGCSURI(uri string) (bucket, prefix string, err error) {
	rest, ok := strings.CutPrefix(uri, "gs://")
	if !ok {
		return "", "", fmt.Errorf("artifact: %q is not a gs:// URI", uri)
	}
	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("artifact: %q has no bucket", uri)
	}
	return bucket, strings.Trim(prefix, "/"), nil
}

func (s *GCSSource) ReadFile(ctx context.Context, name string) ([]byte, error) {
	object := path.Join(s.prefix, name)
	r, err := s.client.Bucket(s.bucket).Object(object).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, fmt.Errorf("%w: gs://%s/%s", ErrNotFound, s.bucket, object)
	}
	if err != nil {
		return nil, fmt.Errorf("artifact: open gs://%s/%s: %w", s.bucket, object, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("artifact: read gs://%s/%s: %w", s.bucket, object, err)
	}
	return data, nil
}

func (s *GCSSource) String() string {
	if s.prefix == "" {
		return "gs://" + s.bucket
	}
	return "gs://" + s.bucket + "/" + s.prefix
}

// Close releases the client if OpenSource created it.
func (s *GCSSource) Close() error {
	if s.owned && s.client != nil {
		return s.client.Close()
	}
	return nil
}

// OpenSource picks a Source for location: gs:// URIs use Cloud Storage with
// application default credentials, anything else is a local directory.
func OpenSource(ctx context.Context, location string) (Source, error) {
	if !strings.HasPrefix(location, "gs://") {
		return NewLocalSource(location), nil
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("artifact: create storage client: %w", err)
	}
	src, err := NewGCSSource(client, location)
	if err != nil {
		client.Close()
		return nil, err
	}
	src.owned = true
	return src, nil
}
