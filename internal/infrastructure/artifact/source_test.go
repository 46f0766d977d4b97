package artifact

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cloud.google.com/go/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func TestParseGCSURI(t *testing.T) {
	bucket, prefix, err := ParseGCSURI("gs://ml-artifacts/churn/2024-03/")
	require.NoError(t, err)
	assert.Equal(t, "ml-artifacts", bucket)
	assert.Equal(t, "churn/2024-03", prefix)

	bucket, prefix, err = ParseGCSURI("gs://only-bucket")
	require.NoError(t, err)
	assert.Equal(t, "only-bucket", bucket)
	assert.Empty(t, prefix)

	_, _, err = ParseGCSURI("s3://nope")
	require.Error(t, err)
	_, _, err = ParseGCSURI("gs:///prefix")
	require.Error(t, err)
}

func TestOpenSource_Local(t *testing.T) {
	src, err := OpenSource(context.Background(), "./models")
	require.NoError(t, err)
	assert.IsType(t, &LocalSource{}, src)
	assert.NoError(t, src.Close())
}

// newFakeGCS serves objects by path suffix, which covers both the XML and
// JSON download endpoints.
func newFakeGCS(t *testing.T, objects map[string]string) *storage.Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for name, body := range objects {
			if strings.HasSuffix(r.URL.Path, "/"+name) {
				w.Header().Set("Content-Type", "application/octet-stream")
				_, _ = w.Write([]byte(body))
				return
			}
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(server.Close)

	client, err := storage.NewClient(context.Background(),
		option.WithoutAuthentication(),
		option.WithEndpoint(server.URL),
		option.WithHTTPClient(server.Client()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestGCSSource_ReadFile(t *testing.T) {
	client := newFakeGCS(t, map[string]string{
		"churn/v1/feature_columns.json": `["age"]`,
	})

	src, err := NewGCSSource(client, "gs://models/churn/v1")
	require.NoError(t, err)
	assert.Equal(t, "gs://models/churn/v1", src.String())

	data, err := src.ReadFile(context.Background(), FeatureColumnsFile)
	require.NoError(t, err)
	assert.JSONEq(t, `["age"]`, string(data))

	_, err = src.ReadFile(context.Background(), ManifestFile)
	require.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, src.Close())
}
