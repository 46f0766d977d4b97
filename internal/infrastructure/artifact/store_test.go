package artifact

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/streamwise/churn/internal/domain/port"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type countingLoader struct {
	calls atomic.Int32
	fail  atomic.Bool
}

func (c *countingLoader) load(_ context.Context, src Source) (*port.ArtifactBundle, error) {
	n := c.calls.Add(1)
	if c.fail.Load() {
		return nil, errors.New("corrupt artifact")
	}
	return &port.ArtifactBundle{ModelVersion: "v" + string(rune('0'+n)), Source: src.String()}, nil
}

func TestNewStore_InitialLoadFailureIsReturned(t *testing.T) {
	_, err := NewStore(context.Background(), NewLocalSource(t.TempDir()), ModeOnce, discardLogger())
	require.ErrorIs(t, err, ErrNotFound)

	_, err = NewStore(context.Background(), NewLocalSource("testdata/logistic"), "hourly", discardLogger())
	require.Error(t, err)
}

func TestStore_OnceCaches(t *testing.T) {
	l := &countingLoader{}
	s, err := NewStore(context.Background(), NewLocalSource("x"), ModeOnce, discardLogger(), WithLoader(l.load))
	require.NoError(t, err)

	for range 3 {
		b, err := s.Current(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "v1", b.ModelVersion)
	}
	assert.Equal(t, int32(1), l.calls.Load())
}

func TestStore_AlwaysReloads(t *testing.T) {
	l := &countingLoader{}
	var hookErrs []error
	s, err := NewStore(context.Background(), NewLocalSource("x"), ModeAlways, discardLogger(),
		WithLoader(l.load),
		WithReloadHook(func(_ context.Context, err error) { hookErrs = append(hookErrs, err) }),
	)
	require.NoError(t, err)

	b, err := s.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v2", b.ModelVersion)

	l.fail.Store(true)
	b, err = s.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v2", b.ModelVersion, "failed reload keeps the previous bundle")

	require.Len(t, hookErrs, 2)
	assert.NoError(t, hookErrs[0])
	assert.Error(t, hookErrs[1])
}

func TestStore_ReloadRealArtifacts(t *testing.T) {
	dir := copyDir(t, "testdata/logistic")
	s, err := NewStore(context.Background(), NewLocalSource(dir), ModeOnce, discardLogger())
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestFile), []byte("model_version: hotfix\n"), 0o600))
	require.NoError(t, s.Reload(context.Background()))

	b, err := s.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hotfix", b.ModelVersion)

	require.NoError(t, os.Remove(filepath.Join(dir, ModelFile)))
	require.Error(t, s.Reload(context.Background()))
	b, _ = s.Current(context.Background())
	assert.Equal(t, "hotfix", b.ModelVersion)
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := copyDir(t, "testdata/logistic")
	s, err := NewStore(context.Background(), NewLocalSource(dir), ModeWatch, discardLogger())
	require.NoError(t, err)

	w, err := NewWatcher(s, dir, 20*time.Millisecond, discardLogger())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestFile), []byte("model_version: watched\n"), 0o600))

	assert.Eventually(t, func() bool {
		b, _ := s.Current(context.Background())
		return b.ModelVersion == "watched"
	}, 5*time.Second, 20*time.Millisecond)

	w.Stop()
	w.Stop()
}

func TestWatcher_MissingDir(t *testing.T) {
	s, err := NewStore(context.Background(), NewLocalSource("testdata/logistic"), ModeWatch, discardLogger())
	require.NoError(t, err)

	_, err = NewWatcher(s, filepath.Join(t.TempDir(), "gone"), 0, discardLogger())
	require.Error(t, err)
}
