package worker

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedsift/internal/config"
)

const sourcesV1 = `groups:
  - name: morning
    schedule: "30 5 * * *"
sources:
  - name: Wire
    url: https://example.com/feed.xml
    groups: [morning]
`

const sourcesV2 = `groups:
  - name: morning
    schedule: "30 5 * * *"
  - name: evening
    schedule: "0 18 * * *"
sources:
  - name: Wire
    url: https://example.com/feed.xml
    groups: [morning, evening]
`

type reloadRecorder struct {
	mu   sync.Mutex
	last *config.SourcesFile
	n    int
}

func (r *reloadRecorder) apply(sf *config.SourcesFile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = sf
	r.n++
}

func (r *reloadRecorder) snapshot() (*config.SourcesFile, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last, r.n
}

func startWatcher(t *testing.T, path string, rec *reloadRecorder) {
	t.Helper()
	w := NewSourcesWatcher(path, rec.apply, testMetrics, discardLogger())
	w.debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.NoError(t, w.Run(ctx))
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	select {
	case <-w.ready:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not start")
	}
}

func TestSourcesWatcher_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sourcesV1), 0o600))

	rec := &reloadRecorder{}
	startWatcher(t, path, rec)

	require.NoError(t, os.WriteFile(path, []byte(sourcesV2), 0o600))

	require.Eventually(t, func() bool {
		sf, _ := rec.snapshot()
		return sf != nil && len(sf.Groups) == 2
	}, 3*time.Second, 20*time.Millisecond)
}

func TestSourcesWatcher_ReloadsOnRename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sourcesV1), 0o600))

	rec := &reloadRecorder{}
	startWatcher(t, path, rec)

	tmp := filepath.Join(dir, "sources.yaml.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte(sourcesV2), 0o600))
	require.NoError(t, os.Rename(tmp, path))

	require.Eventually(t, func() bool {
		sf, _ := rec.snapshot()
		return sf != nil && len(sf.Groups) == 2
	}, 3*time.Second, 20*time.Millisecond)
}

func TestSourcesWatcher_InvalidFileKeepsPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sourcesV1), 0o600))

	rec := &reloadRecorder{}
	w := NewSourcesWatcher(path, rec.apply, testMetrics, discardLogger())
	require.NoError(t, w.Reload())

	require.NoError(t, os.WriteFile(path, []byte("groups: [unterminated"), 0o600))
	assert.Error(t, w.Reload())

	sf, n := rec.snapshot()
	assert.Equal(t, 1, n)
	assert.Len(t, sf.Groups, 1)
}

func TestSourcesWatcher_IgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sourcesV1), 0o600))

	rec := &reloadRecorder{}
	startWatcher(t, path, rec)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))
	time.Sleep(150 * time.Millisecond)
	_, n := rec.snapshot()
	assert.Zero(t, n)
}
