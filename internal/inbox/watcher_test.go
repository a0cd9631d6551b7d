package inbox

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/blueprint-estimator/internal/async"
	"github.com/joseph-ayodele/blueprint-estimator/internal/blob"
	"github.com/joseph-ayodele/blueprint-estimator/internal/common"
)

type recordingQueue struct {
	mu   sync.Mutex
	jobs []async.Job
	err  error
}

func (q *recordingQueue) Enqueue(_ context.Context, job async.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *recordingQueue) snapshot() []async.Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]async.Job(nil), q.jobs...)
}

// failingStore rejects the next fails puts before delegating.
type failingStore struct {
	blob.Store
	mu    sync.Mutex
	fails int
}

func (s *failingStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	s.mu.Lock()
	if s.fails > 0 {
		s.fails--
		s.mu.Unlock()
		return common.Persistence("write file", errors.New("disk full"))
	}
	s.mu.Unlock()
	return s.Store.Put(ctx, key, data, contentType)
}

func newWatcher(t *testing.T, cfg Config) (*Watcher, *blob.LocalStore, *recordingQueue) {
	t.Helper()
	store, err := blob.NewLocalStore(t.TempDir(), nil)
	require.NoError(t, err)
	q := &recordingQueue{}
	if cfg.Root == "" {
		cfg.Root = t.TempDir()
	}
	w, err := New(cfg, store, q, nil)
	require.NoError(t, err)
	return w, store, q
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()
	w, store, q := newWatcher(t, Config{UserID: "inbox-bot"})

	path := filepath.Join(w.cfg.Root, "p1", "plan.pdf")
	writeFile(t, path, "%PDF-1.7")

	require.NoError(t, w.Submit(ctx, path))
	jobs := q.snapshot()
	require.Len(t, jobs, 1)
	assert.Equal(t, "p1", jobs[0].ProjectID)
	assert.True(t, strings.HasPrefix(jobs[0].FileKey, "inbox/p1/"), jobs[0].FileKey)
	assert.True(t, strings.HasSuffix(jobs[0].FileKey, "/plan.pdf"), jobs[0].FileKey)
	assert.Equal(t, "inbox-bot", jobs[0].UserID)

	data, err := store.Get(ctx, jobs[0].FileKey)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(data))

	// unchanged file is not submitted twice
	require.NoError(t, w.Submit(ctx, path))
	assert.Len(t, q.snapshot(), 1)
}

func TestSubmitRejectsBadPaths(t *testing.T) {
	ctx := context.Background()
	w, _, q := newWatcher(t, Config{})

	loose := filepath.Join(w.cfg.Root, "plan.pdf")
	writeFile(t, loose, "%PDF")
	assert.ErrorIs(t, w.Submit(ctx, loose), common.ErrInvalidInput)

	nested := filepath.Join(w.cfg.Root, "p1", "old", "plan.pdf")
	writeFile(t, nested, "%PDF")
	assert.ErrorIs(t, w.Submit(ctx, nested), common.ErrInvalidInput)

	outside := filepath.Join(t.TempDir(), "p1", "plan.pdf")
	writeFile(t, outside, "%PDF")
	assert.ErrorIs(t, w.Submit(ctx, outside), common.ErrInvalidInput)

	assert.ErrorIs(t, w.Submit(ctx, filepath.Join(w.cfg.Root, "p1", "missing.pdf")), common.ErrNotFound)
	assert.Empty(t, q.snapshot())
}

func TestSubmitRetriesAfterQueueFull(t *testing.T) {
	ctx := context.Background()
	w, _, q := newWatcher(t, Config{})
	path := filepath.Join(w.cfg.Root, "p1", "plan.pdf")
	writeFile(t, path, "%PDF")

	q.err = async.ErrQueueFull
	assert.ErrorIs(t, w.Submit(ctx, path), async.ErrQueueFull)

	q.err = nil
	require.NoError(t, w.Submit(ctx, path))
	assert.Len(t, q.snapshot(), 1)
}

func TestSubmitRetriesAfterStoreFailure(t *testing.T) {
	ctx := context.Background()
	local, err := blob.NewLocalStore(t.TempDir(), nil)
	require.NoError(t, err)
	store := &failingStore{Store: local, fails: 1}
	q := &recordingQueue{}
	w, err := New(Config{Root: t.TempDir()}, store, q, nil)
	require.NoError(t, err)

	path := filepath.Join(w.cfg.Root, "p1", "plan.pdf")
	writeFile(t, path, "%PDF")

	assert.ErrorIs(t, w.Submit(ctx, path), common.ErrPersistence)
	assert.Empty(t, q.snapshot())

	// the unchanged file is picked up once the store recovers
	require.NoError(t, w.Submit(ctx, path))
	jobs := q.snapshot()
	require.Len(t, jobs, 1)
	data, err := local.Get(ctx, jobs[0].FileKey)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data))
}

func TestSubmitRedroppedFileKeepsQueuedSource(t *testing.T) {
	ctx := context.Background()
	w, store, q := newWatcher(t, Config{})
	path := filepath.Join(w.cfg.Root, "p1", "plan.pdf")

	writeFile(t, path, "%PDF-old")
	first := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(path, first, first))
	require.NoError(t, w.Submit(ctx, path))

	writeFile(t, path, "%PDF-new")
	require.NoError(t, os.Chtimes(path, first.Add(time.Minute), first.Add(time.Minute)))
	require.NoError(t, w.Submit(ctx, path))

	jobs := q.snapshot()
	require.Len(t, jobs, 2)
	assert.NotEqual(t, jobs[0].FileKey, jobs[1].FileKey)

	old, err := store.Get(ctx, jobs[0].FileKey)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-old", string(old))
	updated, err := store.Get(ctx, jobs[1].FileKey)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-new", string(updated))
}

func TestNewRequiresRoot(t *testing.T) {
	_, err := New(Config{}, nil, &recordingQueue{}, nil)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestRunPicksUpNewFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "p0", "existing.pdf"), "%PDF")
	w, _, q := newWatcher(t, Config{Root: root, InitialScan: true, Debounce: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool { return len(q.snapshot()) == 1 }, 5*time.Second, 10*time.Millisecond)

	// new project directories are watched as they appear
	require.NoError(t, os.MkdirAll(filepath.Join(root, "p2"), 0o755))
	time.Sleep(50 * time.Millisecond)
	writeFile(t, filepath.Join(root, "p2", "plan.pdf"), "%PDF-1.7")
	writeFile(t, filepath.Join(root, "p2", "notes.txt"), "ignored")

	require.Eventually(t, func() bool { return len(q.snapshot()) == 2 }, 5*time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	jobs := q.snapshot()
	assert.Equal(t, "p0", jobs[0].ProjectID)
	assert.Equal(t, "p2", jobs[1].ProjectID)
	assert.True(t, strings.HasPrefix(jobs[1].FileKey, "inbox/p2/"), jobs[1].FileKey)
}
