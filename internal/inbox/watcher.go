// Package inbox turns PDFs dropped into a watched directory into queued
// blueprint extractions. Files are laid out as <root>/<projectId>/<name>.pdf.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/joseph-ayodele/blueprint-estimator/constants"
	"github.com/joseph-ayodele/blueprint-estimator/internal/async"
	"github.com/joseph-ayodele/blueprint-estimator/internal/blob"
	"github.com/joseph-ayodele/blueprint-estimator/internal/common"
)

// KeyPrefix is prepended to the blob key of every submitted file. Keys are
// inbox/<projectId>/<modification time in ns>/<name>.pdf, so a re-dropped file
// never overwrites the source of a job still in the queue.
const KeyPrefix = "inbox/"

// Enqueuer accepts extraction jobs.
type Enqueuer interface {
	Enqueue(ctx context.Context, job async.Job) error
}

type Config struct {
	Root        string
	InitialScan bool          // submit files already present at start
	Debounce    time.Duration // coalesce write bursts for the same file
	UserID      string
}

// Watcher submits new PDFs under Root.
type Watcher struct {
	cfg   Config
	files blob.Store
	queue Enqueuer
	log   *slog.Logger

	mu   sync.Mutex
	seen map[string]fileStamp
}

type fileStamp struct {
	modNanos int64
	size     int64
}

func New(cfg Config, files blob.Store, queue Enqueuer, logger *slog.Logger) (*Watcher, error) {
	if strings.TrimSpace(cfg.Root) == "" {
		return nil, common.InvalidInput("inbox root is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, common.InvalidInput(fmt.Sprintf("inbox root: %v", err))
	}
	cfg.Root = root
	return &Watcher{
		cfg:   cfg,
		files: files,
		queue: queue,
		log:   logger.With("component", "inbox", "root", root),
		seen:  make(map[string]fileStamp),
	}, nil
}

// Run watches Root recursively until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.cfg.Root, 0o755); err != nil {
		return common.Persistence("create inbox dir", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		w.log.Error("failed to create fsnotify watcher", "error", err)
		return err
	}
	defer fw.Close()

	var existing []string
	err = filepath.WalkDir(w.cfg.Root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return fw.Add(path)
		}
		if w.cfg.InitialScan && isPDF(path) {
			existing = append(existing, path)
		}
		return nil
	})
	if err != nil {
		w.log.Error("failed to watch inbox", "error", err)
		return err
	}
	w.log.Info("inbox.watch.start", "initial_files", len(existing))
	for _, p := range existing {
		w.submitLogged(ctx, p)
	}

	var (
		timer   *time.Timer
		pending = map[string]struct{}{}
		fire    = make(chan struct{}, 1)
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	flush := func() {
		for p := range pending {
			w.submitLogged(ctx, p)
			delete(pending, p)
		}
	}

	for {
		select {
		case <-ctx.Done():
			w.log.Info("inbox.watch.stop")
			return nil
		case e, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if e.Has(fsnotify.Create) {
				if fi, err := os.Stat(e.Name); err == nil && fi.IsDir() {
					if err := fw.Add(e.Name); err != nil {
						w.log.Warn("failed to watch new directory", "path", e.Name, "error", err)
					}
					continue
				}
			}
			if !isPDF(e.Name) || !(e.Has(fsnotify.Create) || e.Has(fsnotify.Write) || e.Has(fsnotify.Rename)) {
				continue
			}
			pending[e.Name] = struct{}{}
			if w.cfg.Debounce <= 0 {
				flush()
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.cfg.Debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case <-fire:
			flush()
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) submitLogged(ctx context.Context, path string) {
	if err := w.Submit(ctx, path); err != nil {
		w.log.Warn("inbox.submit.failed", "path", path, "error", err)
	}
}

// Submit stores the file at path and queues its extraction for the project
// named by its parent directory. A file whose size and modification time
// were already queued is skipped; a failed attempt is retried on the next call.
func (w *Watcher) Submit(ctx context.Context, path string) error {
	projectID, err := w.projectFor(path)
	if err != nil {
		return err
	}
	fi, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return common.NotFound("file", path)
		}
		return common.Persistence("stat inbox file", err)
	}
	stamp := fileStamp{modNanos: fi.ModTime().UnixNano(), size: fi.Size()}
	if w.queued(path, stamp) {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return common.Persistence("read inbox file", err)
	}
	key := fmt.Sprintf("%s%s/%d/%s", KeyPrefix, projectID, stamp.modNanos, filepath.Base(path))
	if err := w.files.Put(ctx, key, data, constants.ContentTypePDF); err != nil {
		return err
	}
	err = w.queue.Enqueue(ctx, async.Job{
		ProjectID:   projectID,
		FileKey:     key,
		UserID:      w.cfg.UserID,
		SubmittedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	w.remember(path, stamp)
	w.log.Info("inbox.submit.ok", "project_id", projectID, "file_key", key, "bytes", len(data))
	return nil
}

func (w *Watcher) projectFor(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", common.InvalidInput(fmt.Sprintf("inbox path: %v", err))
	}
	rel, err := filepath.Rel(w.cfg.Root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", common.InvalidInput(fmt.Sprintf("%s is outside the inbox", path))
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) != 2 || parts[0] == "" {
		return "", common.InvalidInput(fmt.Sprintf("%s must be placed in a project directory", rel))
	}
	return parts[0], nil
}

func (w *Watcher) queued(path string, stamp fileStamp) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	prev, ok := w.seen[path]
	return ok && prev == stamp
}

func (w *Watcher) remember(path string, stamp fileStamp) {
	w.mu.Lock()
	w.seen[path] = stamp
	w.mu.Unlock()
}

func isPDF(path string) bool {
	return constants.MapExtToFormat(filepath.Ext(path)) == constants.PDF
}
