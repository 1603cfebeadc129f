package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settleDelay absorbs the truncate-then-write pairs many editors emit.
const settleDelay = 50 * time.Millisecond

// FileHost treats a markdown file as the document owner. Edits are written
// atomically by a background sender and external changes are reported
// through Watch.
type FileHost struct {
	path    string
	logger  *slog.Logger
	watcher *fsnotify.Watcher
	out     *outbox

	mu   sync.Mutex
	last string // content the editor and the file last agreed on
}

// NewFileHost watches the directory holding path so renames over the file
// are seen. The file does not have to exist yet.
func NewFileHost(path string, logger *slog.Logger) (*FileHost, error) {
	if path == "" {
		return nil, ErrNoPath
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	h := &FileHost{path: abs, logger: logger, watcher: w}
	h.out = newOutbox(h.write, logger)
	return h, nil
}

func (h *FileHost) Path() string { return h.path }

// Read returns the current file content. A missing file reads as empty.
func (h *FileHost) Read() (string, error) {
	data, err := os.ReadFile(h.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}

	h.mu.Lock()
	h.last = string(data)
	h.mu.Unlock()
	return string(data), nil
}

// Edit queues text to be written, replacing any write not yet started.
func (h *FileHost) Edit(text string) error {
	return h.out.edit(text)
}

func (h *FileHost) write(_, text string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := writeAtomic(h.path, text); err != nil {
		return fmt.Errorf("writing %s: %w", h.path, err)
	}
	h.last = text
	return nil
}

func (h *FileHost) Info(text string) error {
	h.logger.Info("host info", "path", h.path, "text", text)
	return nil
}

// Watch blocks until ctx is done, calling onUpdate whenever the file holds
// content the editor has not seen.
func (h *FileHost) Watch(ctx context.Context, onUpdate UpdateFunc) error {
	timer := time.NewTimer(settleDelay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-h.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != h.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				timer.Reset(settleDelay)
			}

		case err, ok := <-h.watcher.Errors:
			if !ok {
				return nil
			}
			h.logger.Warn("file watcher error", "path", h.path, "error", err)

		case <-timer.C:
			h.deliver(onUpdate)
		}
	}
}

func (h *FileHost) deliver(onUpdate UpdateFunc) {
	data, err := os.ReadFile(h.path)
	if err != nil {
		if !os.IsNotExist(err) {
			h.logger.Warn("reading watched file", "path", h.path, "error", err)
		}
		return
	}

	h.mu.Lock()
	text := string(data)
	if text == h.last {
		h.mu.Unlock()
		return
	}
	h.last = text
	h.mu.Unlock()

	h.logger.Debug("file changed on disk", "path", h.path, "bytes", len(data))
	if onUpdate != nil {
		onUpdate(text)
	}
}

// Close writes the last queued edit and stops watching.
func (h *FileHost) Close() error {
	h.out.close()
	return h.watcher.Close()
}

func writeAtomic(path, text string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".mdlive-*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Chmod(name, 0o644); err != nil {
		os.Remove(name)
		return err
	}
	return os.Rename(name, path)
}
