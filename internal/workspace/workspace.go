// Package workspace holds the live Tracker shared by the HTTP handlers and the
// CLI. Every access goes through a single mutex.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	applog "nutrilog/internal/log"
	"nutrilog/internal/savefile"
	"nutrilog/models"
)

// Mirror is an optional secondary store the tracker is copied to on save.
type Mirror interface {
	SaveTracker(ctx context.Context, t *models.Tracker) error
	LoadTracker(ctx context.Context, name string) (*models.Tracker, error)
}

type Workspace struct {
	mu      sync.Mutex
	tracker *models.Tracker
	path    string
	mirror  Mirror
	dirty   bool
}

// New wraps an already loaded tracker.
func New(t *models.Tracker, path string, mirror Mirror) *Workspace {
	if t == nil {
		t = models.NewTracker(trackerName(path))
	}
	return &Workspace{tracker: t, path: path, mirror: mirror}
}

// Open reads the savefile at path. A missing file yields an empty tracker that
// is created on the first Save.
func Open(path string, mirror Mirror) (*Workspace, error) {
	t, err := savefile.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		applog.Info(context.Background(), "savefile not found, starting empty", "path", path)
		return New(nil, path, mirror), nil
	}
	if err != nil {
		return nil, err
	}
	return New(t, path, mirror), nil
}

func trackerName(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "Nutrilog"
	}
	return base
}

// View runs fn with the tracker locked. fn must not keep the pointer.
func (w *Workspace) View(fn func(*models.Tracker) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return fn(w.tracker)
}

// Update runs fn with the tracker locked and marks the workspace dirty when fn
// succeeds.
func (w *Workspace) Update(fn func(*models.Tracker) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := fn(w.tracker); err != nil {
		return err
	}
	w.dirty = true
	return nil
}

func (w *Workspace) Dirty() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dirty
}

func (w *Workspace) Path() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.path
}

// HasMirror reports whether saves are copied to a database.
func (w *Workspace) HasMirror() bool {
	return w.mirror != nil
}

// Save writes the savefile and then the mirror, if one is configured. A mirror
// failure is returned after the savefile has been written.
func (w *Workspace) Save(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := savefile.Write(w.path, w.tracker); err != nil {
		return fmt.Errorf("save workspace: %w", err)
	}
	w.dirty = false

	if w.mirror == nil {
		return nil
	}
	if err := w.mirror.SaveTracker(ctx, w.tracker); err != nil {
		applog.Error(ctx, "database mirror failed", "name", w.tracker.Name, "error", err)
		return fmt.Errorf("mirror workspace: %w", err)
	}
	return nil
}

// SaveAs rebinds the workspace to path and saves.
func (w *Workspace) SaveAs(ctx context.Context, path string) error {
	w.mu.Lock()
	w.path = path
	w.mu.Unlock()
	return w.Save(ctx)
}

// LoadMirror replaces the tracker with the copy stored in the mirror under name.
func (w *Workspace) LoadMirror(ctx context.Context, name string) error {
	if w.mirror == nil {
		return fmt.Errorf("load mirror: no database configured")
	}
	t, err := w.mirror.LoadTracker(ctx, name)
	if err != nil {
		return fmt.Errorf("load mirror: %w", err)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.tracker = t
	w.dirty = true
	return nil
}
