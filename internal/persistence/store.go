// Package persistence saves and loads a graph document as JSON or YAML,
// and can optionally watch the backing file for external edits.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/arung-agamani/streamgraph/internal/core/graph"
)

// Format selects the on-disk encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func formatFor(path string) Format {
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		return FormatYAML
	}
	return FormatJSON
}

// FileStore persists a graph.Document to a single file, JSON or YAML
// depending on its extension. Saves are serialized so concurrent graph
// mutations never interleave their writes.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Save implements graph.Store.
func (f *FileStore) Save(doc graph.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var buf []byte
	var err error
	switch formatFor(f.path) {
	case FormatYAML:
		buf, err = yaml.Marshal(doc)
	default:
		buf, err = json.MarshalIndent(doc, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encoding graph document: %w", err)
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".graph-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("renaming temp file into place: %w", err)
	}
	return nil
}

// Load reads and decodes the document at path. A missing file yields an
// empty document rather than an error, so a fresh install has nothing to
// pre-create.
func Load(path string) (graph.Document, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return graph.Document{Nodes: map[string]graph.DocumentNode{}}, nil
	}
	if err != nil {
		return graph.Document{}, fmt.Errorf("reading graph document: %w", err)
	}

	var doc graph.Document
	switch formatFor(path) {
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	default:
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return graph.Document{}, fmt.Errorf("decoding graph document: %w", err)
	}
	if doc.Nodes == nil {
		doc.Nodes = map[string]graph.DocumentNode{}
	}
	return doc, nil
}

// Watcher reloads a graph document whenever its backing file changes on
// disk. It does not tell external edits apart from the process's own
// FileStore saves: those replace the file by rename and trigger a reload
// too.
type Watcher struct {
	watcher *fsnotify.Watcher
	path    string
}

// NewWatcher starts watching path's containing directory for changes to
// path itself. Watching the directory rather than the file survives
// editors that replace the file via rename instead of in-place write.
func NewWatcher(path string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
	}
	return &Watcher{watcher: w, path: path}, nil
}

// Watch runs until stop is closed, invoking onChange with the freshly
// reloaded document each time the watched file is written or renamed
// into place.
func (w *Watcher) Watch(stop <-chan struct{}, onChange func(graph.Document)) {
	target := filepath.Clean(w.path)
	for {
		select {
		case <-stop:
			w.watcher.Close()
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			doc, err := Load(w.path)
			if err != nil {
				slog.Error("failed to reload graph document", "path", w.path, "error", err)
				continue
			}
			onChange(doc)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("graph document watcher error", "error", err)
		}
	}
}
