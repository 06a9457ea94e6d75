// Package prompt loads strategy prompt templates from disk and
// composes the final analysis prompt from a collected stock snapshot.
package prompt

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// analysisKeywords mark a template as analysis-related; one is enough.
var analysisKeywords = []string{"매직스플릿", "주식", "분석"}

// TemplateInfo describes one template on disk.
type TemplateInfo struct {
	Key   string
	Path  string
	Size  int64
	Valid bool
	Err   string
}

// Store loads and caches prompt templates.
type Store struct {
	dir string
	log *zap.Logger

	mu      sync.RWMutex
	cache   map[string]string
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewStore creates a template store rooted at dir.
func NewStore(dir string, log *zap.Logger) *Store {
	return &Store{
		dir:   dir,
		log:   log.Named("prompt"),
		cache: make(map[string]string),
	}
}

// Load returns the template body for a strategy key, from cache when
// present.
func (s *Store) Load(key string) (string, error) {
	s.mu.RLock()
	if body, ok := s.cache[key]; ok {
		s.mu.RUnlock()
		return body, nil
	}
	s.mu.RUnlock()

	path := s.templatePath(key)
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read template %s: %w", path, err)
	}
	body := string(raw)
	// Custom templates may skip the keywords; flag it but still serve
	// the body.
	if err := Validate(body); err != nil {
		s.log.Warn("template validation", zap.String("template", key), zap.Error(err))
	}

	s.mu.Lock()
	s.cache[key] = body
	s.mu.Unlock()
	return body, nil
}

// Reload drops the cache so the next Load reads from disk.
func (s *Store) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// List reports every configured strategy's template health.
func (s *Store) List(keys []string) []TemplateInfo {
	infos := make([]TemplateInfo, 0, len(keys))
	for _, key := range keys {
		info := TemplateInfo{Key: key, Path: s.templatePath(key)}
		st, err := os.Stat(info.Path)
		if err != nil {
			info.Err = "missing"
			infos = append(infos, info)
			continue
		}
		info.Size = st.Size()
		raw, err := os.ReadFile(info.Path)
		if err != nil {
			info.Err = err.Error()
			infos = append(infos, info)
			continue
		}
		if err := Validate(string(raw)); err != nil {
			info.Err = err.Error()
		} else {
			info.Valid = true
		}
		infos = append(infos, info)
	}
	return infos
}

// Watch invalidates the cache when a template file changes. Stop with
// Close.
func (s *Store) Watch() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(s.dir); err != nil {
		_ = w.Close()
		return fmt.Errorf("watch %s: %w", s.dir, err)
	}

	s.mu.Lock()
	s.watcher = w
	s.done = make(chan struct{})
	done := s.done
	s.mu.Unlock()

	go func() {
		for {
			select {
			case <-done:
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Remove) {
					s.log.Debug("template changed, cache dropped", zap.String("file", ev.Name))
					s.Reload()
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				s.log.Warn("template watcher", zap.Error(err))
			}
		}
	}()
	return nil
}

// Close stops the watcher if one is running.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher != nil {
		close(s.done)
		_ = s.watcher.Close()
		s.watcher = nil
	}
}

func (s *Store) templatePath(key string) string {
	return filepath.Join(s.dir, key+".txt")
}

// Validate checks that a template body is non-empty and mentions at
// least one analysis keyword.
func Validate(body string) error {
	if strings.TrimSpace(body) == "" {
		return fmt.Errorf("template is empty")
	}
	for _, kw := range analysisKeywords {
		if strings.Contains(body, kw) {
			return nil
		}
	}
	return fmt.Errorf("template mentions none of the analysis keywords: %s",
		strings.Join(analysisKeywords, ", "))
}
