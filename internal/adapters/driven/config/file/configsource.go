package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/semidx-cli/internal/core/domain"
	"github.com/custodia-labs/semidx-cli/internal/core/ports/driven"
	"github.com/custodia-labs/semidx-cli/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.ConfigSource = (*Source)(nil)

// fileConfig is the on-disk TOML layout.
type fileConfig struct {
	Index struct {
		BatchSize         int   `toml:"batch_size"`
		RequestsPerMinute int   `toml:"requests_per_minute"`
		MaxPartitionBytes int64 `toml:"max_partition_bytes"`
		ChunkSize         int   `toml:"chunk_size"`
		ChunkOverlap      int   `toml:"chunk_overlap"`
	} `toml:"index"`

	Embedding struct {
		Provider   string `toml:"provider"`
		BaseURL    string `toml:"base_url"`
		Model      string `toml:"model"`
		APIKey     string `toml:"api_key"`
		Dimensions int    `toml:"dimensions"`
	} `toml:"embedding"`
}

// Source is a TOML file-based implementation of driven.ConfigSource.
// A missing config file yields default settings rather than an error.
type Source struct {
	mu        sync.RWMutex
	filePath  string
	cfg       fileConfig
	callbacks []func(domain.IndexSettings)
	watcher   *fsnotify.Watcher
	done      chan struct{}
}

// NewSource creates a config source backed by the given TOML file.
// If path is empty, defaults to ~/.semidx/config.toml.
func NewSource(path string) (*Source, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir := filepath.Join(home, ".semidx")
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "config.toml")
	}

	s := &Source{filePath: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// load reads and parses the config file. A missing file resets to defaults.
func (s *Source) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			s.cfg = fileConfig{}
			return nil
		}
		return fmt.Errorf("read config %s: %w", s.filePath, err)
	}

	var cfg fileConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", s.filePath, err)
	}
	s.cfg = cfg
	return nil
}

// Settings returns the current index settings, normalised.
func (s *Source) Settings() domain.IndexSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return domain.IndexSettings{
		BatchSize:         s.cfg.Index.BatchSize,
		RequestsPerMinute: s.cfg.Index.RequestsPerMinute,
		MaxPartitionBytes: s.cfg.Index.MaxPartitionBytes,
		ChunkSize:         s.cfg.Index.ChunkSize,
		ChunkOverlap:      s.cfg.Index.ChunkOverlap,
	}.Normalise()
}

// Embedding returns the current embedding provider settings. The OpenAI
// API key falls back to the OPENAI_API_KEY environment variable when the
// file leaves it unset.
func (s *Source) Embedding() domain.EmbeddingSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	settings := domain.EmbeddingSettings{
		Provider:   domain.AIProvider(s.cfg.Embedding.Provider),
		BaseURL:    s.cfg.Embedding.BaseURL,
		Model:      s.cfg.Embedding.Model,
		APIKey:     s.cfg.Embedding.APIKey,
		Dimensions: s.cfg.Embedding.Dimensions,
	}
	if settings.Provider == "" {
		settings.Provider = domain.AIProviderOllama
	}
	if settings.APIKey == "" && settings.Provider.RequiresAPIKey() {
		settings.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	return settings
}

// OnChange registers a callback invoked with the new settings whenever the
// config file changes. Callbacks only fire once Watch has been started.
func (s *Source) OnChange(fn func(domain.IndexSettings)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callbacks = append(s.callbacks, fn)
}

// Path returns the configuration file path.
func (s *Source) Path() string {
	return s.filePath
}

// Watch starts monitoring the config file for changes. On each change the
// file is reloaded and registered callbacks receive the new settings.
// Watch is a no-op if already watching.
func (s *Source) Watch() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watcher != nil {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}

	// Watch the directory, not the file: editors replace files on save,
	// which drops a direct file watch.
	if err := watcher.Add(filepath.Dir(s.filePath)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch config dir: %w", err)
	}

	s.watcher = watcher
	s.done = make(chan struct{})
	go s.watchLoop(watcher, s.done)
	return nil
}

func (s *Source) watchLoop(watcher *fsnotify.Watcher, done chan struct{}) {
	for {
		select {
		case <-done:
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Name != s.filePath {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			s.reload()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Config watcher error: %v", err)
		}
	}
}

// reload re-reads the file and notifies callbacks with the new settings.
func (s *Source) reload() {
	if err := s.load(); err != nil {
		logger.Warn("Config reload failed: %v", err)
		return
	}

	settings := s.Settings()

	s.mu.RLock()
	callbacks := make([]func(domain.IndexSettings), len(s.callbacks))
	copy(callbacks, s.callbacks)
	s.mu.RUnlock()

	logger.Info("Configuration reloaded from %s", s.filePath)
	for _, fn := range callbacks {
		fn(settings)
	}
}

// Close stops the watcher if one is running.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watcher == nil {
		return nil
	}
	close(s.done)
	err := s.watcher.Close()
	s.watcher = nil
	return err
}
