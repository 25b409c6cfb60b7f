package config

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
	"gopkg.in/yaml.v3"
)

// SiteConfig is the operator-editable site description rendered into pages.
type SiteConfig struct {
	Site     SiteInfo     `yaml:"site" json:"site"`
	Features SiteFeatures `yaml:"features" json:"features"`
	Social   []SocialLink `yaml:"social" json:"social"`
	Logging  SiteLogging  `yaml:"logging" json:"logging"`
}

// SiteLogging extends the suppression patterns without a restart.
type SiteLogging struct {
	SuppressPatterns []string `yaml:"suppressPatterns" json:"suppressPatterns"`
}

type SiteInfo struct {
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
	Tagline     string `yaml:"tagline" json:"tagline"`
}

type SiteFeatures struct {
	EnableNotifications bool `yaml:"enableNotifications" json:"enableNotifications"`
	EnableOfflineMode   bool `yaml:"enableOfflineMode" json:"enableOfflineMode"`
	EnableReminders     bool `yaml:"enableReminders" json:"enableReminders"`
	EnableAssist        bool `yaml:"enableAssist" json:"enableAssist"`
}

type SocialLink struct {
	Name string `yaml:"name" json:"name"`
	URL  string `yaml:"url" json:"url"`
}

// DefaultSiteConfig is used when no site file exists.
func DefaultSiteConfig() SiteConfig {
	return SiteConfig{
		Site: SiteInfo{
			Title:       "RajCreation Live",
			Description: "Watch live telecast streaming",
		},
		Features: SiteFeatures{
			EnableNotifications: true,
			EnableOfflineMode:   true,
		},
	}
}

// LocalOverridePath returns the sibling override file, e.g. site.local.yaml.
func LocalOverridePath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".local" + ext
}

// LoadSiteConfig reads path and deep-merges the optional local override over it.
// Missing files are not an error.
func LoadSiteConfig(path string) (SiteConfig, error) {
	merged := map[string]any{}

	for _, p := range []string{path, LocalOverridePath(path)} {
		doc, err := readYAMLMap(p)
		if err != nil {
			return SiteConfig{}, err
		}
		deepMerge(merged, doc)
	}

	cfg := DefaultSiteConfig()
	if len(merged) == 0 {
		return cfg, nil
	}

	raw, err := yaml.Marshal(merged)
	if err != nil {
		return SiteConfig{}, fmt.Errorf("failed to re-encode merged site config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return SiteConfig{}, fmt.Errorf("failed to decode site config: %w", err)
	}
	return cfg, nil
}

func readYAMLMap(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc := map[string]any{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return doc, nil
}

// deepMerge copies src into dst; nested maps merge, everything else replaces.
func deepMerge(dst, src map[string]any) {
	for k, v := range src {
		srcMap, ok := v.(map[string]any)
		if !ok {
			dst[k] = v
			continue
		}
		dstMap, ok := dst[k].(map[string]any)
		if !ok {
			dstMap = map[string]any{}
			dst[k] = dstMap
		}
		deepMerge(dstMap, srcMap)
	}
}

// SiteHolder provides thread-safe access to the site config with hot reload.
type SiteHolder struct {
	mu      sync.RWMutex
	current SiteConfig
	path    string
	logger  *slog.Logger
	watcher *fsnotify.Watcher

	listenersMu sync.Mutex
	listeners   []chan<- SiteConfig
}

func NewSiteHolder(path string, logger *slog.Logger) (*SiteHolder, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg, err := LoadSiteConfig(path)
	if err != nil {
		return nil, err
	}
	return &SiteHolder{current: cfg, path: path, logger: logger}, nil
}

func (h *SiteHolder) Get() SiteConfig {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Reload re-reads the files. On error the previous config is kept.
func (h *SiteHolder) Reload() error {
	cfg, err := LoadSiteConfig(h.path)
	if err != nil {
		h.logger.Error("Site config reload failed, keeping previous", "path", h.path, "error", err)
		return err
	}

	h.mu.Lock()
	h.current = cfg
	h.mu.Unlock()

	h.listenersMu.Lock()
	for _, ch := range h.listeners {
		select {
		case ch <- cfg:
		default:
		}
	}
	h.listenersMu.Unlock()

	h.logger.Info("Site config reloaded", "path", h.path, "title", cfg.Site.Title)
	return nil
}

// Subscribe registers a channel notified after each successful reload.
func (h *SiteHolder) Subscribe(ch chan<- SiteConfig) {
	h.listenersMu.Lock()
	defer h.listenersMu.Unlock()
	h.listeners = append(h.listeners, ch)
}

// StartWatcher watches the config directory so that creating the local
// override file is picked up too.
func (h *SiteHolder) StartWatcher(ctx context.Context) error {
	dir := filepath.Dir(h.path)
	if _, err := os.Stat(dir); err != nil {
		h.logger.Info("Site config directory missing, watcher disabled", "dir", dir)
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	h.watcher = watcher

	go h.watchLoop(ctx)
	h.logger.Info("Watching site config", "dir", dir)
	return nil
}

func (h *SiteHolder) watchLoop(ctx context.Context) {
	var debounce *time.Timer
	base := filepath.Base(h.path)
	local := filepath.Base(LocalOverridePath(h.path))

	for {
		select {
		case <-ctx.Done():
			_ = h.watcher.Close()
			return
		case event, ok := <-h.watcher.Events:
			if !ok {
				return
			}
			name := filepath.Base(event.Name)
			if name != base && name != local {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(500*time.Millisecond, func() {
				_ = h.Reload()
			})
		case err, ok := <-h.watcher.Errors:
			if !ok {
				return
			}
			h.logger.Error("Site config watcher error", "error", err)
		}
	}
}
