// Package watchlist хранит список предметов для направления B в JSON-файле.
package watchlist

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"cs2arb/pkg/contextx"
	"cs2arb/pkg/logx"
)

var (
	json   = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals
	logger = contextx.LoggerFromContextOrDefault           //nolint:gochecknoglobals
)

type file struct {
	Items []string `json:"items"`
}

// Watchlist — упорядоченный список market_hash_name без повторов.
type Watchlist struct {
	mu    sync.Mutex
	path  string
	items []string
}

func New(path string, items ...string) *Watchlist {
	w := &Watchlist{path: path}
	w.Set(items)
	return w
}

// Load читает файл; отсутствующий файл даёт пустой список.
func Load(ctx context.Context, path string) (*Watchlist, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger(ctx).Debug("watchlist file not found", "path", path)
		return New(path), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read watchlist: %w", err)
	}

	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode watchlist: %w", err)
	}

	logger(ctx).Info("watchlist loaded", "path", path, "items", len(f.Items))

	return New(path, f.Items...), nil
}

// LoadOrDefault подставляет встроенный список, если файла нет или он битый.
func LoadOrDefault(ctx context.Context, path string) *Watchlist {
	if _, err := os.Stat(path); err == nil {
		w, err := Load(ctx, path)
		if err == nil {
			return w
		}
		logger(ctx).Warn("failed to load watchlist", "path", path, logx.Error(err))
	}

	return New(path, DefaultItems...)
}

// Add возвращает false, если предмет уже в списке.
func (w *Watchlist) Add(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if slices.Contains(w.items, name) {
		return false
	}
	w.items = append(w.items, name)
	return true
}

func (w *Watchlist) Remove(name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	i := slices.Index(w.items, strings.TrimSpace(name))
	if i < 0 {
		return false
	}
	w.items = slices.Delete(w.items, i, i+1)
	return true
}

func (w *Watchlist) Has(name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	return slices.Contains(w.items, name)
}

// List возвращает копию.
func (w *Watchlist) List() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	return slices.Clone(w.items)
}

func (w *Watchlist) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return len(w.items)
}

// Set заменяет список целиком, отбрасывая пустые имена и повторы.
func (w *Watchlist) Set(items []string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.items = make([]string, 0, len(items))
	for _, name := range items {
		name = strings.TrimSpace(name)
		if name != "" && !slices.Contains(w.items, name) {
			w.items = append(w.items, name)
		}
	}
}

func (w *Watchlist) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.items = nil
}

// Save пишет файл через временный файл и rename.
func (w *Watchlist) Save(ctx context.Context) error {
	w.mu.Lock()
	data, err := json.MarshalIndent(file{Items: append([]string{}, w.items...)}, "", "  ")
	w.mu.Unlock()

	if err != nil {
		return fmt.Errorf("encode watchlist: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil { //nolint:mnd
		return fmt.Errorf("create watchlist dir: %w", err)
	}

	tmp := w.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil { //nolint:mnd,gosec
		return fmt.Errorf("write watchlist: %w", err)
	}

	if err := os.Rename(tmp, w.path); err != nil {
		return fmt.Errorf("replace watchlist: %w", err)
	}

	logger(ctx).Info("watchlist saved", "path", w.path, "items", len(w.List()))

	return nil
}
