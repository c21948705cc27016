// Package prefs remembers UI state between runs: window size, the last
// opened page and the recently opened files.
package prefs

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

const (
	prefsFile  = "preferences.json"
	maxRecent  = 10
	appDirName = "digilib-viewer"
)

// Keys used by the main window.
const (
	KeyWindowWidth  = "window_width"
	KeyWindowHeight = "window_height"
	KeyLastDir      = "last_dir"
	KeyLastImage    = "last_image"
	KeyLastParams   = "last_params"
	KeyShowBird     = "show_bird"
	KeyTool         = "tool"
)

// Prefs stores preferences as a key-value map.
type Prefs struct {
	mu     sync.RWMutex
	values map[string]interface{}
	recent []string
	path   string
}

type file struct {
	Values map[string]interface{} `json:"values"`
	Recent []string               `json:"recent,omitempty"`
}

// Load reads preferences from the user config directory.
func Load() *Prefs {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	p, _ := LoadFrom(filepath.Join(dir, appDirName, prefsFile))
	return p
}

// LoadFrom reads preferences from path. A missing file yields empty
// preferences without error; an unreadable one yields empty preferences and
// the error.
func LoadFrom(path string) (*Prefs, error) {
	p := &Prefs{values: make(map[string]interface{}), path: path}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return p, err
	}
	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return p, err
	}
	if f.Values != nil {
		p.values = f.Values
	}
	p.recent = f.Recent
	return p, nil
}

// Path returns the file the preferences are saved to.
func (p *Prefs) Path() string {
	return p.path
}

// Save writes preferences to disk.
func (p *Prefs) Save() error {
	p.mu.RLock()
	data, err := json.MarshalIndent(file{Values: p.values, Recent: p.recent}, "", "  ")
	p.mu.RUnlock()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return err
	}
	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, p.path)
}

// FloatWithFallback returns a float64 preference, or fallback if not set.
func (p *Prefs) FloatWithFallback(key string, fallback float64) float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if v, ok := p.values[key]; ok {
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		}
	}
	return fallback
}

// SetFloat stores a float64 preference.
func (p *Prefs) SetFloat(key string, val float64) {
	p.set(key, val)
}

// String returns a string preference, or "" if not set.
func (p *Prefs) String(key string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s, _ := p.values[key].(string)
	return s
}

// SetString stores a string preference.
func (p *Prefs) SetString(key string, val string) {
	p.set(key, val)
}

// Bool returns a bool preference, or fallback if not set.
func (p *Prefs) Bool(key string, fallback bool) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if b, ok := p.values[key].(bool); ok {
		return b
	}
	return fallback
}

// SetBool stores a bool preference.
func (p *Prefs) SetBool(key string, val bool) {
	p.set(key, val)
}

func (p *Prefs) set(key string, val interface{}) {
	p.mu.Lock()
	p.values[key] = val
	p.mu.Unlock()
}

// AddRecent moves path to the front of the recent files, dropping the
// oldest entries beyond the limit.
func (p *Prefs) AddRecent(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := []string{path}
	for _, r := range p.recent {
		if r != path && len(out) < maxRecent {
			out = append(out, r)
		}
	}
	p.recent = out
	p.values[KeyLastDir] = filepath.Dir(path)
	p.values[KeyLastImage] = path
}

// Recent returns the recently opened files, newest first.
func (p *Prefs) Recent() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]string(nil), p.recent...)
}
