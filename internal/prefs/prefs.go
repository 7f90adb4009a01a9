// Package prefs stores the user's default pattern settings.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

const (
	appDir    = "bead-scheme"
	prefsFile = "preferences.json"
)

// Prefs is a JSON object of loosely typed values. Config gives the typed view.
type Prefs struct {
	mu     sync.RWMutex
	values map[string]interface{}
	path   string
}

// DefaultPath returns ~/.config/bead-scheme/preferences.json or the
// platform equivalent.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(dir, appDir, prefsFile)
}

// Load reads preferences from DefaultPath.
func Load() *Prefs {
	return LoadFrom(DefaultPath())
}

// LoadFrom reads preferences from path. A missing or malformed file
// yields empty preferences that still save to path.
func LoadFrom(path string) *Prefs {
	p := &Prefs{values: map[string]interface{}{}, path: path}
	if data, err := os.ReadFile(path); err == nil {
		var values map[string]interface{}
		if json.Unmarshal(data, &values) == nil && values != nil {
			p.values = values
		}
	}
	return p
}

// Path returns the file the preferences save to.
func (p *Prefs) Path() string {
	return p.path
}

// Save writes the preferences, creating the config directory.
func (p *Prefs) Save() error {
	p.mu.RLock()
	data, err := json.MarshalIndent(p.values, "", "  ")
	p.mu.RUnlock()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p.path, data, 0o644)
}

func (p *Prefs) get(key string) (interface{}, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.values[key]
	return v, ok
}

func (p *Prefs) set(key string, v interface{}) {
	p.mu.Lock()
	p.values[key] = v
	p.mu.Unlock()
}

// Has reports whether key is set.
func (p *Prefs) Has(key string) bool {
	_, ok := p.get(key)
	return ok
}

// IntWithFallback returns an int preference, or fallback if it is unset
// or not a number. JSON numbers decode as float64 and are truncated.
func (p *Prefs) IntWithFallback(key string, fallback int) int {
	v, _ := p.get(key)
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	}
	return fallback
}

// SetInt stores an int preference.
func (p *Prefs) SetInt(key string, val int) {
	p.set(key, val)
}

// String returns a string preference, or "".
func (p *Prefs) String(key string) string {
	v, _ := p.get(key)
	s, _ := v.(string)
	return s
}

// SetString stores a string preference.
func (p *Prefs) SetString(key string, val string) {
	p.set(key, val)
}

// Strings returns a string list preference, or nil.
func (p *Prefs) Strings(key string) []string {
	v, _ := p.get(key)
	var out []string
	switch l := v.(type) {
	case []string:
		out = append(out, l...)
	case []interface{}:
		for _, e := range l {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}

// SetStrings stores a string list preference.
func (p *Prefs) SetStrings(key string, val []string) {
	p.set(key, append([]string(nil), val...))
}
