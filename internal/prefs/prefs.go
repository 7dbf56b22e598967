// Package prefs handles tealeaf user preferences persistence.
// Preferences are stored in ~/.config/tealeaf/prefs.toml.
package prefs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/odlove/tealeaf/internal/forum"
)

// Prefs holds user preferences for tealeaf.
type Prefs struct {
	Theme string `toml:"theme"`

	// Sort is "asc", "desc" or "hot".
	Sort string `toml:"sort"`

	SeeAuthorOnly bool `toml:"see_author_only"`
}

const (
	defaultPrefsPath = "~/.config/tealeaf/prefs.toml"
	defaultTheme     = "Dracula"
	defaultSort      = "asc"
)

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// SortMode maps the persisted sort name to its request value.
func (p Prefs) SortMode() forum.SortMode {
	switch strings.ToLower(strings.TrimSpace(p.Sort)) {
	case "desc":
		return forum.SortDesc
	case "hot":
		return forum.SortHot
	default:
		return forum.SortAsc
	}
}

// SortName returns the persisted name for a sort mode.
func SortName(m forum.SortMode) string {
	switch m {
	case forum.SortDesc:
		return "desc"
	case forum.SortHot:
		return "hot"
	default:
		return "asc"
	}
}

// Load reads preferences from the given path, falling back to defaults if missing.
func Load(path string) (Prefs, error) {
	defaults := Prefs{Theme: defaultTheme, Sort: defaultSort}

	resolved, err := resolvePath(path)
	if err != nil {
		return defaults, nil
	}

	prefs := defaults

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return prefs, nil
		}
		return prefs, nil // Graceful degradation
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return prefs, nil // Graceful degradation
	}

	if err := toml.Unmarshal(bytes, &prefs); err != nil {
		return defaults, nil // Graceful degradation
	}

	if strings.TrimSpace(prefs.Theme) == "" {
		prefs.Theme = defaultTheme
	}
	if strings.TrimSpace(prefs.Sort) == "" {
		prefs.Sort = defaultSort
	}

	return prefs, nil
}

// Save writes preferences to the given path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	bytes, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	if err := os.WriteFile(resolved, bytes, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}

	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultPrefsPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
