package ui

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// PrefsFileName is the preferences file inside the config directory.
const PrefsFileName = "ui_prefs.json"

// TablePrefs stores the table's column layout. Sort and filter state are
// not persisted.
type TablePrefs struct {
	HiddenColumns []string `json:"hidden_columns"`
	ActiveColumn  string   `json:"active_column"`
}

// UIPreferences stores persisted app preferences.
type UIPreferences struct {
	Table TablePrefs `json:"table"`
}

func defaultUIPreferences() UIPreferences {
	return UIPreferences{}
}

// loadUIPreferences reads prefs from path. A missing or unreadable file
// yields the defaults.
func loadUIPreferences(path string) UIPreferences {
	if path == "" {
		return defaultUIPreferences()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return defaultUIPreferences()
	}

	var prefs UIPreferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		return defaultUIPreferences()
	}
	return prefs
}

// saveUIPreferences writes prefs to path. An empty path disables saving.
func saveUIPreferences(path string, prefs UIPreferences) error {
	if path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create prefs dir: %w", err)
	}

	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal prefs: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write prefs: %w", err)
	}
	return nil
}
