package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// UIState is the table state persisted between sessions. Process
// selections are deliberately not persisted: PIDs do not survive a
// reboot, and metric history never does.
type UIState struct {
	SortKey  string
	SortDesc bool
}

// LoadState reads persisted UI state from path. A missing or unreadable
// file returns the zero state and false.
func LoadState(path string) (UIState, bool) {
	data, err := os.ReadFile(path)
	if err != nil || !gjson.ValidBytes(data) {
		return UIState{}, false
	}

	var st UIState
	st.SortKey = gjson.GetBytes(data, "sort.key").String()
	st.SortDesc = gjson.GetBytes(data, "sort.desc").Bool()
	return st, true
}

// SaveState writes the UI state to path, creating parent directories as
// needed.
func SaveState(path string, st UIState) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	var (
		data []byte
		err  error
	)
	data, err = sjson.SetBytes(data, "sort.key", st.SortKey)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	data, err = sjson.SetBytes(data, "sort.desc", st.SortDesc)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write state %s: %w", path, err)
	}
	return nil
}
