package models

import "fmt"

// OutputMode selects what the normalizer emits.
type OutputMode string

const (
	// ModePlain emits plain text; artifacts get a .txt extension.
	ModePlain OutputMode = "plain"
	// ModeHTML preserves content-region HTML; artifacts get a .html extension.
	ModeHTML OutputMode = "html"
)

// ParseOutputMode validates a mode string from config or CLI input.
func ParseOutputMode(s string) (OutputMode, error) {
	switch OutputMode(s) {
	case ModePlain, ModeHTML:
		return OutputMode(s), nil
	}
	return "", fmt.Errorf("unknown output mode: %q", s)
}

// Ext returns the artifact file extension for the mode.
func (m OutputMode) Ext() string {
	if m == ModeHTML {
		return ".html"
	}
	return ".txt"
}
