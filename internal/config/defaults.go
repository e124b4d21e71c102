package config

import "time"

// GetDefaults returns the default configuration values
func GetDefaults() map[string]interface{} {
	return map[string]interface{}{
		// changelog: File checked when no path is passed to the check command.
		"changelog": "CHANGELOG.md",
		"fix":       false,
		// format: Output of the check command. Valid values: "text", "yaml", "summary"
		"format":    "text",
		"plain":     false,
		"log_level": "warn",
		// max_parallel: Upper bound on changelog files checked at the same time.
		"max_parallel": 4,
		// watch_debounce: Quiet period after a write before the watch command re-checks.
		"watch_debounce": (250 * time.Millisecond).String(),
	}
}
