package config

var defaults = map[string]any{
	"log_level": "info",

	"allowed_networks": "",
	"listen_addr":      ":8080",

	"edit_window": 3600, // 1 hour

	"storage.local.path": "worklog.db",

	"mirror.url":     "",
	"mirror.timeout": 10,
	"mirror.locale":  "en-US",

	"sync.primary_attempts": 3,
	"sync.primary_backoff":  500,
	"sync.stage_timeout":    10,
}

func Defaults() map[string]any {
	values := make(map[string]any)
	for k, v := range defaults {
		values[k] = v
	}
	return values
}
