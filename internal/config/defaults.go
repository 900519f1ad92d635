package config

import (
	"github.com/knadh/koanf/providers/confmap"
)

func DefaultConfig() map[string]interface{} {
	return map[string]interface{}{
		"store": map[string]interface{}{
			"driver": "sqlite",
			"path":   "~/.taskboard/taskboard.db",
			"dsn":    "",
		},
		"scheduler": map[string]interface{}{
			"interval":     "1s",
			"grace_window": "1s",
			"catch_up":     true,
		},
		"ui": map[string]interface{}{
			"colored_output": true,
			"chart_width":    30,
			"word_wrap":      100,
		},
		"telegram": map[string]interface{}{
			"enabled":   false,
			"bot_token": "",
			"chat_id":   0,
		},
		"log": map[string]interface{}{
			"level": "WARN",
		},
	}
}

func NewDefaultProvider() *confmap.Confmap {
	return confmap.Provider(DefaultConfig(), ".")
}

func GetDefaultConfigPath() string {
	return "~/.taskboard/config.yaml"
}
