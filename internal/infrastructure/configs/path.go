package configs

import (
	"flag"
	"os"

	"github.com/huddlehq/huddle/internal/infrastructure/env"
)

// DetermineConfigPath resolves the config file location: --config flag first,
// then the HUDDLE_CONFIG env var, then a list of well-known candidates. An
// empty result means "run on defaults".
func DetermineConfigPath() string {
	var configPath string

	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	if configPath == "" {
		configPath = env.GetString("HUDDLE_CONFIG", "")
	}

	if configPath == "" {
		candidates := []string{
			"./config.yaml",
			"./config.yml",
			"../../config.yaml", // keep for local dev
			"/etc/huddle/config.yaml",
			"/app/config.yaml", // common in Docker
		}

		for _, p := range candidates {
			if _, err := os.Stat(p); err == nil {
				configPath = p
				break
			}
		}
	}

	return configPath
}
