package config

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Path is the default directory of the config files.
const Path = "infra/config"

// Load reads the yaml file at the given path into v.
// Fields missing from the file keep the value they already have in v.
func Load(path string, v interface{}) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not load config '%s': %w", path, err)
	}
	err = yaml.Unmarshal(b, v)
	if err != nil {
		return fmt.Errorf("could not unmarshal config '%s': %w", path, err)
	}
	log.Info().Str("path", path).Msg("loaded config")
	return nil
}
