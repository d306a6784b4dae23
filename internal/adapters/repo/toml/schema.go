package toml

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version  int               `toml:"version"`
	Settings map[string]string `toml:"settings"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
	if s.Settings == nil {
		s.Settings = map[string]string{}
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported settings schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}
