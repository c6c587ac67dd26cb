package backend

import (
	"errors"
	"fmt"

	"financaszen/internal/config"
)

// FromAppConfig picks the backend fields out of the application config.
func FromAppConfig(app *config.Config) (Config, error) {
	if app == nil {
		return Config{}, errors.New("app config is nil")
	}
	kind := BackendType(app.DataBackend)
	if !kind.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", app.DataBackend)
	}
	return Config{
		Type:          kind,
		SQLiteDBPath:  app.SQLiteDBPath,
		SeedDirectory: app.MemorySeedDir,
	}, nil
}

func (c Config) Validate() error {
	switch {
	case !c.Type.IsValid():
		return fmt.Errorf("invalid backend type: %s (want one of %v)", c.Type, GetBackendTypeStrings())
	case c.Type == SQLiteBackend && c.SQLiteDBPath == "":
		return errors.New("SQLite database path is required for sqlite backend")
	}
	return nil
}

// GetBackendTypes lists the supported backends, the default first.
func GetBackendTypes() []BackendType {
	return []BackendType{SQLiteBackend, MemoryBackend}
}

func GetBackendTypeStrings() []string {
	types := GetBackendTypes()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}
