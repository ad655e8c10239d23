package config

import (
	"fmt"
	"sync"
)

var (
	current  *Config
	mu       sync.RWMutex
	initOnce sync.Once
)

// Initialize loads the configuration at path (an empty path means defaults
// plus LANTERN_* overrides) and installs it as the process-wide instance.
// Only the first call has any effect.
func Initialize(path string) error {
	var err error
	initOnce.Do(func() {
		var cfg *Config
		cfg, err = LoadConfigWithEnvOverrides(path)
		if err != nil {
			return
		}
		SetConfig(cfg)
	})
	return err
}

// GetConfig returns the installed configuration, or nil before a successful
// Initialize. Library packages take their section as an argument instead.
func GetConfig() *Config {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// SetConfig installs cfg. Tests use it to bypass Initialize.
func SetConfig(cfg *Config) {
	mu.Lock()
	current = cfg
	mu.Unlock()
}

// ReloadConfig loads path again and swaps it in, keeping the previous
// configuration when loading or validation fails. lantern run calls it on
// SIGHUP; only settings read per use (the log level) take effect, the
// listener and mounts stay as bound at startup.
func ReloadConfig(path string) error {
	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		return fmt.Errorf("failed to reload configuration: %w", err)
	}
	SetConfig(cfg)
	return nil
}

// MustGetConfig is GetConfig for code that only runs after startup.
func MustGetConfig() *Config {
	cfg := GetConfig()
	if cfg == nil {
		panic("configuration not initialized: call Initialize first")
	}
	return cfg
}
