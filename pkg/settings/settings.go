// Package settings is the configuration store: named boolean and string
// settings with defaults, read synchronously from a config file, the
// environment, or both.
package settings

import (
	"fmt"
	"os"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// StorageMode selects which entity owns the hidden-elements map for an
// inspection: the base actor (tokens sharing an actor share flags) or each
// token individually.
type StorageMode string

const (
	PerActor StorageMode = "per-actor"
	PerToken StorageMode = "per-token"
)

// Settings is the read surface handed to everything that consumes
// configuration.
type Settings interface {
	// BasePath is the root directory for the world and flag stores.
	BasePath() string
	// ActiveSystem is the ruleset id handlers are resolved against.
	ActiveSystem() string
	// FlagStorage returns the configured flag-storage mode.
	FlagStorage() StorageMode
	// Redaction is the placeholder shown in place of hidden values.
	Redaction() string
	// Show reads a named visibility default. Unset settings are shown.
	Show(settingKey string) bool
}

// Load reads .inspect-statblock.yaml from INSPECT_STATBLOCK_CONFIG_PATH or
// the working directory, env vars taking precedence. A missing config file
// is fine; every setting has a default.
func Load() (Settings, error) {
	v := viper.New()
	v.SetDefault("path", "~/.inspect-statblock")
	v.SetDefault("system", "dnd5e")
	v.SetDefault("flag-storage", string(PerActor))
	v.SetDefault("redaction", "???")
	v.SetConfigName(".inspect-statblock")
	v.SetEnvPrefix("INSPECT_STATBLOCK")
	v.AutomaticEnv()

	if override := os.Getenv("INSPECT_STATBLOCK_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("settings: read config: %w", err)
		}
	}

	path, err := homedir.Expand(v.GetString("path"))
	if err != nil {
		return nil, fmt.Errorf("settings: expand path: %w", err)
	}

	return &fileSettings{v: v, path: path}, nil
}

type fileSettings struct {
	v    *viper.Viper
	path string
}

func (f *fileSettings) BasePath() string     { return f.path }
func (f *fileSettings) ActiveSystem() string { return f.v.GetString("system") }

func (f *fileSettings) FlagStorage() StorageMode {
	if StorageMode(f.v.GetString("flag-storage")) == PerToken {
		return PerToken
	}
	return PerActor
}

func (f *fileSettings) Redaction() string { return f.v.GetString("redaction") }

func (f *fileSettings) Show(settingKey string) bool {
	if !f.v.IsSet(settingKey) {
		return true
	}
	return f.v.GetBool(settingKey)
}
