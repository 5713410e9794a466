package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Settings holds the tool-wide preferences from the [ckanta] section.
type Settings struct {
	DefaultInstance string        `mapstructure:"default-instance" validate:"required"`
	Output          string        `mapstructure:"output" validate:"required,oneof=table json yaml"`
	LogLevel        string        `mapstructure:"log-level" validate:"required,oneof=debug info warn error"`
	LogFormat       string        `mapstructure:"log-format" validate:"required,oneof=text json"`
	Timeout         time.Duration `mapstructure:"timeout" validate:"min=0"` // 0 disables the client timeout
	RateLimit       float64       `mapstructure:"rate-limit" validate:"min=0"`
	PageSize        int           `mapstructure:"page-size" validate:"min=1,max=1000"`
	Concurrency     int           `mapstructure:"concurrency" validate:"min=1,max=32"`
	ActionPath      string        `mapstructure:"action-path"`
	NationalStates  string        `mapstructure:"national-states"`
}

// settingKeys are the keys flags may override. Flags with other names are
// not bound.
var settingKeys = map[string]bool{
	"default-instance": true,
	"output":           true,
	"log-level":        true,
	"log-format":       true,
	"timeout":          true,
	"rate-limit":       true,
	"page-size":        true,
	"concurrency":      true,
	"action-path":      true,
}

// bindFlags binds explicitly set CLI flags to viper keys.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		if !settingKeys[f.Name] || !f.Changed {
			return
		}
		_ = v.BindPFlag(f.Name, f)
	})
}

// setDefaults configures default values on the viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("default-instance", DefaultInstanceName)
	v.SetDefault("output", "table")
	v.SetDefault("log-level", "info")
	v.SetDefault("log-format", "text")
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("rate-limit", 0)
	v.SetDefault("page-size", 5)
	v.SetDefault("concurrency", 4)
	v.SetDefault("action-path", "api/3/action")
	v.SetDefault("national-states", "")
}

// LoadSettings builds validated settings from the [ckanta] section of file,
// CKANTA_* environment variables and flags.
// Order of precedence (highest to lowest): flags > env > config file > defaults
//
// Both file and flags may be nil.
func LoadSettings(file *File, flags *pflag.FlagSet) (*Settings, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Merge the [ckanta] section
	if file != nil {
		section := make(map[string]any)
		for key, value := range file.SettingsMap() {
			section[key] = value
		}
		if err := v.MergeConfigMap(section); err != nil {
			return nil, fmt.Errorf("merge settings: %w", err)
		}
	}

	// 3. Bind environment variables
	v.SetEnvPrefix("CKANTA")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal into Settings struct
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}
	s.Output = strings.ToLower(strings.TrimSpace(s.Output))
	s.LogLevel = strings.ToLower(strings.TrimSpace(s.LogLevel))
	s.LogFormat = strings.ToLower(strings.TrimSpace(s.LogFormat))

	// 6. Validate using go-playground/validator
	if err := validator.New().Struct(&s); err != nil {
		return nil, fmt.Errorf("validate settings: %w", err)
	}

	return &s, nil
}
