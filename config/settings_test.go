package config_test

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ckanta/ckanta/config"
)

func TestLoadSettings_Defaults(t *testing.T) {
	s, err := config.LoadSettings(nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "local", s.DefaultInstance)
	assert.Equal(t, "table", s.Output)
	assert.Equal(t, "info", s.LogLevel)
	assert.Equal(t, "text", s.LogFormat)
	assert.Equal(t, 30*time.Second, s.Timeout)
	assert.InDelta(t, 0.0, s.RateLimit, 0)
	assert.Equal(t, 5, s.PageSize)
	assert.Equal(t, 4, s.Concurrency)
	assert.Equal(t, "api/3/action", s.ActionPath)
	assert.Empty(t, s.NationalStates)
}

func TestLoadSettings_ConfigFile(t *testing.T) {
	f, err := config.Parse([]byte(`
[ckanta]
default-instance = dev
output = YAML
log-level = debug
timeout = 5s
rate-limit = 2.5
page-size = 20
concurrency = 8
action-path = /ckan/api/3/action
national-states = AB:'Abia'
`))
	require.NoError(t, err)

	s, err := config.LoadSettings(f, nil)
	require.NoError(t, err)

	assert.Equal(t, "dev", s.DefaultInstance)
	assert.Equal(t, "yaml", s.Output)
	assert.Equal(t, "debug", s.LogLevel)
	assert.Equal(t, 5*time.Second, s.Timeout)
	assert.InDelta(t, 2.5, s.RateLimit, 0.0001)
	assert.Equal(t, 20, s.PageSize)
	assert.Equal(t, 8, s.Concurrency)
	assert.Equal(t, "/ckan/api/3/action", s.ActionPath)
	assert.Equal(t, "AB:'Abia'", s.NationalStates)
}

func TestLoadSettings_EnvOverridesFile(t *testing.T) {
	f, err := config.Parse([]byte("[ckanta]\noutput = yaml\nlog-level = warn\n"))
	require.NoError(t, err)

	t.Setenv("CKANTA_OUTPUT", "json")

	s, err := config.LoadSettings(f, nil)
	require.NoError(t, err)
	assert.Equal(t, "json", s.Output)
	assert.Equal(t, "warn", s.LogLevel)
}

func TestLoadSettings_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("CKANTA_OUTPUT", "json")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("output", "table", "")
	flags.String("log-level", "info", "")
	flags.Duration("timeout", 0, "")
	flags.String("urlbase", "", "")
	require.NoError(t, flags.Set("output", "yaml"))
	require.NoError(t, flags.Set("timeout", "2s"))
	require.NoError(t, flags.Set("urlbase", "http://ignored"))

	f, err := config.Parse([]byte("[ckanta]\nlog-level = error\n"))
	require.NoError(t, err)

	s, err := config.LoadSettings(f, flags)
	require.NoError(t, err)
	assert.Equal(t, "yaml", s.Output)
	assert.Equal(t, 2*time.Second, s.Timeout)
	// unset flags must not shadow the file
	assert.Equal(t, "error", s.LogLevel)
}

func TestLoadSettings_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "invalid output", content: "output = xml"},
		{name: "invalid log level", content: "log-level = loud"},
		{name: "invalid log format", content: "log-format = logfmt"},
		{name: "page size too large", content: "page-size = 5000"},
		{name: "zero concurrency", content: "concurrency = 0"},
		{name: "negative rate limit", content: "rate-limit = -1"},
		{name: "empty default instance", content: "default-instance ="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := config.Parse([]byte("[ckanta]\n" + tt.content + "\n"))
			require.NoError(t, err)

			_, err = config.LoadSettings(f, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "validate settings")
		})
	}
}

func TestLoadSettings_UnmarshalError(t *testing.T) {
	f, err := config.Parse([]byte("[ckanta]\ntimeout = soon\n"))
	require.NoError(t, err)

	_, err = config.LoadSettings(f, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal settings")
}
