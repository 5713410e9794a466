package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ckanta/ckanta/config"
)

func TestConfigList(t *testing.T) {
	_, path := setupCLI(t)

	stdout, _, err := execute(t, "-c", path, "config", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "* test")
	assert.Contains(t, stdout, "secr...0001")
	assert.NotContains(t, stdout, "secret-api-key-0001")

	stdout, _, err = execute(t, "-c", path, "config", "list", "--show-key")
	require.NoError(t, err)
	assert.Contains(t, stdout, "secret-api-key-0001")
}

func TestConfigList_NoFile(t *testing.T) {
	setupCLI(t)

	stdout, _, err := execute(t, "-c", filepath.Join(t.TempDir(), "none.ini"), "config", "list")
	require.NoError(t, err)
	assert.Equal(t, "No instances configured\n", stdout)
}

func TestConfigShow(t *testing.T) {
	srv, path := setupCLI(t)

	stdout, _, err := execute(t, "-c", path, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Name:    test (default)")
	assert.Contains(t, stdout, "URLBase: "+srv.URL)

	_, _, err = execute(t, "-c", path, "config", "show", "prod")
	assert.ErrorIs(t, err, config.ErrInstanceNotFound)
}

func TestConfigAdd(t *testing.T) {
	srv, path := setupCLI(t)
	srv.Result("status_show", map[string]any{"ckan_version": "2.10.4"})

	stdout, _, err := execute(t, "-c", path, "config", "add", "staging",
		"-u", srv.URL+"/", "-k", "secret-api-key-0001", "--default")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Testing connection... OK")
	assert.Contains(t, stdout, "Instance 'staging' added.")
	assert.Contains(t, stdout, "Set as default instance.")

	file, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "staging", file.DefaultInstance())
	inst, err := file.Instance("staging")
	require.NoError(t, err)
	assert.Equal(t, "secret-api-key-0001", inst.APIKey)
	assert.Equal(t, []string{"test", "staging"}, file.InstanceNames())
}

func TestConfigAdd_NewFile(t *testing.T) {
	setupCLI(t)
	path := filepath.Join(t.TempDir(), "nested", "config.ini")

	stdout, _, err := execute(t, "-c", path, "config", "add", "local",
		"-u", "http://localhost:5000", "--skip-test")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Instance 'local' added.")
	assert.Contains(t, stdout, "Set as default instance.")

	file, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "local", file.DefaultInstance())
}

func TestConfigAdd_ConnectionFails(t *testing.T) {
	_, path := setupCLI(t)

	stdout, _, err := execute(t, "-c", path, "config", "add", "broken", "-u", "http://127.0.0.1:1")
	require.Error(t, err)
	assert.Contains(t, stdout, "FAILED")

	file, err := config.Load(path)
	require.NoError(t, err)
	assert.False(t, file.HasInstance("broken"))
}

func TestConfigAdd_InvalidURL(t *testing.T) {
	_, path := setupCLI(t)

	_, _, err := execute(t, "-c", path, "config", "add", "bad", "-u", "ftp://example.org", "--skip-test")
	assert.ErrorIs(t, err, config.ErrInvalidURLBase)
}

func TestConfigRemove(t *testing.T) {
	_, path := setupCLI(t)

	t.Run("unconfirmed", func(t *testing.T) {
		stdout, _, err := execute(t, "-c", path, "config", "remove", "test")
		require.NoError(t, err)
		assert.Contains(t, stdout, "Cancelled.")
	})

	t.Run("unknown", func(t *testing.T) {
		_, _, err := execute(t, "-c", path, "config", "rm", "prod", "-y")
		assert.ErrorIs(t, err, config.ErrInstanceNotFound)
	})

	t.Run("confirmed", func(t *testing.T) {
		stdout, _, err := execute(t, "-c", path, "config", "remove", "test", "-y")
		require.NoError(t, err)
		assert.Contains(t, stdout, "Instance 'test' removed.")

		file, err := config.Load(path)
		require.NoError(t, err)
		assert.Empty(t, file.InstanceNames())
	})
}

func TestConfigSetDefault(t *testing.T) {
	srv, path := setupCLI(t)
	srv.Result("status_show", map[string]any{})

	_, _, err := execute(t, "-c", path, "config", "add", "other", "-u", srv.URL, "--skip-test")
	require.NoError(t, err)

	stdout, _, err := execute(t, "-c", path, "config", "set-default", "other")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Default instance set to 'other'.")

	file, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "other", file.DefaultInstance())

	_, _, err = execute(t, "-c", path, "config", "set-default", "missing")
	assert.ErrorIs(t, err, config.ErrInstanceNotFound)
}

func TestConfigStates(t *testing.T) {
	_, path := setupCLI(t)

	stdout, _, err := execute(t, "-c", path, "config", "states")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Code")
	assert.Contains(t, stdout, "Lagos")
	assert.Contains(t, stdout, "2 state(s)")
	assert.Less(t, strings.Index(stdout, "Abia"), strings.Index(stdout, "Lagos"))

	stdout, _, err = execute(t, "-c", path, "-o", "json", "config", "states")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"code":"AB","name":"Abia","slug":"abia"},{"code":"LA","name":"Lagos","slug":"lagos"}]`, stdout)
}
