package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
)

const (
	// SettingsSection is the section holding tool-wide preferences.
	SettingsSection = "ckanta"

	// DefaultInstanceName is used when neither a flag nor the settings name
	// an instance.
	DefaultInstanceName = "local"

	instancePrefix = "instance:"
)

// Instance holds the connection settings for a single CKAN instance.
type Instance struct {
	Name    string `json:"name" yaml:"name"`
	URLBase string `json:"urlbase" yaml:"urlbase" validate:"required,http_url"`
	APIKey  string `json:"apikey" yaml:"apikey"`
}

// SectionName returns the INI section the instance is stored under.
func (i Instance) SectionName() string {
	return instancePrefix + i.Name
}

// File is a parsed configuration file.
type File struct {
	ini *ini.File
}

// loadOptions: keys are case-insensitive, indented lines continue the
// previous value and "#" or ";" inside a value is kept.
func loadOptions() ini.LoadOptions {
	return ini.LoadOptions{
		InsensitiveKeys:            true,
		AllowPythonMultilineValues: true,
		IgnoreInlineComment:        true,
	}
}

// NewFile returns an empty configuration.
func NewFile() *File {
	return &File{ini: ini.Empty(loadOptions())}
}

// Parse parses configuration from memory.
func Parse(data []byte) (*File, error) {
	f, err := ini.LoadSources(loadOptions(), data)
	if err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return &File{ini: f}, nil
}

// Load reads and parses the configuration file at path. A leading "~" and
// environment variable references in path are expanded.
func Load(path string) (*File, error) {
	cleanPath := filepath.Clean(ExpandPath(path))
	data, err := os.ReadFile(cleanPath) //#nosec G304 -- path is user-provided config file
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s: %w", ErrConfigNotFound, cleanPath, err)
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Parse(data)
}

// DefaultPath returns the config file path: CKANTA_CONFIG when set,
// otherwise ~/.ckanta/config.ini.
func DefaultPath() string {
	if p := PathFromEnv(); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".ckanta", "config.ini")
}

// PathFromEnv returns the config file path from the CKANTA_CONFIG environment variable.
func PathFromEnv() string {
	return os.Getenv("CKANTA_CONFIG")
}

// ExpandPath expands a leading "~" to the user's home directory and
// $VAR or ${VAR} references. Unset variables are left as written.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return os.Expand(path, func(name string) string {
		if v, ok := os.LookupEnv(name); ok {
			return v
		}
		return "${" + name + "}"
	})
}

// Instances returns all configured instances in file order.
func (f *File) Instances() []Instance {
	var out []Instance
	for _, sec := range f.ini.Sections() {
		name, ok := strings.CutPrefix(sec.Name(), instancePrefix)
		if !ok {
			continue
		}
		out = append(out, Instance{
			Name:    name,
			URLBase: keyValue(sec, "urlbase"),
			APIKey:  keyValue(sec, "apikey"),
		})
	}
	return out
}

// InstanceNames returns the names of all configured instances in file order.
func (f *File) InstanceNames() []string {
	instances := f.Instances()
	names := make([]string, len(instances))
	for i := range instances {
		names[i] = instances[i].Name
	}
	return names
}

// HasInstance reports whether the named instance is configured.
func (f *File) HasInstance(name string) bool {
	return f.ini.HasSection(instancePrefix + name)
}

// Instance returns the named instance.
func (f *File) Instance(name string) (*Instance, error) {
	section := instancePrefix + name
	sec, err := f.ini.GetSection(section)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInstanceNotFound, section)
	}
	return &Instance{
		Name:    name,
		URLBase: keyValue(sec, "urlbase"),
		APIKey:  keyValue(sec, "apikey"),
	}, nil
}

// SetInstance adds the instance or replaces an existing one with the same name.
func (f *File) SetInstance(inst Instance) error {
	if err := validateName(inst.Name); err != nil {
		return err
	}
	sec := f.ini.Section(inst.SectionName())
	sec.Key("urlbase").SetValue(inst.URLBase)
	sec.Key("apikey").SetValue(inst.APIKey)
	return nil
}

// RemoveInstance removes the named instance.
func (f *File) RemoveInstance(name string) error {
	if !f.HasInstance(name) {
		return fmt.Errorf("%w: %s%s", ErrInstanceNotFound, instancePrefix, name)
	}
	f.ini.DeleteSection(instancePrefix + name)
	return nil
}

// DefaultInstance returns the default-instance setting, or DefaultInstanceName.
func (f *File) DefaultInstance() string {
	if name, ok := f.Setting("default-instance"); ok && name != "" {
		return name
	}
	return DefaultInstanceName
}

// SetDefaultInstance records name as the default instance. The instance
// must exist.
func (f *File) SetDefaultInstance(name string) error {
	if !f.HasInstance(name) {
		return fmt.Errorf("%w: %s%s", ErrInstanceNotFound, instancePrefix, name)
	}
	f.ini.Section(SettingsSection).Key("default-instance").SetValue(name)
	return nil
}

// Setting returns a value from the [ckanta] section.
func (f *File) Setting(key string) (string, bool) {
	sec, err := f.ini.GetSection(SettingsSection)
	if err != nil {
		return "", false
	}
	k, err := sec.GetKey(strings.ToLower(key))
	if err != nil {
		return "", false
	}
	return k.String(), true
}

// SettingsMap returns every key in the [ckanta] section.
func (f *File) SettingsMap() map[string]string {
	sec, err := f.ini.GetSection(SettingsSection)
	if err != nil {
		return map[string]string{}
	}
	return sec.KeysHash()
}

// Save writes the config to the specified path.
// Creates the parent directory if it doesn't exist.
func (f *File) Save(path string) error {
	cleanPath := filepath.Clean(ExpandPath(path))

	dir := filepath.Dir(cleanPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.ini.WriteTo(&buf); err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(cleanPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

func keyValue(sec *ini.Section, name string) string {
	k, err := sec.GetKey(name)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(k.String())
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" || strings.ContainsAny(name, "[]\n") {
		return fmt.Errorf("%w: %q", ErrInvalidInstanceName, name)
	}
	return nil
}
