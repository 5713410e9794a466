package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Overrides are connection values supplied for a single invocation.
type Overrides struct {
	Instance string
	URLBase  string
	APIKey   string
}

// OverridesFromEnv reads CKANTA_INSTANCE, CKANTA_URLBASE and CKANTA_APIKEY.
func OverridesFromEnv() Overrides {
	return Overrides{
		Instance: os.Getenv("CKANTA_INSTANCE"),
		URLBase:  os.Getenv("CKANTA_URLBASE"),
		APIKey:   os.Getenv("CKANTA_APIKEY"),
	}
}

// MergeOverrides merges overrides with later ones taking precedence.
// Empty strings in later values do not replace non-empty earlier values.
func MergeOverrides(all ...Overrides) Overrides {
	var result Overrides
	for _, o := range all {
		if o.Instance != "" {
			result.Instance = o.Instance
		}
		if o.URLBase != "" {
			result.URLBase = o.URLBase
		}
		if o.APIKey != "" {
			result.APIKey = o.APIKey
		}
	}
	return result
}

// Resolve returns the instance this invocation talks to.
//
// A URL base and API key supplied together are used as-is and file may be
// nil. Otherwise the instance named by o.Instance, or the file's default
// instance, is looked up and any single override replaces its field.
func Resolve(file *File, o Overrides) (*Instance, error) {
	var inst *Instance

	if o.URLBase != "" && o.APIKey != "" {
		inst = &Instance{URLBase: o.URLBase, APIKey: o.APIKey}
	} else {
		if file == nil {
			return nil, fmt.Errorf("%w: provide --urlbase and --apikey or create a config file", ErrNoConfig)
		}

		name := o.Instance
		if name == "" {
			name = file.DefaultInstance()
		}

		found, err := file.Instance(name)
		if err != nil {
			return nil, err
		}
		inst = found

		if o.URLBase != "" {
			inst.URLBase = o.URLBase
		}
		if o.APIKey != "" {
			inst.APIKey = o.APIKey
		}
	}

	inst.URLBase = strings.TrimSpace(inst.URLBase)
	if err := ValidateInstance(inst); err != nil {
		return nil, err
	}
	return inst, nil
}

// ValidateInstance checks that the instance has a usable URL base.
func ValidateInstance(inst *Instance) error {
	if inst.URLBase == "" {
		return instanceError(inst, ErrURLBaseRequired)
	}

	err := validator.New().Struct(inst)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return instanceError(inst, fmt.Errorf("%w: %s", ErrInvalidURLBase, inst.URLBase))
	}
	return instanceError(inst, err)
}

func instanceError(inst *Instance, err error) error {
	if inst.Name == "" {
		return err
	}
	return fmt.Errorf("instance %q: %w", inst.Name, err)
}
