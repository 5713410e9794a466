package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ckanta/ckanta"
	"github.com/ckanta/ckanta/ckan"
	"github.com/ckanta/ckanta/config"
	"github.com/ckanta/ckanta/output"
)

// setup loads the config file and settings, then configures logging and
// the output formatter. A missing config file is not an error: commands that
// need an instance fail later unless --urlbase and --apikey are given.
func (a *app) setup(cmd *cobra.Command) error {
	a.configPath = a.flags.configPath
	if a.configPath == "" {
		a.configPath = config.DefaultPath()
	}

	if a.configPath != "" {
		file, err := config.Load(a.configPath)
		switch {
		case err == nil:
			a.file = file
		case errors.Is(err, config.ErrConfigNotFound):
			a.file = nil
		default:
			return err
		}
	}

	settings, err := config.LoadSettings(a.file, cmd.Flags())
	if err != nil {
		return err
	}
	a.settings = settings

	a.logger = setupLogging(a.stderr, settings, a.flags.debug)
	a.logger.Debug("config loaded", "path", a.configPath, "found", a.file != nil)

	a.formatter, err = output.NewFormatter(settings.Output, output.Options{})
	if err != nil {
		return err
	}
	return nil
}

// overrides returns the connection overrides from env and flags, flags first.
func (a *app) overrides() config.Overrides {
	return config.MergeOverrides(
		config.Overrides{Instance: a.settings.DefaultInstance},
		config.OverridesFromEnv(),
		config.Overrides{
			Instance: a.flags.instance,
			URLBase:  a.flags.urlBase,
			APIKey:   a.flags.apiKey,
		},
	)
}

// newClient builds a CKAN client for inst using the loaded settings.
func (a *app) newClient(inst *config.Instance) (*ckan.Client, error) {
	opts := []ckan.Option{
		ckan.WithRateLimit(a.settings.RateLimit),
		ckan.WithUserAgent("ckanta/" + version),
		ckan.WithTimeout(a.settings.Timeout),
	}

	client, err := ckan.New(&ckan.Config{
		URLBase:    inst.URLBase,
		APIKey:     inst.APIKey,
		ActionPath: a.settings.ActionPath,
	}, opts...)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("client ready", "urlbase", client.URLBase(), "timeout", client.Timeout())
	return client, nil
}

// client resolves the instance for this invocation and connects to it.
func (a *app) client() (*ckan.Client, error) {
	inst, err := config.Resolve(a.file, a.overrides())
	if errors.Is(err, config.ErrNoConfig) && a.flags.configPath != "" {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, config.ExpandPath(a.configPath))
	}
	if err != nil {
		return nil, err
	}
	a.logger.Debug("instance resolved", "instance", inst.Name, "urlbase", inst.URLBase)
	return a.newClient(inst)
}

// service returns a Service bound to the resolved instance.
func (a *app) service(opts ...ckanta.Option) (*ckanta.Service, error) {
	client, err := a.client()
	if err != nil {
		return nil, err
	}

	method := ckan.MethodGet
	if a.flags.post {
		method = ckan.MethodPost
	}

	base := []ckanta.Option{
		ckanta.WithReadMethod(method),
		ckanta.WithPageSize(a.settings.PageSize),
		ckanta.WithConcurrency(a.settings.Concurrency),
		ckanta.WithLogger(a.logger),
	}
	return ckanta.New(client, append(base, opts...)...)
}

// nationalStates parses the national-states setting.
func (a *app) nationalStates() (*ckanta.NationalStates, error) {
	states, err := ckanta.ParseNationalStates(a.settings.NationalStates)
	if err != nil {
		return nil, fmt.Errorf("national-states setting: %w", err)
	}
	return states, nil
}

// printError writes err to stderr through the formatter, or as plain text
// when setup did not get as far as creating one.
func (a *app) printError(err error) {
	formatter := a.formatter
	if formatter == nil {
		formatter = &output.TableFormatter{}
	}
	_ = formatter.FormatError(a.stderr, err)
}

// quietFormatter returns a table formatter that skips per-item success lines.
// Document formats are returned unchanged.
func (a *app) quietFormatter() output.Formatter {
	if _, ok := a.formatter.(*output.TableFormatter); ok {
		return &output.TableFormatter{Quiet: true}
	}
	return a.formatter
}
