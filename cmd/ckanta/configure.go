package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/gosimple/slug"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ckanta/ckanta"
	"github.com/ckanta/ckanta/config"
)

// connectionTestTimeout bounds the status_show call made by "config add".
const connectionTestTimeout = 5 * time.Second

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configured CKAN instances",
		Long: `Manage [instance:<name>] sections of the config file.

Instances let you save connection settings for several CKAN portals and
switch between them with --instance or CKANTA_INSTANCE.

Configuration is stored in ~/.ckanta/config.ini`,
	}

	cmd.AddCommand(newConfigListCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigAddCmd())
	cmd.AddCommand(newConfigRemoveCmd())
	cmd.AddCommand(newConfigSetDefaultCmd())
	cmd.AddCommand(newConfigStatesCmd())
	return cmd
}

func newConfigListCmd() *cobra.Command {
	var showKey bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List configured instances",
		Long: `List all instances configured in the config file.

The default instance is marked with an asterisk (*).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}

			var instances []config.Instance
			if a.file != nil {
				instances = a.file.Instances()
			}
			return a.formatter.FormatInstances(cmd.OutOrStdout(), instances, a.settings.DefaultInstance, showKey)
		},
	}

	cmd.Flags().BoolVar(&showKey, "show-key", false, "show API keys")
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	var showKey bool

	cmd := &cobra.Command{
		Use:   "show [name]",
		Short: "Show instance details",
		Long: `Show details for an instance.

If no name is provided, shows the default instance.
API keys are masked; use --show-key to reveal them.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}
			file, err := a.requireFile()
			if err != nil {
				return err
			}

			name := a.settings.DefaultInstance
			if len(args) > 0 {
				name = args[0]
			}

			inst, err := file.Instance(name)
			if err != nil {
				return err
			}
			isDefault := name == a.settings.DefaultInstance
			return a.formatter.FormatInstance(cmd.OutOrStdout(), *inst, isDefault, showKey)
		},
	}

	cmd.Flags().BoolVar(&showKey, "show-key", false, "show the API key")
	return cmd
}

type configAddOptions struct {
	setDefault bool
	skipTest   bool
}

func newConfigAddCmd() *cobra.Command {
	var opts configAddOptions

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add or update an instance",
		Long: `Add an instance to the config file.

The URL base and API key are taken from --urlbase and --apikey, or prompted
for when not given. The connection is tested with status_show before saving.

Examples:
  ckanta config add staging
  ckanta config add prod -u https://data.example.org -k <api key> --default`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigAdd(cmd, args[0], &opts)
		},
	}

	cmd.Flags().BoolVar(&opts.setDefault, "default", false, "make this the default instance")
	cmd.Flags().BoolVar(&opts.skipTest, "skip-test", false, "save without testing the connection")
	return cmd
}

func runConfigAdd(cmd *cobra.Command, name string, opts *configAddOptions) error {
	a, err := appFromContext(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	interactive := a.flags.urlBase == ""

	file := a.file
	if file == nil {
		file = config.NewFile()
	}

	existing := file.HasInstance(name)
	if existing && interactive {
		if !a.confirm(fmt.Sprintf("Instance '%s' already exists. Update it", name)) {
			_, _ = fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	inst := config.Instance{Name: name, URLBase: a.flags.urlBase, APIKey: a.flags.apiKey}
	if interactive {
		if inst.URLBase, err = a.prompt(promptui.Prompt{
			Label:    "URL base",
			Default:  "http://localhost:5000",
			Validate: validateURLBase,
		}); err != nil {
			return handlePromptError(out, err)
		}
		if inst.APIKey, err = a.prompt(promptui.Prompt{Label: "API key", Mask: '*'}); err != nil {
			return handlePromptError(out, err)
		}
	}
	if err := config.ValidateInstance(&inst); err != nil {
		return err
	}

	setAsDefault := opts.setDefault || len(file.Instances()) == 0
	if !setAsDefault && interactive {
		setAsDefault = a.confirm("Set as default instance")
	}

	if !opts.skipTest {
		_, _ = fmt.Fprint(out, "Testing connection... ")
		if connErr := a.testConnection(cmd.Context(), &inst); connErr != nil {
			_, _ = fmt.Fprintln(out, "FAILED")
			_, _ = fmt.Fprintf(out, "Warning: Could not connect to instance: %v\n", connErr)
			if !interactive || !a.confirm("Save instance anyway") {
				return fmt.Errorf("connection test failed: %w", connErr)
			}
		} else {
			_, _ = fmt.Fprintln(out, "OK")
		}
	}

	if err := file.SetInstance(inst); err != nil {
		return err
	}
	if setAsDefault {
		if err := file.SetDefaultInstance(name); err != nil {
			return err
		}
	}
	if err := file.Save(a.configPath); err != nil {
		return err
	}

	if existing {
		_, _ = fmt.Fprintf(out, "Instance '%s' updated.\n", name)
	} else {
		_, _ = fmt.Fprintf(out, "Instance '%s' added.\n", name)
	}
	if setAsDefault {
		_, _ = fmt.Fprintln(out, "Set as default instance.")
	}
	return nil
}

func newConfigRemoveCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "remove <name>",
		Aliases: []string{"rm"},
		Short:   "Remove an instance",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}
			file, err := a.requireFile()
			if err != nil {
				return err
			}

			name := args[0]
			if !file.HasInstance(name) {
				return fmt.Errorf("%w: instance:%s", config.ErrInstanceNotFound, name)
			}

			out := cmd.OutOrStdout()
			if !yes && !a.confirm(fmt.Sprintf("Remove instance '%s'", name)) {
				_, _ = fmt.Fprintln(out, "Cancelled.")
				return nil
			}

			if err := file.RemoveInstance(name); err != nil {
				return err
			}
			if err := file.Save(a.configPath); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(out, "Instance '%s' removed.\n", name)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func newConfigSetDefaultCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-default <name>",
		Short: "Set the default instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}
			file, err := a.requireFile()
			if err != nil {
				return err
			}

			if err := file.SetDefaultInstance(args[0]); err != nil {
				return err
			}
			if err := file.Save(a.configPath); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Default instance set to '%s'.\n", args[0])
			return nil
		},
	}
}

func newConfigStatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "states",
		Short: "List the national states",
		Long: `List the entries of the national-states setting in declaration order.

Dataset uploads prefix titles with these names, matched by the slug of the
owner organization.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}
			states, err := a.nationalStates()
			if err != nil {
				return err
			}

			result := &ckanta.ListResult{Object: "state", Records: []ckanta.Record{}}
			for _, s := range states.States() {
				result.Records = append(result.Records, ckanta.Record{
					"code": s.Code,
					"name": s.Name,
					"slug": slug.Make(s.Name),
				})
			}
			def := ckanta.NewTableDef([]string{"code", "name", "slug"}, nil)
			return a.formatter.FormatList(cmd.OutOrStdout(), result, def)
		},
	}
}

// requireFile returns the loaded config file or ErrConfigNotFound.
func (a *app) requireFile() (*config.File, error) {
	if a.file == nil {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, a.configPath)
	}
	return a.file, nil
}

// testConnection calls status_show on inst.
func (a *app) testConnection(ctx context.Context, inst *config.Instance) error {
	client, err := a.newClient(inst)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, connectionTestTimeout)
	defer cancel()

	status, err := client.Status(ctx)
	if err != nil {
		return err
	}
	a.logger.Debug("connection ok", "urlbase", inst.URLBase, "ckan_version", status["ckan_version"])
	return nil
}

func (a *app) prompt(p promptui.Prompt) (string, error) {
	p.Stdin = io.NopCloser(a.stdin)
	p.Stdout = nopWriteCloser{a.stdout}
	return p.Run()
}

// confirm asks a yes/no question. Any error counts as "no".
func (a *app) confirm(label string) bool {
	_, err := a.prompt(promptui.Prompt{Label: label, IsConfirm: true})
	return err == nil
}

func validateURLBase(input string) error {
	if input == "" {
		return errors.New("URL base is required")
	}
	parsedURL, err := url.Parse(input)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return errors.New("URL must start with http:// or https://")
	}
	return nil
}

// handlePromptError handles promptui errors. Aborting a prompt is not an error.
func handlePromptError(out io.Writer, err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrAbort) {
		_, _ = fmt.Fprintln(out, "Cancelled.")
		return nil
	}
	return err
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
