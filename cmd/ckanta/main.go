package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Version: version,
		Use:     "ckanta",
		Short:   "Management tool for CKAN data portals",
		Long: `ckanta automates routine management operations against CKAN instances:
listing and showing datasets, groups, organizations and users, checking a
user's memberships, dumping records to CSV and creating records in bulk from
CSV files.

Connection settings are read from ~/.ckanta/config.ini (or CKANTA_CONFIG):

  [ckanta]
  default-instance = local

  [instance:local]
  urlbase = http://localhost:5000
  apikey = <api key>`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			cmd.SetContext(withApp(cmd.Context(), a))
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.flags.configPath, "config", "c", "", "config file (default: ~/.ckanta/config.ini, env: CKANTA_CONFIG)")
	flags.StringVarP(&a.flags.urlBase, "urlbase", "u", "", "CKAN instance URL base (env: CKANTA_URLBASE)")
	flags.StringVarP(&a.flags.apiKey, "apikey", "k", "", "CKAN API key (env: CKANTA_APIKEY)")
	flags.StringVarP(&a.flags.instance, "instance", "i", "", "configured instance to use (env: CKANTA_INSTANCE)")
	flags.StringP("output", "o", "table", "output format: table, json, yaml")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.String("log-format", "text", "log format: text, json")
	flags.BoolVar(&a.flags.debug, "debug", false, "enable debug logging with source locations")
	flags.BoolVar(&a.flags.post, "post", false, "send read actions as POST requests")
	flags.Duration("timeout", 0, "HTTP request timeout, 0 for none (default: 30s)")
	flags.Float64("rate-limit", 0, "maximum requests per second, 0 for unlimited")

	rootCmd.SetOut(a.stdout)
	rootCmd.SetErr(a.stderr)
	rootCmd.SetIn(a.stdin)

	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newMembershipCmd())
	rootCmd.AddCommand(newUploadCmd())
	rootCmd.AddCommand(newDumpCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	a := newApp(os.Stdin, os.Stdout, os.Stderr)
	err := newRootCmd(a).ExecuteContext(ctx)
	stop()

	if err != nil {
		a.printError(err)
		os.Exit(1)
	}
}
