package main

import (
	"github.com/spf13/cobra"

	"github.com/ckanta/ckanta"
)

func newShowCmd() *cobra.Command {
	var brief bool

	cmd := &cobra.Command{
		Use:   "show <object> <id>",
		Short: "Show a single record",
		Long: `Show a dataset, group, organization or user by name or id.

With --brief, datasets are shown without resources and bookkeeping fields,
and groups and organizations without their users, datasets and tags.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}

			object, err := ckanta.ParseObject(args[0])
			if err != nil {
				return err
			}

			svc, err := a.service()
			if err != nil {
				return err
			}

			rec, err := svc.Show(cmd.Context(), ckanta.ShowOptions{Object: object, ID: args[1], Brief: brief})
			if err != nil {
				return err
			}
			return a.formatter.FormatRecord(cmd.OutOrStdout(), rec)
		},
	}

	cmd.Flags().BoolVar(&brief, "brief", false, "omit nested and bookkeeping fields")
	return cmd
}
