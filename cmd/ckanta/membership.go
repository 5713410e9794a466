package main

import (
	"github.com/spf13/cobra"

	"github.com/ckanta/ckanta"
)

func newMembershipCmd() *cobra.Command {
	var groups bool

	cmd := &cobra.Command{
		Use:   "membership <user>",
		Short: "List the organizations and groups of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}

			svc, err := a.service()
			if err != nil {
				return err
			}

			result, err := svc.Membership(cmd.Context(), ckanta.MembershipOptions{UserID: args[0], Groups: groups})
			if err != nil {
				return err
			}
			return a.formatter.FormatMembership(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().BoolVarP(&groups, "groups", "g", false, "also list groups the user can edit")
	return cmd
}
