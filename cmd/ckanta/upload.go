package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ckanta/ckanta"
)

func newUploadCmd() *cobra.Command {
	var orgs []string
	var quiet bool

	cmd := &cobra.Command{
		Use:   "upload <object> <file>",
		Short: "Create records from a CSV file",
		Long: `Create one record per row of a CSV file with the <object>_create action.
Use "-" to read from standard input.

Dataset rows are created once per --org. Unless the organization name starts
with "national:", the dataset title is prefixed with the organization's state
name from the national-states setting.

Examples:
  ckanta upload dataset datasets.csv --org abia --org lagos --org national:fmoh
  ckanta upload organization orgs.csv
  ckanta upload user users.csv`,
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

			states, err := a.nationalStates()
			if err != nil {
				return err
			}

			input, closeInput, err := openInput(cmd, args[1])
			if err != nil {
				return err
			}
			defer closeInput()

			svc, err := a.service(ckanta.WithNationalStates(states))
			if err != nil {
				return err
			}

			report, err := svc.Upload(cmd.Context(), ckanta.UploadOptions{
				Object:    object,
				Input:     input,
				OwnerOrgs: orgs,
			})
			if report != nil {
				formatter := a.formatter
				if quiet {
					formatter = a.quietFormatter()
				}
				if ferr := formatter.FormatUpload(cmd.OutOrStdout(), report); ferr != nil {
					return ferr
				}
			}
			if err != nil {
				return err
			}

			if report.Summary.Failed > 0 {
				return fmt.Errorf("%d of %d items failed", report.Summary.Failed, report.Summary.Total)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&orgs, "org", nil, "owner organization for dataset rows (repeatable)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "only print failed items and the summary")
	return cmd
}

// openInput opens path for reading, or standard input for "-".
func openInput(cmd *cobra.Command, path string) (io.Reader, func(), error) {
	if path == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(path) //#nosec G304 -- path is the user-provided input file
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
