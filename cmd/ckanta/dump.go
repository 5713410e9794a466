package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ckanta/ckanta"
)

func newDumpCmd() *cobra.Command {
	var (
		limit  int
		offset int
		out    string
	)

	cmd := &cobra.Command{
		Use:   "dump <object>",
		Short: "Write full records to CSV",
		Long: `Fetch full records with <object>_show and write them as CSV.

Names are listed and sorted first; --offset and --limit select a window of
them. Nested values are written as JSON.

Examples:
  ckanta dump organization --out organizations.csv
  ckanta dump group --limit 10 --offset 20`,
		Args: cobra.ExactArgs(1),
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

			w := cmd.OutOrStdout()
			closeOut := func() error { return nil }
			if out != "" && out != "-" {
				f, err := os.Create(out) //#nosec G304 -- path is the user-provided output file
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				w = f
				closeOut = f.Close
			}

			n, err := svc.Dump(cmd.Context(), ckanta.DumpOptions{
				Object: object,
				Limit:  limit,
				Offset: offset,
				Writer: w,
			})
			if err != nil {
				_ = closeOut()
				return err
			}
			if err := closeOut(); err != nil {
				return fmt.Errorf("close output: %w", err)
			}

			a.logger.Info("dump finished", "object", object, "records", n, "out", out)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of records, 0 for all")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of sorted names to skip")
	cmd.Flags().StringVar(&out, "out", "", "output CSV file (default: stdout)")
	return cmd
}
