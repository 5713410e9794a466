package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/ckanta/ckanta"
)

type listOptions struct {
	allFields bool
	params    []string
	columns   string
	headers   string
	details   bool
	page      int
	offset    int
}

func newListCmd() *cobra.Command {
	var opts listOptions

	cmd := &cobra.Command{
		Use:   "list <object>",
		Short: "List datasets, groups, organizations or users",
		Long: `List objects on a CKAN instance with the <object>_list action.

Objects: dataset (or package), group, organization, user.

With --details, group and organization names are sorted and one page of
full records is fetched with <object>_show.

Examples:
  ckanta list organization
  ckanta list user --all-fields --columns name:email:sysadmin
  ckanta list dataset --param limit=50 --param offset=100
  ckanta list group --details --page 2 --page-size 10`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, args, &opts)
		},
	}

	cmd.Flags().BoolVar(&opts.allFields, "all-fields", false, "return full records instead of names")
	cmd.Flags().StringArrayVarP(&opts.params, "param", "p", nil, "extra action parameter as key=value (repeatable)")
	cmd.Flags().StringVar(&opts.columns, "columns", "", "colon separated record fields to show, e.g. id:name:state")
	cmd.Flags().StringVar(&opts.headers, "headers", "", "colon separated column headers, e.g. ID::Status")
	cmd.Flags().BoolVar(&opts.details, "details", false, "show full records one page at a time (group, organization)")
	cmd.Flags().IntVar(&opts.page, "page", 1, "page number for --details")
	cmd.Flags().Int("page-size", 0, "page size for --details (default: page-size setting)")
	cmd.Flags().IntVar(&opts.offset, "offset", 0, "number of names to skip before paging")

	return cmd
}

func runList(cmd *cobra.Command, args []string, opts *listOptions) error {
	a, err := appFromContext(cmd.Context())
	if err != nil {
		return err
	}

	object, err := ckanta.ParseObject(args[0])
	if err != nil {
		return err
	}

	params, err := ckanta.ParseParams(opts.params)
	if err != nil {
		return err
	}

	svc, err := a.service()
	if err != nil {
		return err
	}

	def := tableDef(object, opts.columns, opts.headers)
	out := cmd.OutOrStdout()

	if opts.details {
		result, err := svc.Details(cmd.Context(), ckanta.DetailsOptions{
			Object:   object,
			Page:     opts.page,
			PageSize: a.settings.PageSize,
			Offset:   opts.offset,
		})
		if err != nil {
			return err
		}
		return a.formatter.FormatDetails(out, result, def)
	}

	result, err := svc.List(cmd.Context(), ckanta.ListOptions{
		Object:    object,
		AllFields: opts.allFields,
		Params:    params,
	})
	if err != nil {
		return err
	}
	return a.formatter.FormatList(out, result, def)
}

// tableDef returns the columns for record tables. Headers without columns
// relabel the default columns.
func tableDef(object ckanta.Object, columns, headers string) ckanta.TableDef {
	if columns != "" {
		return ckanta.ParseTableDef(columns, headers)
	}
	def := ckanta.DefaultTableDef(object)
	if headers == "" {
		return def
	}
	return ckanta.NewTableDef(def.Columns, strings.Split(headers, ":"))
}
