package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/ckanta/ckanta"
	"github.com/ckanta/ckanta/config"
)

// noRecords is printed for empty listings.
const noRecords = "No records found"

// TableFormatter outputs human-readable tables.
type TableFormatter struct {
	Quiet bool
}

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// renderTable writes headers, a dashed rule and rows as aligned columns.
func renderTable(w io.Writer, t ckanta.Table) error {
	tw := newTabWriter(w)

	rule := make([]string, len(t.Headers))
	for i, h := range t.Headers {
		rule[i] = strings.Repeat("-", max(len(h), 3))
	}
	_, _ = fmt.Fprintln(tw, strings.Join(t.Headers, "\t"))
	_, _ = fmt.Fprintln(tw, strings.Join(rule, "\t"))
	for _, row := range t.Rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = strings.ReplaceAll(cell, "\n", " ")
		}
		_, _ = fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

// FormatList formats list results as a numbered name list or a record table.
func (f *TableFormatter) FormatList(w io.Writer, result *ckanta.ListResult, def ckanta.TableDef) error {
	if result.Len() == 0 {
		_, _ = fmt.Fprintln(w, noRecords)
		return nil
	}

	if len(result.Records) > 0 {
		if err := renderTable(w, def.Extract(result.Records)); err != nil {
			return err
		}
	} else {
		width := len(fmt.Sprint(len(result.Names)))
		for i, name := range result.Names {
			_, _ = fmt.Fprintf(w, "%*d. %s\n", width, i+1, name)
		}
	}

	_, _ = fmt.Fprintf(w, "\n%d %s(s)\n", result.Len(), result.Object)
	return nil
}

// FormatDetails formats a page of records as a table with a pager line.
func (f *TableFormatter) FormatDetails(w io.Writer, result *ckanta.DetailsResult, def ckanta.TableDef) error {
	if len(result.Records) == 0 {
		_, _ = fmt.Fprintln(w, noRecords)
		return nil
	}
	if err := renderTable(w, def.Extract(result.Records)); err != nil {
		return err
	}
	p := result.Pager
	_, _ = fmt.Fprintf(w, "\npage %d, size %d, offset %d: %d of %d %s(s)\n",
		p.Page, p.Size, p.Offset, len(result.Records), p.Total, result.Object)
	return nil
}

// FormatRecord formats a single record as a FIELD/VALUE table.
func (f *TableFormatter) FormatRecord(w io.Writer, rec ckanta.Record) error {
	if len(rec) == 0 {
		_, _ = fmt.Fprintln(w, noRecords)
		return nil
	}
	t := ckanta.Table{Headers: []string{"FIELD", "VALUE"}}
	for _, key := range rec.Keys() {
		t.Rows = append(t.Rows, []string{key, ckanta.FormatCell(rec[key])})
	}
	return renderTable(w, t)
}

// FormatMembership formats one table per membership action.
func (f *TableFormatter) FormatMembership(w io.Writer, memberships []ckanta.Membership) error {
	def := ckanta.MembershipTableDef()
	for i, m := range memberships {
		if i > 0 {
			_, _ = fmt.Fprintln(w)
		}
		_, _ = fmt.Fprintf(w, "%s (%s)\n", m.Object, m.Action)
		if len(m.Records) == 0 {
			_, _ = fmt.Fprintln(w, noRecords)
			continue
		}
		if err := renderTable(w, def.Extract(m.Records)); err != nil {
			return err
		}
	}
	return nil
}

// FormatUpload formats an upload report as "+ name"/"x name" lines and a summary.
func (f *TableFormatter) FormatUpload(w io.Writer, report *ckanta.UploadReport) error {
	lines := report.Lines()
	for i, line := range lines {
		item := report.Items[i]
		if f.Quiet && item.OK {
			continue
		}
		if item.Error != "" {
			_, _ = fmt.Fprintf(w, "%s - %s\n", line, item.Error)
			continue
		}
		_, _ = fmt.Fprintln(w, line)
	}

	s := report.Summary
	_, _ = fmt.Fprintf(w, "\ntotal: %d, passed: %d, failed: %d\n", s.Total, s.Passed, s.Failed)
	if !f.Quiet {
		_, _ = fmt.Fprintf(w, "run: %s\n", report.RunID)
	}
	return nil
}

// FormatStatus formats status_show output.
func (f *TableFormatter) FormatStatus(w io.Writer, status map[string]any) error {
	return f.FormatRecord(w, ckanta.Record(status))
}

// FormatInstances formats configured instances, marking the default with "*".
func (f *TableFormatter) FormatInstances(w io.Writer, instances []config.Instance, defaultName string, showKey bool) error {
	if len(instances) == 0 {
		_, _ = fmt.Fprintln(w, "No instances configured")
		return nil
	}

	tw := newTabWriter(w)
	_, _ = fmt.Fprintln(tw, "  NAME\tURLBASE\tAPIKEY")
	_, _ = fmt.Fprintln(tw, "  ----\t-------\t------")
	for _, inst := range instances {
		marker := " "
		if inst.Name == defaultName {
			marker = "*"
		}
		_, _ = fmt.Fprintf(tw, "%s %s\t%s\t%s\n", marker, inst.Name, inst.URLBase, maskSecret(inst.APIKey, showKey))
	}
	return tw.Flush()
}

// FormatInstance formats a single instance.
func (f *TableFormatter) FormatInstance(w io.Writer, inst config.Instance, isDefault, showKey bool) error {
	_, _ = fmt.Fprintf(w, "Name:    %s", inst.Name)
	if isDefault {
		_, _ = fmt.Fprint(w, " (default)")
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "URLBase: %s\n", inst.URLBase)
	_, _ = fmt.Fprintf(w, "APIKey:  %s\n", maskSecret(inst.APIKey, showKey))
	return nil
}

// FormatError formats an error as human-readable text.
func (f *TableFormatter) FormatError(w io.Writer, err error) error {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	return nil
}
