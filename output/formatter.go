// Package output formats ckanta results as tables, JSON or YAML.
//
//	formatter, err := output.NewFormatter("table", output.Options{Quiet: false})
//	if err != nil {
//		return err
//	}
//	formatter.FormatList(os.Stdout, result, ckanta.DefaultTableDef(result.Object))
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/ckanta/ckanta"
	"github.com/ckanta/ckanta/config"
)

// Format is an output format name.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// Formats lists the supported formats.
var Formats = []Format{FormatTable, FormatJSON, FormatYAML}

// ParseFormat parses a format name. An empty name selects FormatTable.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return FormatTable, nil
	}
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q: expected table, json or yaml", s)
}

// Formatter formats results for output.
type Formatter interface {
	FormatList(w io.Writer, result *ckanta.ListResult, def ckanta.TableDef) error
	FormatDetails(w io.Writer, result *ckanta.DetailsResult, def ckanta.TableDef) error
	FormatRecord(w io.Writer, rec ckanta.Record) error
	FormatMembership(w io.Writer, memberships []ckanta.Membership) error
	FormatUpload(w io.Writer, report *ckanta.UploadReport) error
	FormatStatus(w io.Writer, status map[string]any) error
	FormatInstances(w io.Writer, instances []config.Instance, defaultName string, showKey bool) error
	FormatInstance(w io.Writer, inst config.Instance, isDefault, showKey bool) error
	FormatError(w io.Writer, err error) error
}

// Options configures a Formatter.
type Options struct {
	// Quiet suppresses per-item lines in table output.
	Quiet bool
}

// NewFormatter returns the formatter for the named format.
func NewFormatter(name string, opts Options) (Formatter, error) {
	format, err := ParseFormat(name)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatJSON:
		return NewJSONFormatter(), nil
	case FormatYAML:
		return NewYAMLFormatter(), nil
	default:
		return &TableFormatter{Quiet: opts.Quiet}, nil
	}
}

// maskSecret masks a secret string, showing only first 4 and last 4 characters.
// If showSecrets is true, returns the original value.
// If the secret is too short, returns all asterisks.
func maskSecret(secret string, showSecrets bool) string {
	if showSecrets {
		return secret
	}
	if secret == "" {
		return "(not set)"
	}
	if len(secret) <= 8 {
		return "********"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}
