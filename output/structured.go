package output

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/ckanta/ckanta"
	"github.com/ckanta/ckanta/config"
)

// instanceView is how an instance is rendered in JSON and YAML.
type instanceView struct {
	Name    string `json:"name" yaml:"name"`
	URLBase string `json:"urlbase" yaml:"urlbase"`
	APIKey  string `json:"apikey" yaml:"apikey"`
	Default bool   `json:"default" yaml:"default"`
}

func newInstanceView(inst config.Instance, isDefault, showKey bool) instanceView {
	return instanceView{
		Name:    inst.Name,
		URLBase: inst.URLBase,
		APIKey:  maskSecret(inst.APIKey, showKey),
		Default: isDefault,
	}
}

// encoder writes a single document.
type encoder func(w io.Writer, v any) error

// structured implements Formatter for document formats. Records are written
// whole; table definitions only apply to table output.
type structured struct {
	encode encoder
}

func (f structured) write(w io.Writer, v any) error {
	if f.encode == nil {
		return writeJSON(w, v)
	}
	return f.encode(w, v)
}

func (f structured) FormatList(w io.Writer, result *ckanta.ListResult, _ ckanta.TableDef) error {
	if len(result.Records) > 0 {
		return f.write(w, result.Records)
	}
	names := result.Names
	if names == nil {
		names = []string{}
	}
	return f.write(w, names)
}

func (f structured) FormatDetails(w io.Writer, result *ckanta.DetailsResult, _ ckanta.TableDef) error {
	return f.write(w, result)
}

func (f structured) FormatRecord(w io.Writer, rec ckanta.Record) error {
	return f.write(w, rec)
}

func (f structured) FormatMembership(w io.Writer, memberships []ckanta.Membership) error {
	return f.write(w, memberships)
}

func (f structured) FormatUpload(w io.Writer, report *ckanta.UploadReport) error {
	output := struct {
		RunID   string               `json:"run_id" yaml:"run_id"`
		Object  ckanta.Object        `json:"object" yaml:"object"`
		Action  string               `json:"action" yaml:"action"`
		Result  []string             `json:"result" yaml:"result"`
		Items   []ckanta.UploadItem  `json:"items" yaml:"items"`
		Summary ckanta.UploadSummary `json:"summary" yaml:"summary"`
	}{
		RunID:   report.RunID.String(),
		Object:  report.Object,
		Action:  report.Action,
		Result:  report.Lines(),
		Items:   report.Items,
		Summary: report.Summary,
	}
	return f.write(w, output)
}

func (f structured) FormatStatus(w io.Writer, status map[string]any) error {
	return f.write(w, status)
}

func (f structured) FormatInstances(w io.Writer, instances []config.Instance, defaultName string, showKey bool) error {
	output := struct {
		Instances []instanceView `json:"instances" yaml:"instances"`
	}{
		Instances: make([]instanceView, len(instances)),
	}
	for i, inst := range instances {
		output.Instances[i] = newInstanceView(inst, inst.Name == defaultName, showKey)
	}
	return f.write(w, output)
}

func (f structured) FormatInstance(w io.Writer, inst config.Instance, isDefault, showKey bool) error {
	return f.write(w, newInstanceView(inst, isDefault, showKey))
}

func (f structured) FormatError(w io.Writer, err error) error {
	output := struct {
		Error string `json:"error" yaml:"error"`
	}{
		Error: err.Error(),
	}
	return f.write(w, output)
}

// JSONFormatter outputs indented JSON.
type JSONFormatter struct {
	structured
}

// YAMLFormatter outputs YAML. Create it with NewYAMLFormatter.
type YAMLFormatter struct {
	structured
}

// NewJSONFormatter returns a formatter that writes indented JSON.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{structured{encode: writeJSON}}
}

// NewYAMLFormatter returns a formatter that writes YAML documents.
func NewYAMLFormatter() *YAMLFormatter {
	return &YAMLFormatter{structured{encode: writeYAML}}
}

// writeJSON writes a value as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeYAML writes a value as a YAML document.
func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
