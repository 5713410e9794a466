package output_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ckanta/ckanta"
	"github.com/ckanta/ckanta/config"
	"github.com/ckanta/ckanta/output"
)

func TestNewFormatter(t *testing.T) {
	t.Run("default is table", func(t *testing.T) {
		formatter, err := output.NewFormatter("", output.Options{})
		require.NoError(t, err)
		_, ok := formatter.(*output.TableFormatter)
		assert.True(t, ok)
	})

	t.Run("json formatter", func(t *testing.T) {
		formatter, err := output.NewFormatter("JSON", output.Options{})
		require.NoError(t, err)
		_, ok := formatter.(*output.JSONFormatter)
		assert.True(t, ok)
	})

	t.Run("yaml formatter", func(t *testing.T) {
		formatter, err := output.NewFormatter("yaml", output.Options{})
		require.NoError(t, err)
		_, ok := formatter.(*output.YAMLFormatter)
		assert.True(t, ok)
	})

	t.Run("quiet table", func(t *testing.T) {
		formatter, err := output.NewFormatter("table", output.Options{Quiet: true})
		require.NoError(t, err)
		tf, ok := formatter.(*output.TableFormatter)
		require.True(t, ok)
		assert.True(t, tf.Quiet)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := output.NewFormatter("xml", output.Options{})
		assert.Error(t, err)
	})
}

func TestTableFormatter_FormatList(t *testing.T) {
	formatter := &output.TableFormatter{}

	t.Run("names", func(t *testing.T) {
		var buf bytes.Buffer
		err := formatter.FormatList(&buf, &ckanta.ListResult{
			Object: ckanta.Group,
			Names:  []string{"education", "health"},
		}, ckanta.DefaultTableDef(ckanta.Group))
		require.NoError(t, err)

		out := buf.String()
		assert.Contains(t, out, "1. education\n")
		assert.Contains(t, out, "2. health\n")
		assert.Contains(t, out, "2 group(s)")
	})

	t.Run("records", func(t *testing.T) {
		var buf bytes.Buffer
		err := formatter.FormatList(&buf, &ckanta.ListResult{
			Object: ckanta.User,
			Records: []ckanta.Record{
				{"id": "u1", "name": "admin", "sysadmin": true},
				{"id": "u2", "name": "jdoe", "fullname": "Jane Doe", "state": "active"},
			},
		}, ckanta.ParseTableDef("name:fullname:sysadmin", "::Admin"))
		require.NoError(t, err)

		out := buf.String()
		assert.Contains(t, out, "Name")
		assert.Contains(t, out, "Fullname")
		assert.Contains(t, out, "Admin")
		assert.Contains(t, out, "admin")
		assert.Contains(t, out, "Jane Doe")
		assert.Contains(t, out, "true")
		assert.NotContains(t, out, "u1")
	})

	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		err := formatter.FormatList(&buf, &ckanta.ListResult{Object: ckanta.Dataset}, ckanta.DefaultTableDef(ckanta.Dataset))
		require.NoError(t, err)
		assert.Equal(t, "No records found\n", buf.String())
	})
}

func TestTableFormatter_FormatDetails(t *testing.T) {
	var buf bytes.Buffer
	err := (&output.TableFormatter{}).FormatDetails(&buf, &ckanta.DetailsResult{
		Object:  ckanta.Organization,
		Records: []ckanta.Record{{"id": "o1", "name": "fmoh", "title": "Ministry of Health", "package_count": float64(4)}},
		Pager:   ckanta.Pager{Page: 2, Size: 1, Total: 7},
	}, ckanta.DefaultTableDef(ckanta.Organization))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Package Count")
	assert.Contains(t, out, "Ministry of Health")
	assert.Contains(t, out, "page 2, size 1, offset 0: 1 of 7 organization(s)")
}

func TestTableFormatter_FormatRecord(t *testing.T) {
	var buf bytes.Buffer
	err := (&output.TableFormatter{}).FormatRecord(&buf, ckanta.Record{
		"name":   "health",
		"extras": []any{map[string]any{"key": "code", "value": "H"}},
	})
	require.NoError(t, err)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 4)
	assert.Contains(t, string(lines[0]), "FIELD")
	assert.Contains(t, string(lines[2]), `[{"key":"code","value":"H"}]`)
	assert.Contains(t, string(lines[3]), "health")
}

func TestTableFormatter_FormatMembership(t *testing.T) {
	var buf bytes.Buffer
	err := (&output.TableFormatter{}).FormatMembership(&buf, []ckanta.Membership{
		{Object: ckanta.Organization, Action: "organization_list_for_user", Records: []ckanta.Record{
			{"id": "o1", "title": "Abia", "state": "active"},
		}},
		{Object: ckanta.Group, Action: "group_list_authz"},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "organization (organization_list_for_user)")
	assert.Contains(t, out, "Abia")
	assert.Contains(t, out, "group (group_list_authz)\nNo records found")
}

func sampleReport() *ckanta.UploadReport {
	return &ckanta.UploadReport{
		RunID:  uuid.MustParse("6f1c2a8e-3d4b-4f5a-9b6c-7d8e9f0a1b2c"),
		Object: ckanta.Dataset,
		Action: "package_create",
		Items: []ckanta.UploadItem{
			{Name: "abia-schools", OwnerOrg: "abia", OK: true},
			{Name: "kano-schools", OwnerOrg: "kano", Error: "national state not found: kano"},
		},
		Summary: ckanta.UploadSummary{Total: 2, Passed: 1, Failed: 1},
	}
}

func TestTableFormatter_FormatUpload(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&output.TableFormatter{}).FormatUpload(&buf, sampleReport()))

		out := buf.String()
		assert.Contains(t, out, "+ abia-schools\n")
		assert.Contains(t, out, "x kano-schools - national state not found: kano\n")
		assert.Contains(t, out, "total: 2, passed: 1, failed: 1")
		assert.Contains(t, out, "run: 6f1c2a8e-3d4b-4f5a-9b6c-7d8e9f0a1b2c")
	})

	t.Run("quiet", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&output.TableFormatter{Quiet: true}).FormatUpload(&buf, sampleReport()))

		out := buf.String()
		assert.NotContains(t, out, "+ abia-schools")
		assert.Contains(t, out, "x kano-schools")
		assert.NotContains(t, out, "run:")
	})
}

func TestTableFormatter_FormatInstances(t *testing.T) {
	instances := []config.Instance{
		{Name: "local", URLBase: "http://localhost:5000", APIKey: "0123456789abcdef"},
		{Name: "staging", URLBase: "https://staging.example.org"},
	}

	t.Run("masked", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&output.TableFormatter{}).FormatInstances(&buf, instances, "staging", false))

		out := buf.String()
		assert.Contains(t, out, "  local")
		assert.Contains(t, out, "* staging")
		assert.Contains(t, out, "0123...cdef")
		assert.NotContains(t, out, "0123456789abcdef")
		assert.Contains(t, out, "(not set)")
	})

	t.Run("show key", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&output.TableFormatter{}).FormatInstances(&buf, instances, "local", true))
		assert.Contains(t, buf.String(), "0123456789abcdef")
	})

	t.Run("none", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&output.TableFormatter{}).FormatInstances(&buf, nil, "local", false))
		assert.Equal(t, "No instances configured\n", buf.String())
	})
}

func TestTableFormatter_FormatInstance(t *testing.T) {
	var buf bytes.Buffer
	inst := config.Instance{Name: "local", URLBase: "http://localhost:5000", APIKey: "short"}
	require.NoError(t, (&output.TableFormatter{}).FormatInstance(&buf, inst, true, false))

	out := buf.String()
	assert.Contains(t, out, "Name:    local (default)")
	assert.Contains(t, out, "URLBase: http://localhost:5000")
	assert.Contains(t, out, "APIKey:  ********")
}

func TestJSONFormatter(t *testing.T) {
	formatter := output.NewJSONFormatter()

	t.Run("list names", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, formatter.FormatList(&buf, &ckanta.ListResult{Object: ckanta.Group}, ckanta.TableDef{}))
		assert.JSONEq(t, `[]`, buf.String())
	})

	t.Run("list records", func(t *testing.T) {
		var buf bytes.Buffer
		err := formatter.FormatList(&buf, &ckanta.ListResult{
			Object:  ckanta.User,
			Records: []ckanta.Record{{"name": "admin", "sysadmin": true}},
		}, ckanta.DefaultTableDef(ckanta.User))
		require.NoError(t, err)
		assert.JSONEq(t, `[{"name": "admin", "sysadmin": true}]`, buf.String())
	})

	t.Run("upload", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, formatter.FormatUpload(&buf, sampleReport()))

		var got map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, []any{"+ abia-schools", "x kano-schools"}, got["result"])
		assert.Equal(t, map[string]any{"total": float64(2), "passed": float64(1), "failed": float64(1)}, got["summary"])
		assert.Equal(t, "6f1c2a8e-3d4b-4f5a-9b6c-7d8e9f0a1b2c", got["run_id"])
	})

	t.Run("instances", func(t *testing.T) {
		var buf bytes.Buffer
		err := formatter.FormatInstances(&buf, []config.Instance{
			{Name: "local", URLBase: "http://localhost:5000", APIKey: "0123456789abcdef"},
		}, "local", false)
		require.NoError(t, err)
		assert.JSONEq(t, `{"instances": [{"name": "local", "urlbase": "http://localhost:5000", "apikey": "0123...cdef", "default": true}]}`, buf.String())
	})

	t.Run("error", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, formatter.FormatError(&buf, errors.New("boom")))
		assert.JSONEq(t, `{"error": "boom"}`, buf.String())
	})
}

func TestYAMLFormatter(t *testing.T) {
	formatter := output.NewYAMLFormatter()

	t.Run("details", func(t *testing.T) {
		var buf bytes.Buffer
		err := formatter.FormatDetails(&buf, &ckanta.DetailsResult{
			Object:  ckanta.Group,
			Records: []ckanta.Record{{"name": "health"}},
			Pager:   ckanta.Pager{Page: 1, Size: 5, Total: 1},
		}, ckanta.TableDef{})
		require.NoError(t, err)

		var got map[string]any
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, "group", got["object"])
		assert.Equal(t, map[string]any{"no": 1, "size": 5, "offset": 0, "total": 1}, got["pager"])
		assert.Equal(t, []any{map[string]any{"name": "health"}}, got["data"])
	})

	t.Run("instance", func(t *testing.T) {
		var buf bytes.Buffer
		inst := config.Instance{Name: "local", URLBase: "http://localhost:5000"}
		require.NoError(t, formatter.FormatInstance(&buf, inst, false, false))
		assert.Contains(t, buf.String(), "name: local\n")
		assert.Contains(t, buf.String(), "(not set)")
		assert.Contains(t, buf.String(), "default: false\n")
	})
}
