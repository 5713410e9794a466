package ckanta_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ckanta/ckanta"
)

func TestService_Dump(t *testing.T) {
	records := map[string]map[string]any{
		"education": {"name": "education", "title": "Education", "package_count": 3},
		"health":    {"name": "health", "title": "Health", "extras": []any{map[string]any{"key": "code", "value": "H"}}},
		"water":     {"name": "water", "title": "Water, Sanitation"},
	}

	t.Run("all records", func(t *testing.T) {
		svc, srv := newService(t)
		srv.Result("group_list", []string{"water", "health", "education"})
		srv.Handle("group_show", showByID(records))

		var buf bytes.Buffer
		n, err := svc.Dump(context.Background(), ckanta.DumpOptions{Object: ckanta.Group, Writer: &buf})
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		want := "extras,name,package_count,title\n" +
			",education,3,Education\n" +
			"\"[{\"\"key\"\":\"\"code\"\",\"\"value\"\":\"\"H\"\"}]\",health,,Health\n" +
			",water,,\"Water, Sanitation\"\n"
		assert.Equal(t, want, buf.String())
	})

	t.Run("limit and offset", func(t *testing.T) {
		svc, srv := newService(t)
		srv.Result("group_list", []string{"water", "health", "education"})
		srv.Handle("group_show", showByID(records))

		var buf bytes.Buffer
		n, err := svc.Dump(context.Background(), ckanta.DumpOptions{
			Object: ckanta.Group, Limit: 1, Offset: 1, Writer: &buf,
		})
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Contains(t, buf.String(), "health")
		assert.Len(t, srv.CallsTo("group_show"), 1)
	})

	t.Run("writer required", func(t *testing.T) {
		svc, _ := newService(t)
		_, err := svc.Dump(context.Background(), ckanta.DumpOptions{Object: ckanta.Group})
		assert.ErrorIs(t, err, ckanta.ErrWriterRequired)
	})
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ckanta.WriteCSV(&buf, nil))
	assert.Empty(t, buf.String())
}
