package ckanta_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ckanta/ckanta"
)

func TestParseParams(t *testing.T) {
	params, err := ckanta.ParseParams([]string{
		"all_fields=true",
		"limit=25",
		"sort=name desc",
		"q=",
		"limit=50",
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"all_fields": true,
		"limit":      50,
		"sort":       "name desc",
		"q":          "",
	}, params)
}

func TestParseParams_KeepsNonCanonicalNumbers(t *testing.T) {
	params, err := ckanta.ParseParams([]string{"q=007", "name=0012", "id=1e3", "offset=-3", "rows=+5"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"q":      "007",
		"name":   "0012",
		"id":     "1e3",
		"offset": -3,
		"rows":   "+5",
	}, params)
}

func TestParseParams_Invalid(t *testing.T) {
	for _, pair := range []string{"limit", "=10"} {
		t.Run(pair, func(t *testing.T) {
			_, err := ckanta.ParseParams([]string{pair})
			assert.Error(t, err)
		})
	}
}
