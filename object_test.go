package ckanta_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ckanta/ckanta"
)

func TestParseObject(t *testing.T) {
	tests := []struct {
		input   string
		want    ckanta.Object
		wantErr bool
	}{
		{input: "dataset", want: ckanta.Dataset},
		{input: "package", want: ckanta.Dataset},
		{input: "Organization", want: ckanta.Organization},
		{input: " group ", want: ckanta.Group},
		{input: "user", want: ckanta.User},
		{input: "resource", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ckanta.ParseObject(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ckanta.ErrInvalidObject)
				assert.Contains(t, err.Error(), "dataset, group, organization, user")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestObject_Action(t *testing.T) {
	assert.Equal(t, "package_list", ckanta.Dataset.Action("list"))
	assert.Equal(t, "organization_show", ckanta.Organization.Action("show"))
	assert.Equal(t, "user_create", ckanta.User.Action("create"))
}

func TestObject_IsGroupLike(t *testing.T) {
	assert.True(t, ckanta.Group.IsGroupLike())
	assert.True(t, ckanta.Organization.IsGroupLike())
	assert.False(t, ckanta.Dataset.IsGroupLike())
	assert.False(t, ckanta.User.IsGroupLike())
}
