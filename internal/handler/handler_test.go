package handler

import (
	"testing"

	"github.com/dyluth/filedock/internal/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchMIME(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		mime     string
		want     bool
	}{
		{"exact", []string{"image/png"}, "image/png", true},
		{"subtype glob", []string{"text/*"}, "text/x-python", true},
		{"any", []string{"*/*"}, "application/pdf", true},
		{"case insensitive", []string{"Image/PNG"}, "image/png", true},
		{"parameters ignored", []string{"text/plain"}, "text/plain; charset=utf-8", true},
		{"second pattern", []string{"text/*", "application/xml"}, "application/xml", true},
		{"glob does not cross slash", []string{"*"}, "text/plain", false},
		{"no match", []string{"image/*"}, "text/plain", false},
		{"unclassified never matches", []string{"*/*"}, "", false},
		{"malformed pattern ignored", []string{"[", "text/plain"}, "text/plain", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchMIME(tt.patterns...)(tt.mime))
		})
	}
}

func TestValidatePattern(t *testing.T) {
	assert.NoError(t, ValidatePattern("text/*"))
	assert.NoError(t, ValidatePattern("*/*"))
	assert.Error(t, ValidatePattern("text"))
	assert.Error(t, ValidatePattern("text/[a"))
}

func TestCatalog_Register(t *testing.T) {
	c := NewCatalog()

	require.NoError(t, c.Register(Descriptor{ID: "text", CanEdit: MatchMIME("text/*")}))
	assert.Error(t, c.Register(Descriptor{ID: "text", CanEdit: MatchMIME("text/*")}))
	assert.Error(t, c.Register(Descriptor{CanEdit: MatchMIME("text/*")}))
	assert.Error(t, c.Register(Descriptor{ID: "probe"}), "predicate is required")
	assert.Equal(t, 1, c.Len())

	d, ok := c.Get("text")
	require.True(t, ok)
	assert.Equal(t, "text", d.ID)
	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestCatalog_CapableKeepsRegistrationOrder(t *testing.T) {
	c := NewCatalog()
	for _, d := range []Descriptor{
		{ID: "python", CanEdit: MatchMIME("text/x-python")},
		{ID: "image", CanEdit: MatchMIME("image/*")},
		{ID: "text", CanEdit: MatchMIME("text/*")},
		{ID: "hex", CanEdit: MatchMIME("*/*")},
	} {
		require.NoError(t, c.Register(d))
	}

	ids := func(ds []Descriptor) []string {
		var out []string
		for _, d := range ds {
			out = append(out, d.ID)
		}
		return out
	}
	assert.Equal(t, []string{"python", "text", "hex"}, ids(c.Capable("text/x-python")))
	assert.Equal(t, []string{"image", "hex"}, ids(c.Capable("image/gif")))
	assert.Empty(t, c.Capable(""))
	assert.Equal(t, []string{"python", "image", "text", "hex"}, ids(c.All()))
}

func TestDescriptor_NewTask(t *testing.T) {
	t.Run("default task carries the policies", func(t *testing.T) {
		d := Descriptor{ID: "image", Name: "Image Viewer", CanEdit: MatchMIME("image/*"), AllowAlternate: DenyAlternates}

		task := d.NewTask()
		assert.Equal(t, "image", task.ID())
		assert.Equal(t, "Image Viewer", task.Name())
		assert.True(t, task.CanEdit("image/png"))
		assert.False(t, task.AllowAlternate(workspace.Resource{}, "text"))
		assert.NotEqual(t, task.InstanceID(), d.NewTask().InstanceID())
	})

	t.Run("factory", func(t *testing.T) {
		built := 0
		d := Descriptor{
			ID:      "text",
			CanEdit: MatchMIME("text/*"),
			Factory: func() *workspace.Task {
				built++
				return workspace.NewTask("text", "Custom", MatchMIME("text/*"), nil)
			},
		}
		assert.Equal(t, "Custom", d.NewTask().Name())
		assert.Equal(t, 1, built)
	})

	t.Run("factory producing another type is ignored", func(t *testing.T) {
		d := Descriptor{
			ID:      "text",
			CanEdit: MatchMIME("text/*"),
			Factory: func() *workspace.Task { return workspace.NewTask("other", "", nil, nil) },
		}
		assert.Equal(t, "text", d.NewTask().ID())
	})
}
