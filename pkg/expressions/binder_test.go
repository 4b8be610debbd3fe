package expressions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetValueByPath(t *testing.T) {
	tests := []struct {
		name     string
		source   any
		path     string
		expected any
		exists   bool
	}{
		{
			name:     "simple path",
			source:   map[string]any{"name": "test"},
			path:     "name",
			expected: "test",
			exists:   true,
		},
		{
			name:     "nested path",
			source:   map[string]any{"config": map[string]any{"timeout": 30}},
			path:     "config.timeout",
			expected: 30,
			exists:   true,
		},
		{
			name: "array index path",
			source: map[string]any{
				"items": []any{
					map[string]any{"name": "first"},
					map[string]any{"name": "second"},
				},
			},
			path:     "items[1].name",
			expected: "second",
			exists:   true,
		},
		{
			name:     "missing path",
			source:   map[string]any{"name": "test"},
			path:     "missing",
			expected: nil,
			exists:   false,
		},
		{
			name:     "index out of range",
			source:   map[string]any{"items": []any{"only"}},
			path:     "items[3]",
			expected: nil,
			exists:   false,
		},
		{
			name:     "index into non array",
			source:   map[string]any{"items": "text"},
			path:     "items[0]",
			expected: nil,
			exists:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, exists := GetValueByPath(tt.source, tt.path)

			assert.Equal(t, tt.exists, exists)
			assert.Equal(t, tt.expected, value)
		})
	}
}

func TestSettingsBinder_BindToStruct(t *testing.T) {
	binder := NewSettingsBinder(DefaultSettingsBinderOptions())

	type searchParams struct {
		Query string `json:"query"`
		Limit int    `json:"limit"`
		Exact bool   `json:"exact"`
	}

	t.Run("plain values", func(t *testing.T) {
		p := searchParams{}

		err := binder.BindToStruct(context.Background(), map[string]any{}, &p, map[string]any{
			"query": "hello",
			"limit": 5,
			"exact": true,
		})
		require.NoError(t, err)

		assert.Equal(t, "hello", p.Query)
		assert.Equal(t, 5, p.Limit)
		assert.True(t, p.Exact)
	})

	t.Run("single expression keeps referenced type", func(t *testing.T) {
		p := searchParams{}

		item := map[string]any{
			"text":  "from item",
			"count": float64(8),
		}

		err := binder.BindToStruct(context.Background(), item, &p, map[string]any{
			"query": "{{ text }}",
			"limit": "{{ count }}",
		})
		require.NoError(t, err)

		assert.Equal(t, "from item", p.Query)
		assert.Equal(t, 8, p.Limit)
	})

	t.Run("interpolated expression", func(t *testing.T) {
		p := searchParams{}

		item := map[string]any{"topic": "vectors"}

		err := binder.BindToStruct(context.Background(), item, &p, map[string]any{
			"query": "all about {{ topic }}",
		})
		require.NoError(t, err)

		assert.Equal(t, "all about vectors", p.Query)
	})

	t.Run("weakly typed numbers", func(t *testing.T) {
		p := searchParams{}

		err := binder.BindToStruct(context.Background(), map[string]any{}, &p, map[string]any{
			"limit": "12",
		})
		require.NoError(t, err)

		assert.Equal(t, 12, p.Limit)
	})

	t.Run("missing expression path resolves to zero value", func(t *testing.T) {
		p := searchParams{}

		err := binder.BindToStruct(context.Background(), map[string]any{}, &p, map[string]any{
			"query": "{{ nope }}",
		})
		require.NoError(t, err)

		assert.Equal(t, "", p.Query)
	})
}
