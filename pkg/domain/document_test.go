package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewItemsFromDocuments(t *testing.T) {
	documents := []Document{
		{
			PageContent: "first",
			Metadata:    map[string]any{"source": "a.txt"},
		},
		{
			PageContent: "second",
		},
	}

	items := NewItemsFromDocuments(documents)

	require.Len(t, items, 2)

	first, ok := items[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "first", first["text"])
	assert.Equal(t, map[string]any{"source": "a.txt"}, first["metadata"])

	second, ok := items[1].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "second", second["text"])
	assert.NotContains(t, second, "metadata")
}

func TestItemsToDocuments(t *testing.T) {
	tests := []struct {
		name     string
		items    []Item
		expected []Document
	}{
		{
			name: "text and metadata",
			items: []Item{
				map[string]any{
					"text":     "hello",
					"metadata": map[string]any{"source": "a.txt"},
				},
			},
			expected: []Document{
				{
					PageContent: "hello",
					Metadata:    map[string]any{"source": "a.txt"},
				},
			},
		},
		{
			name: "extra fields become metadata",
			items: []Item{
				map[string]any{
					"text": "hello",
					"page": 3,
				},
			},
			expected: []Document{
				{
					PageContent: "hello",
					Metadata:    map[string]any{"page": 3},
				},
			},
		},
		{
			name: "items without text are skipped",
			items: []Item{
				map[string]any{"content": "hello"},
				map[string]any{"text": ""},
				map[string]any{"text": "kept"},
			},
			expected: []Document{
				{PageContent: "kept"},
			},
		},
		{
			name:     "non object items are skipped",
			items:    []Item{"hello", 42, nil},
			expected: []Document{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			documents := ItemsToDocuments(tt.items)

			assert.Equal(t, tt.expected, documents)
		})
	}
}

type staticStore struct {
	documents []Document
	queries   []string
}

func (s *staticStore) AddDocuments(ctx context.Context, documents []Document) ([]string, error) {
	return []string{}, nil
}

func (s *staticStore) SimilaritySearch(ctx context.Context, query string, k int) ([]Document, error) {
	s.queries = append(s.queries, query)

	if k < len(s.documents) {
		return s.documents[:k], nil
	}

	return s.documents, nil
}

func TestNewVectorStoreRetriever(t *testing.T) {
	store := &staticStore{
		documents: []Document{
			{PageContent: "one"},
			{PageContent: "two"},
			{PageContent: "three"},
		},
	}

	retriever := NewVectorStoreRetriever(store, 2)

	documents, err := retriever.GetRelevantDocuments(context.Background(), "query")
	require.NoError(t, err)

	assert.Len(t, documents, 2)
	assert.Equal(t, []string{"query"}, store.queries)
}
