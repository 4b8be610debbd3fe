package infinity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/flowvine/flowvine/pkg/domain"
	"github.com/flowvine/flowvine/pkg/expressions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIntegration(t *testing.T) *InfinityIntegration {
	t.Helper()

	integration, err := NewInfinityIntegration(context.Background(), InfinityIntegrationDependencies{
		ParameterBinder: expressions.NewSettingsBinder(expressions.DefaultSettingsBinderOptions()),
	})
	require.NoError(t, err)

	return integration
}

func newEmbeddingsServer(t *testing.T, dimension int) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/embeddings":
			var request struct {
				Input []string `json:"input"`
				Model string   `json:"model"`
			}

			require.NoError(t, json.NewDecoder(r.Body).Decode(&request))

			data := make([]map[string]any, 0, len(request.Input))
			for idx := range request.Input {
				vector := make([]float32, dimension)
				vector[0] = float32(idx + 1)

				data = append(data, map[string]any{
					"object":    "embedding",
					"index":     idx,
					"embedding": vector,
				})
			}

			w.Header().Set("Content-Type", "application/json")
			require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
				"object": "list",
				"model":  request.Model,
				"data":   data,
				"usage":  map[string]any{"prompt_tokens": 3, "total_tokens": 3},
			}))
		case "/v1/models":
			w.Header().Set("Content-Type", "application/json")
			require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
				"object": "list",
				"data": []map[string]any{
					{"id": "model-a", "object": "model"},
					{"id": "model-b", "object": "model"},
				},
			}))
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestInfinityIntegration_BuildEmbedder(t *testing.T) {
	server := newEmbeddingsServer(t, 4)
	defer server.Close()

	integration := newTestIntegration(t)

	embedder, err := integration.BuildEmbedder(context.Background(), domain.IntegrationInput{
		IntegrationParams: domain.IntegrationParams{
			Settings: map[string]any{
				"model":    "model-a",
				"base_url": server.URL,
			},
		},
	}, map[string]any{})
	require.NoError(t, err)
	require.NotNil(t, embedder)

	vector, err := embedder.EmbedQuery(context.Background(), "hello")
	require.NoError(t, err)
	assert.Len(t, vector, 4)

	vectors, err := embedder.EmbedDocuments(context.Background(), []string{"one", "two"})
	require.NoError(t, err)
	assert.Len(t, vectors, 2)
}

func TestInfinityIntegration_BuildEmbedderCollapsesConstructionErrors(t *testing.T) {
	integration := newTestIntegration(t)

	tests := []struct {
		name    string
		baseURL string
	}{
		{
			name:    "unparseable URL",
			baseURL: "://infinity",
		},
		{
			name:    "missing scheme",
			baseURL: "infinity.local",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := integration.BuildEmbedder(context.Background(), domain.IntegrationInput{
				IntegrationParams: domain.IntegrationParams{
					Settings: map[string]any{
						"base_url": tt.baseURL,
					},
				},
			}, map[string]any{})

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConnection)
		})
	}
}

func TestInfinityIntegration_BuildEmbedderPreservesCause(t *testing.T) {
	integration := newTestIntegration(t)

	_, err := integration.BuildEmbedder(context.Background(), domain.IntegrationInput{
		IntegrationParams: domain.IntegrationParams{
			Settings: map[string]any{
				"base_url": "://infinity",
			},
		},
	}, map[string]any{})

	require.Error(t, err)

	var urlErr *url.Error
	assert.True(t, errors.As(err, &urlErr))
}

func TestInfinityIntegration_GenerateEmbeddings(t *testing.T) {
	server := newEmbeddingsServer(t, 3)
	defer server.Close()

	integration := newTestIntegration(t)

	payload, err := json.Marshal([]map[string]any{
		{"texts": []string{"alpha", "beta"}},
	})
	require.NoError(t, err)

	output, err := integration.Execute(context.Background(), domain.IntegrationInput{
		ActionType: IntegrationActionType_GenerateEmbeddings,
		PayloadByInputID: map[string]domain.Payload{
			"input-1": payload,
		},
		IntegrationParams: domain.IntegrationParams{
			Settings: map[string]any{
				"model":    "model-a",
				"base_url": server.URL,
				"input":    "{{ texts }}",
			},
		},
	})
	require.NoError(t, err)
	require.Len(t, output.ResultJSONByOutputID, 1)

	items, err := output.ResultJSONByOutputID[0].ToItems()
	require.NoError(t, err)
	require.Len(t, items, 1)

	result := items[0].(map[string]any)
	assert.Equal(t, "model-a", result["model"])

	embeddings, ok := result["embeddings"].([]any)
	require.True(t, ok)
	assert.Len(t, embeddings, 2)
}

func TestInfinityIntegration_GenerateEmbeddingsRequiresInput(t *testing.T) {
	integration := newTestIntegration(t)

	payload, err := json.Marshal([]map[string]any{{}})
	require.NoError(t, err)

	_, err = integration.Execute(context.Background(), domain.IntegrationInput{
		ActionType: IntegrationActionType_GenerateEmbeddings,
		PayloadByInputID: map[string]domain.Payload{
			"input-1": payload,
		},
		IntegrationParams: domain.IntegrationParams{
			Settings: map[string]any{},
		},
	})

	assert.ErrorContains(t, err, "no input provided")
}

func TestInfinityIntegration_PeekModels(t *testing.T) {
	server := newEmbeddingsServer(t, 3)
	defer server.Close()

	integration := newTestIntegration(t)

	payload, err := json.Marshal(map[string]any{"base_url": server.URL})
	require.NoError(t, err)

	result, err := integration.Peek(context.Background(), domain.PeekParams{
		PeekableType: InfinityIntegrationPeekable_Models,
		PayloadJSON:  payload,
	})
	require.NoError(t, err)

	require.Len(t, result.Result, 2)
	assert.Equal(t, "model-a", result.Result[0].Key)
	assert.Equal(t, "model-b", result.Result[1].Key)
}
