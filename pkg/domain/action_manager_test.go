package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegrationActionManager_RunPerItemMulti(t *testing.T) {
	manager := NewIntegrationActionManager().
		AddPerItemMulti("expand", func(ctx context.Context, params IntegrationInput, item Item) ([]Item, error) {
			object := item.(map[string]any)

			return []Item{
				map[string]any{"value": object["value"]},
				map[string]any{"value": object["value"]},
			}, nil
		})

	payload, err := json.Marshal([]map[string]any{
		{"value": "a"},
		{"value": "b"},
	})
	require.NoError(t, err)

	output, err := manager.Run(context.Background(), "expand", IntegrationInput{
		ActionType: "expand",
		PayloadByInputID: map[string]Payload{
			"input-1": payload,
		},
	})
	require.NoError(t, err)
	require.Len(t, output.ResultJSONByOutputID, 1)

	items, err := output.ResultJSONByOutputID[0].ToItems()
	require.NoError(t, err)

	assert.Len(t, items, 4)
}

func TestIntegrationActionManager_RunUnknownAction(t *testing.T) {
	manager := NewIntegrationActionManager()

	_, err := manager.Run(context.Background(), "missing", IntegrationInput{})

	assert.Error(t, err)
}

func TestIntegrationActionManager_RunPerItemSkipsEmptyOutputs(t *testing.T) {
	calls := 0

	manager := NewIntegrationActionManager().
		AddPerItem("maybe", func(ctx context.Context, params IntegrationInput, item Item) (Item, error) {
			calls++

			object := item.(map[string]any)
			if object["skip"] == true {
				return nil, nil
			}

			return object, nil
		})

	payload, err := json.Marshal([]map[string]any{
		{"skip": true},
		{"skip": false},
	})
	require.NoError(t, err)

	output, err := manager.Run(context.Background(), "maybe", IntegrationInput{
		ActionType: "maybe",
		PayloadByInputID: map[string]Payload{
			"input-1": payload,
		},
	})
	require.NoError(t, err)

	items, err := output.ResultJSONByOutputID[0].ToItems()
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
	assert.Len(t, items, 1)
}

func TestIntegrationActionManager_RunPerItemPropagatesError(t *testing.T) {
	manager := NewIntegrationActionManager().
		AddPerItem("fail", func(ctx context.Context, params IntegrationInput, item Item) (Item, error) {
			return nil, fmt.Errorf("backend unavailable")
		})

	payload, err := json.Marshal([]map[string]any{{"value": 1}})
	require.NoError(t, err)

	_, err = manager.Run(context.Background(), "fail", IntegrationInput{
		ActionType: "fail",
		PayloadByInputID: map[string]Payload{
			"input-1": payload,
		},
	})

	assert.EqualError(t, err, "backend unavailable")
}
