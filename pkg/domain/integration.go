package domain

import (
	"context"
	"errors"
)

var (
	ErrIntegrationNotFound = errors.New("integration not found")
)

type IntegrationType string
type IntegrationActionType string
type IntegrationPeekableType string

const (
	IntegrationType_Infinity      IntegrationType = "infinity"
	IntegrationType_Cassandra     IntegrationType = "cassandra"
	IntegrationType_Elasticsearch IntegrationType = "elasticsearch"
)

type Integration struct {
	ID          IntegrationType `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`

	CredentialProperties []NodeProperty              `json:"credential_props"`
	Actions              []IntegrationAction         `json:"actions"`
	EmbeddingModels      []IntegrationEmbeddingModel `json:"embedding_models,omitempty"`

	CanTestConnection    bool `json:"can_test_connection"`
	IsCredentialOptional bool `json:"is_credential_optional"`
}

// ActionUsageContext represents the context in which an integration is being used
type ActionUsageContext string

const (
	UsageContextWorkflow ActionUsageContext = "workflow" // Regular workflow automation
	UsageContextTool     ActionUsageContext = "tool"     // AI Agent tool
)

type IntegrationAction struct {
	ID                string                `json:"id"`
	ActionType        IntegrationActionType `json:"action_type"`
	Name              string                `json:"name"`
	Description       string                `json:"description"`
	Properties        []NodeProperty        `json:"properties"`
	SupportedContexts []ActionUsageContext  `json:"supported_contexts"`
}

type IntegrationEmbeddingModel struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsInternal  bool   `json:"is_internal"`
}

type IntegrationInput struct {
	NodeID            string
	PayloadByInputID  map[string]Payload
	IntegrationParams IntegrationParams
	ActionType        IntegrationActionType
}

func (i IntegrationInput) GetItemsByInputID() (map[string][]Item, error) {
	itemsByInputID := map[string][]Item{}

	for inputID, payload := range i.PayloadByInputID {
		items, err := payload.ToItems()
		if err != nil {
			return nil, err
		}

		itemsByInputID[inputID] = items
	}

	return itemsByInputID, nil
}

func (i IntegrationInput) GetAllItems() ([]Item, error) {
	itemsByInputID, err := i.GetItemsByInputID()
	if err != nil {
		return nil, err
	}

	items := []Item{}

	for _, inputItems := range itemsByInputID {
		items = append(items, inputItems...)
	}

	return items, nil
}

type IntegrationParams struct {
	Settings map[string]any
}

type IntegrationOutput struct {
	ResultJSONByOutputID []Payload
}

type IntegrationDeps struct {
	ParameterBinder           IntegrationParameterBinder
	IntegrationSelector       IntegrationSelector
	ExecutorCredentialManager ExecutorCredentialManager
}

type IntegrationParameterBinder interface {
	BindToStruct(ctx context.Context, item any, params any, expressions map[string]any) error
}
