package infinity

import (
	"github.com/flowvine/flowvine/pkg/domain"
)

var (
	Schema = schema

	schema domain.Integration = domain.Integration{
		ID:          domain.IntegrationType_Infinity,
		Name:        "Infinity Embeddings",
		Description: "Generate embeddings using Infinity models.",
		CredentialProperties: []domain.NodeProperty{
			{
				Key:         "api_key",
				Name:        "API Key",
				Description: "Optional API key for Infinity deployments behind authentication",
				Type:        domain.NodePropertyType_String,
				IsSecret:    true,
			},
		},
		CanTestConnection:    true,
		IsCredentialOptional: true,
		Actions: []domain.IntegrationAction{
			{
				ID:         "generate_embeddings",
				Name:       "Generate Embeddings",
				ActionType: IntegrationActionType_GenerateEmbeddings,
				SupportedContexts: []domain.ActionUsageContext{
					domain.UsageContextWorkflow,
					domain.UsageContextTool,
				},
				Description: "Generate embeddings for the given texts using an Infinity model",
				Properties: []domain.NodeProperty{
					{
						Key:          "model",
						Name:         "Infinity Model",
						Description:  "The embedding model served by the Infinity endpoint",
						Type:         domain.NodePropertyType_String,
						Placeholder:  DefaultModel,
						Peekable:     true,
						PeekableType: InfinityIntegrationPeekable_Models,
					},
					{
						Key:         "base_url",
						Name:        "Infinity Base URL",
						Description: "Base URL of the Infinity API",
						Type:        domain.NodePropertyType_String,
						Placeholder: DefaultBaseURL,
					},
					{
						Key:         "input",
						Name:        "Input",
						Description: "The texts to embed",
						Required:    true,
						Type:        domain.NodePropertyType_TagInput,
						ArrayOpts: &domain.ArrayPropertyOptions{
							ItemType: domain.NodePropertyType_String,
						},
						ExpressionChoice: true,
					},
				},
			},
		},
		EmbeddingModels: []domain.IntegrationEmbeddingModel{
			{
				ID:          DefaultModel,
				Name:        "Xiaobu Embedding v2",
				Description: "Default Infinity embedding model",
			},
		},
	}
)
