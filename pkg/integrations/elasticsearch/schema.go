package elasticsearch

import (
	"github.com/flowvine/flowvine/pkg/domain"
)

var (
	Schema = schema

	schema domain.Integration = domain.Integration{
		ID:          domain.IntegrationType_Elasticsearch,
		Name:        "Elasticsearch",
		Description: "Elasticsearch Vector Store with search capabilities",
		CredentialProperties: []domain.NodeProperty{
			{
				Key:         "url",
				Name:        "Elasticsearch Cluster URL",
				Description: "Base URL of the Elasticsearch cluster",
				Required:    true,
				Type:        domain.NodePropertyType_String,
				Placeholder: "https://localhost:9200",
			},
			{
				Key:         "username",
				Name:        "Elasticsearch Username",
				Description: "Username for basic authentication",
				Required:    true,
				Type:        domain.NodePropertyType_String,
			},
			{
				Key:         "password",
				Name:        "Elasticsearch Password",
				Description: "Password for basic authentication",
				Required:    true,
				Type:        domain.NodePropertyType_String,
				IsSecret:    true,
			},
		},
		CanTestConnection: true,
		Actions: []domain.IntegrationAction{
			{
				ID:         "search_documents",
				Name:       "Search Documents",
				ActionType: IntegrationActionType_SearchDocuments,
				SupportedContexts: []domain.ActionUsageContext{
					domain.UsageContextWorkflow,
					domain.UsageContextTool,
				},
				Description: "Search the vector store and return matching documents",
				Properties: []domain.NodeProperty{
					{
						Key:          "index_name",
						Name:         "Index Name",
						Description:  "The index where vectors will be stored",
						Required:     true,
						Type:         domain.NodePropertyType_String,
						Peekable:     true,
						PeekableType: ElasticsearchIntegrationPeekable_Indices,
					},
					{
						Key:              "search_query",
						Name:             "Search Query",
						Description:      "The text to search for",
						Type:             domain.NodePropertyType_Text,
						ExpressionChoice: true,
					},
					{
						Key:         "number_of_results",
						Name:        "Number of Results",
						Description: "Number of results to return",
						Type:        domain.NodePropertyType_Integer,
						Advanced:    true,
						NumberOpts: &domain.NumberPropertyOptions{
							Min:     1,
							Default: DefaultNumberOfResults,
							Step:    1,
						},
					},
				},
			},
		},
	}
)
