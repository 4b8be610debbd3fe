package cassandra

import (
	"github.com/flowvine/flowvine/pkg/domain"
)

var (
	Schema = schema

	schema domain.Integration = domain.Integration{
		ID:          domain.IntegrationType_Cassandra,
		Name:        "Cassandra",
		Description: "Cassandra Vector Store with search capabilities",
		CredentialProperties: []domain.NodeProperty{
			{
				Key:         "hosts",
				Name:        "Contact Points",
				Description: "Comma-separated Cassandra contact points",
				Required:    true,
				Type:        domain.NodePropertyType_String,
			},
			{
				Key:         "port",
				Name:        "Port",
				Description: "CQL native transport port",
				Type:        domain.NodePropertyType_String,
				Placeholder: "9042",
			},
			{
				Key:         "username",
				Name:        "Username",
				Description: "Cluster username. For Astra DB use the literal username 'token'.",
				Type:        domain.NodePropertyType_String,
			},
			{
				Key:         "password",
				Name:        "Password",
				Description: "Cluster password. For Astra DB use the application token.",
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
						Key:          "keyspace",
						Name:         "Keyspace",
						Description:  "Keyspace holding the vector table. The keyspace should already be created.",
						Required:     true,
						Type:         domain.NodePropertyType_String,
						Peekable:     true,
						PeekableType: CassandraIntegrationPeekable_Keyspaces,
					},
					{
						Key:          "table_name",
						Name:         "Table Name",
						Description:  "The name of the table where vectors will be stored",
						Required:     true,
						Type:         domain.NodePropertyType_String,
						Peekable:     true,
						PeekableType: CassandraIntegrationPeekable_Tables,
						Dependent:    []string{"keyspace"},
						PeekableDependentProperties: []domain.PeekableDependentProperty{
							{
								PropertyKey: "keyspace",
								ValueKey:    "keyspace",
							},
						},
					},
					{
						Key:         "ttl_seconds",
						Name:        "TTL Seconds",
						Description: "Optional time-to-live for the added texts",
						Type:        domain.NodePropertyType_Integer,
						Advanced:    true,
					},
					{
						Key:         "batch_size",
						Name:        "Batch Size",
						Description: "Optional number of documents to process in a single batch",
						Type:        domain.NodePropertyType_Integer,
						Advanced:    true,
						NumberOpts: &domain.NumberPropertyOptions{
							Min:     1,
							Default: DefaultBatchSize,
							Step:    1,
						},
					},
					{
						Key:         "setup_mode",
						Name:        "Setup Mode",
						Description: "Configuration mode for setting up the Cassandra table",
						Type:        domain.NodePropertyType_String,
						Advanced:    true,
						Options: []domain.NodePropertyOption{
							{Label: "Sync", Value: SetupModeSync, Description: "Create the schema before returning"},
							{Label: "Async", Value: SetupModeAsync, Description: "Create the schema in the background"},
							{Label: "Off", Value: SetupModeOff, Description: "Assume the schema already exists"},
						},
					},
					{
						Key:         "add_to_vector_store",
						Name:        "Add to Vector Store",
						Description: "If true, the input items will be added to the vector store",
						Type:        domain.NodePropertyType_Boolean,
					},
					{
						Key:              "search_input",
						Name:             "Search Input",
						Description:      "The text to search for",
						Type:             domain.NodePropertyType_String,
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
