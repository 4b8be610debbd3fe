package initialization

import (
	"github.com/flowvine/flowvine/pkg/domain"
	"github.com/flowvine/flowvine/pkg/integrations/cassandra"
	"github.com/flowvine/flowvine/pkg/integrations/elasticsearch"
	"github.com/flowvine/flowvine/pkg/integrations/infinity"
)

type integrationRegisterParams struct {
	IntegrationType     domain.IntegrationType
	Schema              domain.Integration
	NewCreator          func(deps domain.IntegrationDeps) domain.IntegrationCreator
	NewConnectionTester func(deps domain.IntegrationDeps) domain.IntegrationConnectionTester
}

var integrationRegisterParamsList = []integrationRegisterParams{
	{
		IntegrationType:     domain.IntegrationType_Infinity,
		Schema:              infinity.Schema,
		NewCreator:          infinity.NewInfinityIntegrationCreator,
		NewConnectionTester: infinity.NewInfinityConnectionTester,
	},
	{
		IntegrationType:     domain.IntegrationType_Cassandra,
		Schema:              cassandra.Schema,
		NewCreator:          cassandra.NewCassandraIntegrationCreator,
		NewConnectionTester: cassandra.NewCassandraConnectionTester,
	},
	{
		IntegrationType:     domain.IntegrationType_Elasticsearch,
		Schema:              elasticsearch.Schema,
		NewCreator:          elasticsearch.NewElasticsearchIntegrationCreator,
		NewConnectionTester: elasticsearch.NewElasticsearchConnectionTester,
	},
}

// RegisterIntegrations wires every integration creator and connection tester
// into the selector the host resolves nodes through.
func RegisterIntegrations(selector domain.IntegrationSelector, deps domain.IntegrationDeps) {
	for _, params := range integrationRegisterParamsList {
		if params.NewCreator != nil {
			selector.RegisterCreator(params.IntegrationType, params.NewCreator(deps))
		}

		if params.NewConnectionTester != nil {
			selector.RegisterConnectionTester(params.IntegrationType, params.NewConnectionTester(deps))
		}
	}
}

// Schemas returns the declarative integration schemas for the host UI.
func Schemas() []domain.Integration {
	schemas := make([]domain.Integration, 0, len(integrationRegisterParamsList))

	for _, params := range integrationRegisterParamsList {
		schemas = append(schemas, params.Schema)
	}

	return schemas
}
