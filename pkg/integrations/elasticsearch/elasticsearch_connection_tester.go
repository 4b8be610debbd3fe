package elasticsearch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/flowvine/flowvine/pkg/domain"

	"github.com/rs/zerolog/log"
)

type ElasticsearchConnectionTester struct{}

func NewElasticsearchConnectionTester(deps domain.IntegrationDeps) domain.IntegrationConnectionTester {
	return &ElasticsearchConnectionTester{}
}

func (c *ElasticsearchConnectionTester) TestConnection(ctx context.Context, params domain.TestConnectionParams) (bool, error) {
	data, err := json.Marshal(params.Credential.DecryptedPayload)
	if err != nil {
		return false, err
	}

	var credential ElasticsearchCredential

	if err := json.Unmarshal(data, &credential); err != nil {
		return false, err
	}

	log.Info().Msgf("Testing connection to Elasticsearch at %s", credential.URL)

	client, err := NewClient(credential.URL, credential.Username, credential.Password)
	if err != nil {
		return false, err
	}

	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return false, fmt.Errorf("failed to reach Elasticsearch: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return false, fmt.Errorf("failed to reach Elasticsearch: %s", responseError(res.Body))
	}

	return true, nil
}
